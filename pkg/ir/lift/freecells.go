// Copyright Veridise Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package lift

import (
	log "github.com/sirupsen/logrus"

	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// FreeCells lists the cells lifting attached to one group: extra inputs the
// group now requires, and extra arguments for each of its callsites, parallel
// to the group's child list.
type FreeCells struct {
	Inputs    []synthesis.GroupCell
	Callsites [][]synthesis.GroupCell
}

// LiftFreeCells finds equality-constraint endpoints that lie outside their
// group while the other endpoint lies within, and lifts them into the group's
// inputs.  Callsites to a lifted group gain matching extra arguments, which
// may in turn be free in the caller, so the lifting runs as a worklist
// fixpoint.  Adding a cell already present is a no-op, so the result is
// idempotent and termination is bounded by cells times groups.
func LiftFreeCells(groups synthesis.Groups, constraints *synthesis.EqConstraintGraph) []FreeCells {
	result := make([]FreeCells, len(groups))
	//
	var worklist []int
	//
	for n, g := range groups {
		free := findFreeCells(g, constraints)
		if len(free) > 0 {
			log.Debugf("group %d %q has %d free cells", n, g.Name(), len(free))
			worklist = append(worklist, n)
		}
		//
		result[n] = FreeCells{
			Inputs:    free,
			Callsites: make([][]synthesis.GroupCell, len(g.Children())),
		}
	}
	//
	for len(worklist) > 0 {
		callee := worklist[0]
		worklist = worklist[1:]
		//
		for caller, g := range groups {
			callsite, calls := g.HasChild(uint(callee))
			if !calls {
				continue
			}
			// The callsite must supply every lifted input of the callee.
			appendMissing(&result[caller].Callsites[callsite], result[callee].Inputs)
			// Appended cells the caller cannot see itself become free in the
			// caller.
			bounds := NewGroupBoundsWithExtra(g, result[caller].Inputs)
			//
			var escaped []synthesis.GroupCell
			//
			for _, c := range result[callee].Inputs {
				if !bounds.WithinBounds(c.Cell()) {
					escaped = append(escaped, c)
				}
			}
			//
			if appendMissing(&result[caller].Inputs, escaped) {
				log.Debugf("group %d %q gains free cells from callee %d", caller, g.Name(), callee)
				worklist = append(worklist, caller)
			}
		}
	}
	//
	return result
}

// findFreeCells scans the equality edges for cells outside the group whose
// other endpoint is within it.
func findFreeCells(group *synthesis.Group, constraints *synthesis.EqConstraintGraph) []synthesis.GroupCell {
	bounds := NewGroupBounds(group)
	//
	var free []synthesis.GroupCell
	//
	for _, edge := range constraints.Edges() {
		checked := bounds.CheckEdge(edge)
		if checked.Const {
			continue
		}
		//
		fromCell, _ := edge.From.IsCell()
		toCell, _ := edge.To.IsCell()
		//
		switch {
		case checked.From == BOUND_WITHIN && checked.To == BOUND_OUTSIDE:
			if cell, ok := synthesis.IOGroupCell(toCell); ok {
				free = append(free, cell)
			}
		case checked.From == BOUND_OUTSIDE && checked.To == BOUND_WITHIN:
			if cell, ok := synthesis.IOGroupCell(fromCell); ok {
				free = append(free, cell)
			}
		}
	}
	//
	return dedup(free)
}

// appendMissing appends cells not already present, reporting whether anything
// was added.
func appendMissing(dst *[]synthesis.GroupCell, cells []synthesis.GroupCell) bool {
	present := make(map[synthesis.GroupCell]bool, len(*dst))
	for _, c := range *dst {
		present[c] = true
	}
	//
	added := false
	//
	for _, c := range cells {
		if !present[c] {
			present[c] = true
			*dst = append(*dst, c)
			added = true
		}
	}
	//
	return added
}

func dedup(cells []synthesis.GroupCell) []synthesis.GroupCell {
	var out []synthesis.GroupCell
	//
	appendMissing(&out, cells)
	//
	return out
}
