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

// Package lift classifies cells against group bounds and lifts free
// equality-constraint endpoints into group inputs and callsite arguments.
package lift

import (
	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// Bound classifies where a cell sits relative to a group.
type Bound uint8

const (
	// BOUND_WITHIN is a cell covered by one of the group's own regions.
	BOUND_WITHIN Bound = iota
	// BOUND_IO is a declared io cell assigned within the group's regions.
	BOUND_IO
	// BOUND_FOREIGN_IO is a declared io cell living outside the group's
	// regions.
	BOUND_FOREIGN_IO
	// BOUND_OUTSIDE is a cell the group knows nothing about.
	BOUND_OUTSIDE
)

func (b Bound) String() string {
	switch b {
	case BOUND_WITHIN:
		return "within"
	case BOUND_IO:
		return "io"
	case BOUND_FOREIGN_IO:
		return "foreign io"
	default:
		return "outside"
	}
}

// GroupBounds answers whether a cell is within the bounds of one group: either
// covered by a directly-owned region's column/row extent, or declared as io.
type GroupBounds struct {
	regions   []*synthesis.RegionData
	io        map[plonk.Cell]bool
	foreignIO map[plonk.Cell]bool
}

// NewGroupBounds computes the bounds of the given group.
func NewGroupBounds(group *synthesis.Group) *GroupBounds {
	return NewGroupBoundsWithExtra(group, nil)
}

// NewGroupBoundsWithExtra computes the bounds of the given group with extra
// input cells appended, as happens after free-cell lifting.
func NewGroupBoundsWithExtra(group *synthesis.Group, extra []synthesis.GroupCell) *GroupBounds {
	b := &GroupBounds{
		regions:   group.Regions(),
		io:        make(map[plonk.Cell]bool),
		foreignIO: make(map[plonk.Cell]bool),
	}
	// Region indices directly owned by the group.
	owned := make(map[uint]bool)
	for _, r := range b.regions {
		if index := r.Index(); index.HasValue() {
			owned[index.Unwrap()] = true
		}
	}
	// Io cells assigned by an owned region count as io proper; everything
	// else, including circuit-level instance/advice io, is foreign.
	classify := func(cells []synthesis.GroupCell) {
		for _, c := range cells {
			if region := c.RegionIndex(); region.HasValue() && owned[region.Unwrap()] {
				b.io[c.Cell()] = true
			} else {
				b.foreignIO[c.Cell()] = true
			}
		}
	}
	//
	classify(group.Inputs())
	classify(group.Outputs())
	classify(extra)
	//
	return b
}

// coveredByRegions reports whether some owned region touches the cell's
// column and spans its row.
func (b *GroupBounds) coveredByRegions(cell plonk.Cell) bool {
	for _, r := range b.regions {
		if r.Columns()[cell.Column] && r.ContainsRow(cell.Row) {
			return true
		}
	}
	//
	return false
}

// WithinBounds reports whether the cell is visible inside the group, either
// via an owned region or as declared io.
func (b *GroupBounds) WithinBounds(cell plonk.Cell) bool {
	return b.coveredByRegions(cell) || b.foreignIO[cell]
}

// FixedWithinRegions reports whether any owned region touches the given fixed
// column, regardless of row.
func (b *GroupBounds) FixedWithinRegions(col plonk.Column) bool {
	for _, r := range b.regions {
		if r.Columns()[col] {
			return true
		}
	}
	//
	return false
}

// Check classifies the cell against these bounds.
func (b *GroupBounds) Check(cell plonk.Cell) Bound {
	switch {
	case !b.WithinBounds(cell):
		return BOUND_OUTSIDE
	case b.foreignIO[cell]:
		return BOUND_FOREIGN_IO
	case b.io[cell]:
		return BOUND_IO
	}
	//
	return BOUND_WITHIN
}

// EdgeBounds classifies both endpoints of an equality edge.  For edges between
// a fixed cell and a constant only From is meaningful.
type EdgeBounds struct {
	From  Bound
	To    Bound
	Const bool
}

// CheckEdge classifies an equality-constraint edge against these bounds.
// Cell-to-cell edges classify both endpoints; fixed-to-constant edges check
// only whether the fixed column is touched by an owned region.
func (b *GroupBounds) CheckEdge(edge synthesis.EqConstraint) EdgeBounds {
	fromCell, fromIsCell := edge.From.IsCell()
	toCell, toIsCell := edge.To.IsCell()
	//
	if fromIsCell && toIsCell {
		return EdgeBounds{From: b.Check(fromCell), To: b.Check(toCell)}
	}
	// Fixed-to-constant: the cell may sit on either side.
	cell := fromCell
	if !fromIsCell {
		cell = toCell
	}
	//
	bound := BOUND_OUTSIDE
	if b.FixedWithinRegions(cell.Column) {
		bound = BOUND_WITHIN
	}
	//
	return EdgeBounds{From: bound, Const: true}
}
