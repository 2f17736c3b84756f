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

package resolve

import (
	"fmt"

	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/plonk"
)

// Row resolves queries against a fixed absolute row of the circuit.  Cells
// declared as circuit inputs or outputs become function arguments and result
// fields; everything else resolves to its absolute cell identity.  Instance
// cells number before advice cells, so advice arguments and fields are offset
// by the number of declared instance inputs and outputs respectively.
type Row struct {
	row        uint
	adviceIO   *plonk.CircuitIO
	instanceIO *plonk.CircuitIO
	fixed      FixedResolver
	priority   ResolutionPriority
}

// NewRow constructs a resolver scoped to the given absolute row.  The fixed
// resolver may be nil, in which case all fixed queries resolve symbolically.
func NewRow(row uint, adviceIO, instanceIO *plonk.CircuitIO, fixed FixedResolver) *Row {
	return &Row{
		row:        row,
		adviceIO:   adviceIO,
		instanceIO: instanceIO,
		fixed:      fixed,
		priority:   PRIORITY_OUTPUT,
	}
}

// WithPriority overrides which role wins for cells declared as both input and
// output.
func (r *Row) WithPriority(priority ResolutionPriority) *Row {
	r.priority = priority
	return r
}

// Row returns the absolute row this resolver is scoped to.
func (r *Row) Row() uint {
	return r.row
}

// ResolveRotation applies the given rotation to this row.
func (r *Row) ResolveRotation(rot plonk.Rotation) (uint, error) {
	return ResolveRotation(r.row, rot)
}

// ResolveFixedQuery resolves a fixed query, preferring the value assigned
// during synthesis and falling back to the absolute cell identity.
func (r *Row) ResolveFixedQuery(q plonk.FixedQuery) (ResolvedQuery, error) {
	row, err := r.ResolveRotation(q.Rotation)
	if err != nil {
		return ResolvedQuery{}, err
	}
	//
	if r.fixed != nil {
		if value, err := r.fixed.ResolveQuery(q, row); err == nil {
			return LitQuery(value), nil
		}
	}
	//
	return IOQuery(ir.FixedCell(q.Column.Index(), row)), nil
}

// ResolveAdviceQuery resolves an advice query against the declared advice io,
// falling back to the absolute cell identity.
func (r *Row) ResolveAdviceQuery(q plonk.AdviceQuery) (ResolvedQuery, error) {
	row, err := r.ResolveRotation(q.Rotation)
	if err != nil {
		return ResolvedQuery{}, err
	}
	//
	cell := plonk.Cell{Column: q.Column, Row: row}
	argNo, isInput := r.adviceIO.InputIndex(cell)
	fieldNo, isOutput := r.adviceIO.OutputIndex(cell)
	// Advice io numbers after instance io.
	argNo += uint(len(r.instanceIO.Inputs()))
	fieldNo += uint(len(r.instanceIO.Outputs()))
	//
	switch {
	case isInput && isOutput:
		if r.priority == PRIORITY_INPUT {
			return IOQuery(ir.Arg(argNo)), nil
		}
		//
		return IOQuery(ir.Field(fieldNo)), nil
	case isInput:
		return IOQuery(ir.Arg(argNo)), nil
	case isOutput:
		return IOQuery(ir.Field(fieldNo)), nil
	}
	//
	return IOQuery(ir.AdviceCell(q.Column.Index(), row)), nil
}

// ResolveInstanceQuery resolves an instance query against the declared
// instance io.  Instance cells are always public, so a cell missing from the
// declared io is an error.
func (r *Row) ResolveInstanceQuery(q plonk.InstanceQuery) (ResolvedQuery, error) {
	row, err := r.ResolveRotation(q.Rotation)
	if err != nil {
		return ResolvedQuery{}, err
	}
	//
	cell := plonk.Cell{Column: q.Column, Row: row}
	argNo, isInput := r.instanceIO.InputIndex(cell)
	fieldNo, isOutput := r.instanceIO.OutputIndex(cell)
	//
	switch {
	case isInput && isOutput:
		if r.priority == PRIORITY_INPUT {
			return IOQuery(ir.Arg(argNo)), nil
		}
		//
		return IOQuery(ir.Field(fieldNo)), nil
	case isInput:
		return IOQuery(ir.Arg(argNo)), nil
	case isOutput:
		return IOQuery(ir.Field(fieldNo)), nil
	}
	//
	return ResolvedQuery{}, fmt.Errorf("instance cell %s was not declared as circuit io", cell)
}

// ResolveSelector fails, since selectors only have meaning within a region or
// gate scope.
func (r *Row) ResolveSelector(sel plonk.Selector) (ResolvedSelector, error) {
	return ResolvedSelector{}, fmt.Errorf("%w: selector %d resolved outside any region or gate scope",
		ErrSelectorOutOfScope, sel.Index())
}
