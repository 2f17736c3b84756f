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
package plonk

import (
	"fmt"
)

// CircuitIO records which cells of a given column kind the circuit author
// declared as inputs and outputs.  Ordering is load bearing: the position of
// a cell in these lists determines its argument (resp. output field) number
// when the circuit is turned into a callable.
type CircuitIO struct {
	kind    Kind
	inputs  []Cell
	outputs []Cell
}

// EmptyCircuitIO creates a CircuitIO without any inputs or outputs.
func EmptyCircuitIO(kind Kind) *CircuitIO {
	return &CircuitIO{kind: kind}
}

// NewCircuitIO creates a CircuitIO from ordered input and output cell lists.
// Every cell must be of the declared kind.  A cell may appear in both lists;
// resolvers break that tie via their resolution priority.
func NewCircuitIO(kind Kind, inputs []Cell, outputs []Cell) (*CircuitIO, error) {
	io := &CircuitIO{kind, inputs, outputs}
	//
	for _, c := range append(append([]Cell{}, inputs...), outputs...) {
		if c.Column.Kind() != kind {
			return nil, fmt.Errorf("io cell %s is not a %s cell", c, kind)
		}
	}
	//
	return io, nil
}

// IOFromInputs creates a CircuitIO with only inputs, where each entry pairs a
// column with the rows of that column which are inputs.
func IOFromInputs(kind Kind, inputs ...ColumnRows) (*CircuitIO, error) {
	return NewCircuitIO(kind, expandColumnRows(inputs), nil)
}

// IOFromOutputs creates a CircuitIO with only outputs.
func IOFromOutputs(kind Kind, outputs ...ColumnRows) (*CircuitIO, error) {
	return NewCircuitIO(kind, nil, expandColumnRows(outputs))
}

// Kind returns the column kind this CircuitIO covers.
func (io *CircuitIO) Kind() Kind {
	return io.kind
}

// Inputs returns the declared input cells in declaration order.
func (io *CircuitIO) Inputs() []Cell {
	return io.inputs
}

// Outputs returns the declared output cells in declaration order.
func (io *CircuitIO) Outputs() []Cell {
	return io.outputs
}

// InputIndex returns the position of the given cell in the declared input
// list, or false if the cell was not declared as an input.
func (io *CircuitIO) InputIndex(cell Cell) (uint, bool) {
	return findCell(io.inputs, cell)
}

// OutputIndex returns the position of the given cell in the declared output
// list, or false if the cell was not declared as an output.
func (io *CircuitIO) OutputIndex(cell Cell) (uint, bool) {
	return findCell(io.outputs, cell)
}

// ColumnRows pairs a column with a set of rows of that column, as a shorthand
// for declaring several io cells of one column at once.
type ColumnRows struct {
	Column Column
	Rows   []uint
}

func expandColumnRows(decls []ColumnRows) []Cell {
	var cells []Cell
	//
	for _, d := range decls {
		for _, row := range d.Rows {
			cells = append(cells, Cell{d.Column, row})
		}
	}
	//
	return cells
}

func findCell(cells []Cell, cell Cell) (uint, bool) {
	for i, c := range cells {
		if c == cell {
			return uint(i), true
		}
	}
	//
	return 0, false
}
