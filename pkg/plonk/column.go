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

import "fmt"

// Kind distinguishes the storage classes a column can have in a PLONKish
// constraint system.
type Kind uint8

const (
	// FIXED columns hold constants baked into the circuit.
	FIXED Kind = iota
	// ADVICE columns hold witness values assigned during synthesis.
	ADVICE
	// INSTANCE columns hold public values.
	INSTANCE
	// ANY is the erased kind used where any column class is acceptable.
	ANY
)

func (k Kind) String() string {
	switch k {
	case FIXED:
		return "fixed"
	case ADVICE:
		return "advice"
	case INSTANCE:
		return "instance"
	case ANY:
		return "any"
	}
	//
	return "???"
}

// Column identifies a single storage line in the constraint system.  Columns
// are immutable and cheap to copy.
type Column struct {
	index uint
	kind  Kind
}

// NewColumn constructs a column of the given kind with the given index.
func NewColumn(kind Kind, index uint) Column {
	return Column{index, kind}
}

// Index returns the index of this column within its kind.
func (c Column) Index() uint {
	return c.index
}

// Kind returns the storage class of this column.
func (c Column) Kind() Kind {
	return c.kind
}

// IsFixed checks whether this column is a fixed column.
func (c Column) IsFixed() bool {
	return c.kind == FIXED
}

// Erase returns this column with its kind erased to ANY whilst retaining the
// underlying class for later recovery.  Columns are compared by (kind, index),
// hence erased columns of different classes never collide.
func (c Column) String() string {
	return fmt.Sprintf("%s[%d]", c.kind, c.index)
}

// QueryCell constructs a query expression for this column at the given
// rotation.
func (c Column) QueryCell(rot Rotation) Expression {
	switch c.kind {
	case FIXED:
		return FixedQuery{c, rot}
	case ADVICE:
		return AdviceQuery{c, rot}
	case INSTANCE:
		return InstanceQuery{c, rot}
	}
	//
	panic(fmt.Sprintf("cannot query column of kind %s", c.kind))
}

// Cell identifies one (column, row) coordinate of the circuit table.
type Cell struct {
	Column Column
	Row    uint
}

// NewCell constructs a cell at the given coordinates.
func NewCell(col Column, row uint) Cell {
	return Cell{col, row}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%s, %d)", c.Column, c.Row)
}

// Selector identifies a per-row boolean control column which conditionally
// activates a gate.
type Selector struct {
	index uint
}

// NewSelector constructs a selector with the given index.
func NewSelector(index uint) Selector {
	return Selector{index}
}

// Index returns the index of this selector.
func (s Selector) Index() uint {
	return s.index
}

func (s Selector) String() string {
	return fmt.Sprintf("sel[%d]", s.index)
}

// Rotation is a signed row offset applied to a query when a gate is evaluated
// at a concrete row.
type Rotation int

// ROT_CUR queries the current row.
const ROT_CUR Rotation = 0

// ROT_NEXT queries the following row.
const ROT_NEXT Rotation = 1

// ROT_PREV queries the preceding row.
const ROT_PREV Rotation = -1

// Challenge identifies a verifier challenge available to expressions after a
// given phase.
type Challenge struct {
	index uint
	phase uint8
}

// NewChallenge constructs a challenge with the given index and phase.
func NewChallenge(index uint, phase uint8) Challenge {
	return Challenge{index, phase}
}

// Index returns the index of this challenge.
func (c Challenge) Index() uint {
	return c.index
}

// Phase returns the phase after which this challenge becomes available.
func (c Challenge) Phase() uint8 {
	return c.phase
}
