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
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// Circuit is the contract a circuit author implements to have their circuit
// captured.  Configure declares columns, gates and lookups against the
// constraint system; Synthesize replays the cell assignments against a
// Layouter; AdviceIO / InstanceIO declare the circuit-level input and output
// cells.  The ordering of the declared io cells determines argument numbering
// and must be stable run to run.
type Circuit[C any] interface {
	// Configure declares the circuit's structure and returns its config.
	Configure(cs *ConstraintSystem) C
	// Synthesize replays the circuit's assignments against the layouter.
	Synthesize(config C, layouter Layouter) error
	// AdviceIO returns the advice cells acting as circuit inputs / outputs.
	AdviceIO(config C) (*CircuitIO, error)
	// InstanceIO returns the instance cells acting as circuit inputs /
	// outputs.
	InstanceIO(config C) (*CircuitIO, error)
}

// Layouter is the recording surface a circuit synthesizes against.  Rows are
// absolute; a region's extent is learned from the cells assigned within it.
type Layouter interface {
	// EnterRegion opens a new region with the given name.  At most one
	// region can be open at a time.
	EnterRegion(name string)
	// EnterRegionWithIndex opens a new region requesting a specific region
	// index.  The request fails if the index is already taken.
	EnterRegionWithIndex(name string, index uint) error
	// ExitRegion commits the currently open region.
	ExitRegion()
	// MarkTable flags the currently open region as a lookup table, demoting
	// it once committed.
	MarkTable()
	// EnableSelector records that the given selector is enabled at the given
	// absolute row of the open region.
	EnableSelector(sel Selector, row uint) error
	// AssignAdvice records an advice cell assignment, returning a handle
	// usable for declaring group io.  The name is a diagnostic label scoped
	// to the active namespace.
	AssignAdvice(name string, col Column, row uint) (AssignedCell, error)
	// AssignFixed records a fixed cell assignment.
	AssignFixed(col Column, row uint, value fr.Element) error
	// FillFromRow blanket-fills a fixed column with the given value from the
	// given row onward, and flags the open region as a table.
	FillFromRow(col Column, row uint, value fr.Element) error
	// Copy records an equality constraint between two cells.
	Copy(from Cell, to Cell) error
	// PushNamespace pushes a diagnostic namespace onto the open region.
	PushNamespace(name string)
	// PopNamespace pops the innermost diagnostic namespace.
	PopNamespace()
	// EnterGroup opens a callable group holding subsequent regions and
	// sub-groups.
	EnterGroup(name string, key GroupKey)
	// ExitGroup closes the innermost group, declaring its io cells.
	ExitGroup(io GroupIO) error
}

// GroupKey identifies which reusable sub-circuit a group is an instance of.
// Groups carrying equal keys are candidates for sharing one generated
// callable.
type GroupKey struct {
	// Type names the sub-circuit this group instantiates.
	Type string
	// Instance disambiguates distinct instantiations of the same type whose
	// bodies must not be merged.
	Instance uint64
}

// AssignedCell identifies a cell assigned during synthesis, together with the
// index of the region that assigned it.
type AssignedCell struct {
	Region uint
	Cell   Cell
}

// GroupIO declares the input and output cells of a group at exit time.
type GroupIO struct {
	Inputs  []AssignedCell
	Outputs []AssignedCell
}
