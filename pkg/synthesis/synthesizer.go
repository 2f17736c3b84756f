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
package synthesis

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	log "github.com/sirupsen/logrus"

	"github.com/Veridise/go-plonkir/pkg/plonk"
)

// ErrNoOpenRegion signals an assignment made while no region was open.
var ErrNoOpenRegion = errors.New("assignment outside an open region")

// CircuitSynthesis is the result of capturing one execution of a circuit: its
// constraint system, the equality graph, the recorded fixed data, the lookup
// tables, and the flattened group model.
type CircuitSynthesis struct {
	cs          *plonk.ConstraintSystem
	constraints *EqConstraintGraph
	fixed       *FixedData
	tables      []*TableData
	adviceNames map[plonk.Cell]FQN
	groups      Groups
	adviceIO    *plonk.CircuitIO
	instanceIO  *plonk.CircuitIO
}

// CS returns the captured constraint system.
func (s *CircuitSynthesis) CS() *plonk.ConstraintSystem {
	return s.cs
}

// Gates returns the gates declared during configuration.
func (s *CircuitSynthesis) Gates() []plonk.Gate {
	return s.cs.Gates()
}

// Lookups returns the lookups declared during configuration.
func (s *CircuitSynthesis) Lookups() []plonk.Lookup {
	return s.cs.Lookups()
}

// LookupKinds groups the declared lookups by their table-column signature.
func (s *CircuitSynthesis) LookupKinds() (map[plonk.LookupKind][]*plonk.Lookup, error) {
	return s.cs.LookupKinds()
}

// Constraints returns the equality-constraint graph.
func (s *CircuitSynthesis) Constraints() *EqConstraintGraph {
	return s.constraints
}

// FixedData returns the recorded fixed-column assignments.
func (s *CircuitSynthesis) FixedData() *FixedData {
	return s.fixed
}

// Groups returns the flattened group model, children before parents with the
// top level last.
func (s *CircuitSynthesis) Groups() Groups {
	return s.groups
}

// TopLevelGroup returns the circuit's implicit top-level group.
func (s *CircuitSynthesis) TopLevelGroup() *Group {
	return s.groups.TopLevel()
}

// AdviceIO returns the circuit-level advice io declaration.
func (s *CircuitSynthesis) AdviceIO() *plonk.CircuitIO {
	return s.adviceIO
}

// InstanceIO returns the circuit-level instance io declaration.
func (s *CircuitSynthesis) InstanceIO() *plonk.CircuitIO {
	return s.instanceIO
}

// RegionStarts maps every committed region's index to its start row.
func (s *CircuitSynthesis) RegionStarts() map[uint]uint {
	return s.groups.RegionStarts()
}

// AdviceName returns the diagnostic name recorded for an advice cell.
func (s *CircuitSynthesis) AdviceName(cell plonk.Cell) (FQN, bool) {
	fqn, ok := s.adviceNames[cell]
	//
	return fqn, ok
}

// SeenAdviceCells returns the diagnostic names of every assigned advice cell.
func (s *CircuitSynthesis) SeenAdviceCells() map[plonk.Cell]FQN {
	return s.adviceNames
}

// TablesForLookup materializes the rows of the table the given lookup reads,
// row major.
func (s *CircuitSynthesis) TablesForLookup(l *plonk.Lookup) ([]LookupTableRow, error) {
	queries, err := l.TableQueries()
	if err != nil {
		return nil, err
	}
	//
	anyQueries := make([]plonk.AnyQuery, len(queries))
	columns := make([]uint, len(queries))
	//
	for i, q := range queries {
		anyQueries[i] = plonk.AnyQuery{Column: q.Column, Rotation: q.Rotation}
		columns[i] = q.Column.Index()
	}
	// Find the table covering all queried columns.
	for _, table := range s.tables {
		byColumn, found, err := table.GetRows(anyQueries)
		if err != nil {
			return nil, err
		}
		//
		if !found {
			continue
		}
		// Transpose the column-major result into rows.
		if len(byColumn) != len(queries) {
			return nil, fmt.Errorf("lookup has %d columns but table yielded %d", len(queries), len(byColumn))
		}
		//
		rows := make([]LookupTableRow, len(byColumn[0]))
		for i := range rows {
			values := make([]fr.Element, len(byColumn))
			for j := range byColumn {
				values[j] = byColumn[j][i]
			}
			//
			rows[i] = NewLookupTableRow(columns, values)
		}
		//
		return rows, nil
	}
	//
	return nil, fmt.Errorf("could not get values from table for %s", l)
}

// Synthesize runs the circuit's contract once, capturing its structure and
// assignment trace.  Structural violations abort the run and discard any
// partial state.
func Synthesize[C any](circuit plonk.Circuit[C]) (*CircuitSynthesis, error) {
	cs := plonk.NewConstraintSystem()
	config := circuit.Configure(cs)
	//
	adviceIO, err := circuit.AdviceIO(config)
	if err != nil {
		return nil, fmt.Errorf("declaring advice io: %w", err)
	}
	//
	instanceIO, err := circuit.InstanceIO(config)
	if err != nil {
		return nil, fmt.Errorf("declaring instance io: %w", err)
	}
	//
	rec := newRecorder()
	//
	if err := addRootIO(rec.groups, adviceIO); err != nil {
		return nil, err
	}
	//
	if err := addRootIO(rec.groups, instanceIO); err != nil {
		return nil, err
	}
	//
	if err := circuit.Synthesize(config, rec); err != nil {
		return nil, fmt.Errorf("synthesizing circuit: %w", err)
	}
	// Surface structural violations latched during replay.
	if rec.err != nil {
		return nil, rec.err
	}
	//
	if rec.groups.HasPending() {
		return nil, fmt.Errorf("circuit left a group open")
	}
	//
	if region := rec.groups.Regions().Current(); region != nil {
		return nil, fmt.Errorf("circuit left region %q open", region.Name())
	}
	//
	groups := rec.groups.Finish()
	//
	if err := addFixedToConstConstraints(rec.constraints, rec.fixed); err != nil {
		return nil, err
	}
	//
	tables, err := fillTables(groups, rec.fixed)
	if err != nil {
		return nil, err
	}
	//
	log.Debugf("synthesis captured %d groups, %d equality edges, %d tables",
		len(groups), len(rec.constraints.Edges()), len(tables))
	//
	return &CircuitSynthesis{
		cs:          cs,
		constraints: rec.constraints,
		fixed:       rec.fixed,
		tables:      tables,
		adviceNames: rec.adviceNames,
		groups:      groups,
		adviceIO:    adviceIO,
		instanceIO:  instanceIO,
	}, nil
}

// fillTables materializes a TableData per demoted region, restricting the
// circuit's fixed data to the region's fixed columns.
func fillTables(groups Groups, fixed *FixedData) ([]*TableData, error) {
	var tables []*TableData
	//
	for _, g := range groups {
		for _, region := range g.regions.Tables() {
			subset, err := fixed.Subset(region.FixedColumns())
			if err != nil {
				return nil, fmt.Errorf("filling table %q: %w", region.Name(), err)
			}
			//
			tables = append(tables, NewTableData(subset))
		}
	}
	//
	return tables, nil
}

// addFixedToConstConstraints adds an edge from every fixed cell appearing in
// a copy constraint to the constant value it was assigned.
func addFixedToConstConstraints(constraints *EqConstraintGraph, fixed *FixedData) error {
	for _, cell := range constraints.CellVertices() {
		if !cell.Column.IsFixed() {
			continue
		}
		//
		value := fixed.ResolveFixed(cell.Column.Index(), cell.Row)
		constraints.Add(FixedToConst(cell, value))
	}
	//
	return nil
}

// addRootIO declares the circuit-level io cells as io of the top-level group.
func addRootIO(builder *GroupBuilder, io *plonk.CircuitIO) error {
	for _, c := range io.Inputs() {
		cell, ok := IOGroupCell(c)
		if !ok {
			return fmt.Errorf("io cell %s is neither instance nor advice", c)
		}
		//
		builder.AddRootInput(cell)
	}
	//
	for _, c := range io.Outputs() {
		cell, ok := IOGroupCell(c)
		if !ok {
			return fmt.Errorf("io cell %s is neither instance nor advice", c)
		}
		//
		builder.AddRootOutput(cell)
	}
	//
	return nil
}

// recorder implements plonk.Layouter, recording the structural information of
// one synthesis run.  The first structural violation is latched and every
// subsequent operation becomes a no-op, so the run aborts as a whole.
type recorder struct {
	constraints *EqConstraintGraph
	fixed       *FixedData
	adviceNames map[plonk.Cell]FQN
	groups      *GroupBuilder
	err         error
}

func newRecorder() *recorder {
	return &recorder{
		constraints: NewEqConstraintGraph(),
		fixed:       NewFixedData(),
		adviceNames: make(map[plonk.Cell]FQN),
		groups:      NewGroupBuilder(),
	}
}

// fail latches the first structural violation.
func (r *recorder) fail(err error) error {
	if r.err == nil {
		r.err = err
	}
	//
	return r.err
}

func (r *recorder) EnterRegion(name string) {
	if r.err != nil {
		return
	}
	//
	if err := r.groups.Regions().Push(name); err != nil {
		r.fail(err)
	}
}

func (r *recorder) EnterRegionWithIndex(name string, index uint) error {
	if r.err != nil {
		return r.err
	}
	//
	if err := r.groups.Regions().PushWithIndex(name, index); err != nil {
		return r.fail(err)
	}
	//
	return nil
}

func (r *recorder) ExitRegion() {
	if r.err != nil {
		return
	}
	//
	if err := r.groups.Regions().Commit(); err != nil {
		r.fail(err)
	}
}

func (r *recorder) MarkTable() {
	if r.err != nil {
		return
	}
	//
	r.groups.Regions().DemoteLatest()
}

func (r *recorder) EnableSelector(sel plonk.Selector, row uint) error {
	if r.err != nil {
		return r.err
	}
	//
	edited := r.groups.Regions().Edit(func(region *RegionData) {
		region.EnableSelector(sel, row)
	})
	//
	if !edited {
		return r.fail(fmt.Errorf("%w: enabling selector %s at row %d", ErrNoOpenRegion, sel, row))
	}
	//
	return nil
}

func (r *recorder) AssignAdvice(name string, col plonk.Column, row uint) (plonk.AssignedCell, error) {
	if r.err != nil {
		return plonk.AssignedCell{}, r.err
	}
	//
	var assigned plonk.AssignedCell
	//
	edited := r.groups.Regions().Edit(func(region *RegionData) {
		region.UpdateExtent(col, row)
		//
		cell := plonk.NewCell(col, row)
		fqn := region.CellName(name)
		//
		log.Debugf("recording advice assignment @ col = %d, row = %d, name = %s", col.Index(), row, fqn)
		//
		r.adviceNames[cell] = fqn
		assigned = plonk.AssignedCell{Region: region.Index().Unwrap(), Cell: cell}
	})
	//
	if !edited {
		return plonk.AssignedCell{}, r.fail(fmt.Errorf("%w: advice col = %d, row = %d", ErrNoOpenRegion, col.Index(), row))
	}
	//
	return assigned, nil
}

func (r *recorder) AssignFixed(col plonk.Column, row uint, value fr.Element) error {
	if r.err != nil {
		return r.err
	}
	// Fixed assignments can happen outside a region, in which case only the
	// value is recorded.
	r.groups.Regions().Edit(func(region *RegionData) {
		region.UpdateExtent(col, row)
	})
	//
	r.fixed.AssignFixed(col, row, value)
	//
	return nil
}

func (r *recorder) FillFromRow(col plonk.Column, row uint, value fr.Element) error {
	if r.err != nil {
		return r.err
	}
	//
	log.Debugf("fill from row @ col = %d, from = %d", col.Index(), row)
	//
	r.fixed.BlanketFill(col, row, value)
	//
	regions := r.groups.Regions()
	regions.Edit(func(region *RegionData) {
		region.UpdateExtent(col, row)
	})
	// Blanket fills only come from table assignment, which demotes the
	// region holding them.
	regions.DemoteLatest()
	//
	return nil
}

func (r *recorder) Copy(from plonk.Cell, to plonk.Cell) error {
	if r.err != nil {
		return r.err
	}
	//
	r.constraints.Add(AnyToAny(from, to))
	//
	return nil
}

func (r *recorder) PushNamespace(name string) {
	if r.err != nil {
		return
	}
	//
	r.groups.Regions().Edit(func(region *RegionData) {
		region.PushNamespace(name)
	})
}

func (r *recorder) PopNamespace() {
	if r.err != nil {
		return
	}
	//
	r.groups.Regions().Edit(func(region *RegionData) {
		region.PopNamespace()
	})
}

func (r *recorder) EnterGroup(name string, key plonk.GroupKey) {
	if r.err != nil {
		return
	}
	//
	r.groups.Push(name, key)
}

func (r *recorder) ExitGroup(io plonk.GroupIO) error {
	if r.err != nil {
		return r.err
	}
	//
	for _, cell := range io.Inputs {
		r.groups.AddInput(AssignedGroupCell(cell))
	}
	//
	for _, cell := range io.Outputs {
		r.groups.AddOutput(AssignedGroupCell(cell))
	}
	//
	r.groups.Pop()
	//
	return nil
}

var _ plonk.Layouter = (*recorder)(nil)
