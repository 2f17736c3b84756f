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
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veridise/go-plonkir/pkg/plonk"
)

// nestedConfig is a circuit with a group nested inside another group.
type nestedConfig struct {
	x plonk.Column
}

type nestedCircuit struct{}

func (nestedCircuit) Configure(cs *plonk.ConstraintSystem) nestedConfig {
	return nestedConfig{x: cs.AdviceColumn()}
}

func (nestedCircuit) Synthesize(cfg nestedConfig, l plonk.Layouter) error {
	l.EnterGroup("outer", plonk.GroupKey{Type: "outer"})
	l.EnterGroup("inner", plonk.GroupKey{Type: "inner"})
	//
	if err := l.EnterRegionWithIndex("leaf", 0); err != nil {
		return err
	}
	//
	cell, err := l.AssignAdvice("x", cfg.x, 0)
	if err != nil {
		return err
	}
	//
	l.ExitRegion()
	//
	if err := l.ExitGroup(plonk.GroupIO{Outputs: []plonk.AssignedCell{cell}}); err != nil {
		return err
	}
	//
	return l.ExitGroup(plonk.GroupIO{Outputs: []plonk.AssignedCell{cell}})
}

func (nestedCircuit) AdviceIO(nestedConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.ADVICE), nil
}

func (nestedCircuit) InstanceIO(nestedConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.INSTANCE), nil
}

// tableConfig is a circuit whose lookup table is built from a demoted region.
type tableConfig struct {
	x plonk.Column
	t plonk.Column
}

type tableCircuit struct{}

func (tableCircuit) Configure(cs *plonk.ConstraintSystem) tableConfig {
	cfg := tableConfig{
		x: cs.AdviceColumn(),
		t: cs.FixedColumn(),
	}
	//
	if err := cs.AddLookup("range",
		[]plonk.Expression{cfg.x.QueryCell(plonk.ROT_CUR)},
		[]plonk.Expression{cfg.t.QueryCell(plonk.ROT_CUR)}); err != nil {
		panic(err)
	}
	//
	return cfg
}

func (tableCircuit) Synthesize(cfg tableConfig, l plonk.Layouter) error {
	l.EnterRegion("table")
	//
	for row := uint(0); row < 3; row++ {
		if err := l.AssignFixed(cfg.t, row, fr.NewElement(uint64(row+1))); err != nil {
			return err
		}
	}
	//
	l.MarkTable()
	l.ExitRegion()
	//
	if err := l.EnterRegionWithIndex("use", 0); err != nil {
		return err
	}
	//
	if _, err := l.AssignAdvice("x", cfg.x, 0); err != nil {
		return err
	}
	//
	l.ExitRegion()
	//
	return nil
}

func (tableCircuit) AdviceIO(cfg tableConfig) (*plonk.CircuitIO, error) {
	return plonk.NewCircuitIO(plonk.ADVICE,
		[]plonk.Cell{plonk.NewCell(cfg.x, 0)}, nil)
}

func (tableCircuit) InstanceIO(tableConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.INSTANCE), nil
}

func TestSynthesize_GroupsOrderedChildrenFirst(t *testing.T) {
	syn, err := Synthesize[nestedConfig](nestedCircuit{})
	require.NoError(t, err)
	//
	groups := syn.Groups()
	require.Len(t, groups, 3)
	//
	assert.Equal(t, "inner", groups[0].Name())
	assert.Equal(t, "outer", groups[1].Name())
	assert.Equal(t, "Main", groups[2].Name())
	assert.True(t, groups[2].IsTopLevel())
	//
	assert.Same(t, groups[2], syn.TopLevelGroup())
}

func TestSynthesize_NestedGroupsShareForwardedOutput(t *testing.T) {
	syn, err := Synthesize[nestedConfig](nestedCircuit{})
	require.NoError(t, err)
	//
	groups := syn.Groups()
	require.Len(t, groups, 3)
	// Both groups declare the same output cell; the region belongs to the
	// innermost group only.
	require.Len(t, groups[0].Outputs(), 1)
	require.Len(t, groups[1].Outputs(), 1)
	assert.Equal(t, groups[0].Outputs()[0].Cell(), groups[1].Outputs()[0].Cell())
	//
	assert.Len(t, groups[0].Regions(), 1)
	assert.Empty(t, groups[1].Regions())
}

func TestSynthesize_UnbalancedGroupFails(t *testing.T) {
	unbalanced := circuitFunc(func(l plonk.Layouter) error {
		l.EnterGroup("dangling", plonk.GroupKey{Type: "dangling"})
		return nil
	})
	//
	_, err := Synthesize[struct{}](unbalanced)
	assert.Error(t, err)
}

func TestSynthesize_TableRegionIsDemoted(t *testing.T) {
	syn, err := Synthesize[tableConfig](tableCircuit{})
	require.NoError(t, err)
	// Only the "use" region survives as a region.
	regions := syn.TopLevelGroup().Regions()
	require.Len(t, regions, 1)
	assert.Equal(t, "use", regions[0].Name())
}

func TestSynthesize_TablesForLookupMaterializesRows(t *testing.T) {
	syn, err := Synthesize[tableConfig](tableCircuit{})
	require.NoError(t, err)
	//
	lookups := syn.Lookups()
	require.Len(t, lookups, 1)
	//
	rows, err := syn.TablesForLookup(&lookups[0])
	require.NoError(t, err)
	require.Len(t, rows, 3)
	//
	for i, row := range rows {
		value, err := row.Value(0)
		require.NoError(t, err)
		assert.Equal(t, fr.NewElement(uint64(i+1)), value)
	}
}

// circuitFunc adapts a bare synthesis function into a config-less circuit.
type circuitFunc func(l plonk.Layouter) error

func (f circuitFunc) Configure(*plonk.ConstraintSystem) struct{} {
	return struct{}{}
}

func (f circuitFunc) Synthesize(_ struct{}, l plonk.Layouter) error {
	return f(l)
}

func (circuitFunc) AdviceIO(struct{}) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.ADVICE), nil
}

func (circuitFunc) InstanceIO(struct{}) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.INSTANCE), nil
}
