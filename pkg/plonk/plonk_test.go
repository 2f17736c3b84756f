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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateArity_FirstAppearanceOrder(t *testing.T) {
	var (
		s0 = NewSelector(0)
		s1 = NewSelector(1)
		a  = NewColumn(ADVICE, 0)
		b  = NewColumn(ADVICE, 1)
		f  = NewColumn(FIXED, 0)
	)
	// b appears before a, and again afterwards.
	poly := Mul(
		SelectorExpr{Selector: s1},
		Add(b.QueryCell(ROT_CUR), a.QueryCell(ROT_CUR), b.QueryCell(ROT_CUR)),
		SelectorExpr{Selector: s0},
		f.QueryCell(ROT_NEXT))
	//
	selectors, queries := GateArity([]Expression{poly})
	//
	assert.Equal(t, []Selector{s1, s0}, selectors)
	require.Len(t, queries, 3)
	assert.Equal(t, AnyQuery{b, ROT_CUR}, queries[0])
	assert.Equal(t, AnyQuery{a, ROT_CUR}, queries[1])
	assert.Equal(t, AnyQuery{f, ROT_NEXT}, queries[2])
}

func TestGateArity_DistinguishesRotations(t *testing.T) {
	a := NewColumn(ADVICE, 0)
	//
	_, queries := GateArity([]Expression{
		Sub(a.QueryCell(ROT_NEXT), a.QueryCell(ROT_CUR)),
	})
	//
	assert.Len(t, queries, 2)
}

func TestFindSelectors_CollectsNestedSelectors(t *testing.T) {
	var (
		s0 = NewSelector(0)
		s1 = NewSelector(1)
		a  = NewColumn(ADVICE, 0)
	)
	//
	poly := Add(
		Mul(SelectorExpr{Selector: s0}, a.QueryCell(ROT_CUR)),
		Neg(SelectorExpr{Selector: s1}))
	//
	found := FindSelectors(poly)
	assert.True(t, found[s0])
	assert.True(t, found[s1])
	assert.Len(t, found, 2)
}

func TestContainsFixed_SeesThroughArithmetic(t *testing.T) {
	var (
		a = NewColumn(ADVICE, 0)
		f = NewColumn(FIXED, 0)
	)
	//
	assert.True(t, ContainsFixed(Mul(a.QueryCell(ROT_CUR), f.QueryCell(ROT_CUR))))
	assert.False(t, ContainsFixed(Neg(a.QueryCell(ROT_CUR))))
}

func TestNewCircuitIO_RejectsWrongKind(t *testing.T) {
	advice := NewColumn(ADVICE, 0)
	//
	_, err := NewCircuitIO(INSTANCE, []Cell{NewCell(advice, 0)}, nil)
	assert.ErrorContains(t, err, "is not a")
}

func TestNewCircuitIO_CellMayBeInputAndOutput(t *testing.T) {
	advice := NewColumn(ADVICE, 0)
	cell := NewCell(advice, 3)
	//
	io, err := NewCircuitIO(ADVICE, []Cell{cell}, []Cell{cell})
	require.NoError(t, err)
	//
	in, ok := io.InputIndex(cell)
	require.True(t, ok)
	assert.Equal(t, uint(0), in)
	//
	out, ok := io.OutputIndex(cell)
	require.True(t, ok)
	assert.Equal(t, uint(0), out)
}

func TestIOFromInputs_ExpandsColumnRows(t *testing.T) {
	advice := NewColumn(ADVICE, 0)
	//
	io, err := IOFromInputs(ADVICE, ColumnRows{Column: advice, Rows: []uint{0, 2}})
	require.NoError(t, err)
	//
	require.Len(t, io.Inputs(), 2)
	assert.Empty(t, io.Outputs())
	//
	idx, ok := io.InputIndex(NewCell(advice, 2))
	require.True(t, ok)
	assert.Equal(t, uint(1), idx)
}

func TestLookupKind_CanonicalizesColumnOrder(t *testing.T) {
	assert.Equal(t, NewLookupKind([]uint{2, 0}), NewLookupKind([]uint{0, 2}))
	assert.Equal(t, LookupKind("f0:f2"), NewLookupKind([]uint{2, 0}))
	assert.Equal(t, []uint{0, 2}, NewLookupKind([]uint{2, 0}).Columns())
}

func TestAddLookup_RejectsNonFixedTable(t *testing.T) {
	cs := NewConstraintSystem()
	var (
		x = cs.AdviceColumn()
		y = cs.AdviceColumn()
	)
	//
	err := cs.AddLookup("bad",
		[]Expression{x.QueryCell(ROT_CUR)},
		[]Expression{y.QueryCell(ROT_CUR)})
	assert.Error(t, err)
}

func TestConstraintSystem_AllocatesDistinctIndicesPerKind(t *testing.T) {
	cs := NewConstraintSystem()
	//
	f0 := cs.FixedColumn()
	a0 := cs.AdviceColumn()
	a1 := cs.AdviceColumn()
	//
	assert.Equal(t, uint(0), f0.Index())
	assert.Equal(t, uint(0), a0.Index())
	assert.Equal(t, uint(1), a1.Index())
	//
	assert.Equal(t, uint(1), cs.FixedColumns())
	assert.Equal(t, uint(2), cs.AdviceColumns())
}
