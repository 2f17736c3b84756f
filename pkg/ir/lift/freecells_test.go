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
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

func commitRegion(t *testing.T, regions *synthesis.Regions, name string, col plonk.Column, from, to uint) {
	require.NoError(t, regions.Push(name))
	//
	regions.Edit(func(r *synthesis.RegionData) {
		r.UpdateExtent(col, from)
		r.UpdateExtent(col, to)
	})
	//
	require.NoError(t, regions.Commit())
}

// Builds a three-level circuit: the top level owns a region covering
// (a1, 5..5), its child "mid" owns nothing, and mid's child "inner" owns a
// region covering (a0, 0..0).
func liftFixture(t *testing.T) synthesis.Groups {
	a0 := plonk.NewColumn(plonk.ADVICE, 0)
	a1 := plonk.NewColumn(plonk.ADVICE, 1)
	//
	b := synthesis.NewGroupBuilder()
	commitRegion(t, b.Regions(), "top_r", a1, 5, 5)
	//
	b.Push("mid", plonk.GroupKey{Type: "mid"})
	b.Push("inner", plonk.GroupKey{Type: "inner"})
	commitRegion(t, b.Regions(), "inner_r", a0, 0, 0)
	b.Pop()
	b.Pop()
	//
	return b.Finish()
}

func ioCell(t *testing.T, col plonk.Column, row uint) synthesis.GroupCell {
	cell, ok := synthesis.IOGroupCell(plonk.NewCell(col, row))
	require.True(t, ok)
	//
	return cell
}

func TestLift_PropagatesThroughCallers(t *testing.T) {
	a0 := plonk.NewColumn(plonk.ADVICE, 0)
	a1 := plonk.NewColumn(plonk.ADVICE, 1)
	groups := liftFixture(t)
	// Flattening is children first: inner, mid, top.
	require.Len(t, groups, 3)
	assert.True(t, groups[2].IsTopLevel())
	// One copy constraint crossing from inner's region into the top level's.
	constraints := synthesis.NewEqConstraintGraph()
	constraints.Add(synthesis.AnyToAny(plonk.NewCell(a0, 0), plonk.NewCell(a1, 5)))
	//
	lifted := LiftFreeCells(groups, constraints)
	require.Len(t, lifted, 3)
	// Inner cannot see (a1, 5), so it becomes an extra input.
	assert.Equal(t, []synthesis.GroupCell{ioCell(t, a1, 5)}, lifted[0].Inputs)
	// Mid must thread it through: extra argument at its callsite to inner,
	// and an extra input of its own since mid owns no regions.
	assert.Equal(t, []synthesis.GroupCell{ioCell(t, a1, 5)}, lifted[1].Callsites[0])
	assert.Equal(t, []synthesis.GroupCell{ioCell(t, a1, 5)}, lifted[1].Inputs)
	// The top level sees (a1, 5) in its own region, so propagation stops:
	// its callsite to mid supplies the cell without growing its inputs.
	assert.Equal(t, []synthesis.GroupCell{ioCell(t, a1, 5)}, lifted[2].Callsites[0])
	// (a0, 0) is outside the top level whilst its counterpart is within, so
	// the seed scan lifts it there.
	assert.Equal(t, []synthesis.GroupCell{ioCell(t, a0, 0)}, lifted[2].Inputs)
}

func TestLift_Idempotent(t *testing.T) {
	a0 := plonk.NewColumn(plonk.ADVICE, 0)
	a1 := plonk.NewColumn(plonk.ADVICE, 1)
	groups := liftFixture(t)
	//
	constraints := synthesis.NewEqConstraintGraph()
	constraints.Add(synthesis.AnyToAny(plonk.NewCell(a0, 0), plonk.NewCell(a1, 5)))
	// Duplicate edges are dropped by the graph itself.
	constraints.Add(synthesis.AnyToAny(plonk.NewCell(a1, 5), plonk.NewCell(a0, 0)))
	//
	first := LiftFreeCells(groups, constraints)
	second := LiftFreeCells(groups, constraints)
	assert.Equal(t, first, second)
	// No callsite or input list accumulates duplicates.
	for _, fc := range first {
		assert.LessOrEqual(t, len(fc.Inputs), 1)
		//
		for _, args := range fc.Callsites {
			assert.LessOrEqual(t, len(args), 1)
		}
	}
}

func TestLift_NoConstraintsNoFreeCells(t *testing.T) {
	groups := liftFixture(t)
	//
	lifted := LiftFreeCells(groups, synthesis.NewEqConstraintGraph())
	//
	for _, fc := range lifted {
		assert.Empty(t, fc.Inputs)
		//
		for _, args := range fc.Callsites {
			assert.Empty(t, args)
		}
	}
}

func TestBounds_Classification(t *testing.T) {
	a0 := plonk.NewColumn(plonk.ADVICE, 0)
	a1 := plonk.NewColumn(plonk.ADVICE, 1)
	//
	b := synthesis.NewGroupBuilder()
	b.Push("g", plonk.GroupKey{Type: "g"})
	commitRegion(t, b.Regions(), "r", a0, 0, 3)
	// The region at this point has index 0; declare one io cell assigned by
	// it and one foreign io cell.
	b.AddInput(synthesis.AssignedGroupCell(plonk.AssignedCell{Region: 0, Cell: plonk.NewCell(a0, 1)}))
	b.AddOutput(ioCell(t, a1, 7))
	b.Pop()
	//
	groups := b.Finish()
	bounds := NewGroupBounds(groups[0])
	//
	assert.Equal(t, BOUND_WITHIN, bounds.Check(plonk.NewCell(a0, 2)))
	assert.Equal(t, BOUND_IO, bounds.Check(plonk.NewCell(a0, 1)))
	assert.Equal(t, BOUND_FOREIGN_IO, bounds.Check(plonk.NewCell(a1, 7)))
	assert.Equal(t, BOUND_OUTSIDE, bounds.Check(plonk.NewCell(a0, 9)))
	assert.Equal(t, BOUND_OUTSIDE, bounds.Check(plonk.NewCell(a1, 0)))
}

func TestBounds_FixedEdges(t *testing.T) {
	f0 := plonk.NewColumn(plonk.FIXED, 0)
	f9 := plonk.NewColumn(plonk.FIXED, 9)
	//
	b := synthesis.NewGroupBuilder()
	b.Push("g", plonk.GroupKey{Type: "g"})
	commitRegion(t, b.Regions(), "r", f0, 0, 0)
	b.Pop()
	//
	groups := b.Finish()
	bounds := NewGroupBounds(groups[0])
	//
	var value fr.Element
	value.SetUint64(4)
	// Column touched by the region, any row.
	checked := bounds.CheckEdge(synthesis.FixedToConst(plonk.NewCell(f0, 100), value))
	assert.True(t, checked.Const)
	assert.Equal(t, BOUND_WITHIN, checked.From)
	//
	checked = bounds.CheckEdge(synthesis.FixedToConst(plonk.NewCell(f9, 0), value))
	assert.True(t, checked.Const)
	assert.Equal(t, BOUND_OUTSIDE, checked.From)
}
