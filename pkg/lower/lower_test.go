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
package lower

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/resolve"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// One advice input (a0, 0), one advice output (a1, 0), no instance io.
func testIO(t *testing.T) (adviceIO, instanceIO *plonk.CircuitIO) {
	a0 := plonk.NewColumn(plonk.ADVICE, 0)
	a1 := plonk.NewColumn(plonk.ADVICE, 1)
	//
	adviceIO, err := plonk.NewCircuitIO(plonk.ADVICE,
		[]plonk.Cell{plonk.NewCell(a0, 0)},
		[]plonk.Cell{plonk.NewCell(a1, 0)})
	require.NoError(t, err)
	//
	return adviceIO, plonk.EmptyCircuitIO(plonk.INSTANCE)
}

func TestExpr_LowersQueriesToArgsAndFields(t *testing.T) {
	adviceIO, instanceIO := testIO(t)
	a0 := plonk.NewColumn(plonk.ADVICE, 0)
	a1 := plonk.NewColumn(plonk.ADVICE, 1)
	r := resolve.NewRow(0, adviceIO, instanceIO, nil)
	//
	e := plonk.Sub(
		plonk.AdviceQuery{Column: a1, Rotation: plonk.ROT_CUR},
		plonk.Mul(plonk.AdviceQuery{Column: a0, Rotation: plonk.ROT_CUR}, plonk.NewConstant(2)))
	//
	lowered, err := Expr(e, r)
	require.NoError(t, err)
	//
	expected := ir.Add(
		ir.NewIOVar(ir.Field(0)),
		ir.Neg(ir.Mul(ir.NewIOVar(ir.Arg(0)), ir.NewConst(2))))
	assert.True(t, ir.EquivalentAexpr(expected, lowered), "got %s", lowered)
}

func TestExpr_SelectorLowersToLiteralInRegion(t *testing.T) {
	adviceIO, instanceIO := testIO(t)
	sel := plonk.NewSelector(0)
	//
	region := synthesis.NewRegionData("sq", 0)
	region.EnableSelector(sel, 1)
	//
	on := resolve.NewRegionRow(region, 1, adviceIO, instanceIO, nil)
	lowered, err := Expr(plonk.SelectorExpr{Selector: sel}, on)
	require.NoError(t, err)
	assert.True(t, ir.EquivalentAexpr(ir.NewConst(1), lowered))
	//
	off := resolve.NewRegionRow(region, 2, adviceIO, instanceIO, nil)
	lowered, err = Expr(plonk.SelectorExpr{Selector: sel}, off)
	require.NoError(t, err)
	assert.True(t, ir.EquivalentAexpr(ir.NewConst(0), lowered))
}

func TestExpr_ScaledBecomesProductByConstant(t *testing.T) {
	adviceIO, instanceIO := testIO(t)
	a0 := plonk.NewColumn(plonk.ADVICE, 0)
	r := resolve.NewRow(0, adviceIO, instanceIO, nil)
	//
	scaled := plonk.Mul(plonk.AdviceQuery{Column: a0, Rotation: plonk.ROT_CUR}, plonk.NewConstant(3))
	//
	lowered, err := Expr(scaled, r)
	require.NoError(t, err)
	//
	expected := ir.Mul(ir.NewIOVar(ir.Arg(0)), ir.NewConst(3))
	assert.True(t, ir.EquivalentAexpr(expected, lowered), "got %s", lowered)
}

func TestRewriteRec_FoldsNestedNegations(t *testing.T) {
	r := &ExpressionRewriter{
		OnNegated: func(e plonk.Negated) (plonk.Expression, error) {
			if inner, ok := e.Expr.(plonk.Negated); ok {
				return inner.Expr, nil
			}
			//
			return nil, nil
		},
	}
	//
	e := plonk.Neg(plonk.Neg(plonk.Neg(plonk.Neg(plonk.NewConstant(5)))))
	//
	rewritten, err := r.RewriteRec(e)
	require.NoError(t, err)
	assert.Equal(t, plonk.NewConstant(5), rewritten)
}

func TestRewriteRec_DivergentRewriteFailsLoudly(t *testing.T) {
	r := &ExpressionRewriter{
		OnConstant: func(e plonk.Constant) (plonk.Expression, error) {
			// Always produces a new node, never converges.
			return plonk.Neg(e), nil
		},
	}
	//
	_, err := r.RewriteRec(plonk.NewConstant(1))
	assert.ErrorIs(t, err, ErrRewriteNotConverged)
}

// matchByName matches gates with a fixed name and emits nothing.
type matchByName struct {
	name string
}

func (m *matchByName) Name() string { return "match-" + m.name }

func (m *matchByName) MatchAndRewrite(scope *GateScope) (ir.Stmt, error) {
	if scope.GateName() != m.name {
		return nil, ErrNoMatch
	}
	//
	return ir.Empty(), nil
}

// failing always reports a real error.
type failing struct{}

func (failing) Name() string { return "failing" }

func (failing) MatchAndRewrite(*GateScope) (ir.Stmt, error) {
	return nil, errors.New("boom")
}

func TestPatternSet_FirstMatchWins(t *testing.T) {
	adviceIO, instanceIO := testIO(t)
	a0 := plonk.NewColumn(plonk.ADVICE, 0)
	gate := plonk.NewGate("add", []plonk.Expression{a0.QueryCell(plonk.ROT_CUR)})
	//
	region := synthesis.NewRegionData("r", 0)
	region.UpdateExtent(a0, 0)
	//
	scope := NewGateScope(&gate, region, adviceIO, instanceIO, nil)
	//
	set := &PatternSet{patterns: []GatePattern{
		&matchByName{name: "mul"},
		&matchByName{name: "add"},
		failing{},
	}}
	//
	stmt, err := set.Apply(scope)
	require.NoError(t, err)
	assert.True(t, ir.IsEmpty(stmt))
}

func TestPatternSet_RealErrorsAccumulate(t *testing.T) {
	adviceIO, instanceIO := testIO(t)
	a0 := plonk.NewColumn(plonk.ADVICE, 0)
	gate := plonk.NewGate("add", []plonk.Expression{a0.QueryCell(plonk.ROT_CUR)})
	//
	region := synthesis.NewRegionData("r", 0)
	region.UpdateExtent(a0, 0)
	//
	scope := NewGateScope(&gate, region, adviceIO, instanceIO, nil)
	//
	set := &PatternSet{patterns: []GatePattern{failing{}, &matchByName{name: "mul"}}}
	//
	_, err := set.Apply(scope)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestPatternSet_NoMatchNamesGateAndRegion(t *testing.T) {
	adviceIO, instanceIO := testIO(t)
	a0 := plonk.NewColumn(plonk.ADVICE, 0)
	gate := plonk.NewGate("add", []plonk.Expression{a0.QueryCell(plonk.ROT_CUR)})
	//
	region := synthesis.NewRegionData("r", 0)
	region.UpdateExtent(a0, 0)
	//
	scope := NewGateScope(&gate, region, adviceIO, instanceIO, nil)
	//
	set := &PatternSet{patterns: []GatePattern{&matchByName{name: "mul"}}}
	//
	_, err := set.Apply(scope)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `gate "add"`)
}

func TestFallbackRewriter_SkipsDisabledRows(t *testing.T) {
	adviceIO, instanceIO := testIO(t)
	a0 := plonk.NewColumn(plonk.ADVICE, 0)
	sel := plonk.NewSelector(0)
	//
	poly := plonk.Mul(plonk.SelectorExpr{Selector: sel}, a0.QueryCell(plonk.ROT_CUR))
	gate := plonk.NewGate("guarded", []plonk.Expression{poly})
	// Two rows, the selector only enabled on the first.
	region := synthesis.NewRegionData("r", 0)
	region.UpdateExtent(a0, 0)
	region.UpdateExtent(a0, 1)
	region.EnableSelector(sel, 0)
	//
	scope := NewGateScope(&gate, region, adviceIO, instanceIO, nil)
	//
	skipping := &FallbackGateRewriter{ignoreDisabled: true}
	stmt, err := skipping.MatchAndRewrite(scope)
	require.NoError(t, err)
	assert.Len(t, ir.Leaves(stmt), 1)
	//
	keeping := &FallbackGateRewriter{}
	stmt, err = keeping.MatchAndRewrite(scope)
	require.NoError(t, err)
	assert.Len(t, ir.Leaves(stmt), 2)
}
