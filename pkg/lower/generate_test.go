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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// mulCircuit multiplies two advice inputs into an advice output, with the
// first input copied from an instance cell.
type mulConfig struct {
	a, b, c  plonk.Column
	instance plonk.Column
	mul      plonk.Selector
}

type mulCircuit struct{}

func (mulCircuit) Configure(cs *plonk.ConstraintSystem) mulConfig {
	cfg := mulConfig{
		a:        cs.AdviceColumn(),
		b:        cs.AdviceColumn(),
		c:        cs.AdviceColumn(),
		instance: cs.InstanceColumn(),
		mul:      cs.NewSelector(),
	}
	//
	cs.CreateGate("mul", plonk.Mul(
		plonk.SelectorExpr{Selector: cfg.mul},
		plonk.Sub(
			plonk.Mul(cfg.a.QueryCell(plonk.ROT_CUR), cfg.b.QueryCell(plonk.ROT_CUR)),
			cfg.c.QueryCell(plonk.ROT_CUR))))
	//
	return cfg
}

func (mulCircuit) Synthesize(cfg mulConfig, l plonk.Layouter) error {
	if err := l.EnterRegionWithIndex("mul", 0); err != nil {
		return err
	}
	//
	if err := l.EnableSelector(cfg.mul, 0); err != nil {
		return err
	}
	//
	lhs, err := l.AssignAdvice("lhs", cfg.a, 0)
	if err != nil {
		return err
	}
	//
	if _, err := l.AssignAdvice("rhs", cfg.b, 0); err != nil {
		return err
	}
	//
	if _, err := l.AssignAdvice("out", cfg.c, 0); err != nil {
		return err
	}
	//
	l.ExitRegion()
	//
	return l.Copy(plonk.NewCell(cfg.instance, 0), lhs.Cell)
}

func (mulCircuit) AdviceIO(cfg mulConfig) (*plonk.CircuitIO, error) {
	return plonk.NewCircuitIO(plonk.ADVICE,
		[]plonk.Cell{plonk.NewCell(cfg.a, 0), plonk.NewCell(cfg.b, 0)},
		[]plonk.Cell{plonk.NewCell(cfg.c, 0)})
}

func (mulCircuit) InstanceIO(cfg mulConfig) (*plonk.CircuitIO, error) {
	return plonk.NewCircuitIO(plonk.INSTANCE,
		[]plonk.Cell{plonk.NewCell(cfg.instance, 0)}, nil)
}

func TestGenerateIR_SingleGroupCircuit(t *testing.T) {
	syn, err := synthesis.Synthesize[mulConfig](mulCircuit{})
	require.NoError(t, err)
	//
	circuit, err := GenerateIR(syn, &DefaultGateCallbacks{IgnoreDisabled: true}, IgnoreLookups{})
	require.NoError(t, err)
	//
	require.Len(t, circuit.Bodies(), 1)
	main := circuit.Main()
	assert.True(t, main.IsMain())
	// One instance input plus two advice inputs, one advice output.
	assert.Equal(t, uint(3), main.InputCount())
	assert.Equal(t, uint(1), main.OutputCount())
	//
	listing := ir.Listing(main.Stmts())
	assert.Contains(t, listing, "gate 'mul'")
	assert.Contains(t, listing, "Equality constraints")
}

func TestGenerateIR_CopyLowersToArgEquality(t *testing.T) {
	syn, err := synthesis.Synthesize[mulConfig](mulCircuit{})
	require.NoError(t, err)
	//
	circuit, err := GenerateIR(syn, &DefaultGateCallbacks{IgnoreDisabled: true}, IgnoreLookups{})
	require.NoError(t, err)
	// Instance args number before advice, so the copied pair is arg(0) and
	// arg(1).
	expected := ir.NewConstraint(ir.CMP_EQ,
		ir.NewIOVar(ir.Arg(0)), ir.NewIOVar(ir.Arg(1)))
	//
	found := false
	for _, leaf := range ir.Leaves(circuit.Main().Stmts()) {
		if ir.EquivalentStmt(leaf, expected) {
			found = true
		}
	}
	//
	assert.True(t, found, "no equality between arg(0) and arg(1) in:\n%s", ir.Listing(circuit.Main().Stmts()))
}

func TestSelectEqualityConstraints_TopLevelKeepsIOEdges(t *testing.T) {
	syn, err := synthesis.Synthesize[mulConfig](mulCircuit{})
	require.NoError(t, err)
	// The copy between the instance cell and the advice input joins two
	// circuit-level io cells.  There is no caller to enforce it, so the top
	// level must select it.
	selected, err := SelectEqualityConstraints(syn.TopLevelGroup(), syn.Constraints(), nil)
	require.NoError(t, err)
	//
	require.Len(t, selected, 1)
}

// squaresCircuit synthesizes the same squaring group twice, at different rows.
type squaresConfig struct {
	x, y plonk.Column
	sq   plonk.Selector
}

type squaresCircuit struct{}

func (squaresCircuit) Configure(cs *plonk.ConstraintSystem) squaresConfig {
	cfg := squaresConfig{
		x:  cs.AdviceColumn(),
		y:  cs.AdviceColumn(),
		sq: cs.NewSelector(),
	}
	//
	cs.CreateGate("square", plonk.Mul(
		plonk.SelectorExpr{Selector: cfg.sq},
		plonk.Sub(
			plonk.Mul(cfg.x.QueryCell(plonk.ROT_CUR), cfg.x.QueryCell(plonk.ROT_CUR)),
			cfg.y.QueryCell(plonk.ROT_CUR))))
	//
	return cfg
}

func (squaresCircuit) synthesizeOne(cfg squaresConfig, l plonk.Layouter, index, row uint) error {
	l.EnterGroup("square", plonk.GroupKey{Type: "square", Instance: 0})
	//
	if err := l.EnterRegionWithIndex("sq", index); err != nil {
		return err
	}
	//
	if err := l.EnableSelector(cfg.sq, row); err != nil {
		return err
	}
	//
	in, err := l.AssignAdvice("x", cfg.x, row)
	if err != nil {
		return err
	}
	//
	out, err := l.AssignAdvice("y", cfg.y, row)
	if err != nil {
		return err
	}
	//
	l.ExitRegion()
	//
	return l.ExitGroup(plonk.GroupIO{
		Inputs:  []plonk.AssignedCell{in},
		Outputs: []plonk.AssignedCell{out},
	})
}

func (c squaresCircuit) Synthesize(cfg squaresConfig, l plonk.Layouter) error {
	if err := c.synthesizeOne(cfg, l, 0, 0); err != nil {
		return err
	}
	//
	return c.synthesizeOne(cfg, l, 1, 1)
}

func (squaresCircuit) AdviceIO(squaresConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.ADVICE), nil
}

func (squaresCircuit) InstanceIO(squaresConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.INSTANCE), nil
}

func TestGenerateIR_GroupsLowerToCallsites(t *testing.T) {
	syn, err := synthesis.Synthesize[squaresConfig](squaresCircuit{})
	require.NoError(t, err)
	//
	circuit, err := GenerateIR(syn, &DefaultGateCallbacks{IgnoreDisabled: true}, IgnoreLookups{})
	require.NoError(t, err)
	//
	require.Len(t, circuit.Bodies(), 3)
	//
	main := circuit.Main()
	require.Len(t, main.Callsites(), 2)
	//
	for _, cs := range main.Callsites() {
		assert.Equal(t, "square", cs.Name())
	}
	//
	listing := ir.Listing(main.Stmts())
	assert.Contains(t, listing, "Calls to subgroups")
}

func TestGenerateIR_EquivalentGroupsCompareEqual(t *testing.T) {
	syn, err := synthesis.Synthesize[squaresConfig](squaresCircuit{})
	require.NoError(t, err)
	//
	circuit, err := GenerateIR(syn, &DefaultGateCallbacks{IgnoreDisabled: true}, IgnoreLookups{})
	require.NoError(t, err)
	//
	var squares []*GroupBody
	for _, body := range circuit.Bodies() {
		if !body.IsMain() {
			squares = append(squares, body)
		}
	}
	//
	require.Len(t, squares, 2)
	// The two instances square different rows, but relativization makes their
	// bodies indistinguishable.
	assert.True(t, squares[0].Equivalent(squares[1]))
	// The top level is never equivalent to anything.
	assert.False(t, circuit.Main().Equivalent(squares[0]))
}
