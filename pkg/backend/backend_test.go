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
package backend

import (
	"fmt"
	"strings"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/lower"
	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// textBackend emits a line-oriented textual form, enough to observe what the
// strategies generate.
type textBackend struct {
	lines       []string
	constraints uint
	// When set, GenerateConstraint silently drops constraints, to exercise the
	// emission check.
	dropConstraints bool
}

func (b *textBackend) emit(format string, args ...any) {
	b.lines = append(b.lines, fmt.Sprintf(format, args...))
}

func (b *textBackend) text() string {
	return strings.Join(b.lines, "\n")
}

func (b *textBackend) LowerConstant(value ir.Felt) (string, error) {
	return value.String(), nil
}

func (b *textBackend) LowerIO(io ir.FuncIO) (string, error) {
	return io.String(), nil
}

func (b *textBackend) LowerChallenge(c plonk.Challenge) (string, error) {
	return fmt.Sprintf("challenge(%d)", c.Index()), nil
}

func (b *textBackend) LowerSum(lhs, rhs string) (string, error) {
	return fmt.Sprintf("(%s + %s)", lhs, rhs), nil
}

func (b *textBackend) LowerProduct(lhs, rhs string) (string, error) {
	return fmt.Sprintf("(%s * %s)", lhs, rhs), nil
}

func (b *textBackend) LowerNeg(e string) (string, error) {
	return fmt.Sprintf("(-%s)", e), nil
}

func (b *textBackend) LowerCmp(op ir.CmpOp, lhs, rhs string) (string, error) {
	return fmt.Sprintf("(%s %s %s)", lhs, op, rhs), nil
}

func (b *textBackend) LowerAnd(exprs []string) (string, error) {
	return "and(" + strings.Join(exprs, ", ") + ")", nil
}

func (b *textBackend) LowerOr(exprs []string) (string, error) {
	return "or(" + strings.Join(exprs, ", ") + ")", nil
}

func (b *textBackend) LowerNot(e string) (string, error) {
	return fmt.Sprintf("not(%s)", e), nil
}

func (b *textBackend) LowerTrue() (string, error) { return "true", nil }

func (b *textBackend) LowerFalse() (string, error) { return "false", nil }

func (b *textBackend) GenerateConstraint(op ir.CmpOp, lhs, rhs string) error {
	if b.dropConstraints {
		return nil
	}
	//
	b.constraints++
	b.emit("constrain %s %s %s", lhs, op, rhs)
	//
	return nil
}

func (b *textBackend) NumConstraints() uint {
	return b.constraints
}

func (b *textBackend) GenerateComment(text string) error {
	b.emit("; %s", text)
	return nil
}

func (b *textBackend) GenerateCall(callee string, inputs []string, outputs []ir.FuncIO) error {
	outs := make([]string, len(outputs))
	for i, out := range outputs {
		outs[i] = out.String()
	}
	//
	b.emit("call %s(%s) -> (%s)", callee, strings.Join(inputs, ", "), strings.Join(outs, ", "))
	//
	return nil
}

func (b *textBackend) GenerateAssert(cond string) error {
	b.emit("assert %s", cond)
	return nil
}

func (b *textBackend) GenerateAssumeDeterministic(io ir.FuncIO) error {
	b.emit("assume-deterministic %s", io)
	return nil
}

func (b *textBackend) DefineMainFunction(inputs, outputs uint) error {
	b.emit("def Main(%d in, %d out)", inputs, outputs)
	return nil
}

func (b *textBackend) DefineFunction(name string, inputs, outputs uint) error {
	b.emit("def %s(%d in, %d out)", name, inputs, outputs)
	return nil
}

func (b *textBackend) DefineGateFunction(name string, selectors, inputQueries, outputQueries uint) error {
	b.emit("def gate %s(%d sel, %d in, %d out)", name, selectors, inputQueries, outputQueries)
	return nil
}

func (b *textBackend) OnScopeEnd() error {
	b.emit("end")
	return nil
}

var _ Codegen[string] = (*textBackend)(nil)

// mulCircuit constrains c = a * b over three advice cells.
type mulConfig struct {
	a, b, c plonk.Column
	mul     plonk.Selector
}

type mulCircuit struct{}

func (mulCircuit) Configure(cs *plonk.ConstraintSystem) mulConfig {
	cfg := mulConfig{
		a:   cs.AdviceColumn(),
		b:   cs.AdviceColumn(),
		c:   cs.AdviceColumn(),
		mul: cs.NewSelector(),
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
	for name, col := range map[string]plonk.Column{"lhs": cfg.a, "rhs": cfg.b, "out": cfg.c} {
		if _, err := l.AssignAdvice(name, col, 0); err != nil {
			return err
		}
	}
	//
	l.ExitRegion()
	//
	return nil
}

func (mulCircuit) AdviceIO(cfg mulConfig) (*plonk.CircuitIO, error) {
	return plonk.NewCircuitIO(plonk.ADVICE,
		[]plonk.Cell{plonk.NewCell(cfg.a, 0), plonk.NewCell(cfg.b, 0)},
		[]plonk.Cell{plonk.NewCell(cfg.c, 0)})
}

func (mulCircuit) InstanceIO(mulConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.INSTANCE), nil
}

// squaresCircuit instantiates the same squaring group twice at different rows.
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

func (c squaresCircuit) Synthesize(cfg squaresConfig, l plonk.Layouter) error {
	for row := uint(0); row < 2; row++ {
		l.EnterGroup("square", plonk.GroupKey{Type: "square"})
		//
		if err := l.EnterRegionWithIndex("sq", row); err != nil {
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
		if err := l.ExitGroup(plonk.GroupIO{
			Inputs:  []plonk.AssignedCell{in},
			Outputs: []plonk.AssignedCell{out},
		}); err != nil {
			return err
		}
	}
	//
	return nil
}

func (squaresCircuit) AdviceIO(squaresConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.ADVICE), nil
}

func (squaresCircuit) InstanceIO(squaresConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.INSTANCE), nil
}

// rangeCircuit looks an advice cell up in a two-row fixed table.
type rangeConfig struct {
	x plonk.Column
	t plonk.Column
}

type rangeCircuit struct{}

func (rangeCircuit) Configure(cs *plonk.ConstraintSystem) rangeConfig {
	cfg := rangeConfig{
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

func (rangeCircuit) Synthesize(cfg rangeConfig, l plonk.Layouter) error {
	l.EnterRegion("table")
	//
	if err := l.AssignFixed(cfg.t, 0, fr.NewElement(1)); err != nil {
		return err
	}
	//
	if err := l.AssignFixed(cfg.t, 1, fr.NewElement(2)); err != nil {
		return err
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

func (rangeCircuit) AdviceIO(cfg rangeConfig) (*plonk.CircuitIO, error) {
	return plonk.NewCircuitIO(plonk.ADVICE,
		[]plonk.Cell{plonk.NewCell(cfg.x, 0)}, nil)
}

func (rangeCircuit) InstanceIO(rangeConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.INSTANCE), nil
}

// pairRangeCircuit range-checks two advice cells against the same fixed
// table, through two separate lookups.
type pairRangeConfig struct {
	x1, x2 plonk.Column
	t      plonk.Column
}

type pairRangeCircuit struct{}

func (pairRangeCircuit) Configure(cs *plonk.ConstraintSystem) pairRangeConfig {
	cfg := pairRangeConfig{
		x1: cs.AdviceColumn(),
		x2: cs.AdviceColumn(),
		t:  cs.FixedColumn(),
	}
	//
	for _, col := range []plonk.Column{cfg.x1, cfg.x2} {
		if err := cs.AddLookup("range",
			[]plonk.Expression{col.QueryCell(plonk.ROT_CUR)},
			[]plonk.Expression{cfg.t.QueryCell(plonk.ROT_CUR)}); err != nil {
			panic(err)
		}
	}
	//
	return cfg
}

func (pairRangeCircuit) Synthesize(cfg pairRangeConfig, l plonk.Layouter) error {
	l.EnterRegion("table")
	//
	if err := l.AssignFixed(cfg.t, 0, fr.NewElement(1)); err != nil {
		return err
	}
	//
	l.MarkTable()
	l.ExitRegion()
	//
	if err := l.EnterRegionWithIndex("use", 0); err != nil {
		return err
	}
	//
	for name, col := range map[string]plonk.Column{"x1": cfg.x1, "x2": cfg.x2} {
		if _, err := l.AssignAdvice(name, col, 0); err != nil {
			return err
		}
	}
	//
	l.ExitRegion()
	//
	return nil
}

func (pairRangeCircuit) AdviceIO(cfg pairRangeConfig) (*plonk.CircuitIO, error) {
	return plonk.NewCircuitIO(plonk.ADVICE,
		[]plonk.Cell{plonk.NewCell(cfg.x1, 0), plonk.NewCell(cfg.x2, 0)}, nil)
}

func (pairRangeCircuit) InstanceIO(pairRangeConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.INSTANCE), nil
}

func synthesize[C any](t *testing.T, circuit plonk.Circuit[C]) *synthesis.CircuitSynthesis {
	t.Helper()
	//
	syn, err := synthesis.Synthesize[C](circuit)
	require.NoError(t, err)
	//
	return syn
}

func TestInline_EmitsSingleMain(t *testing.T) {
	syn := synthesize[mulConfig](t, mulCircuit{})
	target := &textBackend{}
	//
	err := Generate[string](Inline[string]{}, target, syn,
		&lower.DefaultGateCallbacks{IgnoreDisabled: true}, RejectLookups[string]{})
	require.NoError(t, err)
	//
	text := target.text()
	assert.Contains(t, text, "def Main(2 in, 1 out)")
	assert.Contains(t, text, "gate 'mul'")
	assert.Contains(t, text, "constrain")
	// One function only.
	assert.Equal(t, 1, strings.Count(text, "def "))
	assert.Equal(t, 1, strings.Count(text, "end"))
}

func TestCallGates_DefinesGateFunctions(t *testing.T) {
	syn := synthesize[mulConfig](t, mulCircuit{})
	target := &textBackend{}
	//
	err := Generate[string](CallGates[string]{}, target, syn,
		&lower.DefaultGateCallbacks{}, RejectLookups[string]{})
	require.NoError(t, err)
	//
	text := target.text()
	// One selector and three queries.
	assert.Contains(t, text, "def gate mul(1 sel, 3 in, 0 out)")
	assert.Contains(t, text, "def Main(2 in, 1 out)")
	assert.Contains(t, text, "call mul(")
}

func TestGroups_MergesEquivalentGroups(t *testing.T) {
	syn := synthesize[squaresConfig](t, squaresCircuit{})
	target := &textBackend{}
	//
	err := Generate[string](Groups[string]{}, target, syn,
		&lower.DefaultGateCallbacks{IgnoreDisabled: true}, RejectLookups[string]{})
	require.NoError(t, err)
	//
	text := target.text()
	// The two instantiations collapse into one definition, called twice.
	assert.Equal(t, 1, strings.Count(text, "def square(1 in, 1 out)"))
	assert.Equal(t, 2, strings.Count(text, "call square("))
	assert.Contains(t, text, "def Main(0 in, 0 out)")
}

func TestGroups_DistinctKeysStayDistinct(t *testing.T) {
	syn := synthesize[squaresConfig](t, squaresCircuit{})
	//
	circuit, err := lower.GenerateIR(syn, &lower.DefaultGateCallbacks{IgnoreDisabled: true}, lower.IgnoreLookups{})
	require.NoError(t, err)
	//
	leaders := dedupBodies(circuit.Bodies())
	// Both bodies share one leader.
	var ids []uint
	for _, body := range circuit.Bodies() {
		if !body.IsMain() {
			ids = append(ids, leaders[body.ID()].ID())
		}
	}
	//
	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1])
}

func TestLookupAsRowConstraint_AssertsTableMembership(t *testing.T) {
	syn := synthesize[rangeConfig](t, rangeCircuit{})
	target := &textBackend{}
	//
	err := Generate[string](Inline[string]{}, target, syn,
		&lower.DefaultGateCallbacks{IgnoreDisabled: true}, AsRowConstraint[string]{})
	require.NoError(t, err)
	//
	text := target.text()
	assert.Contains(t, text, "Lookup 0 'range'")
	assert.Contains(t, text, "assert or(")
	assert.Contains(t, text, "(1 == arg(0))")
	assert.Contains(t, text, "(2 == arg(0))")
}

func TestLookupAsModule_SharesOneModulePerKind(t *testing.T) {
	syn := synthesize[rangeConfig](t, rangeCircuit{})
	target := &textBackend{}
	//
	err := Generate[string](Inline[string]{}, target, syn,
		&lower.DefaultGateCallbacks{IgnoreDisabled: true}, &AsModule[string]{})
	require.NoError(t, err)
	//
	text := target.text()
	assert.Contains(t, text, "def lookup_f0(0 in, 1 out)")
	assert.Contains(t, text, "assume-deterministic field(0)")
	assert.Contains(t, text, "call lookup_f0(")
	// The call output is bound to the looked-up expression.
	assert.Contains(t, text, "constrain lookup(0, 0, 0, 0) == arg(0)")
}

func TestLookupAsModule_SameKindLookupsShareDefinition(t *testing.T) {
	syn := synthesize[pairRangeConfig](t, pairRangeCircuit{})
	target := &textBackend{}
	//
	err := Generate[string](Inline[string]{}, target, syn,
		&lower.DefaultGateCallbacks{IgnoreDisabled: true}, &AsModule[string]{})
	require.NoError(t, err)
	//
	text := target.text()
	// One definition, one call per lookup.
	assert.Equal(t, 1, strings.Count(text, "def lookup_f0(0 in, 1 out)"))
	assert.Equal(t, 2, strings.Count(text, "call lookup_f0("))
	// Each call binds its own table-lookup identity.
	assert.Contains(t, text, "lookup(0, 0, 0, 0)")
	assert.Contains(t, text, "lookup(1, 0, 0, 0)")
}

func TestCheckedConstraint_DetectsDroppedConstraints(t *testing.T) {
	target := &textBackend{dropConstraints: true}
	//
	err := CheckedConstraint[string](target, ir.CMP_EQ, "a", "b")
	assert.ErrorIs(t, err, ErrConstraintNotGenerated)
}
