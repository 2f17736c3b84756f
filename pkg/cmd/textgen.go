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
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Veridise/go-plonkir/pkg/backend"
	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/plonk"
)

// textGenerator is a debugging backend which writes a readable listing of the
// generated functions and constraints.  It is only suitable for inspecting
// the compiler's output, not for consumption by a solver.
type textGenerator struct {
	out         io.Writer
	indent      uint
	constraints uint
}

func newTextGenerator(out io.Writer) *textGenerator {
	return &textGenerator{out: out}
}

func (g *textGenerator) line(format string, args ...any) error {
	pad := strings.Repeat("  ", int(g.indent))
	_, err := fmt.Fprintf(g.out, "%s%s\n", pad, fmt.Sprintf(format, args...))
	//
	return err
}

func (g *textGenerator) LowerConstant(value ir.Felt) (string, error) {
	return value.String(), nil
}

func (g *textGenerator) LowerIO(io ir.FuncIO) (string, error) {
	return io.String(), nil
}

func (g *textGenerator) LowerChallenge(c plonk.Challenge) (string, error) {
	return fmt.Sprintf("challenge(%d)", c.Index()), nil
}

func (g *textGenerator) LowerSum(lhs, rhs string) (string, error) {
	return fmt.Sprintf("(%s + %s)", lhs, rhs), nil
}

func (g *textGenerator) LowerProduct(lhs, rhs string) (string, error) {
	return fmt.Sprintf("(%s * %s)", lhs, rhs), nil
}

func (g *textGenerator) LowerNeg(e string) (string, error) {
	return fmt.Sprintf("(-%s)", e), nil
}

func (g *textGenerator) LowerCmp(op ir.CmpOp, lhs, rhs string) (string, error) {
	return fmt.Sprintf("(%s %s %s)", lhs, op, rhs), nil
}

func (g *textGenerator) LowerAnd(exprs []string) (string, error) {
	return "(and " + strings.Join(exprs, " ") + ")", nil
}

func (g *textGenerator) LowerOr(exprs []string) (string, error) {
	return "(or " + strings.Join(exprs, " ") + ")", nil
}

func (g *textGenerator) LowerNot(e string) (string, error) {
	return fmt.Sprintf("(not %s)", e), nil
}

func (g *textGenerator) LowerTrue() (string, error) { return "true", nil }

func (g *textGenerator) LowerFalse() (string, error) { return "false", nil }

func (g *textGenerator) GenerateConstraint(op ir.CmpOp, lhs, rhs string) error {
	g.constraints++
	return g.line("constrain %s %s %s", lhs, op, rhs)
}

func (g *textGenerator) NumConstraints() uint {
	return g.constraints
}

func (g *textGenerator) GenerateComment(text string) error {
	return g.line("; %s", text)
}

func (g *textGenerator) GenerateCall(callee string, inputs []string, outputs []ir.FuncIO) error {
	outs := make([]string, len(outputs))
	for i, out := range outputs {
		outs[i] = out.String()
	}
	//
	return g.line("call %s(%s) -> (%s)", callee, strings.Join(inputs, ", "), strings.Join(outs, ", "))
}

func (g *textGenerator) GenerateAssert(cond string) error {
	return g.line("assert %s", cond)
}

func (g *textGenerator) GenerateAssumeDeterministic(io ir.FuncIO) error {
	return g.line("assume-deterministic %s", io)
}

func (g *textGenerator) DefineMainFunction(inputs, outputs uint) error {
	if err := g.line("main (%d inputs, %d outputs) {", inputs, outputs); err != nil {
		return err
	}
	//
	g.indent++
	//
	return nil
}

func (g *textGenerator) DefineFunction(name string, inputs, outputs uint) error {
	if err := g.line("fn %s (%d inputs, %d outputs) {", name, inputs, outputs); err != nil {
		return err
	}
	//
	g.indent++
	//
	return nil
}

func (g *textGenerator) DefineGateFunction(name string, selectors, inputQueries, outputQueries uint) error {
	if err := g.line("gate %s (%d selectors, %d inputs, %d outputs) {", name,
		selectors, inputQueries, outputQueries); err != nil {
		return err
	}
	//
	g.indent++
	//
	return nil
}

func (g *textGenerator) OnScopeEnd() error {
	g.indent--
	return g.line("}")
}

var _ backend.Codegen[string] = (*textGenerator)(nil)
