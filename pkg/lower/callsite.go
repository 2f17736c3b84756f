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
	"fmt"

	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/resolve"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// CallSite is one call from a group body to a child group, with the argument
// cells already lowered in the caller's scope.
type CallSite struct {
	name       string
	calleeKey  plonk.GroupKey
	calleeID   uint
	inputs     []ir.Aexpr
	outputs    []ir.Aexpr
	outputVars []ir.FuncIO
}

// NewCallSite lowers the callee's io cells in the caller's scope.  The
// callee's inputs plus the free cells lifted to this callsite become call
// arguments, and each callee output binds to a fresh call-output variable.
func NewCallSite(callNo, calleeID uint, callee *synthesis.Group, extra []synthesis.GroupCell,
	caller *GroupContext, regions map[uint]*synthesis.RegionData,
	fixed resolve.FixedResolver) (*CallSite, error) {
	//
	if callee.IsTopLevel() {
		return nil, fmt.Errorf("cannot call top-level group %q", callee.Name())
	}
	//
	cells := callee.Inputs()
	cells = append(cells[:len(cells):len(cells)], extra...)
	//
	inputs, err := cellsToExprs(cells, caller, regions, fixed)
	if err != nil {
		return nil, fmt.Errorf("callsite %q inputs: %w", callee.Name(), err)
	}
	//
	outputs, err := cellsToExprs(callee.Outputs(), caller, regions, fixed)
	if err != nil {
		return nil, fmt.Errorf("callsite %q outputs: %w", callee.Name(), err)
	}
	//
	outputVars := make([]ir.FuncIO, len(outputs))
	for n := range outputs {
		outputVars[n] = ir.CallOutput(callNo, uint(n))
	}
	//
	return &CallSite{
		name:       callee.Name(),
		calleeKey:  callee.Key().Unwrap(),
		calleeID:   calleeID,
		inputs:     inputs,
		outputs:    outputs,
		outputVars: outputVars,
	}, nil
}

// Name returns the callee's name.
func (c *CallSite) Name() string {
	return c.name
}

// CalleeKey returns the key of the called group.
func (c *CallSite) CalleeKey() plonk.GroupKey {
	return c.calleeKey
}

// CalleeID returns the index of the called group.
func (c *CallSite) CalleeID() uint {
	return c.calleeID
}

// Rename points the callsite at a renamed callee.
func (c *CallSite) Rename(name string, calleeID uint) {
	c.name = name
	c.calleeID = calleeID
}

// Stmts emits the call followed by constraints binding each caller-side
// output expression to the corresponding call output.
func (c *CallSite) Stmts() ir.Stmt {
	stmts := []ir.Stmt{ir.NewCall(c.name, c.inputs, c.outputVars)}
	//
	for i, out := range c.outputs {
		stmts = append(stmts, ir.NewConstraint(ir.CMP_EQ, out, ir.NewIOVar(c.outputVars[i])))
	}
	//
	return ir.NewSeq(stmts...)
}

// Equivalent reports whether two callsites call the same kind of group with
// equivalent arguments.
func (c *CallSite) Equivalent(o *CallSite) bool {
	if c.calleeKey != o.calleeKey {
		return false
	}
	//
	return equivalentAexprs(c.inputs, o.inputs) && equivalentAexprs(c.outputs, o.outputs)
}

// TryMapIO rewrites every io variable of the callsite's expressions.
func (c *CallSite) TryMapIO(fn func(ir.FuncIO) (ir.FuncIO, error)) error {
	if err := tryMapAexprsIO(c.inputs, fn); err != nil {
		return err
	}
	//
	return tryMapAexprsIO(c.outputs, fn)
}

// Fold constant-folds the callsite's expressions modulo the given prime.
func (c *CallSite) Fold(prime ir.Felt) {
	for i, e := range c.inputs {
		c.inputs[i] = ir.ConstantFold(e, prime)
	}
	//
	for i, e := range c.outputs {
		c.outputs[i] = ir.ConstantFold(e, prime)
	}
}

func equivalentAexprs(lhs, rhs []ir.Aexpr) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if !ir.EquivalentAexpr(lhs[i], rhs[i]) {
			return false
		}
	}
	//
	return true
}

func tryMapAexprsIO(exprs []ir.Aexpr, fn func(ir.FuncIO) (ir.FuncIO, error)) error {
	for i, e := range exprs {
		mapped, err := ir.TryMapIO(e, fn)
		if err != nil {
			return err
		}
		//
		exprs[i] = mapped
	}
	//
	return nil
}

// cellsToExprs lowers each cell's column query at the cell's row, scoped to
// the cell's region when synthesis recorded one.
func cellsToExprs(cells []synthesis.GroupCell, caller *GroupContext,
	regions map[uint]*synthesis.RegionData, fixed resolve.FixedResolver) ([]ir.Aexpr, error) {
	//
	exprs := make([]ir.Aexpr, 0, len(cells))
	//
	for _, cell := range cells {
		var r resolve.Resolver
		//
		if cell.RegionIndex().HasValue() {
			idx := cell.RegionIndex().Unwrap()
			//
			region, found := regions[idx]
			if !found {
				return nil, fmt.Errorf("cell %s references unknown region %d", cell, idx)
			}
			//
			r = resolve.NewRegionRow(region, cell.Row(), caller.AdviceIO(), caller.InstanceIO(), fixed)
		} else {
			r = resolve.NewRow(cell.Row(), caller.AdviceIO(), caller.InstanceIO(), fixed)
		}
		//
		expr, err := Expr(cell.ToExpr(), r)
		if err != nil {
			return nil, err
		}
		//
		exprs = append(exprs, expr)
	}
	//
	return exprs, nil
}
