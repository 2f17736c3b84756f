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
	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/lower"
	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/resolve"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// CallGates abstracts each gate into its own function, whose arguments are
// the gate's selectors followed by its queries.  The main function calls the
// gate function once per region row, passing the resolved selector literals
// and cell values.
type CallGates[V any] struct{}

// Name implements Strategy.
func (CallGates[V]) Name() string {
	return "call-gates"
}

// Generate implements Strategy.
func (c CallGates[V]) Generate(cg Codegen[V], syn *synthesis.CircuitSynthesis,
	gates lower.GateCallbacks, lookups LookupStrategy[V]) error {
	//
	if err := lookups.DefineModules(cg, syn); err != nil {
		return err
	}
	//
	allGates := syn.Gates()
	//
	for i := range allGates {
		if err := c.defineGate(cg, &allGates[i]); err != nil {
			return err
		}
	}
	//
	var (
		advice   = syn.AdviceIO()
		instance = syn.InstanceIO()
		regions  = allRegions(syn)
	)
	//
	calls, err := c.gateCalls(allGates, regions, advice, instance, syn.FixedData())
	if err != nil {
		return err
	}
	//
	lookupStmts, err := lower.LowerLookups(syn, regions, lookups, advice, instance)
	if err != nil {
		return err
	}
	//
	eqStmts, err := lower.InterRegionConstraints(syn.Constraints().Edges(), advice, instance, syn.FixedData())
	if err != nil {
		return err
	}
	//
	body, err := ir.ConstantFoldStmt(ir.NewSeq(calls, lookupStmts, eqStmts), ir.Prime())
	if err != nil {
		return err
	}
	//
	return scoped(cg,
		func() error {
			return cg.DefineMainFunction(ioInputs(advice, instance), ioOutputs(advice, instance))
		},
		func() error {
			return LowerStmt[V](cg, ir.CanonicalizeStmt(body))
		})
}

// defineGate emits one function constraining every polynomial of the gate to
// zero, with selectors and queries as positional arguments.
func (CallGates[V]) defineGate(cg Codegen[V], gate *plonk.Gate) error {
	selectors, queries := plonk.GateArity(gate.Polynomials())
	r := resolve.NewGateScoped(selectors, queries, nil)
	//
	var stmts []ir.Stmt
	//
	for _, poly := range gate.Polynomials() {
		lowered, err := lower.Expr(poly, r)
		if err != nil {
			return err
		}
		//
		stmts = append(stmts, ir.NewConstraint(ir.CMP_EQ, lowered, ir.NewConst(0)))
	}
	//
	return scoped(cg,
		func() error {
			return cg.DefineGateFunction(gate.Name(), uint(len(selectors)), uint(len(queries)), 0)
		},
		func() error {
			return LowerStmt[V](cg, ir.NewSeq(stmts...))
		})
}

// gateCalls emits one call per (gate, region row), with the selector literals
// and resolved queries of that row as arguments.
func (CallGates[V]) gateCalls(gates []plonk.Gate, regions []*synthesis.RegionData,
	advice, instance *plonk.CircuitIO, fixed resolve.FixedResolver) (ir.Stmt, error) {
	//
	var stmts []ir.Stmt
	//
	for _, region := range regions {
		for i := range gates {
			gate := &gates[i]
			selectors, queries := plonk.GateArity(gate.Polynomials())
			//
			var err error
			//
			region.RowRange(func(row uint) {
				if err != nil {
					return
				}
				//
				rr := resolve.NewRegionRow(region, row, advice, instance, fixed)
				//
				inputs, lowerErr := lower.Selectors(selectors, rr)
				if lowerErr != nil {
					err = lowerErr
					return
				}
				//
				resolved, lowerErr := lower.AnyQueries(queries, rr)
				if lowerErr != nil {
					err = lowerErr
					return
				}
				//
				stmts = append(stmts, ir.NewCall(gate.Name(), append(inputs, resolved...), nil))
			})
			//
			if err != nil {
				return nil, err
			}
		}
	}
	//
	return ir.NewSeq(stmts...), nil
}

var _ Strategy[any] = CallGates[any]{}
