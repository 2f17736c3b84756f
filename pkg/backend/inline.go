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
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// Inline emits the whole circuit as one main function: every gate at every
// region row, every lookup, and every equality constraint, ignoring group
// structure.
type Inline[V any] struct{}

// Name implements Strategy.
func (Inline[V]) Name() string {
	return "inline"
}

// Generate implements Strategy.
func (Inline[V]) Generate(cg Codegen[V], syn *synthesis.CircuitSynthesis,
	gates lower.GateCallbacks, lookups LookupStrategy[V]) error {
	//
	if err := lookups.DefineModules(cg, syn); err != nil {
		return err
	}
	//
	var (
		patterns = lower.LoadPatterns(gates)
		advice   = syn.AdviceIO()
		instance = syn.InstanceIO()
		regions  = allRegions(syn)
	)
	//
	gateStmts, err := lower.LowerGates(syn.Gates(), regions, patterns, advice, instance, syn.FixedData())
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
	body, err := ir.ConstantFoldStmt(ir.NewSeq(gateStmts, lookupStmts, eqStmts), ir.Prime())
	if err != nil {
		return err
	}
	//
	body = ir.CanonicalizeStmt(body)
	//
	return scoped(cg,
		func() error {
			return cg.DefineMainFunction(ioInputs(advice, instance), ioOutputs(advice, instance))
		},
		func() error {
			return LowerStmt[V](cg, body)
		})
}

// allRegions collects every committed region across the circuit's groups.
func allRegions(syn *synthesis.CircuitSynthesis) []*synthesis.RegionData {
	var regions []*synthesis.RegionData
	//
	for _, group := range syn.Groups() {
		regions = append(regions, group.Regions()...)
	}
	//
	return regions
}

func ioInputs(advice, instance *plonk.CircuitIO) uint {
	return uint(len(advice.Inputs()) + len(instance.Inputs()))
}

func ioOutputs(advice, instance *plonk.CircuitIO) uint {
	return uint(len(advice.Outputs()) + len(instance.Outputs()))
}

var _ Strategy[any] = Inline[any]{}
