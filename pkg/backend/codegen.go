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
	log "github.com/sirupsen/logrus"

	"github.com/Veridise/go-plonkir/pkg/lower"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// Codegen is the contract a target backend implements.  Strategies open a
// function scope with one of the Define methods, emit its body through the
// Lowering side of the contract, and close it with OnScopeEnd.
type Codegen[V any] interface {
	Lowering[V]

	// DefineMainFunction opens the scope of the circuit's entry point.
	DefineMainFunction(inputs, outputs uint) error
	// DefineFunction opens the scope of a callable function.
	DefineFunction(name string, inputs, outputs uint) error
	// DefineGateFunction opens the scope of a function abstracting one gate,
	// whose arguments are its selectors followed by its input queries and
	// whose results are its output queries.
	DefineGateFunction(name string, selectors, inputQueries, outputQueries uint) error
	// OnScopeEnd closes the currently open scope.
	OnScopeEnd() error
}

// Strategy decides how a synthesized circuit maps onto the target's
// functions.
type Strategy[V any] interface {
	// Name identifies the strategy in diagnostics.
	Name() string
	// Generate emits the whole circuit through the given backend.
	Generate(cg Codegen[V], syn *synthesis.CircuitSynthesis,
		gates lower.GateCallbacks, lookups LookupStrategy[V]) error
}

// Generate runs the given strategy over the circuit.
func Generate[V any](strat Strategy[V], cg Codegen[V], syn *synthesis.CircuitSynthesis,
	gates lower.GateCallbacks, lookups LookupStrategy[V]) error {
	//
	log.Debugf("generating code with strategy %q", strat.Name())
	//
	return strat.Generate(cg, syn, gates, lookups)
}

// scoped opens a scope, runs the body, and closes the scope when the body
// succeeds.
func scoped[V any](cg Codegen[V], open func() error, body func() error) error {
	if err := open(); err != nil {
		return err
	}
	//
	if err := body(); err != nil {
		return err
	}
	//
	return cg.OnScopeEnd()
}
