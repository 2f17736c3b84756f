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

	log "github.com/sirupsen/logrus"

	"github.com/Veridise/go-plonkir/pkg/lower"
	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// Groups emits one function per synthesized group, merging groups whose
// lowered bodies are equivalent so each shape is defined once.
type Groups[V any] struct{}

// Name implements Strategy.
func (Groups[V]) Name() string {
	return "groups"
}

// Generate implements Strategy.
func (g Groups[V]) Generate(cg Codegen[V], syn *synthesis.CircuitSynthesis,
	gates lower.GateCallbacks, lookups LookupStrategy[V]) error {
	//
	circuit, err := lower.GenerateIR(syn, gates, lookups)
	if err != nil {
		return err
	}
	//
	if err := lookups.DefineModules(cg, syn); err != nil {
		return err
	}
	//
	leaders := dedupBodies(circuit.Bodies())
	//
	for _, body := range circuit.Bodies() {
		if body.IsMain() || leaders[body.ID()] != body {
			continue
		}
		//
		err := scoped(cg,
			func() error {
				return cg.DefineFunction(body.Name(), body.InputCount(), body.OutputCount())
			},
			func() error {
				return LowerStmt[V](cg, body.Stmts())
			})
		if err != nil {
			return err
		}
	}
	//
	main := circuit.Main()
	//
	return scoped(cg,
		func() error {
			return cg.DefineMainFunction(main.InputCount(), main.OutputCount())
		},
		func() error {
			return LowerStmt[V](cg, main.Stmts())
		})
}

// dedupBodies buckets the non-main bodies by group key, finds the equivalence
// classes within each bucket, gives every class leader a fresh name, and
// redirects callsites from merged bodies to their leader.  The result maps
// every body's ID to the body that now defines it.
func dedupBodies(bodies []*lower.GroupBody) map[uint]*lower.GroupBody {
	var (
		buckets = make(map[plonk.GroupKey][]*lower.GroupBody)
		order   []plonk.GroupKey
	)
	//
	for _, body := range bodies {
		if body.IsMain() {
			continue
		}
		//
		key := body.Key().Unwrap()
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		//
		buckets[key] = append(buckets[key], body)
	}
	//
	var (
		leaders = make(map[uint]*lower.GroupBody)
		used    = map[string]bool{"Main": true}
	)
	//
	for _, key := range order {
		for _, body := range buckets[key] {
			leader := body
			// First equivalent body wins; later ones fold into it.
			for _, candidate := range buckets[key] {
				if candidate == body {
					break
				}
				//
				if candidate.Equivalent(body) {
					leader = leaders[candidate.ID()]
					break
				}
			}
			//
			if leader == body {
				body.Rename(freshGroupName(body.Name(), used))
			} else {
				log.Debugf("group %d %q folds into %q", body.ID(), body.Name(), leader.Name())
			}
			//
			leaders[body.ID()] = leader
		}
	}
	// Point every callsite at the body that defines its callee.
	for _, body := range bodies {
		for _, cs := range body.Callsites() {
			if leader, ok := leaders[cs.CalleeID()]; ok {
				cs.Rename(leader.Name(), leader.ID())
			}
		}
	}
	//
	return leaders
}

// freshGroupName returns the first unused name in the sequence name, name1,
// name2, ... and marks it used.
func freshGroupName(name string, used map[string]bool) string {
	if !used[name] {
		used[name] = true
		return name
	}
	//
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s%d", name, n)
		//
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}

var _ Strategy[any] = Groups[any]{}
