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

package resolve

import (
	"fmt"

	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/plonk"
)

// GateScoped resolves queries positionally against the arity of a gate being
// turned into a standalone callable.  Selectors become the leading arguments,
// followed by the input queries; output queries become result fields.
type GateScoped struct {
	selectors []plonk.Selector
	queries   []plonk.AnyQuery
	outputs   []plonk.AnyQuery
}

// NewGateScoped constructs a resolver for a gate with the given arity.  The
// queries designated as outputs must be removed from the inputs by the
// caller beforehand.
func NewGateScoped(selectors []plonk.Selector, queries, outputs []plonk.AnyQuery) *GateScoped {
	return &GateScoped{
		selectors: selectors,
		queries:   queries,
		outputs:   outputs,
	}
}

// ResolveSelector resolves a selector to its position amongst the leading
// arguments.
func (r *GateScoped) ResolveSelector(sel plonk.Selector) (ResolvedSelector, error) {
	for i, s := range r.selectors {
		if s == sel {
			return ArgSelector(ir.Arg(uint(i))), nil
		}
	}
	//
	return ResolvedSelector{}, fmt.Errorf("%s is not an argument of this gate", sel)
}

// ResolveFixedQuery resolves a fixed query positionally.
func (r *GateScoped) ResolveFixedQuery(q plonk.FixedQuery) (ResolvedQuery, error) {
	return r.resolveQuery(plonk.AnyQuery{Column: q.Column, Rotation: q.Rotation})
}

// ResolveAdviceQuery resolves an advice query positionally.
func (r *GateScoped) ResolveAdviceQuery(q plonk.AdviceQuery) (ResolvedQuery, error) {
	return r.resolveQuery(plonk.AnyQuery{Column: q.Column, Rotation: q.Rotation})
}

// ResolveInstanceQuery resolves an instance query positionally.
func (r *GateScoped) ResolveInstanceQuery(q plonk.InstanceQuery) (ResolvedQuery, error) {
	return r.resolveQuery(plonk.AnyQuery{Column: q.Column, Rotation: q.Rotation})
}

func (r *GateScoped) resolveQuery(q plonk.AnyQuery) (ResolvedQuery, error) {
	for i, out := range r.outputs {
		if out == q {
			return IOQuery(ir.Field(uint(i))), nil
		}
	}
	// Input queries number after the selectors.
	for i, in := range r.queries {
		if in == q {
			return IOQuery(ir.Arg(uint(i + len(r.selectors)))), nil
		}
	}
	//
	return ResolvedQuery{}, fmt.Errorf("query %s is not an argument of this gate", q)
}
