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
package plonk

import "fmt"

// Gate is a named list of polynomials which must all vanish on every row
// where the gate is active.
type Gate struct {
	name        string
	polynomials []Expression
}

// NewGate constructs a gate with the given name and polynomials.
func NewGate(name string, polynomials []Expression) Gate {
	return Gate{name, polynomials}
}

// Name returns the name assigned to this gate.
func (g *Gate) Name() string {
	return g.name
}

// Polynomials returns the polynomials of this gate.
func (g *Gate) Polynomials() []Expression {
	return g.polynomials
}

// AnyQuery is a kind-erased column query, used when computing the formal
// arguments a gate requires.
type AnyQuery struct {
	Column   Column
	Rotation Rotation
}

func (q AnyQuery) String() string {
	return fmt.Sprintf("%s@%d", q.Column, q.Rotation)
}

// QueryOf erases the kind of a query expression.  Returns false if the given
// expression is not a column query.
func QueryOf(e Expression) (AnyQuery, bool) {
	switch e := e.(type) {
	case FixedQuery:
		return AnyQuery{e.Column, e.Rotation}, true
	case AdviceQuery:
		return AnyQuery{e.Column, e.Rotation}, true
	case InstanceQuery:
		return AnyQuery{e.Column, e.Rotation}, true
	}
	//
	return AnyQuery{}, false
}

// GateArity determines the formal arguments required to evaluate the given
// polynomials in isolation: the distinct selectors queried, followed by the
// distinct column queries, both in first-appearance order.  That order is
// load bearing, since it determines argument numbering when a gate is turned
// into a standalone callable.
func GateArity(polynomials []Expression) ([]Selector, []AnyQuery) {
	var (
		selectors []Selector
		queries   []AnyQuery
		seenSels  = make(map[Selector]bool)
		seenQs    = make(map[AnyQuery]bool)
	)
	//
	for _, p := range polynomials {
		collectArity(p, &selectors, &queries, seenSels, seenQs)
	}
	//
	return selectors, queries
}

func collectArity(e Expression, selectors *[]Selector, queries *[]AnyQuery,
	seenSels map[Selector]bool, seenQs map[AnyQuery]bool) {
	//
	switch e := e.(type) {
	case SelectorExpr:
		if !seenSels[e.Selector] {
			seenSels[e.Selector] = true
			*selectors = append(*selectors, e.Selector)
		}
	case FixedQuery, AdviceQuery, InstanceQuery:
		q, _ := QueryOf(e)
		if !seenQs[q] {
			seenQs[q] = true
			*queries = append(*queries, q)
		}
	case Negated:
		collectArity(e.Expr, selectors, queries, seenSels, seenQs)
	case Sum:
		collectArity(e.Lhs, selectors, queries, seenSels, seenQs)
		collectArity(e.Rhs, selectors, queries, seenSels, seenQs)
	case Product:
		collectArity(e.Lhs, selectors, queries, seenSels, seenQs)
		collectArity(e.Rhs, selectors, queries, seenSels, seenQs)
	case Scaled:
		collectArity(e.Expr, selectors, queries, seenSels, seenQs)
	}
}
