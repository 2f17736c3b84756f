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

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// Expression is the polynomial AST captured during circuit configuration.
// Expressions are immutable trees built from queries against columns,
// selectors, challenges and constants.
type Expression interface {
	fmt.Stringer
	// Degree returns the multiplicative degree of this expression, which is
	// useful for sanity checking gates.
	Degree() uint
}

// Constant represents a literal field element.
type Constant struct{ Value fr.Element }

// SelectorExpr represents a query against a selector column.
type SelectorExpr struct{ Selector Selector }

// FixedQuery represents a query against a fixed column at a given rotation.
type FixedQuery struct {
	Column   Column
	Rotation Rotation
}

// AdviceQuery represents a query against an advice column at a given rotation.
type AdviceQuery struct {
	Column   Column
	Rotation Rotation
}

// InstanceQuery represents a query against an instance column at a given
// rotation.
type InstanceQuery struct {
	Column   Column
	Rotation Rotation
}

// ChallengeExpr represents the use of a verifier challenge.
type ChallengeExpr struct{ Challenge Challenge }

// Negated represents the additive inverse of its operand.
type Negated struct{ Expr Expression }

// Sum represents the addition of its two operands.
type Sum struct{ Lhs, Rhs Expression }

// Product represents the multiplication of its two operands.
type Product struct{ Lhs, Rhs Expression }

// Scaled represents its operand multiplied by a constant factor.
type Scaled struct {
	Expr  Expression
	Scale fr.Element
}

// NewConstant constructs a constant expression from a uint64.
func NewConstant(val uint64) Expression {
	var elem fr.Element
	//
	elem.SetUint64(val)
	//
	return Constant{elem}
}

// Neg negates the given expression.
func Neg(e Expression) Expression { return Negated{e} }

// Add sums the given expressions left to right.
func Add(exprs ...Expression) Expression {
	if len(exprs) == 0 {
		return NewConstant(0)
	}
	//
	acc := exprs[0]
	for _, e := range exprs[1:] {
		acc = Sum{acc, e}
	}
	//
	return acc
}

// Mul multiplies the given expressions left to right.
func Mul(exprs ...Expression) Expression {
	if len(exprs) == 0 {
		return NewConstant(1)
	}
	//
	acc := exprs[0]
	for _, e := range exprs[1:] {
		acc = Product{acc, e}
	}
	//
	return acc
}

// Sub subtracts rhs from lhs.
func Sub(lhs Expression, rhs Expression) Expression {
	return Sum{lhs, Negated{rhs}}
}

// Degree implementations.

// Degree of a constant is zero.
func (e Constant) Degree() uint { return 0 }

// Degree of a selector query is one.
func (e SelectorExpr) Degree() uint { return 1 }

// Degree of a fixed query is one.
func (e FixedQuery) Degree() uint { return 1 }

// Degree of an advice query is one.
func (e AdviceQuery) Degree() uint { return 1 }

// Degree of an instance query is one.
func (e InstanceQuery) Degree() uint { return 1 }

// Degree of a challenge is zero.
func (e ChallengeExpr) Degree() uint { return 0 }

// Degree of a negation is that of its operand.
func (e Negated) Degree() uint { return e.Expr.Degree() }

// Degree of a sum is the maximum of its operands.
func (e Sum) Degree() uint { return max(e.Lhs.Degree(), e.Rhs.Degree()) }

// Degree of a product is the sum of its operands.
func (e Product) Degree() uint { return e.Lhs.Degree() + e.Rhs.Degree() }

// Degree of a scaling is that of its operand.
func (e Scaled) Degree() uint { return e.Expr.Degree() }

func (e Constant) String() string      { return e.Value.String() }
func (e SelectorExpr) String() string  { return e.Selector.String() }
func (e FixedQuery) String() string    { return fmt.Sprintf("%s@%d", e.Column, e.Rotation) }
func (e AdviceQuery) String() string   { return fmt.Sprintf("%s@%d", e.Column, e.Rotation) }
func (e InstanceQuery) String() string { return fmt.Sprintf("%s@%d", e.Column, e.Rotation) }
func (e ChallengeExpr) String() string { return fmt.Sprintf("chall[%d]", e.Challenge.Index()) }
func (e Negated) String() string       { return fmt.Sprintf("(- %s)", e.Expr) }
func (e Sum) String() string           { return fmt.Sprintf("(+ %s %s)", e.Lhs, e.Rhs) }
func (e Product) String() string       { return fmt.Sprintf("(* %s %s)", e.Lhs, e.Rhs) }
func (e Scaled) String() string        { return fmt.Sprintf("(* %s %s)", e.Scale.String(), e.Expr) }

// FindSelectors returns the set of selectors queried anywhere within the given
// expression.
func FindSelectors(e Expression) map[Selector]bool {
	set := make(map[Selector]bool)
	findSelectors(e, set)
	//
	return set
}

func findSelectors(e Expression, set map[Selector]bool) {
	switch e := e.(type) {
	case SelectorExpr:
		set[e.Selector] = true
	case Negated:
		findSelectors(e.Expr, set)
	case Sum:
		findSelectors(e.Lhs, set)
		findSelectors(e.Rhs, set)
	case Product:
		findSelectors(e.Lhs, set)
		findSelectors(e.Rhs, set)
	case Scaled:
		findSelectors(e.Expr, set)
	}
}

// AsFixedQuery checks whether the given expression is exactly a fixed-column
// query, returning it if so.
func AsFixedQuery(e Expression) (FixedQuery, bool) {
	q, ok := e.(FixedQuery)
	return q, ok
}

// ContainsFixed checks whether the given expression queries any fixed column.
func ContainsFixed(e Expression) bool {
	switch e := e.(type) {
	case FixedQuery:
		return true
	case Negated:
		return ContainsFixed(e.Expr)
	case Sum:
		return ContainsFixed(e.Lhs) || ContainsFixed(e.Rhs)
	case Product:
		return ContainsFixed(e.Lhs) || ContainsFixed(e.Rhs)
	case Scaled:
		return ContainsFixed(e.Expr)
	}
	//
	return false
}
