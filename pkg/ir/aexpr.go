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
package ir

import (
	"fmt"

	"github.com/Veridise/go-plonkir/pkg/plonk"
)

// Aexpr is an arithmetic expression of the intermediate representation.
// Unlike the polynomial AST captured at configure time, an Aexpr contains no
// queries: every column reference has already been resolved into either a
// constant or a variable identity.
type Aexpr interface {
	fmt.Stringer
	isAexpr()
}

// Const is a constant value.
type Const struct{ Value Felt }

// IOVar is a variable identity; an argument, output field, cell, etc.
type IOVar struct{ IO FuncIO }

// ChallengeVar is the use of a verifier challenge.
type ChallengeVar struct{ Challenge plonk.Challenge }

// Negated is the additive inverse of its operand.
type Negated struct{ Expr Aexpr }

// Sum is the addition of its two operands.
type Sum struct{ Lhs, Rhs Aexpr }

// Product is the multiplication of its two operands.
type Product struct{ Lhs, Rhs Aexpr }

func (e Const) isAexpr()        {}
func (e IOVar) isAexpr()        {}
func (e ChallengeVar) isAexpr() {}
func (e Negated) isAexpr()      {}
func (e Sum) isAexpr()          {}
func (e Product) isAexpr()      {}

// NewConst constructs a constant expression from a uint64.
func NewConst(val uint64) Aexpr {
	return Const{NewFelt(val)}
}

// NewIOVar wraps a variable identity as an expression.
func NewIOVar(io FuncIO) Aexpr {
	return IOVar{io}
}

// Neg negates the given expression.
func Neg(e Aexpr) Aexpr { return Negated{e} }

// Add sums the given expressions left to right.
func Add(exprs ...Aexpr) Aexpr {
	if len(exprs) == 0 {
		return NewConst(0)
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
func Mul(exprs ...Aexpr) Aexpr {
	if len(exprs) == 0 {
		return NewConst(1)
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
func Sub(lhs Aexpr, rhs Aexpr) Aexpr {
	return Sum{lhs, Negated{rhs}}
}

// ConstValue returns the value of the given expression if it is a constant.
func ConstValue(e Aexpr) (Felt, bool) {
	c, ok := e.(Const)
	return c.Value, ok
}

// ConstantFold folds every constant subexpression of the given expression
// modulo the given prime.  Beyond plain evaluation, the additive and
// multiplicative identities are applied and multiplication by minus one is
// turned into negation.
func ConstantFold(e Aexpr, prime Felt) Aexpr {
	switch e := e.(type) {
	case Const:
		return Const{e.Value.Mod(prime)}
	case IOVar, ChallengeVar:
		return e
	case Negated:
		expr := ConstantFold(e.Expr, prime)
		//
		if c, ok := ConstValue(expr); ok {
			if neg, ok := prime.Sub(c); ok {
				return Const{neg.Mod(prime)}
			}
		}
		//
		return Negated{expr}
	case Sum:
		return foldSum(ConstantFold(e.Lhs, prime), ConstantFold(e.Rhs, prime), prime)
	case Product:
		return foldProduct(ConstantFold(e.Lhs, prime), ConstantFold(e.Rhs, prime), prime)
	}
	//
	panic(fmt.Sprintf("unknown expression %T", e))
}

func foldSum(lhs Aexpr, rhs Aexpr, prime Felt) Aexpr {
	lc, lok := ConstValue(lhs)
	rc, rok := ConstValue(rhs)
	//
	switch {
	case lok && rok:
		return Const{lc.Add(rc).Mod(prime)}
	case rok && rc.IsZero():
		return lhs
	case lok && lc.IsZero():
		return rhs
	}
	//
	return Sum{lhs, rhs}
}

func foldProduct(lhs Aexpr, rhs Aexpr, prime Felt) Aexpr {
	minusOne, _ := prime.Sub(NewFelt(1))
	lc, lok := ConstValue(lhs)
	rc, rok := ConstValue(rhs)
	//
	switch {
	case lok && rok:
		return Const{lc.Mul(rc).Mod(prime)}
	// (* 1 X) => X
	case rok && rc.IsOne():
		return lhs
	case lok && lc.IsOne():
		return rhs
	// (* 0 X) => 0
	case rok && rc.IsZero():
		return Const{NewFelt(0)}
	case lok && lc.IsZero():
		return Const{NewFelt(0)}
	// (* -1 X) => (- X)
	case rok && rc.Equal(minusOne):
		return Negated{lhs}
	case lok && lc.Equal(minusOne):
		return Negated{rhs}
	}
	//
	return Product{lhs, rhs}
}

// TryMapIO rewrites every variable identity within the given expression,
// returning the rewritten expression.
func TryMapIO(e Aexpr, f func(FuncIO) (FuncIO, error)) (Aexpr, error) {
	switch e := e.(type) {
	case IOVar:
		io, err := f(e.IO)
		if err != nil {
			return nil, err
		}
		//
		return IOVar{io}, nil
	case Negated:
		expr, err := TryMapIO(e.Expr, f)
		if err != nil {
			return nil, err
		}
		//
		return Negated{expr}, nil
	case Sum:
		lhs, rhs, err := tryMapPair(e.Lhs, e.Rhs, f)
		if err != nil {
			return nil, err
		}
		//
		return Sum{lhs, rhs}, nil
	case Product:
		lhs, rhs, err := tryMapPair(e.Lhs, e.Rhs, f)
		if err != nil {
			return nil, err
		}
		//
		return Product{lhs, rhs}, nil
	}
	//
	return e, nil
}

func tryMapPair(lhs Aexpr, rhs Aexpr, f func(FuncIO) (FuncIO, error)) (Aexpr, Aexpr, error) {
	l, err := TryMapIO(lhs, f)
	if err != nil {
		return nil, nil, err
	}
	//
	r, err := TryMapIO(rhs, f)
	if err != nil {
		return nil, nil, err
	}
	//
	return l, r, nil
}

// EquivalentAexpr checks two arithmetic expressions for structural
// equivalence: same shape, equal constants and equal variable identities.
func EquivalentAexpr(lhs Aexpr, rhs Aexpr) bool {
	switch l := lhs.(type) {
	case Const:
		r, ok := rhs.(Const)
		return ok && l.Value.Equal(r.Value)
	case IOVar:
		r, ok := rhs.(IOVar)
		return ok && l.IO == r.IO
	case ChallengeVar:
		r, ok := rhs.(ChallengeVar)
		return ok && l.Challenge == r.Challenge
	case Negated:
		r, ok := rhs.(Negated)
		return ok && EquivalentAexpr(l.Expr, r.Expr)
	case Sum:
		r, ok := rhs.(Sum)
		return ok && EquivalentAexpr(l.Lhs, r.Lhs) && EquivalentAexpr(l.Rhs, r.Rhs)
	case Product:
		r, ok := rhs.(Product)
		return ok && EquivalentAexpr(l.Lhs, r.Lhs) && EquivalentAexpr(l.Rhs, r.Rhs)
	}
	//
	return false
}

func (e Const) String() string        { return e.Value.String() }
func (e IOVar) String() string        { return e.IO.String() }
func (e ChallengeVar) String() string { return fmt.Sprintf("(chall %d)", e.Challenge.Index()) }
func (e Negated) String() string      { return fmt.Sprintf("(- %s)", e.Expr) }
func (e Sum) String() string          { return fmt.Sprintf("(+ %s %s)", e.Lhs, e.Rhs) }
func (e Product) String() string      { return fmt.Sprintf("(* %s %s)", e.Lhs, e.Rhs) }
