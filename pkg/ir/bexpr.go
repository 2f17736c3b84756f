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
	"strings"
)

// Bexpr is a boolean expression over arithmetic expressions.
type Bexpr interface {
	fmt.Stringer
	isBexpr()
}

// True is the boolean literal true.
type True struct{}

// False is the boolean literal false.
type False struct{}

// Cmp compares two arithmetic expressions.
type Cmp struct {
	Op  CmpOp
	Lhs Aexpr
	Rhs Aexpr
}

// And is the conjunction of its operands.
type And struct{ Exprs []Bexpr }

// Or is the disjunction of its operands.
type Or struct{ Exprs []Bexpr }

// Not is the negation of its operand.
type Not struct{ Expr Bexpr }

func (e True) isBexpr()  {}
func (e False) isBexpr() {}
func (e Cmp) isBexpr()   {}
func (e And) isBexpr()   {}
func (e Or) isBexpr()    {}
func (e Not) isBexpr()   {}

// FromBool converts a Go boolean into the corresponding literal.
func FromBool(b bool) Bexpr {
	if b {
		return True{}
	}
	//
	return False{}
}

// Eq builds an equality comparison between two expressions.
func Eq(lhs Aexpr, rhs Aexpr) Bexpr {
	return Cmp{CMP_EQ, lhs, rhs}
}

// AndOf conjoins the given expressions, splicing nested conjunctions.
func AndOf(exprs ...Bexpr) Bexpr {
	var operands []Bexpr
	//
	for _, e := range exprs {
		if a, ok := e.(And); ok {
			operands = append(operands, a.Exprs...)
		} else {
			operands = append(operands, e)
		}
	}
	//
	return And{operands}
}

// OrOf disjoins the given expressions, splicing nested disjunctions.
func OrOf(exprs ...Bexpr) Bexpr {
	var operands []Bexpr
	//
	for _, e := range exprs {
		if o, ok := e.(Or); ok {
			operands = append(operands, o.Exprs...)
		} else {
			operands = append(operands, e)
		}
	}
	//
	return Or{operands}
}

// NotOf negates the given expression, eliminating double negation.
func NotOf(e Bexpr) Bexpr {
	if n, ok := e.(Not); ok {
		return n.Expr
	}
	//
	return Not{e}
}

// BoolConstValue returns the value of the given expression if it is a
// literal.
func BoolConstValue(e Bexpr) (bool, bool) {
	switch e.(type) {
	case True:
		return true, true
	case False:
		return false, true
	}
	//
	return false, false
}

// ConstantFoldBexpr folds the boolean expression, evaluating comparisons
// whose operands are constant and simplifying conjunctions and disjunctions
// containing literals.
func ConstantFoldBexpr(e Bexpr, prime Felt) Bexpr {
	switch e := e.(type) {
	case True, False:
		return e
	case Cmp:
		lhs := ConstantFold(e.Lhs, prime)
		rhs := ConstantFold(e.Rhs, prime)
		//
		lc, lok := ConstValue(lhs)
		rc, rok := ConstValue(rhs)
		//
		if lok && rok {
			return FromBool(e.Op.Eval(lc, rc))
		}
		//
		return Cmp{e.Op, lhs, rhs}
	case And:
		return foldAnd(e, prime)
	case Or:
		return foldOr(e, prime)
	case Not:
		expr := ConstantFoldBexpr(e.Expr, prime)
		//
		if b, ok := BoolConstValue(expr); ok {
			return FromBool(!b)
		}
		//
		return Not{expr}
	}
	//
	panic(fmt.Sprintf("unknown boolean expression %T", e))
}

func foldAnd(e And, prime Felt) Bexpr {
	// Fold operands, dropping literal trues and short-circuiting on a
	// literal false.
	operands := make([]Bexpr, 0, len(e.Exprs))
	//
	for _, operand := range e.Exprs {
		operand = ConstantFoldBexpr(operand, prime)
		//
		if b, ok := BoolConstValue(operand); ok {
			if !b {
				return False{}
			}
			//
			continue
		}
		//
		operands = append(operands, operand)
	}
	//
	if len(operands) == 0 {
		return True{}
	}
	//
	return And{operands}
}

func foldOr(e Or, prime Felt) Bexpr {
	// Fold operands, dropping literal falses and short-circuiting on a
	// literal true.
	operands := make([]Bexpr, 0, len(e.Exprs))
	//
	for _, operand := range e.Exprs {
		operand = ConstantFoldBexpr(operand, prime)
		//
		if b, ok := BoolConstValue(operand); ok {
			if b {
				return True{}
			}
			//
			continue
		}
		//
		operands = append(operands, operand)
	}
	//
	if len(operands) == 0 {
		return False{}
	}
	//
	return Or{operands}
}

// CanonicalizeBexpr rewrites comparisons into their canonical form and pushes
// negation through literals and comparisons.
func CanonicalizeBexpr(e Bexpr) Bexpr {
	switch e := e.(type) {
	case True, False:
		return e
	case Cmp:
		if op, lhs, rhs, ok := canonicalizeConstraint(e.Op, e.Lhs, e.Rhs); ok {
			return Cmp{op, lhs, rhs}
		}
		//
		return e
	case And:
		operands := make([]Bexpr, len(e.Exprs))
		for i, operand := range e.Exprs {
			operands[i] = CanonicalizeBexpr(operand)
		}
		//
		return And{operands}
	case Or:
		operands := make([]Bexpr, len(e.Exprs))
		for i, operand := range e.Exprs {
			operands[i] = CanonicalizeBexpr(operand)
		}
		//
		return Or{operands}
	case Not:
		expr := CanonicalizeBexpr(e.Expr)
		//
		switch expr := expr.(type) {
		case True:
			return False{}
		case False:
			return True{}
		case Cmp:
			return CanonicalizeBexpr(Cmp{expr.Op.Inverse(), expr.Lhs, expr.Rhs})
		}
		//
		return Not{expr}
	}
	//
	panic(fmt.Sprintf("unknown boolean expression %T", e))
}

// EquivalentBexpr checks two boolean expressions for structural equivalence.
func EquivalentBexpr(lhs Bexpr, rhs Bexpr) bool {
	switch l := lhs.(type) {
	case True:
		_, ok := rhs.(True)
		return ok
	case False:
		_, ok := rhs.(False)
		return ok
	case Cmp:
		r, ok := rhs.(Cmp)
		return ok && l.Op == r.Op && EquivalentAexpr(l.Lhs, r.Lhs) && EquivalentAexpr(l.Rhs, r.Rhs)
	case And:
		r, ok := rhs.(And)
		return ok && equivalentBexprs(l.Exprs, r.Exprs)
	case Or:
		r, ok := rhs.(Or)
		return ok && equivalentBexprs(l.Exprs, r.Exprs)
	case Not:
		r, ok := rhs.(Not)
		return ok && EquivalentBexpr(l.Expr, r.Expr)
	}
	//
	return false
}

func equivalentBexprs(lhs []Bexpr, rhs []Bexpr) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if !EquivalentBexpr(lhs[i], rhs[i]) {
			return false
		}
	}
	//
	return true
}

func (e True) String() string  { return "(true)" }
func (e False) String() string { return "(false)" }
func (e Cmp) String() string   { return fmt.Sprintf("(%s %s %s)", e.Op, e.Lhs, e.Rhs) }
func (e And) String() string   { return joinBexprs("&&", e.Exprs) }
func (e Or) String() string    { return joinBexprs("||", e.Exprs) }
func (e Not) String() string   { return fmt.Sprintf("(! %s)", e.Expr) }

func joinBexprs(op string, exprs []Bexpr) string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	builder.WriteString(op)
	//
	for _, e := range exprs {
		builder.WriteString(" ")
		builder.WriteString(e.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}
