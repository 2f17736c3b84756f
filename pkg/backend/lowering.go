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

// Package backend drives the emission of lowered circuits into a target
// representation.  A target implements the Codegen contract over its own value
// type; the strategies in this package decide how the circuit's groups, gates
// and lookups map onto the target's functions.
package backend

import (
	"errors"
	"fmt"

	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/plonk"
)

// ErrConstraintNotGenerated indicates a backend consumed a constraint without
// recording it, which would silently weaken the circuit.
var ErrConstraintNotGenerated = errors.New("backend did not generate a constraint")

// ExprLowering lowers the expression forms of the intermediate representation
// into backend values.
type ExprLowering[V any] interface {
	LowerConstant(value ir.Felt) (V, error)
	LowerIO(io ir.FuncIO) (V, error)
	LowerChallenge(challenge plonk.Challenge) (V, error)
	LowerSum(lhs, rhs V) (V, error)
	LowerProduct(lhs, rhs V) (V, error)
	LowerNeg(e V) (V, error)
	LowerCmp(op ir.CmpOp, lhs, rhs V) (V, error)
	LowerAnd(exprs []V) (V, error)
	LowerOr(exprs []V) (V, error)
	LowerNot(e V) (V, error)
	LowerTrue() (V, error)
	LowerFalse() (V, error)
}

// Lowering extends expression lowering with statement emission.  The
// NumConstraints counter lets callers verify that emitting a constraint
// actually recorded one.
type Lowering[V any] interface {
	ExprLowering[V]

	GenerateConstraint(op ir.CmpOp, lhs, rhs V) error
	NumConstraints() uint
	GenerateComment(text string) error
	GenerateCall(callee string, inputs []V, outputs []ir.FuncIO) error
	GenerateAssert(cond V) error
	GenerateAssumeDeterministic(io ir.FuncIO) error
}

// LowerAexpr lowers an arithmetic expression bottom-up.
func LowerAexpr[V any](l ExprLowering[V], e ir.Aexpr) (V, error) {
	var zero V
	//
	switch e := e.(type) {
	case ir.Const:
		return l.LowerConstant(e.Value)
	case ir.IOVar:
		return l.LowerIO(e.IO)
	case ir.ChallengeVar:
		return l.LowerChallenge(e.Challenge)
	case ir.Negated:
		inner, err := LowerAexpr(l, e.Expr)
		if err != nil {
			return zero, err
		}
		//
		return l.LowerNeg(inner)
	case ir.Sum:
		lhs, rhs, err := lowerPair(l, e.Lhs, e.Rhs)
		if err != nil {
			return zero, err
		}
		//
		return l.LowerSum(lhs, rhs)
	case ir.Product:
		lhs, rhs, err := lowerPair(l, e.Lhs, e.Rhs)
		if err != nil {
			return zero, err
		}
		//
		return l.LowerProduct(lhs, rhs)
	}
	//
	return zero, fmt.Errorf("cannot lower expression %s (%T)", e, e)
}

// LowerBexpr lowers a boolean expression bottom-up.
func LowerBexpr[V any](l ExprLowering[V], e ir.Bexpr) (V, error) {
	var zero V
	//
	switch e := e.(type) {
	case ir.True:
		return l.LowerTrue()
	case ir.False:
		return l.LowerFalse()
	case ir.Cmp:
		lhs, rhs, err := lowerPair(l, e.Lhs, e.Rhs)
		if err != nil {
			return zero, err
		}
		//
		return l.LowerCmp(e.Op, lhs, rhs)
	case ir.And:
		exprs, err := lowerBexprs(l, e.Exprs)
		if err != nil {
			return zero, err
		}
		//
		return l.LowerAnd(exprs)
	case ir.Or:
		exprs, err := lowerBexprs(l, e.Exprs)
		if err != nil {
			return zero, err
		}
		//
		return l.LowerOr(exprs)
	case ir.Not:
		inner, err := LowerBexpr(l, e.Expr)
		if err != nil {
			return zero, err
		}
		//
		return l.LowerNot(inner)
	}
	//
	return zero, fmt.Errorf("cannot lower boolean expression %s (%T)", e, e)
}

// LowerStmt emits a statement through the backend, recursing through
// sequences.
func LowerStmt[V any](l Lowering[V], s ir.Stmt) error {
	switch s := s.(type) {
	case ir.Seq:
		for _, stmt := range s.Stmts {
			if err := LowerStmt(l, stmt); err != nil {
				return err
			}
		}
		//
		return nil
	case ir.Comment:
		return l.GenerateComment(s.Text)
	case ir.Constraint:
		lhs, rhs, err := lowerPair(l, s.Lhs, s.Rhs)
		if err != nil {
			return err
		}
		//
		return CheckedConstraint(l, s.Op, lhs, rhs)
	case ir.Call:
		inputs := make([]V, len(s.Inputs))
		for i, in := range s.Inputs {
			var err error
			if inputs[i], err = LowerAexpr(l, in); err != nil {
				return err
			}
		}
		//
		return l.GenerateCall(s.Callee, inputs, s.Outputs)
	case ir.Assert:
		cond, err := LowerBexpr(l, s.Cond)
		if err != nil {
			return err
		}
		//
		return l.GenerateAssert(cond)
	case ir.AssumeDeterministic:
		return l.GenerateAssumeDeterministic(s.IO)
	}
	//
	return fmt.Errorf("cannot lower statement %s (%T)", s, s)
}

// CheckedConstraint emits a constraint and verifies the backend recorded it.
func CheckedConstraint[V any](l Lowering[V], op ir.CmpOp, lhs, rhs V) error {
	before := l.NumConstraints()
	//
	if err := l.GenerateConstraint(op, lhs, rhs); err != nil {
		return err
	}
	//
	if l.NumConstraints() <= before {
		return ErrConstraintNotGenerated
	}
	//
	return nil
}

func lowerPair[V any](l ExprLowering[V], lhs, rhs ir.Aexpr) (V, V, error) {
	var zero V
	//
	left, err := LowerAexpr(l, lhs)
	if err != nil {
		return zero, zero, err
	}
	//
	right, err := LowerAexpr(l, rhs)
	if err != nil {
		return zero, zero, err
	}
	//
	return left, right, nil
}

func lowerBexprs[V any](l ExprLowering[V], exprs []ir.Bexpr) ([]V, error) {
	lowered := make([]V, len(exprs))
	//
	for i, e := range exprs {
		var err error
		if lowered[i], err = LowerBexpr(l, e); err != nil {
			return nil, err
		}
	}
	//
	return lowered, nil
}
