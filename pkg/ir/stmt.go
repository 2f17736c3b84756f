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
	"errors"
	"fmt"
	"strings"
)

// ErrUnsatConstraint indicates that folding reduced a constraint to a
// contradiction, meaning the circuit can never be satisfied.
var ErrUnsatConstraint = errors.New("constraint cannot be satisfied")

// Stmt is a statement of the intermediate representation.  Statements form a
// tree through Seq, but two statements are compared by their flattened leaf
// sequences, so nesting carries no meaning.
type Stmt interface {
	fmt.Stringer
	isStmt()
}

// Call invokes another function with the given argument expressions, binding
// its results to the given output identities.
type Call struct {
	Callee  string
	Inputs  []Aexpr
	Outputs []FuncIO
}

// Constraint relates two expressions with a comparison operator.
type Constraint struct {
	Op  CmpOp
	Lhs Aexpr
	Rhs Aexpr
}

// Comment is a free-text annotation, ignored by comparisons.
type Comment struct{ Text string }

// AssumeDeterministic instructs the backend to assume the given variable is
// deterministic.
type AssumeDeterministic struct{ IO FuncIO }

// Assert requires a boolean expression to hold.
type Assert struct{ Cond Bexpr }

// Seq is a sequence of statements.
type Seq struct{ Stmts []Stmt }

func (s Call) isStmt()                {}
func (s Constraint) isStmt()          {}
func (s Comment) isStmt()             {}
func (s AssumeDeterministic) isStmt() {}
func (s Assert) isStmt()              {}
func (s Seq) isStmt()                 {}

// NewCall constructs a call statement.
func NewCall(callee string, inputs []Aexpr, outputs []FuncIO) Stmt {
	return Call{callee, inputs, outputs}
}

// NewConstraint constructs a constraint statement.
func NewConstraint(op CmpOp, lhs Aexpr, rhs Aexpr) Stmt {
	return Constraint{op, lhs, rhs}
}

// NewComment constructs a comment statement.
func NewComment(format string, args ...any) Stmt {
	return Comment{fmt.Sprintf(format, args...)}
}

// NewAssumeDeterministic constructs a determinism assumption for the given
// variable.
func NewAssumeDeterministic(io FuncIO) Stmt {
	return AssumeDeterministic{io}
}

// NewAssert constructs an assertion statement.
func NewAssert(cond Bexpr) Stmt {
	return Assert{cond}
}

// NewSeq sequences the given statements.
func NewSeq(stmts ...Stmt) Stmt {
	return Seq{stmts}
}

// Empty constructs a statement with no effect.
func Empty() Stmt {
	return Seq{nil}
}

// IsEmpty checks whether the given statement has no leaves.
func IsEmpty(s Stmt) bool {
	return len(Leaves(s)) == 0
}

// Leaves flattens the given statement into its sequence of non-Seq leaf
// statements, in left-to-right order.
func Leaves(s Stmt) []Stmt {
	var (
		leaves []Stmt
		stack  = []Stmt{s}
	)
	//
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		//
		if seq, ok := node.(Seq); ok {
			// Reverse to preserve left-to-right order.
			for i := len(seq.Stmts) - 1; i >= 0; i-- {
				stack = append(stack, seq.Stmts[i])
			}
		} else {
			leaves = append(leaves, node)
		}
	}
	//
	return leaves
}

// EqualStmt checks two statements for equality over their flattened leaf
// sequences.  For example Seq([a, Seq([b, c])]) equals Seq([a, b, c]).
func EqualStmt(lhs Stmt, rhs Stmt) bool {
	return compareLeaves(lhs, rhs, equalLeaf)
}

// EquivalentStmt checks two statements for structural equivalence over their
// flattened leaf sequences.  Unlike equality, annotation-only data is
// ignored: any two comments are equivalent.
func EquivalentStmt(lhs Stmt, rhs Stmt) bool {
	return compareLeaves(lhs, rhs, equivalentLeaf)
}

func compareLeaves(lhs Stmt, rhs Stmt, cmp func(Stmt, Stmt) bool) bool {
	lhsLeaves := Leaves(lhs)
	rhsLeaves := Leaves(rhs)
	//
	if len(lhsLeaves) != len(rhsLeaves) {
		return false
	}
	//
	for i := range lhsLeaves {
		if !cmp(lhsLeaves[i], rhsLeaves[i]) {
			return false
		}
	}
	//
	return true
}

func equalLeaf(lhs Stmt, rhs Stmt) bool {
	if l, ok := lhs.(Comment); ok {
		r, ok := rhs.(Comment)
		return ok && l.Text == r.Text
	}
	//
	return equivalentLeaf(lhs, rhs)
}

func equivalentLeaf(lhs Stmt, rhs Stmt) bool {
	switch l := lhs.(type) {
	case Call:
		r, ok := rhs.(Call)
		return ok && equivalentCall(l, r)
	case Constraint:
		r, ok := rhs.(Constraint)
		return ok && l.Op == r.Op && EquivalentAexpr(l.Lhs, r.Lhs) && EquivalentAexpr(l.Rhs, r.Rhs)
	case Comment:
		_, ok := rhs.(Comment)
		return ok
	case AssumeDeterministic:
		r, ok := rhs.(AssumeDeterministic)
		return ok && l.IO == r.IO
	case Assert:
		r, ok := rhs.(Assert)
		return ok && EquivalentBexpr(l.Cond, r.Cond)
	}
	//
	return false
}

func equivalentCall(lhs Call, rhs Call) bool {
	if lhs.Callee != rhs.Callee || len(lhs.Inputs) != len(rhs.Inputs) ||
		len(lhs.Outputs) != len(rhs.Outputs) {
		return false
	}
	//
	for i := range lhs.Inputs {
		if !EquivalentAexpr(lhs.Inputs[i], rhs.Inputs[i]) {
			return false
		}
	}
	//
	for i := range lhs.Outputs {
		if lhs.Outputs[i] != rhs.Outputs[i] {
			return false
		}
	}
	//
	return true
}

// ConstantFoldStmt folds every expression within the given statement.  A
// constraint or assertion folding into a tautology is removed; one folding
// into a contradiction yields ErrUnsatConstraint.
func ConstantFoldStmt(s Stmt, prime Felt) (Stmt, error) {
	switch s := s.(type) {
	case Call:
		inputs := make([]Aexpr, len(s.Inputs))
		for i, input := range s.Inputs {
			inputs[i] = ConstantFold(input, prime)
		}
		//
		return Call{s.Callee, inputs, s.Outputs}, nil
	case Constraint:
		lhs := ConstantFold(s.Lhs, prime)
		rhs := ConstantFold(s.Rhs, prime)
		//
		lc, lok := ConstValue(lhs)
		rc, rok := ConstValue(rhs)
		//
		if lok && rok {
			if s.Op.Eval(lc, rc) {
				return Empty(), nil
			}
			//
			return nil, fmt.Errorf("%w: %s", ErrUnsatConstraint, Constraint{s.Op, lhs, rhs})
		}
		//
		return Constraint{s.Op, lhs, rhs}, nil
	case Comment, AssumeDeterministic:
		return s, nil
	case Assert:
		cond := ConstantFoldBexpr(s.Cond, prime)
		//
		if b, ok := BoolConstValue(cond); ok {
			if b {
				return Empty(), nil
			}
			//
			return nil, fmt.Errorf("%w: %s", ErrUnsatConstraint, s)
		}
		//
		return Assert{cond}, nil
	case Seq:
		stmts := make([]Stmt, 0, len(s.Stmts))
		//
		for _, stmt := range s.Stmts {
			folded, err := ConstantFoldStmt(stmt, prime)
			if err != nil {
				return nil, err
			}
			//
			if !IsEmpty(folded) {
				stmts = append(stmts, folded)
			}
		}
		//
		return Seq{stmts}, nil
	}
	//
	panic(fmt.Sprintf("unknown statement %T", s))
}

// CanonicalizeStmt rewrites constraints and assertions within the given
// statement into their canonical forms.
func CanonicalizeStmt(s Stmt) Stmt {
	switch s := s.(type) {
	case Constraint:
		if op, lhs, rhs, ok := canonicalizeConstraint(s.Op, s.Lhs, s.Rhs); ok {
			return Constraint{op, lhs, rhs}
		}
		//
		return s
	case Assert:
		return Assert{CanonicalizeBexpr(s.Cond)}
	case Seq:
		stmts := make([]Stmt, len(s.Stmts))
		for i, stmt := range s.Stmts {
			stmts[i] = CanonicalizeStmt(stmt)
		}
		//
		return Seq{stmts}
	}
	//
	return s
}

// TryMapStmtIO rewrites every variable identity within the given statement,
// covering expression operands, call outputs and determinism assumptions.
func TryMapStmtIO(s Stmt, f func(FuncIO) (FuncIO, error)) (Stmt, error) {
	switch s := s.(type) {
	case Call:
		inputs := make([]Aexpr, len(s.Inputs))
		//
		for i, input := range s.Inputs {
			mapped, err := TryMapIO(input, f)
			if err != nil {
				return nil, err
			}
			//
			inputs[i] = mapped
		}
		//
		outputs := make([]FuncIO, len(s.Outputs))
		//
		for i, output := range s.Outputs {
			mapped, err := f(output)
			if err != nil {
				return nil, err
			}
			//
			outputs[i] = mapped
		}
		//
		return Call{s.Callee, inputs, outputs}, nil
	case Constraint:
		lhs, rhs, err := tryMapPair(s.Lhs, s.Rhs, f)
		if err != nil {
			return nil, err
		}
		//
		return Constraint{s.Op, lhs, rhs}, nil
	case Comment:
		return s, nil
	case AssumeDeterministic:
		io, err := f(s.IO)
		if err != nil {
			return nil, err
		}
		//
		return AssumeDeterministic{io}, nil
	case Assert:
		cond, err := tryMapBexprIO(s.Cond, f)
		if err != nil {
			return nil, err
		}
		//
		return Assert{cond}, nil
	case Seq:
		stmts := make([]Stmt, len(s.Stmts))
		//
		for i, stmt := range s.Stmts {
			mapped, err := TryMapStmtIO(stmt, f)
			if err != nil {
				return nil, err
			}
			//
			stmts[i] = mapped
		}
		//
		return Seq{stmts}, nil
	}
	//
	panic(fmt.Sprintf("unknown statement %T", s))
}

func tryMapBexprIO(e Bexpr, f func(FuncIO) (FuncIO, error)) (Bexpr, error) {
	switch e := e.(type) {
	case True, False:
		return e, nil
	case Cmp:
		lhs, rhs, err := tryMapPair(e.Lhs, e.Rhs, f)
		if err != nil {
			return nil, err
		}
		//
		return Cmp{e.Op, lhs, rhs}, nil
	case And:
		operands, err := tryMapBexprsIO(e.Exprs, f)
		if err != nil {
			return nil, err
		}
		//
		return And{operands}, nil
	case Or:
		operands, err := tryMapBexprsIO(e.Exprs, f)
		if err != nil {
			return nil, err
		}
		//
		return Or{operands}, nil
	case Not:
		expr, err := tryMapBexprIO(e.Expr, f)
		if err != nil {
			return nil, err
		}
		//
		return Not{expr}, nil
	}
	//
	panic(fmt.Sprintf("unknown boolean expression %T", e))
}

func tryMapBexprsIO(exprs []Bexpr, f func(FuncIO) (FuncIO, error)) ([]Bexpr, error) {
	operands := make([]Bexpr, len(exprs))
	//
	for i, e := range exprs {
		mapped, err := tryMapBexprIO(e, f)
		if err != nil {
			return nil, err
		}
		//
		operands[i] = mapped
	}
	//
	return operands, nil
}

func (s Call) String() string {
	inputs := make([]string, len(s.Inputs))
	for i, e := range s.Inputs {
		inputs[i] = e.String()
	}
	//
	outputs := make([]string, len(s.Outputs))
	for i, o := range s.Outputs {
		outputs[i] = o.String()
	}
	//
	return fmt.Sprintf("call '%s'(%s) -> (%s)", s.Callee,
		strings.Join(inputs, ", "), strings.Join(outputs, ", "))
}

func (s Constraint) String() string {
	return fmt.Sprintf("%s %s %s", s.Lhs, s.Op, s.Rhs)
}

func (s Comment) String() string {
	return fmt.Sprintf("// %s", s.Text)
}

func (s AssumeDeterministic) String() string {
	return fmt.Sprintf("deterministic %s", s.IO)
}

func (s Assert) String() string {
	return fmt.Sprintf("assert %s", s.Cond)
}

func (s Seq) String() string {
	var builder strings.Builder
	//
	builder.WriteString("{ ")
	//
	for _, stmt := range s.Stmts {
		builder.WriteString(stmt.String())
		builder.WriteString("; ")
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}
