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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanon_DifferenceBecomesEquality(t *testing.T) {
	a := NewIOVar(Arg(0))
	b := NewIOVar(Arg(1))
	// (= (+ a (- b)) 0)
	s := CanonicalizeStmt(NewConstraint(CMP_EQ, Sub(a, b), NewConst(0)))
	//
	require.IsType(t, Constraint{}, s)
	c := s.(Constraint)
	assert.Equal(t, CMP_EQ, c.Op)
	assert.True(t, EquivalentAexpr(a, c.Lhs))
	assert.True(t, EquivalentAexpr(b, c.Rhs))
}

func TestCanon_ScaledDifferenceBecomesEquality(t *testing.T) {
	a := NewIOVar(AdviceCell(0, 3))
	b := NewIOVar(AdviceCell(1, 3))
	// (= (* 1 (+ a (- b))) 0)
	s := CanonicalizeStmt(NewConstraint(CMP_EQ, Mul(NewConst(1), Sub(a, b)), NewConst(0)))
	//
	require.IsType(t, Constraint{}, s)
	c := s.(Constraint)
	assert.True(t, EquivalentAexpr(a, c.Lhs))
	assert.True(t, EquivalentAexpr(b, c.Rhs))
}

func TestCanon_Idempotent(t *testing.T) {
	a := NewIOVar(Arg(0))
	b := NewIOVar(Arg(1))
	//
	once := CanonicalizeStmt(NewConstraint(CMP_EQ, Sub(a, b), NewConst(0)))
	twice := CanonicalizeStmt(once)
	//
	assert.True(t, EqualStmt(once, twice))
}

func TestCanon_UnmatchedConstraintUnchanged(t *testing.T) {
	s := NewConstraint(CMP_EQ, NewIOVar(Arg(0)), NewConst(5))
	assert.True(t, EqualStmt(s, CanonicalizeStmt(s)))
}

func TestCanon_NotInvertsComparison(t *testing.T) {
	canon := CanonicalizeBexpr(Not{Cmp{CMP_LT, NewIOVar(Arg(0)), NewConst(4)}})
	//
	require.IsType(t, Cmp{}, canon)
	assert.Equal(t, CMP_GE, canon.(Cmp).Op)
}

func TestStmt_EqualityFlattensSeq(t *testing.T) {
	a := NewConstraint(CMP_EQ, NewIOVar(Arg(0)), NewConst(1))
	b := NewComment("b")
	c := NewAssumeDeterministic(Temp(0))
	//
	nested := NewSeq(a, NewSeq(b, NewSeq(), c))
	flat := NewSeq(a, b, c)
	//
	assert.True(t, EqualStmt(nested, flat))
	assert.False(t, EqualStmt(nested, NewSeq(a, b)))
}

func TestStmt_CommentsEquivalentNotEqual(t *testing.T) {
	lhs := NewComment("region 0")
	rhs := NewComment("region 1")
	//
	assert.True(t, EquivalentStmt(lhs, rhs))
	assert.False(t, EqualStmt(lhs, rhs))
}

func TestStmt_CallEquivalence(t *testing.T) {
	lhs := NewCall("gate", []Aexpr{NewIOVar(Arg(0))}, []FuncIO{CallOutput(0, 0)})
	rhs := NewCall("gate", []Aexpr{NewIOVar(Arg(0))}, []FuncIO{CallOutput(0, 0)})
	other := NewCall("gate", []Aexpr{NewIOVar(Arg(0))}, []FuncIO{CallOutput(1, 0)})
	//
	assert.True(t, EquivalentStmt(lhs, rhs))
	assert.False(t, EquivalentStmt(lhs, other))
}

func TestStmtFold_TautologyRemoved(t *testing.T) {
	s := NewSeq(
		NewConstraint(CMP_EQ, NewConst(3), NewConst(3)),
		NewConstraint(CMP_EQ, NewIOVar(Arg(0)), NewConst(1)),
	)
	//
	folded, err := ConstantFoldStmt(s, seven)
	require.NoError(t, err)
	//
	leaves := Leaves(folded)
	require.Len(t, leaves, 1)
	assert.IsType(t, Constraint{}, leaves[0])
}

func TestStmtFold_UnsatisfiableErrors(t *testing.T) {
	s := NewConstraint(CMP_EQ, NewConst(3), NewConst(4))
	//
	_, err := ConstantFoldStmt(s, seven)
	assert.ErrorIs(t, err, ErrUnsatConstraint)
}

func TestStmtFold_AssertLiterals(t *testing.T) {
	folded, err := ConstantFoldStmt(NewAssert(AndOf(True{}, True{})), seven)
	require.NoError(t, err)
	assert.True(t, IsEmpty(folded))
	//
	_, err = ConstantFoldStmt(NewAssert(OrOf(False{})), seven)
	assert.ErrorIs(t, err, ErrUnsatConstraint)
}

func TestStmtFold_DisabledGateRowDrops(t *testing.T) {
	// A selector resolved to zero multiplies the whole polynomial away, so
	// the per-row constraint folds into a removable tautology.
	poly := Mul(NewConst(0), Sub(NewIOVar(Arg(0)), NewIOVar(Arg(1))))
	//
	folded, err := ConstantFoldStmt(NewConstraint(CMP_EQ, poly, NewConst(0)), seven)
	require.NoError(t, err)
	assert.True(t, IsEmpty(folded))
}

func TestListing_FlattensLeaves(t *testing.T) {
	s := NewSeq(NewComment("hdr"), NewSeq(NewAssumeDeterministic(Arg(0))))
	//
	assert.Equal(t, "// hdr\ndeterministic arg(0)\n", Listing(s))
}
