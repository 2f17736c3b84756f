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

import "fmt"

// CmpOp identifies a comparison operator used in constraints and boolean
// expressions.
type CmpOp uint8

const (
	// CMP_EQ is the equality operator.
	CMP_EQ CmpOp = iota
	// CMP_LT is the less-than operator.
	CMP_LT
	// CMP_LE is the less-than-or-equal operator.
	CMP_LE
	// CMP_GT is the greater-than operator.
	CMP_GT
	// CMP_GE is the greater-than-or-equal operator.
	CMP_GE
	// CMP_NE is the disequality operator.
	CMP_NE
)

// Inverse returns the operator describing the negated comparison.
func (op CmpOp) Inverse() CmpOp {
	switch op {
	case CMP_EQ:
		return CMP_NE
	case CMP_LT:
		return CMP_GE
	case CMP_LE:
		return CMP_GT
	case CMP_GT:
		return CMP_LE
	case CMP_GE:
		return CMP_LT
	case CMP_NE:
		return CMP_EQ
	}
	//
	panic(fmt.Sprintf("unknown comparison operator %d", op))
}

// Eval applies the operator to two constant felts.
func (op CmpOp) Eval(lhs Felt, rhs Felt) bool {
	c := lhs.Cmp(rhs)
	//
	switch op {
	case CMP_EQ:
		return c == 0
	case CMP_LT:
		return c < 0
	case CMP_LE:
		return c <= 0
	case CMP_GT:
		return c > 0
	case CMP_GE:
		return c >= 0
	case CMP_NE:
		return c != 0
	}
	//
	panic(fmt.Sprintf("unknown comparison operator %d", op))
}

func (op CmpOp) String() string {
	switch op {
	case CMP_EQ:
		return "=="
	case CMP_LT:
		return "<"
	case CMP_LE:
		return "<="
	case CMP_GT:
		return ">"
	case CMP_GE:
		return ">="
	case CMP_NE:
		return "!="
	}
	//
	panic(fmt.Sprintf("unknown comparison operator %d", op))
}
