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

// canonicalizeConstraint matches a comparison against the known rewrite
// patterns, returning the rewritten comparison if one applied.  The patterns
// recognize the difference form a gate leaves equality constraints in:
//
//	(= (+ X (- Y)) 0)       => (= X Y)
//	(= (* 1 (+ X (- Y))) 0) => (= X Y)
func canonicalizeConstraint(op CmpOp, lhs Aexpr, rhs Aexpr) (CmpOp, Aexpr, Aexpr, bool) {
	if op != CMP_EQ {
		return op, nil, nil, false
	}
	//
	if c, ok := ConstValue(rhs); !ok || !c.IsZero() {
		return op, nil, nil, false
	}
	//
	switch e := lhs.(type) {
	case Sum:
		if x, y, ok := differenceOf(e); ok {
			return CMP_EQ, x, y, true
		}
	case Product:
		if c, ok := ConstValue(e.Lhs); ok && c.IsOne() {
			if sum, ok := e.Rhs.(Sum); ok {
				if x, y, ok := differenceOf(sum); ok {
					return CMP_EQ, x, y, true
				}
			}
		}
	}
	//
	return op, nil, nil, false
}

// differenceOf destructures a sum of the form (+ X (- Y)).
func differenceOf(e Sum) (Aexpr, Aexpr, bool) {
	if neg, ok := e.Rhs.(Negated); ok {
		return e.Lhs, neg.Expr, true
	}
	//
	return nil, nil, false
}
