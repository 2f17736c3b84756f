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

package lower

import (
	"errors"
	"fmt"

	"github.com/Veridise/go-plonkir/pkg/plonk"
)

// maxRewriteIters bounds how many times RewriteRec will re-apply the hooks
// before giving up.
const maxRewriteIters = 20

// ErrRewriteNotConverged indicates that re-applying an expression rewriter
// kept producing replacements past the iteration cap.
var ErrRewriteNotConverged = errors.New("expression rewriting did not converge")

// ExpressionRewriter rewrites polynomial expressions bottom up.  Each hook
// covers one node kind and receives the node with already-rewritten children;
// returning nil keeps the node as is.  Unset hooks keep their nodes.
type ExpressionRewriter struct {
	OnConstant  func(plonk.Constant) (plonk.Expression, error)
	OnSelector  func(plonk.SelectorExpr) (plonk.Expression, error)
	OnFixed     func(plonk.FixedQuery) (plonk.Expression, error)
	OnAdvice    func(plonk.AdviceQuery) (plonk.Expression, error)
	OnInstance  func(plonk.InstanceQuery) (plonk.Expression, error)
	OnChallenge func(plonk.ChallengeExpr) (plonk.Expression, error)
	OnNegated   func(plonk.Negated) (plonk.Expression, error)
	OnSum       func(plonk.Sum) (plonk.Expression, error)
	OnProduct   func(plonk.Product) (plonk.Expression, error)
	OnScaled    func(plonk.Scaled) (plonk.Expression, error)
}

// Rewrite applies the hooks to every node of the expression in one bottom-up
// pass.  Replacement expressions are not themselves revisited.
func (rw *ExpressionRewriter) Rewrite(e plonk.Expression) (plonk.Expression, error) {
	rewritten, _, err := rw.rewrite(e)
	//
	return rewritten, err
}

// RewriteRec applies the hooks repeatedly until no hook produces a
// replacement, so replacements are themselves rewritten.  Failing to converge
// within the iteration cap yields ErrRewriteNotConverged.
func (rw *ExpressionRewriter) RewriteRec(e plonk.Expression) (plonk.Expression, error) {
	for i := 0; i < maxRewriteIters; i++ {
		rewritten, changed, err := rw.rewrite(e)
		if err != nil {
			return nil, err
		}
		//
		if !changed {
			return rewritten, nil
		}
		//
		e = rewritten
	}
	//
	return nil, fmt.Errorf("%w after %d iterations", ErrRewriteNotConverged, maxRewriteIters)
}

// rewrite reports whether any hook fired anywhere in the tree.
func (rw *ExpressionRewriter) rewrite(e plonk.Expression) (plonk.Expression, bool, error) {
	switch e := e.(type) {
	case plonk.Constant:
		return applyHook(e, rw.OnConstant)
	case plonk.SelectorExpr:
		return applyHook(e, rw.OnSelector)
	case plonk.FixedQuery:
		return applyHook(e, rw.OnFixed)
	case plonk.AdviceQuery:
		return applyHook(e, rw.OnAdvice)
	case plonk.InstanceQuery:
		return applyHook(e, rw.OnInstance)
	case plonk.ChallengeExpr:
		return applyHook(e, rw.OnChallenge)
	case plonk.Negated:
		expr, changed, err := rw.rewrite(e.Expr)
		if err != nil {
			return nil, false, err
		}
		//
		return applyHookChanged(plonk.Negated{Expr: expr}, changed, rw.OnNegated)
	case plonk.Sum:
		lhs, rhs, changed, err := rw.rewritePair(e.Lhs, e.Rhs)
		if err != nil {
			return nil, false, err
		}
		//
		return applyHookChanged(plonk.Sum{Lhs: lhs, Rhs: rhs}, changed, rw.OnSum)
	case plonk.Product:
		lhs, rhs, changed, err := rw.rewritePair(e.Lhs, e.Rhs)
		if err != nil {
			return nil, false, err
		}
		//
		return applyHookChanged(plonk.Product{Lhs: lhs, Rhs: rhs}, changed, rw.OnProduct)
	case plonk.Scaled:
		expr, changed, err := rw.rewrite(e.Expr)
		if err != nil {
			return nil, false, err
		}
		//
		return applyHookChanged(plonk.Scaled{Expr: expr, Scale: e.Scale}, changed, rw.OnScaled)
	}
	//
	return nil, false, fmt.Errorf("cannot rewrite expression %s (%T)", e, e)
}

func (rw *ExpressionRewriter) rewritePair(lhs, rhs plonk.Expression) (plonk.Expression,
	plonk.Expression, bool, error) {
	//
	l, lchanged, err := rw.rewrite(lhs)
	if err != nil {
		return nil, nil, false, err
	}
	//
	r, rchanged, err := rw.rewrite(rhs)
	if err != nil {
		return nil, nil, false, err
	}
	//
	return l, r, lchanged || rchanged, nil
}

func applyHook[E plonk.Expression](e E, hook func(E) (plonk.Expression, error)) (plonk.Expression, bool, error) {
	return applyHookChanged(e, false, hook)
}

func applyHookChanged[E plonk.Expression](e E, changed bool,
	hook func(E) (plonk.Expression, error)) (plonk.Expression, bool, error) {
	//
	if hook == nil {
		return e, changed, nil
	}
	//
	replacement, err := hook(e)
	if err != nil {
		return nil, false, err
	}
	//
	if replacement == nil {
		return e, changed, nil
	}
	//
	return replacement, true, nil
}
