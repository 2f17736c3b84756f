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

// Package lower turns captured polynomial expressions into statements of the
// intermediate representation, scoped through the resolvers of pkg/resolve.
package lower

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/resolve"
)

// Expr lowers a polynomial expression into an arithmetic ir expression,
// resolving every query and selector against the given scope.  Literal
// resolutions become constants; symbolic resolutions become variable
// identities.
func Expr(e plonk.Expression, r resolve.Resolver) (ir.Aexpr, error) {
	switch e := e.(type) {
	case plonk.Constant:
		return constExpr(e.Value), nil
	case plonk.SelectorExpr:
		return selectorExpr(e.Selector, r)
	case plonk.FixedQuery:
		q, err := r.ResolveFixedQuery(e)
		if err != nil {
			return nil, err
		}
		//
		return queryExpr(q), nil
	case plonk.AdviceQuery:
		q, err := r.ResolveAdviceQuery(e)
		if err != nil {
			return nil, err
		}
		//
		return queryExpr(q), nil
	case plonk.InstanceQuery:
		q, err := r.ResolveInstanceQuery(e)
		if err != nil {
			return nil, err
		}
		//
		return queryExpr(q), nil
	case plonk.ChallengeExpr:
		return ir.ChallengeVar{Challenge: e.Challenge}, nil
	case plonk.Negated:
		expr, err := Expr(e.Expr, r)
		if err != nil {
			return nil, err
		}
		//
		return ir.Negated{Expr: expr}, nil
	case plonk.Sum:
		lhs, rhs, err := exprPair(e.Lhs, e.Rhs, r)
		if err != nil {
			return nil, err
		}
		//
		return ir.Sum{Lhs: lhs, Rhs: rhs}, nil
	case plonk.Product:
		lhs, rhs, err := exprPair(e.Lhs, e.Rhs, r)
		if err != nil {
			return nil, err
		}
		//
		return ir.Product{Lhs: lhs, Rhs: rhs}, nil
	case plonk.Scaled:
		expr, err := Expr(e.Expr, r)
		if err != nil {
			return nil, err
		}
		//
		return ir.Product{Lhs: expr, Rhs: constExpr(e.Scale)}, nil
	}
	//
	return nil, fmt.Errorf("cannot lower expression %s (%T)", e, e)
}

// Exprs lowers a list of expressions within one scope.
func Exprs(exprs []plonk.Expression, r resolve.Resolver) ([]ir.Aexpr, error) {
	lowered := make([]ir.Aexpr, len(exprs))
	//
	for i, e := range exprs {
		l, err := Expr(e, r)
		if err != nil {
			return nil, err
		}
		//
		lowered[i] = l
	}
	//
	return lowered, nil
}

// Selectors lowers a list of selectors within one scope.  Literal selectors
// become the constants one and zero.
func Selectors(sels []plonk.Selector, r resolve.SelectorResolver) ([]ir.Aexpr, error) {
	lowered := make([]ir.Aexpr, len(sels))
	//
	for i, sel := range sels {
		resolved, err := r.ResolveSelector(sel)
		if err != nil {
			return nil, err
		}
		//
		lowered[i] = selectorValue(resolved)
	}
	//
	return lowered, nil
}

// AnyQueries lowers a list of kind-erased queries within one scope.
func AnyQueries(queries []plonk.AnyQuery, r resolve.QueryResolver) ([]ir.Aexpr, error) {
	lowered := make([]ir.Aexpr, len(queries))
	//
	for i, q := range queries {
		resolved, err := resolve.ResolveAny(r, q)
		if err != nil {
			return nil, err
		}
		//
		lowered[i] = queryExpr(resolved)
	}
	//
	return lowered, nil
}

func exprPair(lhs, rhs plonk.Expression, r resolve.Resolver) (ir.Aexpr, ir.Aexpr, error) {
	l, err := Expr(lhs, r)
	if err != nil {
		return nil, nil, err
	}
	//
	rr, err := Expr(rhs, r)
	if err != nil {
		return nil, nil, err
	}
	//
	return l, rr, nil
}

func constExpr(value fr.Element) ir.Aexpr {
	return ir.Const{Value: ir.FeltFromElement(value)}
}

func selectorExpr(sel plonk.Selector, r resolve.SelectorResolver) (ir.Aexpr, error) {
	resolved, err := r.ResolveSelector(sel)
	if err != nil {
		return nil, err
	}
	//
	return selectorValue(resolved), nil
}

func selectorValue(resolved resolve.ResolvedSelector) ir.Aexpr {
	if value, ok := resolved.Literal(); ok {
		if value {
			return ir.NewConst(1)
		}
		//
		return ir.NewConst(0)
	}
	//
	io, _ := resolved.IO()
	//
	return ir.IOVar{IO: io}
}

func queryExpr(resolved resolve.ResolvedQuery) ir.Aexpr {
	if value, ok := resolved.Literal(); ok {
		return constExpr(value)
	}
	//
	io, _ := resolved.IO()
	//
	return ir.IOVar{IO: io}
}
