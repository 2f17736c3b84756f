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

// Package resolve turns column and selector queries into either literal field
// values or symbolic variable identities, depending on the scope the
// enclosing expression is being evaluated in.
package resolve

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/plonk"
)

// ErrRowUnderflow indicates that a rotation reached above the first row.
var ErrRowUnderflow = errors.New("row underflow")

// ErrSelectorOutOfScope indicates that a selector was resolved in a scope
// where selectors have no meaning.
var ErrSelectorOutOfScope = errors.New("selector out of scope")

// ResolutionPriority decides which role wins when a queried cell was declared
// both as an input and as an output.  The default priority is outputs.
type ResolutionPriority uint8

const (
	// PRIORITY_OUTPUT resolves conflicting cells as outputs.
	PRIORITY_OUTPUT ResolutionPriority = iota
	// PRIORITY_INPUT resolves conflicting cells as inputs.
	PRIORITY_INPUT
)

// ResolvedSelector is the outcome of resolving a selector: either a literal
// boolean (the selector is statically known at this row) or a formal
// argument of the function being defined.
type ResolvedSelector struct {
	isLit bool
	value bool
	io    ir.FuncIO
}

// LitSelector constructs a literal selector resolution.
func LitSelector(value bool) ResolvedSelector {
	return ResolvedSelector{isLit: true, value: value}
}

// ArgSelector constructs a symbolic selector resolution.
func ArgSelector(io ir.FuncIO) ResolvedSelector {
	return ResolvedSelector{io: io}
}

// Literal returns the boolean value, if this resolution is a literal.
func (r ResolvedSelector) Literal() (bool, bool) {
	return r.value, r.isLit
}

// IO returns the variable identity, if this resolution is symbolic.
func (r ResolvedSelector) IO() (ir.FuncIO, bool) {
	return r.io, !r.isLit
}

// ResolvedQuery is the outcome of resolving a column query: either a literal
// field value or a variable identity.
type ResolvedQuery struct {
	isLit bool
	value fr.Element
	io    ir.FuncIO
}

// LitQuery constructs a literal query resolution.
func LitQuery(value fr.Element) ResolvedQuery {
	return ResolvedQuery{isLit: true, value: value}
}

// IOQuery constructs a symbolic query resolution.
func IOQuery(io ir.FuncIO) ResolvedQuery {
	return ResolvedQuery{io: io}
}

// Literal returns the field value, if this resolution is a literal.
func (r ResolvedQuery) Literal() (fr.Element, bool) {
	return r.value, r.isLit
}

// IO returns the variable identity, if this resolution is symbolic.
func (r ResolvedQuery) IO() (ir.FuncIO, bool) {
	return r.io, !r.isLit
}

// SelectorResolver resolves selector queries within some scope.
type SelectorResolver interface {
	ResolveSelector(sel plonk.Selector) (ResolvedSelector, error)
}

// QueryResolver resolves column queries within some scope.
type QueryResolver interface {
	ResolveFixedQuery(q plonk.FixedQuery) (ResolvedQuery, error)
	ResolveAdviceQuery(q plonk.AdviceQuery) (ResolvedQuery, error)
	ResolveInstanceQuery(q plonk.InstanceQuery) (ResolvedQuery, error)
}

// Resolver resolves both selectors and column queries.
type Resolver interface {
	SelectorResolver
	QueryResolver
}

// FixedResolver resolves a fixed query at an absolute row to the value it was
// assigned during synthesis.
type FixedResolver interface {
	ResolveQuery(q plonk.FixedQuery, row uint) (fr.Element, error)
}

// ResolveAny dispatches a kind-erased query to the appropriate method of the
// given resolver.
func ResolveAny(r QueryResolver, q plonk.AnyQuery) (ResolvedQuery, error) {
	switch q.Column.Kind() {
	case plonk.FIXED:
		return r.ResolveFixedQuery(plonk.FixedQuery{Column: q.Column, Rotation: q.Rotation})
	case plonk.ADVICE:
		return r.ResolveAdviceQuery(plonk.AdviceQuery{Column: q.Column, Rotation: q.Rotation})
	case plonk.INSTANCE:
		return r.ResolveInstanceQuery(plonk.InstanceQuery{Column: q.Column, Rotation: q.Rotation})
	}
	//
	return ResolvedQuery{}, fmt.Errorf("cannot resolve query against %s column", q.Column.Kind())
}

// ResolveRotation applies a rotation to an absolute row.  Rotations reaching
// above the first row are a hard error.
func ResolveRotation(row uint, rot plonk.Rotation) (uint, error) {
	if rot < 0 && uint(-rot) > row {
		return 0, fmt.Errorf("%w: row %d with rotation %d", ErrRowUnderflow, row, rot)
	}
	//
	return uint(int(row) + int(rot)), nil
}
