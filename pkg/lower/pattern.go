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

	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/resolve"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// ErrNoMatch is the sentinel a pattern returns when the scoped gate is not the
// shape it recognizes.  The pattern set moves on to the next pattern; any
// other error aborts the gate.
var ErrNoMatch = errors.New("pattern does not match gate")

// GatePattern recognizes a particular gate shape and rewrites it into
// statements of the intermediate representation.
type GatePattern interface {
	// Name identifies the pattern in error messages.
	Name() string
	// MatchAndRewrite lowers the scoped gate, or returns ErrNoMatch when the
	// gate is not the shape this pattern handles.
	MatchAndRewrite(scope *GateScope) (ir.Stmt, error)
}

// GateCallbacks configures how gates are lowered.
type GateCallbacks interface {
	// Patterns returns the rewrite patterns to try, in order.
	Patterns() []GatePattern
	// IgnoreDisabledGates indicates whether the fallback rewriter skips rows
	// where every selector of a polynomial is disabled.
	IgnoreDisabledGates() bool
}

// PatternSet tries a list of patterns against a gate scope, first match wins.
type PatternSet struct {
	patterns []GatePattern
}

// LoadPatterns builds the pattern set from the callbacks, appending the
// fallback rewriter so every gate lowers one way or another.
func LoadPatterns(callbacks GateCallbacks) *PatternSet {
	patterns := callbacks.Patterns()
	patterns = append(patterns, &FallbackGateRewriter{
		ignoreDisabled: callbacks.IgnoreDisabledGates(),
	})
	//
	return &PatternSet{patterns: patterns}
}

// Apply runs the patterns against the scope in order, returning the statements
// of the first pattern that matches.  Real errors from non-matching patterns
// are accumulated and reported together.
func (p *PatternSet) Apply(scope *GateScope) (ir.Stmt, error) {
	var errs []error
	//
	for _, pattern := range p.patterns {
		stmt, err := pattern.MatchAndRewrite(scope)
		//
		switch {
		case err == nil:
			return stmt, nil
		case errors.Is(err, ErrNoMatch):
			continue
		default:
			errs = append(errs, fmt.Errorf("pattern %q: %w", pattern.Name(), err))
		}
	}
	//
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	//
	return nil, fmt.Errorf("no pattern matched gate %q in %s", scope.GateName(), scope.Region())
}

// FallbackGateRewriter lowers a gate the direct way: every polynomial is
// constrained to zero at every row of the region.
type FallbackGateRewriter struct {
	ignoreDisabled bool
}

// Name implements GatePattern.
func (f *FallbackGateRewriter) Name() string {
	return "fallback"
}

// MatchAndRewrite implements GatePattern.  It matches any gate.
func (f *FallbackGateRewriter) MatchAndRewrite(scope *GateScope) (ir.Stmt, error) {
	var stmts []ir.Stmt
	//
	err := scope.RegionRows(func(rr *resolve.RegionRow) error {
		for _, poly := range scope.Polynomials() {
			if f.ignoreDisabled && rr.GateIsDisabled(selectorsOf(poly)) {
				continue
			}
			//
			expr, err := Expr(poly, rr)
			if err != nil {
				return err
			}
			//
			stmts = append(stmts, ir.NewConstraint(ir.CMP_EQ, expr, ir.NewConst(0)))
		}
		//
		return nil
	})
	//
	if err != nil {
		return nil, err
	}
	//
	return ir.NewSeq(stmts...), nil
}

// DefaultGateCallbacks lowers every gate via the fallback rewriter.
type DefaultGateCallbacks struct {
	// IgnoreDisabled skips rows where a polynomial's selectors are all off.
	IgnoreDisabled bool
}

// Patterns implements GateCallbacks.
func (d *DefaultGateCallbacks) Patterns() []GatePattern {
	return nil
}

// IgnoreDisabledGates implements GateCallbacks.
func (d *DefaultGateCallbacks) IgnoreDisabledGates() bool {
	return d.IgnoreDisabled
}

func selectorsOf(e plonk.Expression) []plonk.Selector {
	set := plonk.FindSelectors(e)
	selectors := make([]plonk.Selector, 0, len(set))
	//
	for sel := range set {
		selectors = append(selectors, sel)
	}
	//
	return selectors
}

// LowerGates lowers every gate at every region, trying the pattern set per
// (gate, region) pair.  Each non-empty result is headed by a comment locating
// the gate.
func LowerGates(gates []plonk.Gate, regions []*synthesis.RegionData, patterns *PatternSet,
	adviceIO, instanceIO *plonk.CircuitIO, fixed resolve.FixedResolver) (ir.Stmt, error) {
	//
	var (
		stmts []ir.Stmt
		errs  []error
	)
	//
	for _, region := range regions {
		if _, ok := region.Rows(); !ok {
			continue
		}
		//
		for i := range gates {
			scope := NewGateScope(&gates[i], region, adviceIO, instanceIO, fixed)
			//
			stmt, err := patterns.Apply(scope)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			//
			if !ir.IsEmpty(stmt) {
				stmts = append(stmts, ir.NewComment("%s", scope), stmt)
			}
		}
	}
	//
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	//
	return ir.NewSeq(stmts...), nil
}
