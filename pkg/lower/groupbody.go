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
	"slices"

	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
	"github.com/Veridise/go-plonkir/pkg/util"
)

// GroupBody is one synthesized group lowered into the intermediate
// representation: its gate constraints, the equality constraints it must
// enforce itself, the calls it makes to child groups, and its lookups.
type GroupBody struct {
	name        string
	id          uint
	inputCount  uint
	outputCount uint
	key         util.Option[plonk.GroupKey]
	gates       ir.Stmt
	eqc         ir.Stmt
	callsites   []*CallSite
	lookups     ir.Stmt
	injected    ir.Stmt
}

// NewGroupBody lowers one group.  The groups and regions maps cover the whole
// circuit, since equality edges and callsite arguments may reach across group
// boundaries.
func NewGroupBody(id uint, ctx *GroupContext, syn *synthesis.CircuitSynthesis,
	patterns *PatternSet, lookups LookupCallbacks,
	regions map[uint]*synthesis.RegionData) (*GroupBody, error) {
	//
	var (
		group = ctx.Group()
		fixed = syn.FixedData()
		free  = ctx.FreeCells()
	)
	//
	gates, err := LowerGates(syn.Gates(), group.Regions(), patterns, ctx.AdviceIO(), ctx.InstanceIO(), fixed)
	if err != nil {
		return nil, err
	}
	//
	selected, err := SelectEqualityConstraints(group, syn.Constraints(), free.Inputs)
	if err != nil {
		return nil, err
	}
	//
	eqc, err := InterRegionConstraints(selected, ctx.AdviceIO(), ctx.InstanceIO(), fixed)
	if err != nil {
		return nil, err
	}
	//
	doubled, err := SearchDoubleAnnotated(ctx, regions, fixed)
	if err != nil {
		return nil, err
	}
	//
	eqc = ir.NewSeq(eqc, doubled)
	//
	callsites, err := lowerCallsites(ctx, syn, regions)
	if err != nil {
		return nil, err
	}
	//
	lkp, err := LowerLookups(syn, group.Regions(), lookups, ctx.AdviceIO(), ctx.InstanceIO())
	if err != nil {
		return nil, err
	}
	//
	return &GroupBody{
		name:        group.Name(),
		id:          id,
		inputCount:  ctx.InputCount(),
		outputCount: ctx.OutputCount(),
		key:         group.Key(),
		gates:       gates,
		eqc:         eqc,
		callsites:   callsites,
		lookups:     lkp,
		injected:    ir.Empty(),
	}, nil
}

// lowerCallsites lowers one callsite per child of the group, passing the free
// cells lifted to that callsite as extra arguments.
func lowerCallsites(ctx *GroupContext, syn *synthesis.CircuitSynthesis,
	regions map[uint]*synthesis.RegionData) ([]*CallSite, error) {
	//
	var (
		group     = ctx.Group()
		groups    = syn.Groups()
		callsites []*CallSite
	)
	//
	free := ctx.FreeCells()
	//
	for callNo, childID := range group.Children() {
		if childID >= uint(len(groups)) {
			return nil, fmt.Errorf("group %q references unknown child %d", group.Name(), childID)
		}
		//
		var extra []synthesis.GroupCell
		if callNo < len(free.Callsites) {
			extra = free.Callsites[callNo]
		}
		//
		cs, err := NewCallSite(uint(callNo), childID, groups[childID], extra,
			ctx, regions, syn.FixedData())
		if err != nil {
			return nil, err
		}
		//
		callsites = append(callsites, cs)
	}
	//
	return callsites, nil
}

// Name returns the group's name.
func (b *GroupBody) Name() string {
	return b.name
}

// ID returns the group's index within the circuit.
func (b *GroupBody) ID() uint {
	return b.id
}

// IsMain reports whether this is the circuit's top-level body.
func (b *GroupBody) IsMain() bool {
	return b.key.IsEmpty()
}

// Key returns the group's key, empty only for the top level.
func (b *GroupBody) Key() util.Option[plonk.GroupKey] {
	return b.key
}

// InputCount returns the number of function inputs, instance and advice
// combined.
func (b *GroupBody) InputCount() uint {
	return b.inputCount
}

// OutputCount returns the number of function outputs.
func (b *GroupBody) OutputCount() uint {
	return b.outputCount
}

// Callsites returns the calls this body makes to child groups.
func (b *GroupBody) Callsites() []*CallSite {
	return b.callsites
}

// Rename renames the body, which happens when equivalent groups are merged
// under one definition.
func (b *GroupBody) Rename(name string) {
	b.name = name
}

// Inject appends backend-provided statements, emitted after the lowered
// sections.
func (b *GroupBody) Inject(stmt ir.Stmt) {
	b.injected = ir.NewSeq(b.injected, stmt)
}

// Stmts assembles the body in emission order, each non-empty section headed by
// a comment.
func (b *GroupBody) Stmts() ir.Stmt {
	var stmts []ir.Stmt
	//
	sections := []struct {
		header string
		stmt   ir.Stmt
	}{
		{"Calls to subgroups", b.callsiteStmts()},
		{"Gate constraints", b.gates},
		{"Equality constraints", b.eqc},
		{"Lookups", b.lookups},
	}
	//
	for _, section := range sections {
		if !ir.IsEmpty(section.stmt) {
			stmts = append(stmts, ir.NewComment("%s", section.header), section.stmt)
		}
	}
	//
	if !ir.IsEmpty(b.injected) {
		stmts = append(stmts, b.injected)
	}
	//
	return ir.NewSeq(stmts...)
}

func (b *GroupBody) callsiteStmts() ir.Stmt {
	stmts := make([]ir.Stmt, 0, len(b.callsites))
	//
	for _, cs := range b.callsites {
		stmts = append(stmts, cs.Stmts())
	}
	//
	return ir.NewSeq(stmts...)
}

// Validate checks that every variable the body references is within bounds.
// All violations are reported together.
func (b *GroupBody) Validate() error {
	var errs []error
	//
	check := func(io ir.FuncIO) (ir.FuncIO, error) {
		switch {
		case io.Kind() == ir.FUNC_ARG:
			if n, _ := io.ArgNo(); n >= b.inputCount {
				errs = append(errs, fmt.Errorf("group %q: %s exceeds %d inputs", b.name, io, b.inputCount))
			}
		case io.Kind() == ir.FUNC_FIELD:
			if n, _ := io.FieldNo(); n >= b.outputCount {
				errs = append(errs, fmt.Errorf("group %q: %s exceeds %d outputs", b.name, io, b.outputCount))
			}
		case io.Kind() == ir.FUNC_CALL_OUTPUT:
			call, n, _ := io.CallOutputNo()
			if call >= uint(len(b.callsites)) {
				errs = append(errs, fmt.Errorf("group %q: %s references unknown call", b.name, io))
			} else if n >= uint(len(b.callsites[call].outputVars)) {
				errs = append(errs, fmt.Errorf("group %q: %s exceeds call outputs", b.name, io))
			}
		}
		//
		return io, nil
	}
	//
	//nolint:errcheck // check never fails, violations accumulate in errs.
	_ = b.mapIO(check)
	//
	return errors.Join(errs...)
}

// Relativize rewrites the absolute advice cells of the equality constraints
// into region-relative coordinates, which makes bodies differing only in
// region placement compare as equivalent.  An advice cell no region covers is
// an error.
func (b *GroupBody) Relativize(regions map[uint]*synthesis.RegionData) error {
	ordered := orderedRegions(regions)
	//
	var err error
	//
	b.eqc, err = ir.TryMapStmtIO(b.eqc, func(io ir.FuncIO) (ir.FuncIO, error) {
		if io.Kind() != ir.FUNC_ADVICE {
			return io, nil
		}
		//
		col, row, _ := io.CellCoords()
		//
		for _, region := range ordered {
			if !region.Columns()[plonk.NewColumn(plonk.ADVICE, col)] {
				continue
			}
			//
			if rel, ok := region.Relativize(row); ok {
				return ir.AdviceCell(col, rel), nil
			}
		}
		//
		return io, fmt.Errorf("group %q: advice cell %s is outside every region", b.name, io)
	})
	//
	return err
}

// orderedRegions lists the regions by ascending index, so relativization is
// deterministic.
func orderedRegions(regions map[uint]*synthesis.RegionData) []*synthesis.RegionData {
	indices := make([]uint, 0, len(regions))
	for idx := range regions {
		indices = append(indices, idx)
	}
	//
	slices.Sort(indices)
	//
	ordered := make([]*synthesis.RegionData, len(indices))
	for i, idx := range indices {
		ordered[i] = regions[idx]
	}
	//
	return ordered
}

// Fold constant-folds the body modulo the given prime.  Tautological
// constraints disappear; contradictions surface as ErrUnsatConstraint.
func (b *GroupBody) Fold(prime ir.Felt) error {
	var err error
	//
	if b.gates, err = ir.ConstantFoldStmt(b.gates, prime); err != nil {
		return fmt.Errorf("group %q gates: %w", b.name, err)
	}
	//
	if b.eqc, err = ir.ConstantFoldStmt(b.eqc, prime); err != nil {
		return fmt.Errorf("group %q equality constraints: %w", b.name, err)
	}
	//
	if b.lookups, err = ir.ConstantFoldStmt(b.lookups, prime); err != nil {
		return fmt.Errorf("group %q lookups: %w", b.name, err)
	}
	//
	if b.injected, err = ir.ConstantFoldStmt(b.injected, prime); err != nil {
		return fmt.Errorf("group %q: %w", b.name, err)
	}
	//
	for _, cs := range b.callsites {
		cs.Fold(prime)
	}
	//
	return nil
}

// Canonicalize rewrites the body's constraints into canonical form.
func (b *GroupBody) Canonicalize() {
	b.gates = ir.CanonicalizeStmt(b.gates)
	b.eqc = ir.CanonicalizeStmt(b.eqc)
	b.lookups = ir.CanonicalizeStmt(b.lookups)
	b.injected = ir.CanonicalizeStmt(b.injected)
}

// Equivalent reports whether two bodies describe the same constraints over
// the same io shape.  The top-level body is never equivalent to anything.
func (b *GroupBody) Equivalent(o *GroupBody) bool {
	if b.IsMain() || o.IsMain() {
		return false
	}
	//
	if b.key.Unwrap() != o.key.Unwrap() {
		return false
	}
	//
	if b.inputCount != o.inputCount || b.outputCount != o.outputCount {
		return false
	}
	//
	if len(b.callsites) != len(o.callsites) {
		return false
	}
	//
	for i := range b.callsites {
		if !b.callsites[i].Equivalent(o.callsites[i]) {
			return false
		}
	}
	//
	return ir.EquivalentStmt(b.gates, o.gates) &&
		ir.EquivalentStmt(b.eqc, o.eqc) &&
		ir.EquivalentStmt(b.lookups, o.lookups)
}

// mapIO rewrites every variable of every section and callsite.
func (b *GroupBody) mapIO(fn func(ir.FuncIO) (ir.FuncIO, error)) error {
	var err error
	//
	if b.gates, err = ir.TryMapStmtIO(b.gates, fn); err != nil {
		return err
	}
	//
	if b.eqc, err = ir.TryMapStmtIO(b.eqc, fn); err != nil {
		return err
	}
	//
	if b.lookups, err = ir.TryMapStmtIO(b.lookups, fn); err != nil {
		return err
	}
	//
	if b.injected, err = ir.TryMapStmtIO(b.injected, fn); err != nil {
		return err
	}
	//
	for _, cs := range b.callsites {
		if err = cs.TryMapIO(fn); err != nil {
			return err
		}
	}
	//
	return nil
}
