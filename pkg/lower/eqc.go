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
	"fmt"

	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/ir/lift"
	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/resolve"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// SelectEqualityConstraints filters the circuit's equality edges down to those
// a group body must enforce itself.  Edges fully outside the group, or whose
// enforcement falls to the caller via lifted io, are dropped.
func SelectEqualityConstraints(group *synthesis.Group, constraints *synthesis.EqConstraintGraph,
	freeInputs []synthesis.GroupCell) ([]synthesis.EqConstraint, error) {
	//
	bounds := lift.NewGroupBoundsWithExtra(group, freeInputs)
	//
	var selected []synthesis.EqConstraint
	//
	for _, edge := range constraints.Edges() {
		eb := bounds.CheckEdge(edge)
		//
		keep, err := keepEdge(group, edge, eb)
		if err != nil {
			return nil, err
		}
		//
		if keep {
			selected = append(selected, edge)
		}
	}
	//
	return selected, nil
}

// keepEdge decides one edge.  Fixed-to-constant edges are always enforced by
// whichever group sees them selected; cell-to-cell edges are enforced by the
// group that owns at least one endpoint.
func keepEdge(group *synthesis.Group, edge synthesis.EqConstraint, eb lift.EdgeBounds) (bool, error) {
	if eb.Const {
		return true, nil
	}
	//
	lo, hi := eb.From, eb.To
	if lo > hi {
		lo, hi = hi, lo
	}
	//
	switch {
	case lo == lift.BOUND_WITHIN && hi == lift.BOUND_WITHIN:
		return true, nil
	case lo == lift.BOUND_WITHIN && hi == lift.BOUND_IO:
		return true, nil
	case lo == lift.BOUND_WITHIN && hi == lift.BOUND_FOREIGN_IO:
		return true, nil
	case lo == lift.BOUND_IO && hi == lift.BOUND_IO:
		return true, nil
	case lo == lift.BOUND_IO && hi == lift.BOUND_FOREIGN_IO:
		return true, nil
	case lo == lift.BOUND_FOREIGN_IO && hi == lift.BOUND_FOREIGN_IO:
		// Circuit-level io cells carry no region index, so at the top level
		// both endpoints classify as foreign.  There is no caller to enforce
		// the edge, so the main body keeps it; in a subgroup it is the
		// caller's job.
		return group.IsTopLevel(), nil
	case lo == lift.BOUND_WITHIN && hi == lift.BOUND_OUTSIDE:
		// The free-cell lift pulls advice cells inside; only fixed cells may
		// still cross the boundary.
		outside := edge.To
		if eb.From == lift.BOUND_OUTSIDE {
			outside = edge.From
		}
		//
		if cell, ok := outside.IsCell(); ok && cell.Column.IsFixed() {
			return true, nil
		}
		//
		return false, fmt.Errorf("group %q: unliftable constraint %s = %s", group.Name(), edge.From, edge.To)
	default:
		return false, nil
	}
}

// InterRegionConstraints lowers equality edges into equality statements.  Each
// cell endpoint is its column queried at the current rotation, scoped to the
// endpoint's absolute row; fixed cells covered by the resolver fold to
// literals.
func InterRegionConstraints(edges []synthesis.EqConstraint, adviceIO, instanceIO *plonk.CircuitIO,
	fixed resolve.FixedResolver) (ir.Stmt, error) {
	//
	var stmts []ir.Stmt
	//
	for _, edge := range edges {
		lhs, err := lowerEqArg(edge.From, adviceIO, instanceIO, fixed)
		if err != nil {
			return nil, err
		}
		//
		rhs, err := lowerEqArg(edge.To, adviceIO, instanceIO, fixed)
		if err != nil {
			return nil, err
		}
		//
		stmts = append(stmts, ir.NewConstraint(ir.CMP_EQ, lhs, rhs))
	}
	//
	return ir.NewSeq(stmts...), nil
}

func lowerEqArg(arg synthesis.EqArg, adviceIO, instanceIO *plonk.CircuitIO,
	fixed resolve.FixedResolver) (ir.Aexpr, error) {
	//
	if value, ok := arg.IsConst(); ok {
		return ir.Const{Value: ir.FeltFromElement(value)}, nil
	}
	//
	cell, _ := arg.IsCell()
	r := resolve.NewRow(cell.Row, adviceIO, instanceIO, fixed)
	//
	return Expr(cell.Column.QueryCell(plonk.ROT_CUR), r)
}

// SearchDoubleAnnotated finds cells declared both as input and output of the
// group and binds the two views together.  The input view resolves with input
// priority and the output view with output priority, so the constraint ties
// the function argument to the function result.
func SearchDoubleAnnotated(ctx *GroupContext, regions map[uint]*synthesis.RegionData,
	fixed resolve.FixedResolver) (ir.Stmt, error) {
	//
	var stmts []ir.Stmt
	//
	for _, in := range ctx.Group().Inputs() {
		for _, out := range ctx.Group().Outputs() {
			if in.Cell() != out.Cell() {
				continue
			}
			//
			lhs, err := resolveWithPriority(in, ctx, regions, fixed, resolve.PRIORITY_INPUT)
			if err != nil {
				return nil, err
			}
			//
			rhs, err := resolveWithPriority(out, ctx, regions, fixed, resolve.PRIORITY_OUTPUT)
			if err != nil {
				return nil, err
			}
			//
			stmts = append(stmts, ir.NewConstraint(ir.CMP_EQ, lhs, rhs))
		}
	}
	//
	return ir.NewSeq(stmts...), nil
}

func resolveWithPriority(cell synthesis.GroupCell, ctx *GroupContext,
	regions map[uint]*synthesis.RegionData, fixed resolve.FixedResolver,
	priority resolve.ResolutionPriority) (ir.Aexpr, error) {
	//
	var r resolve.Resolver
	//
	if cell.RegionIndex().HasValue() {
		idx := cell.RegionIndex().Unwrap()
		//
		region, found := regions[idx]
		if !found {
			return nil, fmt.Errorf("cell %s references unknown region %d", cell, idx)
		}
		//
		r = resolve.NewRegionRow(region, cell.Row(), ctx.AdviceIO(), ctx.InstanceIO(), fixed).WithPriority(priority)
	} else {
		r = resolve.NewRow(cell.Row(), ctx.AdviceIO(), ctx.InstanceIO(), fixed).WithPriority(priority)
	}
	//
	return Expr(cell.ToExpr(), r)
}
