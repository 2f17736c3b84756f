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
package synthesis

import (
	"fmt"

	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/util"
)

// GroupCellKind distinguishes how a group io cell was declared.
type GroupCellKind uint8

const (
	// GROUP_CELL_ASSIGNED is a cell assigned during synthesis.
	GROUP_CELL_ASSIGNED GroupCellKind = iota
	// GROUP_CELL_INSTANCE is an instance cell declared as circuit io.
	GROUP_CELL_INSTANCE
	// GROUP_CELL_ADVICE is an advice cell declared as circuit io.
	GROUP_CELL_ADVICE
)

// GroupCell is a cell declared as input or output of a group, either assigned
// during synthesis or taken from the circuit-level io declarations.
type GroupCell struct {
	kind     GroupCellKind
	assigned plonk.AssignedCell
	io       plonk.Cell
}

// AssignedGroupCell wraps a cell assigned during synthesis.
func AssignedGroupCell(cell plonk.AssignedCell) GroupCell {
	return GroupCell{kind: GROUP_CELL_ASSIGNED, assigned: cell}
}

// IOGroupCell wraps a circuit-io cell, which must be instance or advice.
func IOGroupCell(cell plonk.Cell) (GroupCell, bool) {
	switch cell.Column.Kind() {
	case plonk.INSTANCE:
		return GroupCell{kind: GROUP_CELL_INSTANCE, io: cell}, true
	case plonk.ADVICE:
		return GroupCell{kind: GROUP_CELL_ADVICE, io: cell}, true
	}
	//
	return GroupCell{}, false
}

// Kind returns how this cell was declared.
func (c GroupCell) Kind() GroupCellKind {
	return c.kind
}

// Cell returns the underlying (column, absolute row) cell.
func (c GroupCell) Cell() plonk.Cell {
	if c.kind == GROUP_CELL_ASSIGNED {
		return c.assigned.Cell
	}
	//
	return c.io
}

// Column returns the cell's column.
func (c GroupCell) Column() plonk.Column {
	return c.Cell().Column
}

// Row returns the cell's absolute row.
func (c GroupCell) Row() uint {
	return c.Cell().Row
}

// RegionIndex returns the index of the region that assigned the cell, when it
// was assigned during synthesis.
func (c GroupCell) RegionIndex() util.Option[uint] {
	if c.kind == GROUP_CELL_ASSIGNED {
		return util.Some(c.assigned.Region)
	}
	//
	return util.None[uint]()
}

// IsFixed reports whether the cell lives in a fixed column.
func (c GroupCell) IsFixed() bool {
	return c.Cell().Column.IsFixed()
}

// ToExpr returns a query expression for the cell's column at the current
// rotation.
func (c GroupCell) ToExpr() plonk.Expression {
	return c.Cell().Column.QueryCell(plonk.ROT_CUR)
}

func (c GroupCell) String() string {
	switch c.kind {
	case GROUP_CELL_ASSIGNED:
		return fmt.Sprintf("assigned(%s, region %d)", c.assigned.Cell, c.assigned.Region)
	case GROUP_CELL_INSTANCE:
		return fmt.Sprintf("instance_io(%s)", c.io)
	default:
		return fmt.Sprintf("advice_io(%s)", c.io)
	}
}

// Group is a flat read-only callable unit: a set of regions with declared io
// cells and child group indices.  Exactly one keyless group exists per
// circuit, the implicit top level.
type Group struct {
	key      util.Option[plonk.GroupKey]
	name     string
	inputs   []GroupCell
	outputs  []GroupCell
	regions  *Regions
	children []uint
}

// IsTopLevel reports whether this is the circuit's implicit top-level group.
func (g *Group) IsTopLevel() bool {
	return g.key.IsEmpty()
}

// Key returns the group's key, empty only for the top level.
func (g *Group) Key() util.Option[plonk.GroupKey] {
	return g.key
}

// Name returns a printable name for the group.
func (g *Group) Name() string {
	if g.IsTopLevel() {
		return "Main"
	}
	//
	if g.name == "" {
		return "unnamed_group"
	}
	//
	return g.name
}

// Inputs returns the declared input cells in declaration order.
func (g *Group) Inputs() []GroupCell {
	return g.inputs
}

// Outputs returns the declared output cells in declaration order.
func (g *Group) Outputs() []GroupCell {
	return g.outputs
}

// Regions returns the group's directly-owned committed regions.
func (g *Group) Regions() []*RegionData {
	return g.regions.Committed()
}

// Children returns the indices of the group's direct children within the
// flattened group list.
func (g *Group) Children() []uint {
	return g.children
}

// HasChild returns the position of the given group index in this group's
// child list, or false.
func (g *Group) HasChild(n uint) (uint, bool) {
	for i, c := range g.children {
		if c == n {
			return uint(i), true
		}
	}
	//
	return 0, false
}

// Groups is the flattened collection of a circuit's groups, ordered children
// before parents with the top level last.
type Groups []*Group

// TopLevel returns the circuit's top-level group.
func (gs Groups) TopLevel() *Group {
	// Flattening puts the top level last, so scan in reverse.
	for i := len(gs) - 1; i >= 0; i-- {
		if gs[i].IsTopLevel() {
			return gs[i]
		}
	}
	//
	return nil
}

// RegionStarts maps every committed region's index to its start row.
func (gs Groups) RegionStarts() map[uint]uint {
	starts := make(map[uint]uint)
	//
	for _, g := range gs {
		for _, r := range g.Regions() {
			index := r.Index()
			if index.IsEmpty() {
				panic(fmt.Sprintf("%s does not have an index", r))
			}
			//
			starts[index.Unwrap()] = r.Start().UnwrapOr(0)
		}
	}
	//
	return starts
}

// RegionGroup maps every committed region's index to the index of its owning
// group, failing if two groups claim the same region.
func (gs Groups) RegionGroup() (map[uint]uint, error) {
	owners := make(map[uint]uint)
	//
	for gi, g := range gs {
		for _, r := range g.Regions() {
			index := r.Index()
			if index.IsEmpty() {
				return nil, fmt.Errorf("%s does not have an index", r)
			}
			//
			ri := index.Unwrap()
			if prev, taken := owners[ri]; taken {
				return nil, fmt.Errorf("region %d owned by both group %d and group %d", ri, prev, gi)
			}
			//
			owners[ri] = uint(gi)
		}
	}
	//
	return owners, nil
}

// groupTree is the under-construction form of a group, holding its children
// directly.
type groupTree struct {
	key      util.Option[plonk.GroupKey]
	name     string
	inputs   []GroupCell
	outputs  []GroupCell
	regions  *Regions
	children []*groupTree
}

func newGroupTree(name string, key util.Option[plonk.GroupKey]) *groupTree {
	return &groupTree{
		key:     key,
		name:    name,
		regions: NewRegions(),
	}
}

func (t *groupTree) flattenInto(groups *[]*Group) {
	var childIndices []uint
	//
	for _, child := range t.children {
		child.flattenInto(groups)
		childIndices = append(childIndices, uint(len(*groups)-1))
	}
	//
	*groups = append(*groups, &Group{
		key:      t.key,
		name:     t.name,
		inputs:   t.inputs,
		outputs:  t.outputs,
		regions:  t.regions,
		children: childIndices,
	})
}

// GroupBuilder manages group construction during synthesis.  It starts with
// the implicit top-level group and mirrors the circuit's enter/exit group
// calls with a stack; completed groups become children of the group below
// them.
type GroupBuilder struct {
	root  *groupTree
	stack []*groupTree
	// Region indices are reserved circuit-wide rather than per group, so the
	// reservation state is shared by every recorder the builder hands out.
	indices *Regions
}

// NewGroupBuilder creates a builder holding an empty top-level group.
func NewGroupBuilder() *GroupBuilder {
	root := newGroupTree("", util.None[plonk.GroupKey]())
	//
	return &GroupBuilder{root: root, indices: root.regions}
}

// current returns the group being built: the top of the stack, or the root.
func (b *GroupBuilder) current() *groupTree {
	if n := len(b.stack); n > 0 {
		return b.stack[n-1]
	}
	//
	return b.root
}

// Push opens a new group as a pending child of the current one.
func (b *GroupBuilder) Push(name string, key plonk.GroupKey) {
	tree := newGroupTree(name, util.Some(key))
	// Share the circuit-wide index reservation state.
	tree.regions.used = b.indices.used
	//
	b.stack = append(b.stack, tree)
}

// Pop completes the innermost pending group.
func (b *GroupBuilder) Pop() {
	n := len(b.stack)
	if n == 0 {
		panic("no pending groups")
	}
	//
	g := b.stack[n-1]
	b.stack = b.stack[:n-1]
	//
	parent := b.current()
	parent.children = append(parent.children, g)
}

// AddInput adds a cell to the current group's inputs.  Fixed cells are
// dropped, since their values are baked into the callee.
func (b *GroupBuilder) AddInput(cell GroupCell) {
	if !cell.IsFixed() {
		cur := b.current()
		cur.inputs = append(cur.inputs, cell)
	}
}

// AddOutput adds a cell to the current group's outputs, dropping fixed cells.
func (b *GroupBuilder) AddOutput(cell GroupCell) {
	if !cell.IsFixed() {
		cur := b.current()
		cur.outputs = append(cur.outputs, cell)
	}
}

// AddRootInput adds a circuit-io cell to the top-level group's inputs.
func (b *GroupBuilder) AddRootInput(cell GroupCell) {
	b.root.inputs = append(b.root.inputs, cell)
}

// AddRootOutput adds a circuit-io cell to the top-level group's outputs.
func (b *GroupBuilder) AddRootOutput(cell GroupCell) {
	b.root.outputs = append(b.root.outputs, cell)
}

// Regions returns the region recorder of the group currently being built.
func (b *GroupBuilder) Regions() *Regions {
	return b.current().regions
}

// HasPending reports whether any group is still open.
func (b *GroupBuilder) HasPending() bool {
	return len(b.stack) != 0
}

// Finish flattens the built tree, children before parents with the top level
// last.  Panics if any group is still pending.
func (b *GroupBuilder) Finish() Groups {
	if len(b.stack) != 0 {
		panic("builder has pending groups")
	}
	//
	var groups []*Group
	b.root.flattenInto(&groups)
	//
	return Groups(groups)
}
