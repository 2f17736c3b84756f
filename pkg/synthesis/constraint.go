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

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/Veridise/go-plonkir/pkg/plonk"
)

// EqArgKind distinguishes the node variants of the equality graph.
type EqArgKind uint8

const (
	// EQ_CELL is a cell of any column kind.
	EQ_CELL EqArgKind = iota
	// EQ_CONST is a constant field element.
	EQ_CONST
)

// EqArg is a node in the equality-constraint graph: either a cell or a
// constant field element.
type EqArg struct {
	kind  EqArgKind
	cell  plonk.Cell
	value fr.Element
}

// CellArg constructs a cell node.
func CellArg(cell plonk.Cell) EqArg {
	return EqArg{kind: EQ_CELL, cell: cell}
}

// ConstArg constructs a constant node.
func ConstArg(value fr.Element) EqArg {
	return EqArg{kind: EQ_CONST, value: value}
}

// IsCell reports whether this node is a cell, returning it if so.
func (a EqArg) IsCell() (plonk.Cell, bool) {
	return a.cell, a.kind == EQ_CELL
}

// IsConst reports whether this node is a constant, returning it if so.
func (a EqArg) IsConst() (fr.Element, bool) {
	return a.value, a.kind == EQ_CONST
}

func (a EqArg) String() string {
	if a.kind == EQ_CONST {
		return a.value.String()
	}
	//
	return a.cell.String()
}

// EqConstraint is an undirected equality edge, either between two cells or
// between a fixed cell and the constant it was assigned.
type EqConstraint struct {
	From EqArg
	To   EqArg
}

// AnyToAny constructs a cell-to-cell equality edge.
func AnyToAny(from plonk.Cell, to plonk.Cell) EqConstraint {
	return EqConstraint{CellArg(from), CellArg(to)}
}

// FixedToConst constructs an edge between a fixed cell and its assigned
// value.
func FixedToConst(cell plonk.Cell, value fr.Element) EqConstraint {
	if !cell.Column.IsFixed() {
		panic(fmt.Sprintf("cell %s is not fixed", cell))
	}
	//
	return EqConstraint{CellArg(cell), ConstArg(value)}
}

// EqConstraintGraph is a de-duplicated undirected graph over cells and
// constants.  Edges are kept in insertion order so downstream traversals are
// deterministic.
type EqConstraintGraph struct {
	edges    []EqConstraint
	edgeSet  map[EqConstraint]bool
	vertices map[EqArg]bool
}

// NewEqConstraintGraph creates an empty graph.
func NewEqConstraintGraph() *EqConstraintGraph {
	return &EqConstraintGraph{
		edgeSet:  make(map[EqConstraint]bool),
		vertices: make(map[EqArg]bool),
	}
}

// Add inserts an edge, ignoring duplicates in either orientation.  Self loops
// are an internal error.
func (g *EqConstraintGraph) Add(edge EqConstraint) {
	if edge.From == edge.To {
		panic(fmt.Sprintf("self loop on %s", edge.From))
	}
	//
	if g.Contains(edge) {
		return
	}
	//
	g.edges = append(g.edges, edge)
	g.edgeSet[edge] = true
	g.vertices[edge.From] = true
	g.vertices[edge.To] = true
}

// Contains reports whether the graph already holds the edge, in either
// orientation.
func (g *EqConstraintGraph) Contains(edge EqConstraint) bool {
	return g.edgeSet[edge] || g.edgeSet[EqConstraint{edge.To, edge.From}]
}

// Edges returns the edges in insertion order.
func (g *EqConstraintGraph) Edges() []EqConstraint {
	return g.edges
}

// Vertices returns the distinct nodes of the graph.  Cell vertices come from
// both edge variants; constant vertices only from fixed-to-const edges.
func (g *EqConstraintGraph) Vertices() []EqArg {
	// Walk the edges rather than the set to keep the order deterministic.
	seen := make(map[EqArg]bool, len(g.vertices))
	//
	var vs []EqArg
	//
	for _, e := range g.edges {
		for _, v := range [2]EqArg{e.From, e.To} {
			if !seen[v] {
				seen[v] = true
				vs = append(vs, v)
			}
		}
	}
	//
	return vs
}

// CellVertices returns every distinct cell appearing in the graph.
func (g *EqConstraintGraph) CellVertices() []plonk.Cell {
	var cells []plonk.Cell
	//
	for _, v := range g.Vertices() {
		if cell, ok := v.IsCell(); ok {
			cells = append(cells, cell)
		}
	}
	//
	return cells
}
