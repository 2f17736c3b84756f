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
package plonk

import (
	"fmt"
	"sort"
	"strings"
)

// Lookup asserts that, on every row, a tuple of input expressions matches
// some row of a table of fixed data.  The table side of every pair must be a
// fixed-column query.
type Lookup struct {
	name   string
	idx    uint
	inputs []Expression
	table  []Expression
}

// NewLookup constructs a lookup from parallel input / table expression lists.
func NewLookup(name string, idx uint, inputs []Expression, table []Expression) Lookup {
	if len(inputs) != len(table) {
		panic(fmt.Sprintf("lookup %s has %d inputs but %d table columns", name, len(inputs), len(table)))
	}
	//
	return Lookup{name, idx, inputs, table}
}

// Name given to the lookup.
func (l *Lookup) Name() string {
	return l.name
}

// Idx returns the index of the lookup within the constraint system.
func (l *Lookup) Idx() uint {
	return l.idx
}

// Inputs returns the expressions used to query the lookup table.
func (l *Lookup) Inputs() []Expression {
	return l.inputs
}

// Table returns the expressions identifying the table columns.
func (l *Lookup) Table() []Expression {
	return l.table
}

// TableQueries returns the table side of every pair as fixed queries, failing
// if any table expression is not a plain fixed-column query.
func (l *Lookup) TableQueries() ([]FixedQuery, error) {
	queries := make([]FixedQuery, len(l.table))
	//
	for i, e := range l.table {
		q, ok := AsFixedQuery(e)
		if !ok {
			return nil, fmt.Errorf("lookup %s: table expressions can only be fixed cell queries", l.name)
		}
		//
		queries[i] = q
	}
	//
	return queries, nil
}

// ExprForColumn returns the input expression paired with the table query on
// the given fixed column.
func (l *Lookup) ExprForColumn(col uint) (Expression, error) {
	queries, err := l.TableQueries()
	if err != nil {
		return nil, err
	}
	//
	for i, q := range queries {
		if q.Column.Index() == col {
			return l.inputs[i], nil
		}
	}
	//
	return nil, fmt.Errorf("lookup %s: column %d not found", l.name, col)
}

// Kind computes the identity under which lookups share a generated callable:
// the sorted signature of the fixed columns their tables query.  Two lookups
// of the same kind read the same table shape and can share one definition.
func (l *Lookup) Kind() (LookupKind, error) {
	queries, err := l.TableQueries()
	if err != nil {
		return LookupKind(""), err
	}
	//
	cols := make([]uint, len(queries))
	for i, q := range queries {
		cols[i] = q.Column.Index()
	}
	//
	return NewLookupKind(cols), nil
}

func (l *Lookup) String() string {
	return fmt.Sprintf("Lookup %d '%s'", l.idx, l.name)
}

// LookupKind is the sorted table-column signature of a lookup, usable as a
// map key.
type LookupKind string

// NewLookupKind canonicalizes a set of fixed column indices into a kind.
func NewLookupKind(cols []uint) LookupKind {
	sorted := make([]uint, len(cols))
	copy(sorted, cols)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	//
	var sb strings.Builder
	for i, c := range sorted {
		if i > 0 {
			sb.WriteByte(':')
		}
		//
		fmt.Fprintf(&sb, "f%d", c)
	}
	//
	return LookupKind(sb.String())
}

// Columns recovers the sorted column indices encoded in this kind.
func (k LookupKind) Columns() []uint {
	if k == "" {
		return nil
	}
	//
	parts := strings.Split(string(k), ":")
	cols := make([]uint, len(parts))
	//
	for i, p := range parts {
		var c uint
		if _, err := fmt.Sscanf(p, "f%d", &c); err != nil {
			panic(fmt.Sprintf("malformed lookup kind %q", string(k)))
		}
		//
		cols[i] = c
	}
	//
	return cols
}
