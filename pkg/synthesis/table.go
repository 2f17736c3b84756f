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
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/Veridise/go-plonkir/pkg/plonk"
)

// ErrTableGaps signals that materializing a lookup table found rows no fill
// or direct write ever covered.
var ErrTableGaps = errors.New("detected gaps in table")

// TableData is the sparse representation of a lookup table: the fixed data of
// a demoted region, restricted to the table's columns.
type TableData struct {
	data *FixedData
}

// NewTableData wraps the fixed data of a demoted region.
func NewTableData(data *FixedData) *TableData {
	return &TableData{data}
}

// HasColumns reports whether the table holds data for every queried column.
func (t *TableData) HasColumns(queries []plonk.AnyQuery) bool {
	for _, q := range queries {
		if !t.data.HasColumn(q.Column.Index()) {
			return false
		}
	}
	//
	return true
}

// GetRows materializes the table's values for the given columns, column
// major.  Returns false if this table does not cover the queried columns, and
// an error if the sparse fills leave gaps.
func (t *TableData) GetRows(queries []plonk.AnyQuery) ([][]fr.Element, bool, error) {
	if !t.HasColumns(queries) {
		return nil, false, nil
	}
	//
	limit, err := t.upperLimit(queries)
	if err != nil {
		return nil, true, err
	}
	//
	columns := make([][]fr.Element, len(queries))
	//
	for i, q := range queries {
		dense, err := t.fillColumn(q.Column.Index(), limit)
		if err != nil {
			return nil, true, err
		}
		//
		columns[i] = dense
	}
	//
	return columns, true, nil
}

// upperLimit determines the last row of the table: the largest directly
// written row of any column, falling back to the latest blanket-fill start.
func (t *TableData) upperLimit(queries []plonk.AnyQuery) (uint, error) {
	var (
		limit uint
		found bool
	)
	//
	for _, q := range queries {
		col := q.Column.Index()
		colLimit, colFound := t.columnLimit(col)
		//
		if !colFound {
			return 0, fmt.Errorf("could not get the largest row fill of table column %d", col)
		}
		//
		if !found || colLimit > limit {
			limit, found = colLimit, true
		}
	}
	//
	if !found {
		return 0, fmt.Errorf("could not get the largest row fill of table")
	}
	//
	return limit, nil
}

func (t *TableData) columnLimit(col uint) (uint, bool) {
	var (
		limit uint
		found bool
	)
	// Direct writes take priority when determining the extent.
	for row := range t.data.assigned[col] {
		if !found || row > limit {
			limit, found = row, true
		}
	}
	//
	if found {
		return limit, true
	}
	//
	for _, fill := range t.data.blankets[col] {
		if !found || fill.From > limit {
			limit, found = fill.From, true
		}
	}
	//
	return limit, found
}

// fillColumn turns the sparse fills of one column into a dense value list of
// rows 0..limit, blanket fills first (later fills shadow earlier ones up to
// where the next fill starts) and direct writes overriding on top.
func (t *TableData) fillColumn(col uint, limit uint) ([]fr.Element, error) {
	dense := make([]fr.Element, limit+1)
	check := make([]bool, limit+1)
	//
	last := limit + 1
	//
	fills := t.data.blankets[col]
	for i := len(fills) - 1; i >= 0; i-- {
		for row := fills[i].From; row < last; row++ {
			dense[row] = fills[i].Value
			check[row] = true
		}
		//
		last = fills[i].From
	}
	// Direct writes go last to override the blankets.
	for row, v := range t.data.assigned[col] {
		if row <= limit {
			dense[row] = v
			check[row] = true
		}
	}
	//
	for _, covered := range check {
		if !covered {
			return nil, ErrTableGaps
		}
	}
	//
	return dense, nil
}

// LookupTableRow is one materialized row of a lookup table, indexable by the
// fixed columns participating in the lookup.
type LookupTableRow struct {
	columns []uint
	values  []fr.Element
}

// NewLookupTableRow pairs column indices with the row's values.
func NewLookupTableRow(columns []uint, values []fr.Element) LookupTableRow {
	return LookupTableRow{columns, values}
}

// Value returns the row's value in the given fixed column.
func (r *LookupTableRow) Value(col uint) (fr.Element, error) {
	for i, c := range r.columns {
		if c == col {
			return r.values[i], nil
		}
	}
	//
	var zero fr.Element
	//
	return zero, fmt.Errorf("column %d is not part of the table row", col)
}
