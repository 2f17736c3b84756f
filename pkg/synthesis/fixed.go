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
	log "github.com/sirupsen/logrus"

	"github.com/Veridise/go-plonkir/pkg/plonk"
)

// BlanketFill records the circuit filling a row suffix of a fixed column with
// a single value.
type BlanketFill struct {
	// From is the first row the fill applies to; the fill extends downward
	// without bound.
	From uint
	// Value assigned to every row of the range.
	Value fr.Element
}

// Contains reports whether the fill covers the given row.
func (b BlanketFill) Contains(row uint) bool {
	return row >= b.From
}

// FixedData records every value assigned to fixed columns during synthesis,
// both direct cell writes and blanket fills.  Blanket fills are kept in
// chronological order, so when resolving a row the latest fill that covers it
// wins.
type FixedData struct {
	assigned map[uint]map[uint]fr.Element
	blankets map[uint][]BlanketFill
	columns  map[uint]bool
}

// NewFixedData creates an empty fixed-data record.
func NewFixedData() *FixedData {
	return &FixedData{
		assigned: make(map[uint]map[uint]fr.Element),
		blankets: make(map[uint][]BlanketFill),
		columns:  make(map[uint]bool),
	}
}

// AssignFixed records a direct write to a fixed cell.
func (d *FixedData) AssignFixed(col plonk.Column, row uint, value fr.Element) {
	log.Debugf("recording fixed assignment @ col = %d, row = %d, value = %s", col.Index(), row, value.String())
	//
	d.columns[col.Index()] = true
	//
	if d.assigned[col.Index()] == nil {
		d.assigned[col.Index()] = make(map[uint]fr.Element)
	}
	//
	d.assigned[col.Index()][row] = value
}

// BlanketFill records a fill of the given column from the given row onward.
func (d *FixedData) BlanketFill(col plonk.Column, row uint, value fr.Element) {
	log.Debugf("recording blanket fill @ col = %d, from = %d, value = %s", col.Index(), row, value.String())
	//
	d.columns[col.Index()] = true
	d.blankets[col.Index()] = append(d.blankets[col.Index()], BlanketFill{row, value})
}

// ResolveFixed determines the value of a fixed cell, checking direct writes
// before the most recent blanket fill covering the row.  Cells never written
// default to zero.
func (d *FixedData) ResolveFixed(col uint, row uint) fr.Element {
	if rows, ok := d.assigned[col]; ok {
		if v, ok := rows[row]; ok {
			return v
		}
	}
	//
	fills := d.blankets[col]
	for i := len(fills) - 1; i >= 0; i-- {
		if fills[i].Contains(row) {
			return fills[i].Value
		}
	}
	//
	var zero fr.Element
	//
	return zero
}

// HasColumn reports whether any data exists for the given fixed column.
func (d *FixedData) HasColumn(col uint) bool {
	return d.columns[col]
}

// Subset copies out the data of the given columns, failing if any of them has
// no data at all.
func (d *FixedData) Subset(cols map[uint]bool) (*FixedData, error) {
	selected := NewFixedData()
	//
	for col := range cols {
		if !d.columns[col] {
			return nil, fmt.Errorf("fixed data does not have all the required columns")
		}
		//
		selected.columns[col] = true
		//
		if rows, ok := d.assigned[col]; ok {
			copied := make(map[uint]fr.Element, len(rows))
			for row, v := range rows {
				copied[row] = v
			}
			//
			selected.assigned[col] = copied
		}
		//
		if fills, ok := d.blankets[col]; ok {
			selected.blankets[col] = append([]BlanketFill{}, fills...)
		}
	}
	//
	return selected, nil
}

// ResolveQuery resolves a fixed query at an absolute row.  Satisfies the
// resolver contract used when evaluating expressions against a region row.
// Queries against columns this data knows nothing about are an error, which
// lets callers fall back to a symbolic resolution.
func (d *FixedData) ResolveQuery(q plonk.FixedQuery, row uint) (fr.Element, error) {
	if !d.HasColumn(q.Column.Index()) {
		return fr.Element{}, fmt.Errorf("no data for fixed column %d", q.Column.Index())
	}
	//
	return d.ResolveFixed(q.Column.Index(), row), nil
}
