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

	log "github.com/sirupsen/logrus"

	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/util"
)

// SelectorSet is the set of selector indices enabled on one row.
type SelectorSet map[uint]bool

// RegionData records one region of the circuit: its name, lazily-assigned
// index, row extent, the columns it touches, the selectors enabled per row,
// and the namespace stack active while it was open.
type RegionData struct {
	name             string
	index            util.Option[uint]
	enabledSelectors map[uint]SelectorSet
	columns          map[plonk.Column]bool
	rows             util.Option[[2]uint]
	namespaces       []string
	isTable          bool
}

// NewRegionData creates an open region with the given name and index.
func NewRegionData(name string, index uint) *RegionData {
	return &RegionData{
		name:             name,
		index:            util.Some(index),
		enabledSelectors: make(map[uint]SelectorSet),
		columns:          make(map[plonk.Column]bool),
	}
}

// Name returns the region's name.  Names are not required to be unique.
func (r *RegionData) Name() string {
	return r.name
}

// Index returns the region's index, if it still holds one.
func (r *RegionData) Index() util.Option[uint] {
	return r.index
}

// Rows returns the inclusive row extent of the region.  The second result is
// false if no cell was ever assigned.
func (r *RegionData) Rows() ([2]uint, bool) {
	if r.rows.IsEmpty() {
		return [2]uint{}, false
	}
	//
	return r.rows.Unwrap(), true
}

// Start returns the first row of the region.
func (r *RegionData) Start() util.Option[uint] {
	if r.rows.IsEmpty() {
		return util.None[uint]()
	}
	//
	return util.Some(r.rows.Unwrap()[0])
}

// RowRange iterates the region's rows in order, calling fn for each.
func (r *RegionData) RowRange(fn func(row uint)) {
	if extent, ok := r.Rows(); ok {
		for row := extent[0]; row <= extent[1]; row++ {
			fn(row)
		}
	}
}

// ContainsRow reports whether the given absolute row falls inside the
// region's extent.
func (r *RegionData) ContainsRow(row uint) bool {
	extent, ok := r.Rows()
	//
	return ok && row >= extent[0] && row <= extent[1]
}

// Relativize returns the offset of the given absolute row from the region's
// start, or false if the row is outside the region.
func (r *RegionData) Relativize(row uint) (uint, bool) {
	if !r.ContainsRow(row) {
		return 0, false
	}
	//
	return row - r.rows.Unwrap()[0], true
}

// UpdateExtent grows the region to cover the given cell.
func (r *RegionData) UpdateExtent(col plonk.Column, row uint) {
	r.columns[col] = true
	//
	if r.rows.IsEmpty() {
		r.rows = util.Some([2]uint{row, row})
		return
	}
	//
	extent := r.rows.Unwrap()
	r.rows = util.Some([2]uint{min(extent[0], row), max(extent[1], row)})
}

// EnableSelector records the selector as enabled on the given row.
func (r *RegionData) EnableSelector(sel plonk.Selector, row uint) {
	if r.enabledSelectors[row] == nil {
		r.enabledSelectors[row] = make(SelectorSet)
	}
	//
	r.enabledSelectors[row][sel.Index()] = true
}

// SelectorsEnabledAt returns the selectors enabled on the given row.  All
// other selectors are by construction not enabled.
func (r *RegionData) SelectorsEnabledAt(row uint) SelectorSet {
	return r.enabledSelectors[row]
}

// Columns returns the columns this region touches.
func (r *RegionData) Columns() map[plonk.Column]bool {
	return r.columns
}

// FixedColumns returns the indices of the fixed columns this region touches.
func (r *RegionData) FixedColumns() map[uint]bool {
	cols := make(map[uint]bool)
	//
	for col := range r.columns {
		if col.IsFixed() {
			cols[col.Index()] = true
		}
	}
	//
	return cols
}

// IsTable reports whether the region was demoted to a lookup table.
func (r *RegionData) IsTable() bool {
	return r.isTable
}

// PushNamespace pushes a diagnostic namespace.
func (r *RegionData) PushNamespace(name string) {
	r.namespaces = append(r.namespaces, name)
}

// PopNamespace pops the innermost namespace, if any.
func (r *RegionData) PopNamespace() {
	if n := len(r.namespaces); n > 0 {
		r.namespaces = r.namespaces[:n-1]
	}
}

// CellName builds the fully-qualified diagnostic name for a cell assigned in
// this region under the current namespace stack.
func (r *RegionData) CellName(label string) FQN {
	return NewFQN(r.name, r.index, r.namespaces, util.Some(label))
}

func (r *RegionData) String() string {
	if r.index.IsEmpty() {
		return fmt.Sprintf("region <unk> %q", r.name)
	}
	//
	return fmt.Sprintf("region %d %q", r.index.Unwrap(), r.name)
}

// markAsTable strips the region's index for recovery and flags it as a table.
func (r *RegionData) markAsTable() uint {
	index := r.index.Unwrap()
	r.index = util.None[uint]()
	r.isTable = true
	//
	return index
}

// Regions is the region recorder.  It enforces the region lifecycle: at most
// one region is open at a time, committed regions hold pairwise-distinct
// indices, and demoted table regions hand their index back for reuse.
type Regions struct {
	regions        []*RegionData
	tables         []*RegionData
	current        *RegionData
	currentIsTable bool
	used           map[uint]bool
	recovered      []uint
	next           uint
}

// NewRegions creates an empty recorder.
func NewRegions() *Regions {
	return &Regions{used: make(map[uint]bool)}
}

// Push opens a new region, reserving the next free region index: one
// recovered from a just-demoted table if available, else the next unused
// integer.
func (r *Regions) Push(name string) error {
	if r.current != nil {
		return fmt.Errorf("region %q opened while %q is still open", name, r.current.Name())
	}
	//
	r.push(name, r.reserveIndex())
	//
	return nil
}

// PushWithIndex opens a new region under an explicitly requested index,
// failing if the index is already in use.
func (r *Regions) PushWithIndex(name string, index uint) error {
	if r.current != nil {
		return fmt.Errorf("region %q opened while %q is still open", name, r.current.Name())
	}
	//
	if r.used[index] {
		return fmt.Errorf("region index %d is already in use", index)
	}
	// Drop the index from the recovery pool if it was there.
	for i, rec := range r.recovered {
		if rec == index {
			r.recovered = append(r.recovered[:i], r.recovered[i+1:]...)
			break
		}
	}
	//
	r.used[index] = true
	r.push(name, index)
	//
	return nil
}

func (r *Regions) push(name string, index uint) {
	log.Debugf("region %d %q is the current region", index, name)
	//
	r.current = NewRegionData(name, index)
	r.currentIsTable = false
}

// reserveIndex implements the reservation order: recovered indices first,
// then the next unused integer, skipping any index already taken explicitly.
func (r *Regions) reserveIndex() uint {
	if n := len(r.recovered); n > 0 {
		index := r.recovered[n-1]
		r.recovered = r.recovered[:n-1]
		r.used[index] = true
		//
		return index
	}
	//
	for r.used[r.next] {
		r.next++
	}
	//
	index := r.next
	r.used[index] = true
	r.next++
	//
	return index
}

// Commit closes the open region.  Regions flagged as tables are demoted: they
// leave the region list and their index returns to the recovery pool.
func (r *Regions) Commit() error {
	if r.current == nil {
		return fmt.Errorf("no region is open")
	}
	//
	region := r.current
	r.current = nil
	//
	if r.currentIsTable {
		log.Debugf("demoting %s to table", region)
		//
		index := region.markAsTable()
		delete(r.used, index)
		r.recovered = append(r.recovered, index)
		r.tables = append(r.tables, region)
		//
		return nil
	}
	//
	log.Debugf("%s added to the regions list", region)
	r.regions = append(r.regions, region)
	//
	return nil
}

// MarkCurrentAsTable flags the open region for demotion at commit time.
func (r *Regions) MarkCurrentAsTable() {
	r.currentIsTable = true
}

// DemoteLatest pops the most-recently-committed region from the region list
// and files it as a lookup table, handing its index back for reuse.  When a
// region is still open it is flagged for demotion at commit time instead.
func (r *Regions) DemoteLatest() {
	if r.current != nil {
		r.currentIsTable = true
		return
	}
	//
	n := len(r.regions)
	if n == 0 {
		return
	}
	//
	region := r.regions[n-1]
	r.regions = r.regions[:n-1]
	//
	log.Debugf("demoting %s to table", region)
	//
	index := region.markAsTable()
	delete(r.used, index)
	r.recovered = append(r.recovered, index)
	r.tables = append(r.tables, region)
}

// Edit applies fn to the open region, returning false when none is open.
func (r *Regions) Edit(fn func(*RegionData)) bool {
	if r.current == nil {
		return false
	}
	//
	fn(r.current)
	//
	return true
}

// Current returns the open region, if any.
func (r *Regions) Current() *RegionData {
	return r.current
}

// Committed returns the committed (non-table) regions in commit order.
func (r *Regions) Committed() []*RegionData {
	return r.regions
}

// Tables returns the regions demoted to lookup tables.
func (r *Regions) Tables() []*RegionData {
	return r.tables
}

// UsedIndices returns the set of indices held by live regions.
func (r *Regions) UsedIndices() map[uint]bool {
	return r.used
}
