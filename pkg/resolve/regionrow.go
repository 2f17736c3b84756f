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

package resolve

import (
	"fmt"

	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// RegionRow resolves queries against one row of a recorded region.  Column
// queries delegate to the underlying absolute row resolver, whilst selectors
// resolve to literal booleans from the selectors the region enabled on this
// row.
type RegionRow struct {
	region *synthesis.RegionData
	row    *Row
}

// NewRegionRow constructs a resolver scoped to the given absolute row of the
// given region.
func NewRegionRow(region *synthesis.RegionData, row uint, adviceIO, instanceIO *plonk.CircuitIO,
	fixed FixedResolver) *RegionRow {
	//
	return &RegionRow{
		region: region,
		row:    NewRow(row, adviceIO, instanceIO, fixed),
	}
}

// WithPriority sets the tie-break for cells declared both input and output,
// returning the resolver for chaining.
func (r *RegionRow) WithPriority(priority ResolutionPriority) *RegionRow {
	r.row.WithPriority(priority)
	return r
}

// Region returns the region this resolver is scoped to.
func (r *RegionRow) Region() *synthesis.RegionData {
	return r.region
}

// Row returns the absolute row this resolver is scoped to.
func (r *RegionRow) Row() uint {
	return r.row.Row()
}

// Header describes this scope for use in generated comments.
func (r *RegionRow) Header() string {
	return fmt.Sprintf("%s @ row %d", r.region, r.Row())
}

// ResolveFixedQuery resolves a fixed query via the underlying row resolver,
// which prefers the values recorded during synthesis.
func (r *RegionRow) ResolveFixedQuery(q plonk.FixedQuery) (ResolvedQuery, error) {
	return r.row.ResolveFixedQuery(q)
}

// ResolveAdviceQuery resolves an advice query via the underlying row resolver.
func (r *RegionRow) ResolveAdviceQuery(q plonk.AdviceQuery) (ResolvedQuery, error) {
	return r.row.ResolveAdviceQuery(q)
}

// ResolveInstanceQuery resolves an instance query via the underlying row
// resolver.
func (r *RegionRow) ResolveInstanceQuery(q plonk.InstanceQuery) (ResolvedQuery, error) {
	return r.row.ResolveInstanceQuery(q)
}

// ResolveSelector resolves a selector to a literal boolean: true exactly when
// the region enabled it on this row.
func (r *RegionRow) ResolveSelector(sel plonk.Selector) (ResolvedSelector, error) {
	enabled := r.region.SelectorsEnabledAt(r.Row())
	//
	return LitSelector(enabled[sel.Index()]), nil
}

// GateIsDisabled reports whether none of the given selectors are enabled on
// this row.  A gate guarded by those selectors contributes nothing here.
func (r *RegionRow) GateIsDisabled(selectors []plonk.Selector) bool {
	enabled := r.region.SelectorsEnabledAt(r.Row())
	//
	for _, sel := range selectors {
		if enabled[sel.Index()] {
			return false
		}
	}
	//
	return len(selectors) > 0
}
