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

// LookupScope is one lookup argument scoped to one row of one region.
type LookupScope struct {
	lookup *plonk.Lookup
	row    *resolve.RegionRow
	tables func() ([]synthesis.LookupTableRow, error)
}

// Lookup returns the scoped lookup argument.
func (s *LookupScope) Lookup() *plonk.Lookup {
	return s.lookup
}

// Row returns the resolver for the scoped row.
func (s *LookupScope) Row() *resolve.RegionRow {
	return s.row
}

// Tables materializes the rows of the table the lookup reads from.
func (s *LookupScope) Tables() ([]synthesis.LookupTableRow, error) {
	return s.tables()
}

// Header locates the scoped lookup for comments.
func (s *LookupScope) Header() string {
	return fmt.Sprintf("%s @ %s", s.lookup, s.row.Header())
}

// LookupCallbacks configures how lookup arguments are lowered.
type LookupCallbacks interface {
	// OnLookup lowers one lookup argument at one region row.
	OnLookup(scope *LookupScope) (ir.Stmt, error)
}

// IgnoreLookups drops every lookup argument.
type IgnoreLookups struct{}

// OnLookup implements LookupCallbacks.
func (IgnoreLookups) OnLookup(*LookupScope) (ir.Stmt, error) {
	return ir.Empty(), nil
}

// RejectLookups fails when the circuit has any lookup argument.
type RejectLookups struct{}

// OnLookup implements LookupCallbacks.
func (RejectLookups) OnLookup(scope *LookupScope) (ir.Stmt, error) {
	return nil, fmt.Errorf("%s: lookups are not supported by this backend", scope.Header())
}

// LowerLookups lowers every lookup argument at every row of every region.
// Each non-empty result is headed by a comment locating the lookup.
func LowerLookups(syn *synthesis.CircuitSynthesis, regions []*synthesis.RegionData,
	callbacks LookupCallbacks, adviceIO, instanceIO *plonk.CircuitIO) (ir.Stmt, error) {
	//
	var (
		stmts []ir.Stmt
		errs  []error
	)
	//
	lookups := syn.Lookups()
	//
	for _, region := range regions {
		for i := range lookups {
			lookup := &lookups[i]
			//
			region.RowRange(func(row uint) {
				rr := resolve.NewRegionRow(region, row, adviceIO, instanceIO, syn.FixedData())
				scope := &LookupScope{
					lookup: lookup,
					row:    rr,
					tables: func() ([]synthesis.LookupTableRow, error) {
						return syn.TablesForLookup(lookup)
					},
				}
				//
				stmt, err := callbacks.OnLookup(scope)
				if err != nil {
					errs = append(errs, err)
					return
				}
				//
				if !ir.IsEmpty(stmt) {
					stmts = append(stmts, ir.NewComment("%s", scope.Header()), stmt)
				}
			})
		}
	}
	//
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	//
	return ir.NewSeq(stmts...), nil
}
