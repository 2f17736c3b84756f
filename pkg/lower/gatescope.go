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

	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/resolve"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// GateScope pairs one gate with one region of the circuit, giving rewrite
// patterns everything they need to lower the gate's polynomials at the
// region's rows.
type GateScope struct {
	gate       *plonk.Gate
	region     *synthesis.RegionData
	adviceIO   *plonk.CircuitIO
	instanceIO *plonk.CircuitIO
	fixed      resolve.FixedResolver
}

// NewGateScope constructs the scope of the given gate within the given region.
func NewGateScope(gate *plonk.Gate, region *synthesis.RegionData,
	adviceIO, instanceIO *plonk.CircuitIO, fixed resolve.FixedResolver) *GateScope {
	//
	return &GateScope{
		gate:       gate,
		region:     region,
		adviceIO:   adviceIO,
		instanceIO: instanceIO,
		fixed:      fixed,
	}
}

// GateName returns the name of the scoped gate.
func (s *GateScope) GateName() string {
	return s.gate.Name()
}

// Polynomials returns the polynomials of the scoped gate.
func (s *GateScope) Polynomials() []plonk.Expression {
	return s.gate.Polynomials()
}

// Region returns the scoped region.
func (s *GateScope) Region() *synthesis.RegionData {
	return s.region
}

// Rows returns the inclusive row extent of the scoped region.  The second
// result is false for a region that never assigned a cell.
func (s *GateScope) Rows() ([2]uint, bool) {
	return s.region.Rows()
}

// RegionRow builds a resolver scoped to the given absolute row, which must lie
// within the region.
func (s *GateScope) RegionRow(row uint) (*resolve.RegionRow, error) {
	if !s.region.ContainsRow(row) {
		return nil, fmt.Errorf("row %d is outside %s", row, s.region)
	}
	//
	return resolve.NewRegionRow(s.region, row, s.adviceIO, s.instanceIO, s.fixed), nil
}

// RegionRows calls fn with a resolver for every row of the region.
func (s *GateScope) RegionRows(fn func(*resolve.RegionRow) error) error {
	var err error
	//
	s.region.RowRange(func(row uint) {
		if err != nil {
			return
		}
		//
		rr, rrErr := s.RegionRow(row)
		if rrErr != nil {
			err = rrErr
			return
		}
		//
		err = fn(rr)
	})
	//
	return err
}

func (s *GateScope) String() string {
	if extent, ok := s.region.Rows(); ok {
		return fmt.Sprintf("gate '%s' @ %s @ rows %d..=%d", s.gate.Name(), s.region, extent[0], extent[1])
	}
	//
	return fmt.Sprintf("gate '%s' @ %s", s.gate.Name(), s.region)
}
