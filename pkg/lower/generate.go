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

	log "github.com/sirupsen/logrus"

	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/ir/lift"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// CircuitIR is the fully lowered circuit: one body per synthesized group, of
// which exactly one is the top level.
type CircuitIR struct {
	syn      *synthesis.CircuitSynthesis
	bodies   []*GroupBody
	contexts []*GroupContext
	regions  map[uint]*synthesis.RegionData
}

// GenerateIR lowers every group of the synthesized circuit and runs the body
// pipeline: validation, advice-cell relativization, constant folding modulo
// the field prime, and canonicalization.
func GenerateIR(syn *synthesis.CircuitSynthesis, gates GateCallbacks,
	lookups LookupCallbacks) (*CircuitIR, error) {
	//
	var (
		groups   = syn.Groups()
		allFree  = lift.LiftFreeCells(groups, syn.Constraints())
		regions  = regionsByIndex(groups)
		patterns = LoadPatterns(gates)
		bodies   = make([]*GroupBody, 0, len(groups))
		contexts = make([]*GroupContext, 0, len(groups))
	)
	//
	for i, group := range groups {
		log.Debugf("lowering group %d %q", i, group.Name())
		//
		ctx, err := NewGroupContext(group, allFree[i])
		if err != nil {
			return nil, err
		}
		//
		body, err := NewGroupBody(uint(i), ctx, syn, patterns, lookups, regions)
		if err != nil {
			return nil, err
		}
		//
		bodies = append(bodies, body)
		contexts = append(contexts, ctx)
	}
	//
	circuit := &CircuitIR{syn, bodies, contexts, regions}
	//
	if err := circuit.checkOneMain(); err != nil {
		return nil, err
	}
	//
	if err := circuit.validate(); err != nil {
		return nil, err
	}
	//
	if err := circuit.relativize(); err != nil {
		return nil, err
	}
	//
	if err := circuit.fold(); err != nil {
		return nil, err
	}
	//
	circuit.canonicalize()
	//
	return circuit, nil
}

// Synthesis returns the synthesis the bodies were lowered from.
func (c *CircuitIR) Synthesis() *synthesis.CircuitSynthesis {
	return c.syn
}

// Bodies returns one lowered body per group, indexed like the synthesized
// groups.
func (c *CircuitIR) Bodies() []*GroupBody {
	return c.bodies
}

// Context returns the io context the given body was lowered with.
func (c *CircuitIR) Context(body *GroupBody) *GroupContext {
	return c.contexts[body.ID()]
}

// Main returns the top-level body.
func (c *CircuitIR) Main() *GroupBody {
	for _, body := range c.bodies {
		if body.IsMain() {
			return body
		}
	}
	// checkOneMain holds after GenerateIR.
	panic("circuit has no top-level body")
}

// Regions returns every indexed region of the circuit, keyed by region index.
func (c *CircuitIR) Regions() map[uint]*synthesis.RegionData {
	return c.regions
}

func (c *CircuitIR) checkOneMain() error {
	mains := 0
	//
	for _, body := range c.bodies {
		if body.IsMain() {
			mains++
		}
	}
	//
	if mains != 1 {
		return fmt.Errorf("circuit has %d top-level groups, expected exactly 1", mains)
	}
	//
	return nil
}

func (c *CircuitIR) validate() error {
	var errs []error
	//
	for _, body := range c.bodies {
		if err := body.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	//
	return errors.Join(errs...)
}

func (c *CircuitIR) relativize() error {
	for _, body := range c.bodies {
		if err := body.Relativize(c.regions); err != nil {
			return err
		}
	}
	//
	return nil
}

func (c *CircuitIR) fold() error {
	prime := ir.Prime()
	//
	for _, body := range c.bodies {
		if err := body.Fold(prime); err != nil {
			return err
		}
	}
	//
	return nil
}

func (c *CircuitIR) canonicalize() {
	for _, body := range c.bodies {
		body.Canonicalize()
	}
}

// regionsByIndex collects every indexed region across the groups.
func regionsByIndex(groups synthesis.Groups) map[uint]*synthesis.RegionData {
	regions := make(map[uint]*synthesis.RegionData)
	//
	for _, group := range groups {
		for _, region := range group.Regions() {
			if region.Index().HasValue() {
				regions[region.Index().Unwrap()] = region
			}
		}
	}
	//
	return regions
}
