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
)

// ConstraintSystem records the structural declarations a circuit makes during
// configuration: columns, selectors, challenges, gates and lookups.  It is
// populated exactly once, by running the circuit's Configure against it.
type ConstraintSystem struct {
	numFixed     uint
	numAdvice    uint
	numInstance  uint
	numSelectors uint
	numChalls    uint
	gates        []Gate
	lookups      []Lookup
}

// NewConstraintSystem creates an empty constraint system.
func NewConstraintSystem() *ConstraintSystem {
	return &ConstraintSystem{}
}

// FixedColumn allocates a new fixed column.
func (cs *ConstraintSystem) FixedColumn() Column {
	col := NewColumn(FIXED, cs.numFixed)
	cs.numFixed++
	//
	return col
}

// AdviceColumn allocates a new advice column.
func (cs *ConstraintSystem) AdviceColumn() Column {
	col := NewColumn(ADVICE, cs.numAdvice)
	cs.numAdvice++
	//
	return col
}

// InstanceColumn allocates a new instance column.
func (cs *ConstraintSystem) InstanceColumn() Column {
	col := NewColumn(INSTANCE, cs.numInstance)
	cs.numInstance++
	//
	return col
}

// NewSelector allocates a new selector.
func (cs *ConstraintSystem) NewSelector() Selector {
	sel := NewSelector(cs.numSelectors)
	cs.numSelectors++
	//
	return sel
}

// NewChallenge allocates a new challenge for the given phase.
func (cs *ConstraintSystem) NewChallenge(phase uint8) Challenge {
	ch := NewChallenge(cs.numChalls, phase)
	cs.numChalls++
	//
	return ch
}

// CreateGate records a gate with the given name and polynomials.
func (cs *ConstraintSystem) CreateGate(name string, polynomials ...Expression) {
	if len(polynomials) == 0 {
		panic(fmt.Sprintf("gate %s has no polynomials", name))
	}
	//
	cs.gates = append(cs.gates, NewGate(name, polynomials))
}

// AddLookup records a lookup from parallel input / table expression lists.
// The table side of every pair must be a plain fixed-column query; the input
// side can be any expression.
func (cs *ConstraintSystem) AddLookup(name string, inputs []Expression, table []Expression) error {
	if len(inputs) != len(table) {
		return fmt.Errorf("lookup %s has %d inputs but %d table columns", name, len(inputs), len(table))
	}
	//
	for i := range table {
		if _, ok := AsFixedQuery(table[i]); !ok {
			return fmt.Errorf("lookup %s: table expression %d is not a fixed cell query", name, i)
		}
	}
	//
	cs.lookups = append(cs.lookups, NewLookup(name, uint(len(cs.lookups)), inputs, table))
	//
	return nil
}

// Gates returns the gates declared so far.
func (cs *ConstraintSystem) Gates() []Gate {
	return cs.gates
}

// Lookups returns the lookups declared so far.
func (cs *ConstraintSystem) Lookups() []Lookup {
	return cs.lookups
}

// LookupKinds groups the declared lookups by their table-column signature.
func (cs *ConstraintSystem) LookupKinds() (map[LookupKind][]*Lookup, error) {
	kinds := make(map[LookupKind][]*Lookup)
	//
	for i := range cs.lookups {
		l := &cs.lookups[i]
		//
		kind, err := l.Kind()
		if err != nil {
			return nil, err
		}
		//
		kinds[kind] = append(kinds[kind], l)
	}
	//
	return kinds, nil
}

// FixedColumns returns the number of fixed columns allocated.
func (cs *ConstraintSystem) FixedColumns() uint {
	return cs.numFixed
}

// AdviceColumns returns the number of advice columns allocated.
func (cs *ConstraintSystem) AdviceColumns() uint {
	return cs.numAdvice
}

// InstanceColumns returns the number of instance columns allocated.
func (cs *ConstraintSystem) InstanceColumns() uint {
	return cs.numInstance
}

// Selectors returns the number of selectors allocated.
func (cs *ConstraintSystem) Selectors() uint {
	return cs.numSelectors
}
