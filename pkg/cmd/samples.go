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
package cmd

import (
	"fmt"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// sampleCircuits maps the names accepted by "plonkir compile" to synthesis
// functions producing the corresponding built-in circuit.
var sampleCircuits = map[string]func() (*synthesis.CircuitSynthesis, error){
	"mul":     func() (*synthesis.CircuitSynthesis, error) { return synthesis.Synthesize[mulConfig](mulSample{}) },
	"fib":     func() (*synthesis.CircuitSynthesis, error) { return synthesis.Synthesize[fibConfig](fibSample{}) },
	"range":   func() (*synthesis.CircuitSynthesis, error) { return synthesis.Synthesize[rangeConfig](rangeSample{}) },
	"squares": func() (*synthesis.CircuitSynthesis, error) { return synthesis.Synthesize[sqConfig](squaresSample{}) },
}

func sampleNames() []string {
	names := make([]string, 0, len(sampleCircuits))
	for name := range sampleCircuits {
		names = append(names, name)
	}
	//
	sort.Strings(names)
	//
	return names
}

// synthesizeSample runs the named sample circuit through synthesis.
func synthesizeSample(name string) (*synthesis.CircuitSynthesis, error) {
	sample, ok := sampleCircuits[name]
	if !ok {
		return nil, fmt.Errorf("unknown sample circuit %q (available: %v)", name, sampleNames())
	}
	//
	return sample()
}

// mulSample constrains out = lhs * rhs over one region row.
type mulConfig struct {
	lhs, rhs, out plonk.Column
	mul           plonk.Selector
}

type mulSample struct{}

func (mulSample) Configure(cs *plonk.ConstraintSystem) mulConfig {
	cfg := mulConfig{
		lhs: cs.AdviceColumn(),
		rhs: cs.AdviceColumn(),
		out: cs.AdviceColumn(),
		mul: cs.NewSelector(),
	}
	//
	cs.CreateGate("mul", plonk.Mul(
		plonk.SelectorExpr{Selector: cfg.mul},
		plonk.Sub(
			plonk.Mul(cfg.lhs.QueryCell(plonk.ROT_CUR), cfg.rhs.QueryCell(plonk.ROT_CUR)),
			cfg.out.QueryCell(plonk.ROT_CUR))))
	//
	return cfg
}

func (mulSample) Synthesize(cfg mulConfig, l plonk.Layouter) error {
	if err := l.EnterRegionWithIndex("mul", 0); err != nil {
		return err
	}
	//
	if err := l.EnableSelector(cfg.mul, 0); err != nil {
		return err
	}
	//
	for name, col := range map[string]plonk.Column{"lhs": cfg.lhs, "rhs": cfg.rhs, "out": cfg.out} {
		if _, err := l.AssignAdvice(name, col, 0); err != nil {
			return err
		}
	}
	//
	l.ExitRegion()
	//
	return nil
}

func (mulSample) AdviceIO(cfg mulConfig) (*plonk.CircuitIO, error) {
	return plonk.NewCircuitIO(plonk.ADVICE,
		[]plonk.Cell{plonk.NewCell(cfg.lhs, 0), plonk.NewCell(cfg.rhs, 0)},
		[]plonk.Cell{plonk.NewCell(cfg.out, 0)})
}

func (mulSample) InstanceIO(mulConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.INSTANCE), nil
}

// fibSample chains a Fibonacci-style recurrence c = a + b down a column pair,
// with rotations linking consecutive rows.
type fibConfig struct {
	a, b plonk.Column
	step plonk.Selector
}

type fibSample struct{}

const fibRows = 4

func (fibSample) Configure(cs *plonk.ConstraintSystem) fibConfig {
	cfg := fibConfig{
		a:    cs.AdviceColumn(),
		b:    cs.AdviceColumn(),
		step: cs.NewSelector(),
	}
	// b[i+1] = a[i] + b[i] and a[i+1] = b[i]
	cs.CreateGate("step",
		plonk.Mul(
			plonk.SelectorExpr{Selector: cfg.step},
			plonk.Sub(
				plonk.Add(cfg.a.QueryCell(plonk.ROT_CUR), cfg.b.QueryCell(plonk.ROT_CUR)),
				cfg.b.QueryCell(plonk.ROT_NEXT))),
		plonk.Mul(
			plonk.SelectorExpr{Selector: cfg.step},
			plonk.Sub(
				cfg.b.QueryCell(plonk.ROT_CUR),
				cfg.a.QueryCell(plonk.ROT_NEXT))))
	//
	return cfg
}

func (fibSample) Synthesize(cfg fibConfig, l plonk.Layouter) error {
	if err := l.EnterRegionWithIndex("fib", 0); err != nil {
		return err
	}
	//
	for row := uint(0); row < fibRows; row++ {
		if row+1 < fibRows {
			if err := l.EnableSelector(cfg.step, row); err != nil {
				return err
			}
		}
		//
		if _, err := l.AssignAdvice("a", cfg.a, row); err != nil {
			return err
		}
		//
		if _, err := l.AssignAdvice("b", cfg.b, row); err != nil {
			return err
		}
	}
	//
	l.ExitRegion()
	//
	return nil
}

func (fibSample) AdviceIO(cfg fibConfig) (*plonk.CircuitIO, error) {
	return plonk.NewCircuitIO(plonk.ADVICE,
		[]plonk.Cell{plonk.NewCell(cfg.a, 0), plonk.NewCell(cfg.b, 0)},
		[]plonk.Cell{plonk.NewCell(cfg.b, fibRows-1)})
}

func (fibSample) InstanceIO(fibConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.INSTANCE), nil
}

// rangeSample looks an advice cell up in a small fixed table.
type rangeConfig struct {
	x plonk.Column
	t plonk.Column
}

type rangeSample struct{}

func (rangeSample) Configure(cs *plonk.ConstraintSystem) rangeConfig {
	cfg := rangeConfig{
		x: cs.AdviceColumn(),
		t: cs.FixedColumn(),
	}
	//
	if err := cs.AddLookup("range",
		[]plonk.Expression{cfg.x.QueryCell(plonk.ROT_CUR)},
		[]plonk.Expression{cfg.t.QueryCell(plonk.ROT_CUR)}); err != nil {
		panic(err)
	}
	//
	return cfg
}

func (rangeSample) Synthesize(cfg rangeConfig, l plonk.Layouter) error {
	l.EnterRegion("table")
	//
	for row := uint(0); row < 8; row++ {
		if err := l.AssignFixed(cfg.t, row, fr.NewElement(uint64(row))); err != nil {
			return err
		}
	}
	//
	l.MarkTable()
	l.ExitRegion()
	//
	if err := l.EnterRegionWithIndex("use", 0); err != nil {
		return err
	}
	//
	if _, err := l.AssignAdvice("x", cfg.x, 0); err != nil {
		return err
	}
	//
	l.ExitRegion()
	//
	return nil
}

func (rangeSample) AdviceIO(cfg rangeConfig) (*plonk.CircuitIO, error) {
	return plonk.NewCircuitIO(plonk.ADVICE,
		[]plonk.Cell{plonk.NewCell(cfg.x, 0)}, nil)
}

func (rangeSample) InstanceIO(rangeConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.INSTANCE), nil
}

// squaresSample instantiates one squaring group twice, demonstrating group
// deduplication under the groups strategy.
type sqConfig struct {
	x, y plonk.Column
	sq   plonk.Selector
}

type squaresSample struct{}

func (squaresSample) Configure(cs *plonk.ConstraintSystem) sqConfig {
	cfg := sqConfig{
		x:  cs.AdviceColumn(),
		y:  cs.AdviceColumn(),
		sq: cs.NewSelector(),
	}
	//
	cs.CreateGate("square", plonk.Mul(
		plonk.SelectorExpr{Selector: cfg.sq},
		plonk.Sub(
			plonk.Mul(cfg.x.QueryCell(plonk.ROT_CUR), cfg.x.QueryCell(plonk.ROT_CUR)),
			cfg.y.QueryCell(plonk.ROT_CUR))))
	//
	return cfg
}

func (squaresSample) Synthesize(cfg sqConfig, l plonk.Layouter) error {
	for row := uint(0); row < 2; row++ {
		l.EnterGroup("square", plonk.GroupKey{Type: "square"})
		//
		if err := l.EnterRegionWithIndex("sq", row); err != nil {
			return err
		}
		//
		if err := l.EnableSelector(cfg.sq, row); err != nil {
			return err
		}
		//
		in, err := l.AssignAdvice("x", cfg.x, row)
		if err != nil {
			return err
		}
		//
		out, err := l.AssignAdvice("y", cfg.y, row)
		if err != nil {
			return err
		}
		//
		l.ExitRegion()
		//
		if err := l.ExitGroup(plonk.GroupIO{
			Inputs:  []plonk.AssignedCell{in},
			Outputs: []plonk.AssignedCell{out},
		}); err != nil {
			return err
		}
	}
	//
	return nil
}

func (squaresSample) AdviceIO(sqConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.ADVICE), nil
}

func (squaresSample) InstanceIO(sqConfig) (*plonk.CircuitIO, error) {
	return plonk.EmptyCircuitIO(plonk.INSTANCE), nil
}
