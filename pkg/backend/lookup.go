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

package backend

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Veridise/go-plonkir/pkg/ir"
	"github.com/Veridise/go-plonkir/pkg/lower"
	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/resolve"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// LookupStrategy decides how lookup arguments are represented in the target:
// the lowering side runs while statements are generated, and DefineModules
// runs before the circuit's functions are emitted.
type LookupStrategy[V any] interface {
	lower.LookupCallbacks

	// DefineModules emits any callable the lookups of the circuit rely on.
	DefineModules(cg Codegen[V], syn *synthesis.CircuitSynthesis) error
}

// lookupPair is one column of a lookup argument: the expression looked up and
// the table expression it must match.
type lookupPair struct {
	input plonk.Expression
	table plonk.Expression
}

// lookupIO splits a lookup's columns into call inputs and call outputs.
// Columns whose looked-up expression involves fixed queries can be computed by
// the caller and become inputs; the rest are outputs the module constrains.
func lookupIO(l *plonk.Lookup) (inputs, outputs []lookupPair) {
	for i, in := range l.Inputs() {
		pair := lookupPair{input: in, table: l.Table()[i]}
		//
		if plonk.ContainsFixed(in) {
			inputs = append(inputs, pair)
		} else {
			outputs = append(outputs, pair)
		}
	}
	//
	return inputs, outputs
}

// lookupModuleName derives the callable name of a lookup kind.
func lookupModuleName(kind plonk.LookupKind) string {
	return "lookup_" + strings.ReplaceAll(string(kind), ":", "_")
}

// AsModule represents each lookup kind as a callable module.  Every use of a
// lookup becomes a call whose outputs are fresh table variables, constrained
// equal to the looked-up expressions.
type AsModule[V any] struct {
	// OnBody optionally emits extra statements into each module's body, after
	// the determinism assumptions on its outputs.
	OnBody func(kind plonk.LookupKind, inputs, outputs []ir.FuncIO) (ir.Stmt, error)
}

// OnLookup implements lower.LookupCallbacks.
func (m *AsModule[V]) OnLookup(scope *lower.LookupScope) (ir.Stmt, error) {
	l := scope.Lookup()
	rr := scope.Row()
	//
	kind, err := l.Kind()
	if err != nil {
		return nil, err
	}
	//
	inPairs, outPairs := lookupIO(l)
	//
	inputs, err := lowerPairInputs(inPairs, rr)
	if err != nil {
		return nil, err
	}
	//
	var (
		vars  []ir.FuncIO
		stmts []ir.Stmt
	)
	//
	for i, pair := range outPairs {
		q, ok := plonk.AsFixedQuery(pair.table)
		if !ok {
			return nil, fmt.Errorf("%s: table expression %s is not a fixed query", l, pair.table)
		}
		//
		id := ir.TableLookup(l.Idx(), q.Column.Index(), rr.Row(), uint(i))
		vars = append(vars, id)
		//
		lowered, err := lower.Expr(pair.input, rr)
		if err != nil {
			return nil, err
		}
		//
		stmts = append(stmts, ir.NewConstraint(ir.CMP_EQ, ir.NewIOVar(id), lowered))
	}
	//
	call := ir.NewCall(lookupModuleName(kind), inputs, vars)
	//
	return ir.NewSeq(append([]ir.Stmt{call}, stmts...)...), nil
}

// DefineModules implements LookupStrategy.  One module is defined per lookup
// kind, shared by every lookup with the same table columns.
func (m *AsModule[V]) DefineModules(cg Codegen[V], syn *synthesis.CircuitSynthesis) error {
	kinds, err := syn.LookupKinds()
	if err != nil {
		return err
	}
	//
	ordered := make([]plonk.LookupKind, 0, len(kinds))
	for kind := range kinds {
		ordered = append(ordered, kind)
	}
	//
	slices.Sort(ordered)
	//
	for _, kind := range ordered {
		inPairs, outPairs := lookupIO(kinds[kind][0])
		//
		inputs := make([]ir.FuncIO, len(inPairs))
		for i := range inPairs {
			inputs[i] = ir.Arg(uint(i))
		}
		//
		outputs := make([]ir.FuncIO, len(outPairs))
		for i := range outPairs {
			outputs[i] = ir.Field(uint(i))
		}
		//
		body := make([]ir.Stmt, 0, len(outputs)+1)
		for _, out := range outputs {
			body = append(body, ir.NewAssumeDeterministic(out))
		}
		//
		if m.OnBody != nil {
			extra, err := m.OnBody(kind, inputs, outputs)
			if err != nil {
				return err
			}
			//
			body = append(body, extra)
		}
		//
		err := scoped(cg,
			func() error {
				return cg.DefineFunction(lookupModuleName(kind), uint(len(inputs)), uint(len(outputs)))
			},
			func() error {
				return LowerStmt[V](cg, ir.NewSeq(body...))
			})
		if err != nil {
			return err
		}
	}
	//
	return nil
}

// AsRowConstraint materializes each lookup as a row constraint: the looked-up
// expressions must equal one of the table's rows.
type AsRowConstraint[V any] struct{}

// OnLookup implements lower.LookupCallbacks.
func (AsRowConstraint[V]) OnLookup(scope *lower.LookupScope) (ir.Stmt, error) {
	l := scope.Lookup()
	rr := scope.Row()
	//
	rows, err := scope.Tables()
	if err != nil {
		return nil, err
	}
	//
	inputs, err := lower.Exprs(l.Inputs(), rr)
	if err != nil {
		return nil, err
	}
	//
	queries, err := l.TableQueries()
	if err != nil {
		return nil, err
	}
	//
	alternatives := make([]ir.Bexpr, 0, len(rows))
	//
	for _, row := range rows {
		conjuncts := make([]ir.Bexpr, 0, len(inputs))
		//
		for j, input := range inputs {
			value, err := row.Value(queries[j].Column.Index())
			if err != nil {
				return nil, err
			}
			//
			conjuncts = append(conjuncts, ir.Eq(ir.Const{Value: ir.FeltFromElement(value)}, input))
		}
		//
		alternatives = append(alternatives, ir.AndOf(conjuncts...))
	}
	//
	return ir.NewAssert(ir.OrOf(alternatives...)), nil
}

// DefineModules implements LookupStrategy.  Row constraints need no modules.
func (AsRowConstraint[V]) DefineModules(Codegen[V], *synthesis.CircuitSynthesis) error {
	return nil
}

// RejectLookups fails code generation if the circuit declares any lookup.
type RejectLookups[V any] struct {
	lower.RejectLookups
}

// DefineModules implements LookupStrategy.
func (RejectLookups[V]) DefineModules(Codegen[V], *synthesis.CircuitSynthesis) error {
	return nil
}

func lowerPairInputs(pairs []lookupPair, r resolve.Resolver) ([]ir.Aexpr, error) {
	inputs := make([]ir.Aexpr, len(pairs))
	//
	for i, pair := range pairs {
		var err error
		if inputs[i], err = lower.Expr(pair.input, r); err != nil {
			return nil, err
		}
	}
	//
	return inputs, nil
}
