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
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veridise/go-plonkir/pkg/plonk"
)

func fixedCol(index uint) plonk.Column {
	return plonk.NewColumn(plonk.FIXED, index)
}

func TestFixedData_DirectWriteBeatsBlanketFill(t *testing.T) {
	data := NewFixedData()
	col := fixedCol(0)
	//
	data.BlanketFill(col, 0, fr.NewElement(7))
	data.AssignFixed(col, 2, fr.NewElement(9))
	//
	assert.Equal(t, fr.NewElement(9), data.ResolveFixed(0, 2))
	assert.Equal(t, fr.NewElement(7), data.ResolveFixed(0, 3))
}

func TestFixedData_LatestCoveringFillWins(t *testing.T) {
	data := NewFixedData()
	col := fixedCol(0)
	//
	data.BlanketFill(col, 0, fr.NewElement(1))
	data.BlanketFill(col, 2, fr.NewElement(2))
	//
	assert.Equal(t, fr.NewElement(1), data.ResolveFixed(0, 1))
	assert.Equal(t, fr.NewElement(2), data.ResolveFixed(0, 2))
	assert.Equal(t, fr.NewElement(2), data.ResolveFixed(0, 5))
}

func TestFixedData_UnwrittenCellsDefaultToZero(t *testing.T) {
	data := NewFixedData()
	data.AssignFixed(fixedCol(0), 0, fr.NewElement(1))
	//
	assert.Equal(t, fr.Element{}, data.ResolveFixed(0, 1))
}

func TestFixedData_QueryAgainstUnknownColumnFails(t *testing.T) {
	data := NewFixedData()
	//
	q := plonk.FixedQuery{Column: fixedCol(3), Rotation: plonk.ROT_CUR}
	_, err := data.ResolveQuery(q, 0)
	assert.ErrorContains(t, err, "no data for fixed column 3")
}

func TestFixedData_SubsetRequiresEveryColumn(t *testing.T) {
	data := NewFixedData()
	data.AssignFixed(fixedCol(0), 0, fr.NewElement(1))
	//
	_, err := data.Subset(map[uint]bool{0: true, 1: true})
	assert.Error(t, err)
	//
	subset, err := data.Subset(map[uint]bool{0: true})
	require.NoError(t, err)
	assert.Equal(t, fr.NewElement(1), subset.ResolveFixed(0, 0))
}

func tableQuery(col uint) plonk.AnyQuery {
	return plonk.AnyQuery{Column: fixedCol(col), Rotation: plonk.ROT_CUR}
}

func TestTableData_MaterializesDenseColumns(t *testing.T) {
	data := NewFixedData()
	col := fixedCol(0)
	//
	data.AssignFixed(col, 0, fr.NewElement(10))
	data.AssignFixed(col, 1, fr.NewElement(11))
	data.AssignFixed(col, 2, fr.NewElement(12))
	//
	table := NewTableData(data)
	//
	rows, ok, err := table.GetRows([]plonk.AnyQuery{tableQuery(0)})
	require.NoError(t, err)
	require.True(t, ok)
	//
	assert.Equal(t, [][]fr.Element{{fr.NewElement(10), fr.NewElement(11), fr.NewElement(12)}}, rows)
}

func TestTableData_GapsAreAnError(t *testing.T) {
	data := NewFixedData()
	col := fixedCol(0)
	// Row 1 is never written.
	data.AssignFixed(col, 0, fr.NewElement(10))
	data.AssignFixed(col, 2, fr.NewElement(12))
	//
	table := NewTableData(data)
	//
	_, ok, err := table.GetRows([]plonk.AnyQuery{tableQuery(0)})
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrTableGaps)
}

func TestTableData_MissingColumnIsNotAnError(t *testing.T) {
	table := NewTableData(NewFixedData())
	//
	_, ok, err := table.GetRows([]plonk.AnyQuery{tableQuery(0)})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestTableData_DirectWritesOverrideBlankets(t *testing.T) {
	data := NewFixedData()
	col := fixedCol(0)
	//
	data.BlanketFill(col, 0, fr.NewElement(7))
	data.AssignFixed(col, 1, fr.NewElement(9))
	//
	table := NewTableData(data)
	//
	rows, ok, err := table.GetRows([]plonk.AnyQuery{tableQuery(0)})
	require.NoError(t, err)
	require.True(t, ok)
	//
	assert.Equal(t, [][]fr.Element{{fr.NewElement(7), fr.NewElement(9)}}, rows)
}
