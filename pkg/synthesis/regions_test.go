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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veridise/go-plonkir/pkg/plonk"
)

func TestRegions_IndicesAllocatedInOrder(t *testing.T) {
	regions := NewRegions()
	//
	for i, name := range []string{"a", "b", "c"} {
		require.NoError(t, regions.Push(name))
		assert.Equal(t, uint(i), regions.Current().Index().Unwrap())
		require.NoError(t, regions.Commit())
	}
	//
	assert.Len(t, regions.Committed(), 3)
}

func TestRegions_ExplicitIndexCannotBeTakenTwice(t *testing.T) {
	regions := NewRegions()
	//
	require.NoError(t, regions.PushWithIndex("a", 5))
	require.NoError(t, regions.Commit())
	//
	err := regions.PushWithIndex("b", 5)
	assert.ErrorContains(t, err, "index 5 is already in use")
}

func TestRegions_AutoAllocationSkipsExplicitIndices(t *testing.T) {
	regions := NewRegions()
	//
	require.NoError(t, regions.PushWithIndex("a", 0))
	require.NoError(t, regions.Commit())
	require.NoError(t, regions.Push("b"))
	//
	assert.Equal(t, uint(1), regions.Current().Index().Unwrap())
}

func TestRegions_NestedOpenFails(t *testing.T) {
	regions := NewRegions()
	//
	require.NoError(t, regions.Push("outer"))
	//
	err := regions.Push("inner")
	assert.ErrorContains(t, err, "still open")
}

func TestRegions_CommitWithoutOpenFails(t *testing.T) {
	regions := NewRegions()
	assert.ErrorContains(t, regions.Commit(), "no region is open")
}

func TestRegions_DemotedTableIndexIsRecovered(t *testing.T) {
	regions := NewRegions()
	//
	require.NoError(t, regions.Push("table"))
	regions.MarkCurrentAsTable()
	require.NoError(t, regions.Commit())
	// The table left the region list.
	assert.Empty(t, regions.Committed())
	require.Len(t, regions.Tables(), 1)
	assert.True(t, regions.Tables()[0].IsTable())
	// Its index is free again, even for an explicit request.
	require.NoError(t, regions.PushWithIndex("use", 0))
	require.NoError(t, regions.Commit())
	//
	require.Len(t, regions.Committed(), 1)
	assert.Equal(t, uint(0), regions.Committed()[0].Index().Unwrap())
}

func TestRegions_DemoteLatestPopsCommittedRegion(t *testing.T) {
	regions := NewRegions()
	//
	require.NoError(t, regions.Push("table"))
	require.NoError(t, regions.Commit())
	//
	regions.DemoteLatest()
	//
	assert.Empty(t, regions.Committed())
	require.Len(t, regions.Tables(), 1)
	// Recovered index is handed out before fresh ones.
	require.NoError(t, regions.Push("next"))
	assert.Equal(t, uint(0), regions.Current().Index().Unwrap())
}

func TestRegionData_ExtentAndRelativization(t *testing.T) {
	region := NewRegionData("r", 0)
	col := plonk.NewColumn(plonk.ADVICE, 0)
	//
	region.UpdateExtent(col, 2)
	region.UpdateExtent(col, 4)
	//
	rows, ok := region.Rows()
	require.True(t, ok)
	assert.Equal(t, [2]uint{2, 4}, rows)
	//
	assert.True(t, region.ContainsRow(3))
	assert.False(t, region.ContainsRow(5))
	//
	rel, ok := region.Relativize(3)
	require.True(t, ok)
	assert.Equal(t, uint(1), rel)
	//
	_, ok = region.Relativize(1)
	assert.False(t, ok)
}

func TestRegionData_SelectorsEnabledPerRow(t *testing.T) {
	region := NewRegionData("r", 0)
	sel := plonk.NewSelector(3)
	//
	region.EnableSelector(sel, 7)
	//
	assert.True(t, region.SelectorsEnabledAt(7)[3])
	assert.Empty(t, region.SelectorsEnabledAt(8))
}
