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

	"github.com/Veridise/go-plonkir/pkg/ir/lift"
	"github.com/Veridise/go-plonkir/pkg/plonk"
	"github.com/Veridise/go-plonkir/pkg/synthesis"
)

// GroupContext holds the io declarations a group's cells resolve against,
// split into the advice view and the instance view.
type GroupContext struct {
	group      *synthesis.Group
	adviceIO   *plonk.CircuitIO
	instanceIO *plonk.CircuitIO
	free       lift.FreeCells
}

// NewGroupContext splits the group's declared io cells by kind into the advice
// and instance views.  Free cells lifted out of the group's equality
// constraints become extra inputs, except at the top level where they stay
// local.
func NewGroupContext(group *synthesis.Group, free lift.FreeCells) (*GroupContext, error) {
	inputs := group.Inputs()
	//
	if !group.IsTopLevel() {
		inputs = append(inputs[:len(inputs):len(inputs)], free.Inputs...)
	}
	//
	adviceIn, instanceIn, err := splitByKind(inputs)
	if err != nil {
		return nil, fmt.Errorf("group %q inputs: %w", group.Name(), err)
	}
	//
	adviceOut, instanceOut, err := splitByKind(group.Outputs())
	if err != nil {
		return nil, fmt.Errorf("group %q outputs: %w", group.Name(), err)
	}
	//
	adviceIO, err := plonk.NewCircuitIO(plonk.ADVICE, adviceIn, adviceOut)
	if err != nil {
		return nil, err
	}
	//
	instanceIO, err := plonk.NewCircuitIO(plonk.INSTANCE, instanceIn, instanceOut)
	if err != nil {
		return nil, err
	}
	//
	return &GroupContext{group, adviceIO, instanceIO, free}, nil
}

// Group returns the group this context describes.
func (c *GroupContext) Group() *synthesis.Group {
	return c.group
}

// AdviceIO returns the advice view of the group's io.
func (c *GroupContext) AdviceIO() *plonk.CircuitIO {
	return c.adviceIO
}

// InstanceIO returns the instance view of the group's io.
func (c *GroupContext) InstanceIO() *plonk.CircuitIO {
	return c.instanceIO
}

// FreeCells returns the cells lifted out of the group's equality constraints.
func (c *GroupContext) FreeCells() lift.FreeCells {
	return c.free
}

// InputCount returns the number of function inputs the group exposes, advice
// and instance combined.
func (c *GroupContext) InputCount() uint {
	return uint(len(c.adviceIO.Inputs()) + len(c.instanceIO.Inputs()))
}

// OutputCount returns the number of function outputs the group exposes.
func (c *GroupContext) OutputCount() uint {
	return uint(len(c.adviceIO.Outputs()) + len(c.instanceIO.Outputs()))
}

// splitByKind partitions group cells into advice cells and instance cells.
// Cells assigned during synthesis count as advice regardless of column kind.
func splitByKind(cells []synthesis.GroupCell) (advice, instance []plonk.Cell, err error) {
	for _, cell := range cells {
		switch cell.Kind() {
		case synthesis.GROUP_CELL_ASSIGNED, synthesis.GROUP_CELL_ADVICE:
			advice = append(advice, cell.Cell())
		case synthesis.GROUP_CELL_INSTANCE:
			instance = append(instance, cell.Cell())
		default:
			err = fmt.Errorf("cannot split %s by kind", cell)
			return
		}
	}
	//
	return
}
