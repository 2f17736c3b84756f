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
	"fmt"
	"strings"

	"github.com/Veridise/go-plonkir/pkg/util"
)

// FQN is the fully-qualified diagnostic name of an advice cell: the region it
// was assigned in, the namespace stack active at assignment time, and the
// label the circuit gave the assignment.
type FQN struct {
	region     string
	regionIdx  util.Option[uint]
	namespaces []string
	tail       util.Option[string]
}

// NewFQN builds a fully-qualified name from its components.  The namespace
// slice is copied since the caller keeps mutating its stack.
func NewFQN(region string, regionIdx util.Option[uint], namespaces []string, tail util.Option[string]) FQN {
	ns := make([]string, len(namespaces))
	copy(ns, namespaces)
	//
	return FQN{region, regionIdx, ns, tail}
}

func (f FQN) String() string {
	var sb strings.Builder
	//
	sb.WriteString(cleanName(f.region))
	//
	if f.regionIdx.HasValue() {
		fmt.Fprintf(&sb, "_%d", f.regionIdx.Unwrap())
	}
	//
	if len(f.namespaces) > 0 {
		sb.WriteString("__")
		sb.WriteString(cleanName(strings.Join(f.namespaces, "__")))
	}
	//
	if f.tail.HasValue() {
		sb.WriteString("__")
		sb.WriteString(cleanName(f.tail.Unwrap()))
	}
	//
	return sb.String()
}

// cleanName replaces anything which is not alphanumeric with underscores, so
// the result is usable as an identifier in any backend.
func cleanName(s string) string {
	return strings.Map(func(c rune) rune {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			return c
		}
		//
		return '_'
	}, strings.TrimSpace(s))
}
