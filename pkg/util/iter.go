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
package util

// Pair provides a simple encoding of a pair of values.
type Pair[S any, T any] struct {
	Left  S
	Right T
}

// NewPair constructs a new pair from two values.
func NewPair[S any, T any](left S, right T) Pair[S, T] {
	return Pair[S, T]{left, right}
}

// Product computes the cartesian product of two slices, in row-major order.
func Product[S any, T any](lhs []S, rhs []T) []Pair[S, T] {
	product := make([]Pair[S, T], 0, len(lhs)*len(rhs))
	//
	for _, l := range lhs {
		for _, r := range rhs {
			product = append(product, NewPair(l, r))
		}
	}
	//
	return product
}

// Keys returns the keys of a map in unspecified order.
func Keys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	//
	for k := range m {
		keys = append(keys, k)
	}
	//
	return keys
}
