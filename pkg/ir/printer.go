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
package ir

import (
	"fmt"
	"io"
	"strings"
)

// PrintStmt writes a human-readable listing of the given statement, one leaf
// per line.  Sequence nesting is flattened, matching how statements compare.
func PrintStmt(w io.Writer, s Stmt, indent uint) error {
	pad := strings.Repeat(" ", int(indent))
	//
	for _, leaf := range Leaves(s) {
		if _, err := fmt.Fprintf(w, "%s%s\n", pad, leaf); err != nil {
			return err
		}
	}
	//
	return nil
}

// Listing renders the given statement as its flattened multi-line listing.
func Listing(s Stmt) string {
	var builder strings.Builder
	//
	_ = PrintStmt(&builder, s, 0)
	//
	return builder.String()
}
