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
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veridise/go-plonkir/pkg/backend"
	"github.com/Veridise/go-plonkir/pkg/lower"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] sample_circuit",
	Short: "compile a built-in sample circuit and print its IR.",
	Long: `Synthesize one of the built-in sample circuits, lower it with the chosen
	 strategy and print the resulting IR as a textual listing.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var out io.Writer = os.Stdout
		//
		if output := GetString(cmd, "output"); output != "" {
			file, err := os.Create(output)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			//
			defer file.Close()
			//
			out = file
		}
		//
		gen := newTextGenerator(out)
		//
		strategy, err := selectStrategy(GetString(cmd, "strategy"))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		lookups, err := selectLookups(GetString(cmd, "lookups"))
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		syn, err := synthesizeSample(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		gates := &lower.DefaultGateCallbacks{IgnoreDisabled: !GetFlag(cmd, "keep-disabled")}
		//
		if err := backend.Generate[string](strategy, gen, syn, gates, lookups); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

// selectStrategy maps a --strategy flag value onto its implementation.
func selectStrategy(name string) (backend.Strategy[string], error) {
	switch name {
	case "inline":
		return backend.Inline[string]{}, nil
	case "gates":
		return backend.CallGates[string]{}, nil
	case "groups":
		return backend.Groups[string]{}, nil
	}
	//
	return nil, fmt.Errorf("unknown strategy %q (available: inline, gates, groups)", name)
}

// selectLookups maps a --lookups flag value onto its implementation.
func selectLookups(name string) (backend.LookupStrategy[string], error) {
	switch name {
	case "module":
		return &backend.AsModule[string]{}, nil
	case "inlined":
		return backend.AsRowConstraint[string]{}, nil
	case "reject":
		return backend.RejectLookups[string]{}, nil
	}
	//
	return nil, fmt.Errorf("unknown lookup handling %q (available: module, inlined, reject)", name)
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("output", "o", "", "write listing to a file instead of stdout.")
	compileCmd.Flags().StringP("strategy", "s", "groups", "select lowering strategy (inline, gates, groups).")
	compileCmd.Flags().StringP("lookups", "l", "module", "select lookup handling (module, inlined, reject).")
	compileCmd.Flags().Bool("keep-disabled", false, "emit gate constraints even on rows where every selector is off.")
}
