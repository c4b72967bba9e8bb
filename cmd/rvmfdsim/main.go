// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command rvmfdsim decodes and executes a single M/F/D-extension
// instruction word against a JSON-described register/CSR snapshot and
// prints the resulting snapshot. It never fetches, dispatches, or
// loads a program image — spec.md's Non-goals exclude that; this is
// inspection tooling for this core's own semantic functions.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rv64mfd/core/isa/fdext"
	"github.com/rv64mfd/core/isa/mext"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rvmfdsim",
		Short: "Decode and execute one RISC-V M/F/D instruction against a JSON state snapshot",
	}

	var inPath, outPath string
	var inst uint32
	var isC bool

	execCmd := &cobra.Command{
		Use:   "exec",
		Short: "Execute one instruction against an input snapshot and print the resulting snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(inPath, outPath, inst, isC)
		},
	}
	execCmd.Flags().StringVar(&inPath, "in", "", "Input snapshot JSON file (default: stdin)")
	execCmd.Flags().StringVar(&outPath, "out", "", "Output snapshot JSON file (default: stdout)")
	execCmd.Flags().Uint32Var(&inst, "inst", 0, "Raw 32-bit instruction word (e.g. 0x02B50533)")
	execCmd.Flags().BoolVar(&isC, "is-c", false, "Treat the instruction as compressed for PC-increment purposes")
	if err := execCmd.MarkFlagRequired("inst"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(execCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runExec(inPath, outPath string, inst uint32, isC bool) error {
	raw, err := readInput(inPath)
	if err != nil {
		return err
	}
	snap, err := decodeSnapshot(raw)
	if err != nil {
		return err
	}
	m, err := newMachineFromSnapshot(snap)
	if err != nil {
		return fmt.Errorf("building machine state: %w", err)
	}

	legal, next := mext.Execute(m, inst, isC)
	if !legal {
		legal, next = fdext.Execute(m, inst, isC)
	}

	result := struct {
		Legal    bool      `json:"legal"`
		Snapshot *snapshot `json:"snapshot"`
	}{Legal: legal}

	if legal {
		result.Snapshot = next.(*machine).toSnapshot()
	} else {
		result.Snapshot = m.toSnapshot()
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return writeOutput(outPath, out)
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	data = append(data, '\n')
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
