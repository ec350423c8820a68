// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package constants

import (
	"fmt"
)

// DefaultCLIName is the name of the preprocessor binary.
const DefaultCLIName = "genny-preprocess"

type Command struct {
	Use     string
	Aliases []string
	Short   string
	Long    string
	Example string
}

var (
	Root = Command{
		Use:   DefaultCLIName,
		Short: "Resolve workload configuration macros",
		Long: `Resolve the macro language of workload configuration files into concrete
documents: parameters, arithmetic and format expressions, array flattening,
actor templates, phase activation windows and external config inclusion.`,
	}

	Evaluate = Command{
		Use:   "evaluate WORKLOAD",
		Short: "Preprocess one workload",
		Long: fmt.Sprintf(`Preprocess a workload file and write the resolved document.

Examples:
  # Print the resolved workload
  %[1]s evaluate src/workloads/scale/InsertRemove.yml

  # Write a smoke-test version against a specific cluster
  %[1]s evaluate src/workloads/scale/InsertRemove.yml --smoke \
    --default-uri mongodb://localhost:27017 -o build/InsertRemove.yml`, DefaultCLIName),
	}

	Batch = Command{
		Use:   "batch PATTERN...",
		Short: "Preprocess many workloads in parallel",
		Long: fmt.Sprintf(`Preprocess every workload matching the glob patterns into an output
directory, keeping the layout below each pattern's literal prefix.

Examples:
  # Preprocess all workloads
  %[1]s batch 'src/workloads/**/*.yml' --out-dir build/WorkloadOutput

  # Report every failing workload instead of stopping at the first
  %[1]s batch 'src/workloads/**/*.yml' --out-dir build/WorkloadOutput --keep-going`, DefaultCLIName),
	}

	Version = Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version information.",
	}
)
