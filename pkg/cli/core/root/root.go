// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package root

import (
	"github.com/spf13/cobra"

	"github.com/mongodb/genny-sub000/pkg/cli/cmd/batch"
	"github.com/mongodb/genny-sub000/pkg/cli/cmd/evaluate"
	"github.com/mongodb/genny-sub000/pkg/cli/cmd/version"
	"github.com/mongodb/genny-sub000/pkg/cli/common/builder"
	"github.com/mongodb/genny-sub000/pkg/cli/common/constants"
	"github.com/mongodb/genny-sub000/pkg/cli/flags"
)

// BuildRootCmd assembles the root command with all subcommands
func BuildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.Root.Use,
		Short: constants.Root.Short,
		Long:  constants.Root.Long,
	}
	for _, f := range flags.Persistent {
		builder.AddFlag(rootCmd.PersistentFlags(), f)
	}

	rootCmd.AddCommand(
		evaluate.NewEvaluateCmd(),
		batch.NewBatchCmd(),
		version.NewVersionCmd(),
	)

	return rootCmd
}
