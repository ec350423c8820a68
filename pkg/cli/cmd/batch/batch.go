// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mongodb/genny-sub000/pkg/cli/common/builder"
	"github.com/mongodb/genny-sub000/pkg/cli/common/constants"
	"github.com/mongodb/genny-sub000/pkg/cli/flags"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	return (&builder.CommandBuilder{
		Command: constants.Batch,
		Flags: []flags.Flag{
			flags.DefaultURI,
			flags.StreamURI,
			flags.WorkloadRoot,
			flags.Override,
			flags.Smoke,
			flags.Format,
			flags.CompactNops,
			flags.OutDir,
			flags.Jobs,
			flags.KeepGoing,
		},
		Args: cobra.MinimumNArgs(1),
		RunE: func(fg *builder.FlagGetter) error {
			outDir := fg.GetString(flags.OutDir)
			if outDir == "" {
				return fmt.Errorf("--%s is required", flags.OutDir.Name)
			}
			ctx, r, err := fg.Runner()
			if err != nil {
				return err
			}
			return r.Batch(ctx, fg.Args(), outDir)
		},
	}).Build()
}
