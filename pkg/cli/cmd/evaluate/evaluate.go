// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package evaluate

import (
	"github.com/spf13/cobra"

	"github.com/mongodb/genny-sub000/pkg/cli/common/builder"
	"github.com/mongodb/genny-sub000/pkg/cli/common/constants"
	"github.com/mongodb/genny-sub000/pkg/cli/flags"
)

// NewEvaluateCmd creates the evaluate command.
func NewEvaluateCmd() *cobra.Command {
	return (&builder.CommandBuilder{
		Command: constants.Evaluate,
		Flags: []flags.Flag{
			flags.DefaultURI,
			flags.StreamURI,
			flags.WorkloadRoot,
			flags.Override,
			flags.Smoke,
			flags.Format,
			flags.CompactNops,
			flags.OutputFile,
		},
		Args: cobra.ExactArgs(1),
		RunE: func(fg *builder.FlagGetter) error {
			ctx, r, err := fg.Runner()
			if err != nil {
				return err
			}
			return r.Evaluate(ctx, fg.Args()[0], fg.GetString(flags.OutputFile))
		},
	}).Build()
}
