// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package builder assembles cobra commands from command and flag descriptors.
package builder

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mongodb/genny-sub000/internal/config"
	"github.com/mongodb/genny-sub000/pkg/cli/common/constants"
	"github.com/mongodb/genny-sub000/pkg/cli/flags"
)

// CommandBuilder builds a cobra command whose flags are declared as
// descriptors.
type CommandBuilder struct {
	Command constants.Command
	Flags   []flags.Flag
	Args    cobra.PositionalArgs
	RunE    func(fg *FlagGetter) error
}

// Build returns the cobra command.
func (b *CommandBuilder) Build() *cobra.Command {
	cmd := &cobra.Command{
		Use:     b.Command.Use,
		Aliases: b.Command.Aliases,
		Short:   b.Command.Short,
		Long:    b.Command.Long,
		Example: b.Command.Example,
		Args:    b.Args,
	}
	for _, f := range b.Flags {
		AddFlag(cmd.Flags(), f)
	}
	if b.RunE != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			return b.RunE(&FlagGetter{cmd: cmd, args: args, flags: b.Flags})
		}
	}
	return cmd
}

// AddFlag registers f on fs with a zero default. Defaults live in the
// configuration so that only explicitly set flags override it.
func AddFlag(fs *pflag.FlagSet, f flags.Flag) {
	switch f.Type {
	case flags.TypeBool:
		fs.BoolP(f.Name, f.Shorthand, false, f.Usage)
	case flags.TypeInt:
		fs.IntP(f.Name, f.Shorthand, 0, f.Usage)
	default:
		fs.StringP(f.Name, f.Shorthand, "", f.Usage)
	}
}

// FlagGetter gives RunE access to the parsed command line.
type FlagGetter struct {
	cmd   *cobra.Command
	args  []string
	flags []flags.Flag
}

// GetString returns the value of a string flag.
func (fg *FlagGetter) GetString(f flags.Flag) string {
	v, _ := fg.cmd.Flags().GetString(f.Name)
	return v
}

// GetBool returns the value of a bool flag.
func (fg *FlagGetter) GetBool(f flags.Flag) bool {
	v, _ := fg.cmd.Flags().GetBool(f.Name)
	return v
}

// GetInt returns the value of a int flag.
func (fg *FlagGetter) GetInt(f flags.Flag) int {
	v, _ := fg.cmd.Flags().GetInt(f.Name)
	return v
}

// Args returns the positional arguments.
func (fg *FlagGetter) Args() []string {
	return fg.args
}

// Context returns the command's context.
func (fg *FlagGetter) Context() context.Context {
	if ctx := fg.cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Out returns the writer for command output.
func (fg *FlagGetter) Out() io.Writer {
	return fg.cmd.OutOrStdout()
}

// Settings loads the configuration, applying the command's explicitly set
// flags and the persistent flags on top of the config file and environment.
func (fg *FlagGetter) Settings() (*config.Settings, error) {
	all := append(append([]flags.Flag{}, flags.Persistent...), fg.flags...)
	return config.LoadSettings(fg.GetString(flags.Config), fg.cmd.Flags(), flags.ConfigMappings(all...))
}
