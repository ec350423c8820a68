// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"context"

	"github.com/spf13/afero"

	"github.com/mongodb/genny-sub000/internal/logging"
	"github.com/mongodb/genny-sub000/internal/runner"
)

// Runner loads the settings, attaches a logger configured from them to the
// command's context and returns a runner on the OS filesystem.
func (fg *FlagGetter) Runner() (context.Context, *runner.Runner, error) {
	settings, err := fg.Settings()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(logging.Config{
		Level:  settings.Logging.Level,
		Format: settings.Logging.Format,
		Output: fg.cmd.ErrOrStderr(),
	})
	ctx := logging.NewContext(fg.Context(), logger)

	r, err := runner.New(settings, afero.NewOsFs(), fg.Out())
	if err != nil {
		return nil, nil, err
	}
	return ctx, r, nil
}
