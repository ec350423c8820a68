// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the preprocessor binary.
package version

import (
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/mongodb/genny-sub000/internal/version.version=...".
var (
	version     = ""
	gitRevision = ""
	buildTime   = ""
)

// Info describes the running binary.
type Info struct {
	Version     string
	GitRevision string
	BuildTime   string
	GoVersion   string
	GoOS        string
	GoArch      string
}

// Get returns the build information, filling unset linker values from the
// module build info.
func Get() Info {
	info := Info{
		Version:     version,
		GitRevision: gitRevision,
		BuildTime:   buildTime,
		GoVersion:   runtime.Version(),
		GoOS:        runtime.GOOS,
		GoArch:      runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitRevision == "" {
					info.GitRevision = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
	}

	if info.Version == "" {
		info.Version = "(devel)"
	}
	return info
}
