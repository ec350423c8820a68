// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"runtime"

	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by LoadSettings.
const EnvPrefix = "GENNY_PREPROCESS"

// Settings configures the preprocessor commands.
type Settings struct {
	// DefaultURI is the connection string of the injected Default client.
	DefaultURI string `koanf:"default_uri" validate:"required"`
	// StreamURI is the connection string of the injected Stream client.
	StreamURI string `koanf:"stream_uri"`
	// WorkloadRoot resolves relative LoadConfig paths. Empty means the
	// directory of each workload.
	WorkloadRoot string `koanf:"workload_root"`
	// Override is a YAML document merged onto every resolved workload.
	Override string `koanf:"override"`
	// Smoke rewrites every phase Repeat to 1.
	Smoke bool `koanf:"smoke"`

	Output  OutputSettings  `koanf:"output"`
	Batch   BatchSettings   `koanf:"batch"`
	Logging LoggingSettings `koanf:"logging"`
}

// OutputSettings controls how resolved documents are written.
type OutputSettings struct {
	Format      string `koanf:"format" validate:"oneof=yaml json"`
	CompactNops bool   `koanf:"compact_nops"`
}

// BatchSettings controls the batch command.
type BatchSettings struct {
	Jobs      int  `koanf:"jobs" validate:"min=1,max=256"`
	KeepGoing bool `koanf:"keep_going"`
}

// LoggingSettings mirrors logging.Config.
type LoggingSettings struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn warning error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Settings {
	return Settings{
		DefaultURI: "mongodb://localhost:27017",
		Output: OutputSettings{
			Format: "yaml",
		},
		Batch: BatchSettings{
			Jobs: min(runtime.NumCPU(), 256),
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate implements Validator.
func (s *Settings) Validate() error {
	errs := ValidateStruct(s)
	if s.Output.CompactNops && s.Output.Format != "yaml" {
		errs = append(errs, Invalid(NewPath("output").Child("compact_nops"), "only applies to yaml output"))
	}
	return errs.OrNil()
}

// LoadSettings resolves Settings from defaults, the optional config file,
// GENNY_PREPROCESS__* environment variables and the explicitly set flags
// named in mappings, in increasing order of priority.
func LoadSettings(configPath string, flags *pflag.FlagSet, mappings map[string]string, opts ...Option) (*Settings, error) {
	l := NewLoader(EnvPrefix, opts...)
	if err := l.LoadWithDefaults(Defaults(), configPath); err != nil {
		return nil, err
	}
	if flags != nil {
		if err := l.LoadFlags(flags, mappings); err != nil {
			return nil, err
		}
	}

	var s Settings
	if err := l.UnmarshalAndValidate("", &s); err != nil {
		return nil, err
	}
	return &s, nil
}
