// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package flags

// Flag describes a command line flag. Flags with a ConfigKey override that
// configuration key when they are set explicitly.
type Flag struct {
	Name      string
	Shorthand string
	Usage     string
	Type      string
	ConfigKey string
}

const (
	TypeString = ""
	TypeBool   = "bool"
	TypeInt    = "int"
)

var (
	Config = Flag{
		Name:  "config",
		Usage: "Path to a YAML configuration file",
	}

	LogLevel = Flag{
		Name:      "log-level",
		Usage:     "Log level (debug, info, warn, error)",
		ConfigKey: "logging.level",
	}

	LogFormat = Flag{
		Name:      "log-format",
		Usage:     "Log format (text, json)",
		ConfigKey: "logging.format",
	}

	DefaultURI = Flag{
		Name:      "default-uri",
		Usage:     "Connection string of the injected Default client",
		ConfigKey: "default_uri",
	}

	StreamURI = Flag{
		Name:      "mongostream-uri",
		Usage:     "Connection string of the injected Stream client (defaults to --default-uri)",
		ConfigKey: "stream_uri",
	}

	WorkloadRoot = Flag{
		Name:      "workload-root",
		Usage:     "Directory relative LoadConfig paths are resolved in (defaults to the workload's directory)",
		ConfigKey: "workload_root",
	}

	Override = Flag{
		Name:      "override",
		Usage:     "YAML document deep-merged onto the resolved workload",
		ConfigKey: "override",
	}

	Smoke = Flag{
		Name:      "smoke",
		Usage:     "Set every phase Repeat to 1",
		Type:      TypeBool,
		ConfigKey: "smoke",
	}

	Format = Flag{
		Name:      "format",
		Usage:     "Output format (yaml, json); json output has sorted keys and no generated-file header",
		ConfigKey: "output.format",
	}

	CompactNops = Flag{
		Name:      "compact-nops",
		Usage:     "Emit repeated {Nop: true} phases as YAML aliases",
		Type:      TypeBool,
		ConfigKey: "output.compact_nops",
	}

	OutputFile = Flag{
		Name:      "output",
		Shorthand: "o",
		Usage:     "File to write the resolved workload to (defaults to stdout)",
	}

	OutDir = Flag{
		Name:  "out-dir",
		Usage: "Directory to write resolved workloads to",
	}

	Jobs = Flag{
		Name:      "jobs",
		Shorthand: "j",
		Usage:     "Number of workloads processed in parallel",
		Type:      TypeInt,
		ConfigKey: "batch.jobs",
	}

	KeepGoing = Flag{
		Name:      "keep-going",
		Shorthand: "k",
		Usage:     "Process every workload and report all failures",
		Type:      TypeBool,
		ConfigKey: "batch.keep_going",
	}
)

// ConfigMappings returns the flag name to configuration key mappings of fs.
func ConfigMappings(fs ...Flag) map[string]string {
	m := make(map[string]string, len(fs))
	for _, f := range fs {
		if f.ConfigKey != "" {
			m[f.Name] = f.ConfigKey
		}
	}
	return m
}

// Persistent are the flags registered on the root command.
var Persistent = []Flag{Config, LogLevel, LogFormat}
