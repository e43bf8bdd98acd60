package main

import (
	"runtime"

	"github.com/SirRandoo/streamkit/internal/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	env, envErr := config.ParseEnv()

	cmd := &cobra.Command{
		Use:           "skboot",
		Short:         "Stage and load the resources StreamKit extensions declare in their corpus",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return envErr
		},
	}

	goos := env.Platform
	if goos == "" {
		goos = runtime.GOOS
	}

	flags := cmd.PersistentFlags()
	flags.String("mods", env.ModsDir, "Directory holding one extension per subdirectory")
	flags.String("workdir", env.WorkDir, "Directory native files are staged into (default: current directory)")
	flags.String("host-version", env.HostVersion, "Full host version, e.g. 1.5.0.1")
	flags.String("host-version-without-build", env.HostVersionWithoutBuild, "Host version without build component (default: derived)")
	flags.String("platform", goos, "Platform to resolve native libraries for (windows, linux, darwin)")
	flags.String("log-level", env.LogLevel, "Log level: debug, info, warn, error")
	flags.String("log-format", env.LogFormat, "Log format: text or json")
	flags.Bool("atomic", env.Atomic, "Stage through a temporary file and rename it into place")

	cmd.AddCommand(
		newRunCmd(),
		newPlanCmd(),
		newValidateCmd(),
		newInitCmd(),
	)

	return cmd
}
