package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/SirRandoo/streamkit/internal/extension"
	"github.com/SirRandoo/streamkit/internal/hostver"
	"github.com/spf13/cobra"
)

// hostOptions are the resolved persistent flags.
type hostOptions struct {
	modsDir      string
	workDir      string
	goos         string
	fullVersion  string
	withoutBuild string
	atomic       bool
	logger       *slog.Logger
}

func loadHostOptions(cmd *cobra.Command) (*hostOptions, error) {
	flags := cmd.Flags()
	mods, _ := flags.GetString("mods")
	workDir, _ := flags.GetString("workdir")
	goos, _ := flags.GetString("platform")
	full, _ := flags.GetString("host-version")
	withoutBuild, _ := flags.GetString("host-version-without-build")
	level, _ := flags.GetString("log-level")
	format, _ := flags.GetString("log-format")
	atomic, _ := flags.GetBool("atomic")

	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		workDir = wd
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	return &hostOptions{
		modsDir:      mods,
		workDir:      workDir,
		goos:         goos,
		fullVersion:  full,
		withoutBuild: withoutBuild,
		atomic:       atomic,
		logger:       newLogger(level, format, cmd.ErrOrStderr()),
	}, nil
}

// version parses the host version flags.
func (o *hostOptions) version() (hostver.Version, error) {
	if o.fullVersion == "" {
		return hostver.Version{}, fmt.Errorf("host version is required (--host-version or SKBOOT_HOST_VERSION)")
	}
	return hostver.New(o.fullVersion, o.withoutBuild)
}

func (o *hostOptions) extensions() extension.DirSource {
	return extension.DirSource{Dir: o.modsDir}
}

// quitHook fires the subscribed callbacks once, when the CLI host quits.
type quitHook struct {
	fns []func()
}

func (q *quitHook) OnQuit(fn func()) {
	q.fns = append(q.fns, fn)
}

func (q *quitHook) quit() {
	fns := q.fns
	q.fns = nil
	for _, fn := range fns {
		fn()
	}
}
