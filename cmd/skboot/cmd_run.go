package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/SirRandoo/streamkit/internal/bootstrap"
	"github.com/SirRandoo/streamkit/internal/modload"
	"github.com/SirRandoo/streamkit/internal/stage"
	"github.com/SirRandoo/streamkit/internal/ui"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [-- <command...>]",
		Short: "Stage extension resources, run the host command, then clean up",
		Long: `Stage every resource the installed extensions declare, then either run the
given command from the working directory, wait for SIGINT/SIGTERM (--hold),
or quit right away. Staged files are removed when the host quits.`,
		RunE: runRun,
	}
	cmd.Flags().Bool("json", false, "Print the load report as JSON")
	cmd.Flags().Bool("hold", false, "Keep staged files until SIGINT or SIGTERM")
	cmd.Flags().Bool("strict", false, "Exit non-zero if any resource failed")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	opts, err := loadHostOptions(cmd)
	if err != nil {
		return err
	}
	v, err := opts.version()
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	hold, _ := cmd.Flags().GetBool("hold")
	strict, _ := cmd.Flags().GetBool("strict")

	var stageOpts []stage.Option
	if opts.atomic {
		stageOpts = append(stageOpts, stage.WithAtomicCopy())
	}

	quit := &quitHook{}
	registry := modload.NewRegistry()
	lc := bootstrap.NewLifecycle(bootstrap.Config{
		GOOS:         opts.goos,
		Version:      v,
		WorkDir:      opts.workDir,
		Extensions:   opts.extensions(),
		Assemblies:   registry,
		Quit:         quit,
		Logger:       opts.logger,
		StageOptions: stageOpts,
	})

	report, err := lc.Start()
	// Start only subscribes the quit hook once the platform is known, so
	// this is a no-op after an early abort.
	defer quit.quit()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		if err := printReport(out, ui.NewPainter(out), report, len(registry.Loaded())); err != nil {
			return err
		}
	}

	// Signals must not kill the host before the quit hook has run.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case len(args) > 0:
		c := exec.Command(args[0], args[1:]...)
		c.Dir = opts.workDir
		c.Stdin = os.Stdin
		c.Stdout = out
		c.Stderr = cmd.ErrOrStderr()
		if err := c.Run(); err != nil {
			return fmt.Errorf("running %s: %w", args[0], err)
		}
	case hold:
		opts.logger.Info("Holding staged files until interrupted.", "staged", len(lc.Staged()))
		<-ctx.Done()
	}

	if strict && !report.OK() {
		return fmt.Errorf("%d resource failure(s)", len(report.Failures))
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(out io.Writer, painter ui.Painter, report *bootstrap.Report, loaded int) error {
	_, _ = fmt.Fprintf(out, "Platform: %s  Host: %s\n\n", report.Platform, report.HostVersion)

	if len(report.Extensions) == 0 {
		_, _ = fmt.Fprintln(out, "No extensions found.")
		return nil
	}

	exts := ui.NewTable(out, "EXTENSION", "BUNDLES", "MANIFEST", "STATUS")
	for _, e := range report.Extensions {
		manifest := e.Manifest
		if manifest == "" {
			manifest = "-"
		}
		exts.Row(e.Name, e.Bundles, manifest, painter.Status(string(e.Status)))
	}
	if err := exts.Flush(); err != nil {
		return err
	}

	if len(report.Resources) > 0 {
		_, _ = fmt.Fprintln(out)
		res := ui.NewTable(out, "EXTENSION", "RESOURCE", "TYPE", "PATH", "STATUS")
		for _, r := range report.Resources {
			path := r.Destination
			if path == "" {
				path = r.Source
			}
			res.Row(r.Extension, r.Resource, r.Type, path, painter.Status(string(r.Status)))
		}
		if err := res.Flush(); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(out, "\n%d staged, %d already present, %d assemblies loaded, %d failure(s)\n",
		report.Count(bootstrap.StatusStaged), report.Count(bootstrap.StatusPresent), loaded, len(report.Failures))
	for _, f := range report.Failures {
		_, _ = fmt.Fprintf(out, "  %s\n", f.Error())
	}
	return nil
}
