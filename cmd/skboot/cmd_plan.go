package main

import (
	"fmt"

	"github.com/SirRandoo/streamkit/internal/bootstrap"
	"github.com/SirRandoo/streamkit/internal/platform"
	"github.com/SirRandoo/streamkit/internal/stage"
	"github.com/SirRandoo/streamkit/internal/ui"
	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show where every declared resource would be read from and staged to",
		Args:  cobra.NoArgs,
		RunE:  runPlan,
	}
	cmd.Flags().Bool("json", false, "Print the plan as JSON")
	return cmd
}

func runPlan(cmd *cobra.Command, _ []string) error {
	opts, err := loadHostOptions(cmd)
	if err != nil {
		return err
	}
	v, err := opts.version()
	if err != nil {
		return err
	}
	p, err := platform.Resolve(opts.goos)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	exts, err := opts.extensions().Extensions()
	if err != nil {
		return fmt.Errorf("listing extensions: %w", err)
	}

	loader := bootstrap.NewLoader(bootstrap.LoaderConfig{
		Platform: p,
		Version:  v,
		Stager:   stage.New(opts.workDir, nil),
		Logger:   opts.logger,
	})

	steps := []bootstrap.Step{}
	var malformed int
	for _, ext := range exts {
		extSteps, err := loader.Plan(ext)
		switch {
		case bootstrap.IsKind(err, bootstrap.KindManifestMissing):
			continue
		case err != nil:
			malformed++
			opts.logger.Warn("Skipping extension with a malformed corpus.", "extension", ext.Name, "error", err)
			continue
		}
		steps = append(steps, extSteps...)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		if err := writeJSON(out, steps); err != nil {
			return err
		}
	} else {
		painter := ui.NewPainter(out)
		t := ui.NewTable(out, "EXTENSION", "RESOURCE", "TYPE", "SOURCE", "DESTINATION", "ACTION")
		for _, s := range steps {
			action := s.Action
			if !s.SourceExists {
				action = "missing"
			}
			dest := s.Destination
			if dest == "" {
				dest = "-"
			}
			t.Row(s.Extension, s.Resource, s.Type, s.Source, dest, painter.Status(action))
		}
		if err := t.Flush(); err != nil {
			return err
		}
		if t.Len() == 0 {
			_, _ = fmt.Fprintln(out, "No resources declared.")
		}
	}

	if malformed > 0 {
		return fmt.Errorf("%d extension(s) have a malformed corpus", malformed)
	}
	return nil
}
