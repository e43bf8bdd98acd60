package main

import (
	"fmt"

	"github.com/SirRandoo/streamkit/internal/manifest"
	"github.com/SirRandoo/streamkit/internal/ui"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Parse every extension's corpus manifest and report problems",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, _ []string) error {
	opts, err := loadHostOptions(cmd)
	if err != nil {
		return err
	}
	exts, err := opts.extensions().Extensions()
	if err != nil {
		return fmt.Errorf("listing extensions: %w", err)
	}

	out := cmd.OutOrStdout()
	painter := ui.NewPainter(out)
	progress := ui.NewProgress(out, len(exts))
	var failed int
	for _, ext := range exts {
		path, _, ok := manifest.Find(ext.Root)
		if !ok {
			progress.Done(ext.Name, painter.Status("no-manifest"))
			continue
		}
		corpus, err := manifest.Load(path)
		if err != nil {
			failed++
			progress.Done(ext.Name, painter.Status("malformed"))
			progress.Log("%v", err)
			continue
		}
		resources := 0
		for _, b := range corpus.Bundles {
			resources += len(b.Resources)
		}
		progress.Done(ext.Name, fmt.Sprintf("%s (%d bundle(s), %d resource(s))", painter.Status("ok"), len(corpus.Bundles), resources))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d manifest(s) are malformed", failed, len(exts))
	}
	return nil
}
