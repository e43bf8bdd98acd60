package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SirRandoo/streamkit/internal/manifest"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <extension-dir>",
		Short: "Write a corpus manifest for an extension from flags or interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  runInit,
	}
	cmd.Flags().String("format", "yaml", "Manifest format: yaml or xml")
	cmd.Flags().String("bundle-root", "", "Bundle directory relative to the extension root")
	cmd.Flags().Bool("versioned", false, "Nest the bundle under a host-version directory")
	cmd.Flags().StringArray("resource", nil, "Resource as name:type[:root] (repeatable)")
	cmd.Flags().Bool("force", false, "Overwrite an existing manifest")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := args[0]
	formatStr, _ := cmd.Flags().GetString("format")
	bundleRoot, _ := cmd.Flags().GetString("bundle-root")
	versioned, _ := cmd.Flags().GetBool("versioned")
	resourceFlags, _ := cmd.Flags().GetStringArray("resource")
	force, _ := cmd.Flags().GetBool("force")

	format, err := manifest.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("extension directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("extension directory %s is not a directory", dir)
	}
	if existing, _, ok := manifest.Find(dir); ok && !force {
		return fmt.Errorf("manifest %s already exists (use --force to overwrite)", existing)
	}

	var bundle manifest.Bundle
	if len(resourceFlags) > 0 {
		bundle = manifest.Bundle{Root: bundleRoot, Versioned: versioned}
		for _, s := range resourceFlags {
			res, err := parseResourceFlag(s)
			if err != nil {
				return err
			}
			bundle.Resources = append(bundle.Resources, res)
		}
	} else {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("interactive init requires a TTY; use --resource to declare resources")
		}
		bundle, err = interactiveBundle(bundleRoot, versioned)
		if err != nil {
			return fmt.Errorf("interactive setup: %w", err)
		}
	}

	corpus := &manifest.Corpus{Bundles: []manifest.Bundle{bundle}}
	path, err := manifest.Save(dir, corpus, format)
	if err != nil {
		return err
	}

	// Find prefers XML, so a stale Corpus.xml would shadow a new corpus.yaml.
	if format == manifest.FormatYAML && force {
		stale := filepath.Join(dir, manifest.XMLFileName)
		if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", stale, err)
		}
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d resource(s))\n", path, len(bundle.Resources))
	return nil
}

// parseResourceFlag parses "name:type[:root]".
func parseResourceFlag(s string) (manifest.Resource, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return manifest.Resource{}, fmt.Errorf("invalid --resource %q: expected name:type[:root]", s)
	}
	rt, err := manifest.ParseResourceType(parts[1])
	if err != nil {
		return manifest.Resource{}, fmt.Errorf("invalid --resource %q: %w", s, err)
	}
	res := manifest.Resource{Name: parts[0], Type: rt}
	if len(parts) == 3 {
		res.Root = parts[2]
	}
	return res, nil
}
