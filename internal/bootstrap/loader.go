package bootstrap

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/SirRandoo/streamkit/internal/extension"
	"github.com/SirRandoo/streamkit/internal/hostver"
	"github.com/SirRandoo/streamkit/internal/layout"
	"github.com/SirRandoo/streamkit/internal/manifest"
	"github.com/SirRandoo/streamkit/internal/platform"
	"github.com/SirRandoo/streamkit/internal/stage"
)

var errNoAssemblyLoader = errors.New("host has no assembly loader")

// AssemblyLoader is the host facility that loads managed modules directly.
type AssemblyLoader interface {
	LoadAssembly(ext extension.Extension, path string) error
}

// LoaderConfig holds the collaborators of a Loader.
type LoaderConfig struct {
	Platform   platform.Platform
	Version    hostver.Version
	Stager     *stage.Stager
	Assemblies AssemblyLoader
	Logger     *slog.Logger
}

// Loader loads the manifests and bundles of extensions, one at a time.
type Loader struct {
	platform   platform.Platform
	version    hostver.Version
	stager     *stage.Stager
	assemblies AssemblyLoader
	logger     *slog.Logger
	report     *Report
}

// NewLoader returns a Loader with an empty Report.
func NewLoader(cfg LoaderConfig) *Loader {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		platform:   cfg.Platform,
		version:    cfg.Version,
		stager:     cfg.Stager,
		assemblies: cfg.Assemblies,
		logger:     logger,
		report: &Report{
			Platform:    cfg.Platform.OS,
			HostVersion: cfg.Version.Full,
		},
	}
}

// Report returns the results collected so far.
func (l *Loader) Report() *Report {
	return l.report
}

// LoadExtension loads every bundle declared in ext's manifest. A missing
// manifest returns a KindManifestMissing error without logging; a malformed
// one is logged, recorded and returned as KindManifestMalformed. Bundle and
// resource failures are recorded but do not make LoadExtension fail.
func (l *Loader) LoadExtension(ext extension.Extension) error {
	corpus, path, err := readCorpus(ext)
	result := ExtensionResult{Name: ext.Name, Root: ext.Root, Manifest: path}
	if err != nil {
		var be *Error
		if errors.As(err, &be) && be.Kind == KindManifestMalformed {
			l.logger.Error("Corpus manifest is malformed; skipping extension.",
				"extension", ext.Name, "manifest", path, "error", be.Err)
			l.report.fail(be)
			result.Status = StatusMalformed
			result.Error = be.Error()
		} else {
			result.Status = StatusNoCorpus
		}
		l.report.Extensions = append(l.report.Extensions, result)
		return err
	}

	l.logger.Debug("Loading corpus.", "extension", ext.Name, "manifest", path, "bundles", len(corpus.Bundles))
	result.Status = StatusLoaded
	result.Bundles = len(corpus.Bundles)
	l.report.Extensions = append(l.report.Extensions, result)

	for _, bundle := range corpus.Bundles {
		_ = l.LoadBundle(ext, bundle)
	}
	return nil
}

// readCorpus finds and parses ext's manifest.
func readCorpus(ext extension.Extension) (*manifest.Corpus, string, error) {
	path, _, ok := manifest.Find(ext.Root)
	if !ok {
		return nil, "", &Error{Kind: KindManifestMissing, Extension: ext.Name}
	}
	corpus, err := manifest.Load(path)
	if err != nil {
		return nil, path, &Error{Kind: KindManifestMalformed, Extension: ext.Name, Source: path, Err: err}
	}
	return corpus, path, nil
}

// LoadBundle processes the resources of bundle in declaration order. It
// returns a KindBundleDirectoryMissing error, after logging and recording
// it, when the resolved directory does not exist.
func (l *Loader) LoadBundle(ext extension.Extension, bundle manifest.Bundle) error {
	dir := layout.BundleDir(ext.Root, bundle, l.version)
	if !layout.Exists(dir) {
		err := &Error{Kind: KindBundleDirectoryMissing, Extension: ext.Name, Bundle: dir, Err: os.ErrNotExist}
		l.logger.Error("Bundle directory declared in corpus does not exist; skipping bundle.",
			"extension", ext.Name, "bundle", dir)
		l.report.fail(err)
		return err
	}

	for _, res := range bundle.Resources {
		l.loadResource(ext, dir, res)
	}
	return nil
}

func (l *Loader) loadResource(ext extension.Extension, bundleDir string, res manifest.Resource) {
	fileName := l.fileName(res)
	source := filepath.Join(layout.ResourceDir(bundleDir, res), fileName)
	result := ResourceResult{
		Extension: ext.Name,
		Bundle:    bundleDir,
		Resource:  res.Name,
		Type:      res.Type,
		Source:    source,
	}

	var err error
	switch res.Type {
	case manifest.Dll, manifest.NetStandardAssembly:
		result.Destination = l.stager.Destination(fileName)
		var outcome stage.Outcome
		outcome, err = l.stager.Stage(source, fileName)
		if err == nil {
			result.Status = Status(outcome.String())
		}
	case manifest.Assembly:
		source, err = filepath.Abs(source)
		result.Source = source
		if err == nil && l.assemblies == nil {
			err = errNoAssemblyLoader
		}
		if err == nil {
			err = l.assemblies.LoadAssembly(ext, source)
		}
		if err == nil {
			result.Status = StatusLoaded
		}
	}

	if err != nil {
		failure := &Error{
			Kind:        KindResourceLoadFailure,
			Extension:   ext.Name,
			Bundle:      bundleDir,
			Resource:    res.Name,
			Source:      result.Source,
			Destination: result.Destination,
			Err:         err,
		}
		l.logger.Error("Could not load resource; things will not work correctly.",
			"extension", ext.Name, "resource", res.Name, "type", res.Type.String(),
			"source", result.Source, "destination", result.Destination, "error", err)
		l.report.fail(failure)
		result.Status = StatusFailed
		result.Error = failure.Error()
	} else {
		l.logger.Debug("Resource loaded.", "extension", ext.Name, "resource", res.Name, "status", string(result.Status))
	}
	l.report.Resources = append(l.report.Resources, result)
}

// fileName returns the on-disk file name of res.
func (l *Loader) fileName(res manifest.Resource) string {
	if res.Type == manifest.Dll {
		return l.platform.NativeFileName(res.Name)
	}
	return res.Name + "." + manifest.ManagedExtension
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
