package bootstrap

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/SirRandoo/streamkit/internal/extension"
	"github.com/SirRandoo/streamkit/internal/hostver"
	"github.com/SirRandoo/streamkit/internal/platform"
	"github.com/SirRandoo/streamkit/internal/stage"
)

// QuitNotifier is the host's process-wide quit notification.
type QuitNotifier interface {
	OnQuit(fn func())
}

// Config holds everything a Lifecycle needs from the host.
type Config struct {
	// GOOS identifies the running platform, as runtime.GOOS does.
	GOOS string
	// Version is the current host version.
	Version hostver.Version
	// WorkDir receives staged files. Empty means the process working
	// directory.
	WorkDir    string
	Extensions extension.Source
	Assemblies AssemblyLoader
	Quit       QuitNotifier
	Logger     *slog.Logger
	// StageOptions configure the Stager, e.g. stage.WithAtomicCopy.
	StageOptions []stage.Option
}

// CleanupReport is the outcome of Shutdown.
type CleanupReport struct {
	Removed  []string
	Failures []*Error
}

// Lifecycle runs Startup once and Shutdown once for the process. It owns
// the record of staged files.
type Lifecycle struct {
	cfg     Config
	logger  *slog.Logger
	record  stage.Record
	started bool
	stopped bool
}

// NewLifecycle returns a Lifecycle that has not started.
func NewLifecycle(cfg Config) *Lifecycle {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{cfg: cfg, logger: logger}
}

// Start resolves the platform, subscribes Shutdown to the quit
// notification, and loads every installed extension. On an unsupported
// platform it returns a KindPlatformUnsupported error and does nothing
// else. Only enumeration failures and the platform abort Start; every
// other failure is logged and collected in the Report.
func (l *Lifecycle) Start() (*Report, error) {
	if l.started {
		return nil, ErrAlreadyStarted
	}
	l.started = true

	p, err := platform.Resolve(l.cfg.GOOS)
	if err != nil {
		l.logger.Error("Bootstrap is running on an unsupported platform. Aborting...", "platform", l.cfg.GOOS)
		return nil, &Error{Kind: KindPlatformUnsupported, Err: err}
	}

	if l.cfg.Quit != nil {
		l.cfg.Quit.OnQuit(func() { l.Shutdown() })
	}
	l.logger.Info("Bootstrap is running.", "platform", p.OS, "host_version", l.cfg.Version.Full)

	workDir := l.cfg.WorkDir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
	}

	loader := NewLoader(LoaderConfig{
		Platform:   p,
		Version:    l.cfg.Version,
		Stager:     stage.New(workDir, &l.record, l.cfg.StageOptions...),
		Assemblies: l.cfg.Assemblies,
		Logger:     l.logger,
	})

	if l.cfg.Extensions == nil {
		return loader.Report(), nil
	}
	exts, err := l.cfg.Extensions.Extensions()
	if err != nil {
		l.logger.Error("Could not enumerate extensions.", "error", err)
		return loader.Report(), fmt.Errorf("enumerating extensions: %w", err)
	}

	for _, ext := range exts {
		if err := loader.LoadExtension(ext); IsKind(err, KindManifestMissing) {
			l.logger.Info("Extension has no corpus manifest; skipping.", "extension", ext.Name)
		}
	}

	report := loader.Report()
	l.logger.Info("Bootstrap finished.",
		"extensions", len(report.Extensions),
		"staged", report.Count(StatusStaged),
		"loaded", report.Count(StatusLoaded),
		"failures", len(report.Failures))
	return report, nil
}

// Shutdown deletes every file staged by Start. Each failed deletion is
// logged and reported; the remaining files are still attempted. Files that
// are already gone count as removed. Calls after the first do nothing.
func (l *Lifecycle) Shutdown() CleanupReport {
	var out CleanupReport
	if l.stopped {
		return out
	}
	l.stopped = true

	for _, path := range l.record.Drain() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			failure := &Error{Kind: KindCleanupFailure, Destination: path, Err: err}
			l.logger.Error("Could not clean file. Any pending updates to this file will not go through.",
				"destination", path, "error", err)
			out.Failures = append(out.Failures, failure)
			continue
		}
		out.Removed = append(out.Removed, path)
	}
	l.logger.Debug("Staged files cleaned.", "removed", len(out.Removed), "failures", len(out.Failures))
	return out
}

// Staged returns the files staged so far that Shutdown will remove.
func (l *Lifecycle) Staged() []string {
	return l.record.Paths()
}
