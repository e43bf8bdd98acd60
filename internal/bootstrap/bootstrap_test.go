package bootstrap

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SirRandoo/streamkit/internal/extension"
	"github.com/SirRandoo/streamkit/internal/hostver"
	"github.com/SirRandoo/streamkit/internal/stage"
	"github.com/SirRandoo/streamkit/internal/testutil"
)

var testVersion = hostver.Version{Full: "1.5.0.1", WithoutBuild: "1.5.0"}

// fakeAssemblies records every load and fails the names in fail.
type fakeAssemblies struct {
	calls []string
	fail  map[string]bool
}

func (f *fakeAssemblies) LoadAssembly(_ extension.Extension, path string) error {
	f.calls = append(f.calls, path)
	if f.fail[filepath.Base(path)] {
		return errors.New("bad image format")
	}
	return nil
}

// fakeQuit collects quit hooks so tests can fire them.
type fakeQuit struct {
	hooks []func()
}

func (q *fakeQuit) OnQuit(fn func()) { q.hooks = append(q.hooks, fn) }

func (q *fakeQuit) fire() {
	for _, fn := range q.hooks {
		fn()
	}
}

// countingSource counts enumerations.
type countingSource struct {
	extension.Source
	calls int
}

func (s *countingSource) Extensions() ([]extension.Extension, error) {
	s.calls++
	return s.Source.Extensions()
}

type failingSource struct{}

func (failingSource) Extensions() ([]extension.Extension, error) {
	return nil, errors.New("permission denied")
}

type env struct {
	mods   string
	work   string
	asm    *fakeAssemblies
	quit   *fakeQuit
	logs   *bytes.Buffer
	source *countingSource
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mods := t.TempDir()
	return &env{
		mods:   mods,
		work:   t.TempDir(),
		asm:    &fakeAssemblies{fail: map[string]bool{}},
		quit:   &fakeQuit{},
		logs:   &bytes.Buffer{},
		source: &countingSource{Source: extension.DirSource{Dir: mods}},
	}
}

func (e *env) lifecycle(goos string, opts ...stage.Option) *Lifecycle {
	return NewLifecycle(Config{
		GOOS:         goos,
		Version:      testVersion,
		WorkDir:      e.work,
		Extensions:   e.source,
		Assemblies:   e.asm,
		Quit:         e.quit,
		Logger:       slog.New(slog.NewTextHandler(e.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		StageOptions: opts,
	})
}

func TestLifecycle_nativeStagedAndCleaned(t *testing.T) {
	e := newEnv(t)
	testutil.CreateExtension(t, e.mods, "Foo", `<Corpus>
  <Bundle>
    <Resource name="native" type="Dll"/>
  </Bundle>
</Corpus>`, map[string]string{"native.dll": "native bytes"})

	lc := e.lifecycle("windows")
	report, err := lc.Start()
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	dest := filepath.Join(e.work, "native.dll")
	if got := testutil.ReadFile(t, dest); got != "native bytes" {
		t.Errorf("staged content = %q", got)
	}
	if staged := lc.Staged(); len(staged) != 1 || staged[0] != dest {
		t.Errorf("Staged() = %v, want [%s]", staged, dest)
	}
	if !report.OK() {
		t.Errorf("unexpected failures: %v", report.Failures)
	}
	if report.Count(StatusStaged) != 1 {
		t.Errorf("staged count = %d, want 1", report.Count(StatusStaged))
	}
	if len(e.quit.hooks) != 1 {
		t.Fatalf("quit hooks = %d, want 1", len(e.quit.hooks))
	}

	e.quit.fire()
	if testutil.Exists(dest) {
		t.Error("staged file should be removed on quit")
	}
	if len(lc.Staged()) != 0 {
		t.Error("record should be drained after shutdown")
	}
}

func TestLifecycle_versionedFallback(t *testing.T) {
	e := newEnv(t)
	testutil.CreateExtension(t, e.mods, "Bar", `<Corpus>
  <Bundle root="Data" versioned="true">
    <Resource name="native" root="Native" type="Dll"/>
  </Bundle>
</Corpus>`, map[string]string{"Data/1.5.0/Native/native.so": "fallback"})

	report, err := e.lifecycle("linux").Start()
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !report.OK() {
		t.Fatalf("unexpected failures: %v", report.Failures)
	}
	if len(report.Resources) != 1 {
		t.Fatalf("resources = %d, want 1", len(report.Resources))
	}
	wantBundle := filepath.Join(e.mods, "Bar", "Data", "1.5.0")
	if got := report.Resources[0].Bundle; got != wantBundle {
		t.Errorf("bundle dir = %q, want %q", got, wantBundle)
	}
	if got := testutil.ReadFile(t, filepath.Join(e.work, "native.so")); got != "fallback" {
		t.Errorf("staged content = %q", got)
	}
}

func TestLifecycle_versionedPrefersFullVersion(t *testing.T) {
	e := newEnv(t)
	testutil.CreateExtension(t, e.mods, "Bar", `<Corpus>
  <Bundle root="Data" versioned="true">
    <Resource name="native" type="Dll"/>
  </Bundle>
</Corpus>`, map[string]string{
		"Data/1.5.0.1/native.dylib": "full",
		"Data/1.5.0/native.dylib":   "fallback",
	})

	if _, err := e.lifecycle("darwin").Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if got := testutil.ReadFile(t, filepath.Join(e.work, "native.dylib")); got != "full" {
		t.Errorf("staged content = %q, want full", got)
	}
}

func TestLifecycle_bundleDirectoryMissing(t *testing.T) {
	e := newEnv(t)
	testutil.CreateExtension(t, e.mods, "Bar", `<Corpus>
  <Bundle root="Data" versioned="true">
    <Resource name="native" type="Dll"/>
    <Resource name="Bar.Core" type="Assembly"/>
  </Bundle>
  <Bundle>
    <Resource name="Shared" type="NetStandardAssembly"/>
  </Bundle>
</Corpus>`, map[string]string{"Shared.dll": "shared"})

	report, err := e.lifecycle("linux").Start()
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	missing := report.FailuresOf(KindBundleDirectoryMissing)
	if len(missing) != 1 {
		t.Fatalf("BundleDirectoryMissing failures = %d, want 1", len(missing))
	}
	wantDir := filepath.Join(e.mods, "Bar", "Data", "1.5.0")
	if missing[0].Bundle != wantDir || missing[0].Extension != "Bar" {
		t.Errorf("failure = %+v", missing[0])
	}
	if len(e.asm.calls) != 0 {
		t.Errorf("no resource of the missing bundle should be processed, loader got %v", e.asm.calls)
	}
	if testutil.Exists(filepath.Join(e.work, "native.so")) {
		t.Error("no resource of the missing bundle should be staged")
	}
	if len(report.Resources) != 1 || report.Resources[0].Resource != "Shared" {
		t.Errorf("resources = %+v, want only Shared from the second bundle", report.Resources)
	}
	if !strings.Contains(e.logs.String(), wantDir) {
		t.Errorf("log should name the missing directory:\n%s", e.logs.String())
	}
}

func TestLifecycle_assemblyFailureContinues(t *testing.T) {
	e := newEnv(t)
	testutil.CreateExtension(t, e.mods, "Baz", `<Corpus>
  <Bundle root="Assemblies">
    <Resource name="Broken" type="Assembly"/>
    <Resource name="Good" type="Assembly"/>
    <Resource name="Helper" type="NetStandardAssembly"/>
  </Bundle>
</Corpus>`, map[string]string{
		"Assemblies/Broken.dll": "x",
		"Assemblies/Good.dll":   "x",
		"Assemblies/Helper.dll": "helper",
	})
	e.asm.fail["Broken.dll"] = true

	report, err := e.lifecycle("linux").Start()
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	failures := report.FailuresOf(KindResourceLoadFailure)
	if len(failures) != 1 || failures[0].Resource != "Broken" {
		t.Fatalf("failures = %v, want one for Broken", failures)
	}
	wantPath := filepath.Join(e.mods, "Baz", "Assemblies", "Good.dll")
	if len(e.asm.calls) != 2 || e.asm.calls[1] != wantPath {
		t.Errorf("loader calls = %v, want second call %s", e.asm.calls, wantPath)
	}
	if got := testutil.ReadFile(t, filepath.Join(e.work, "Helper.dll")); got != "helper" {
		t.Errorf("Helper.dll content = %q", got)
	}

	statuses := make([]Status, 0, len(report.Resources))
	for _, r := range report.Resources {
		statuses = append(statuses, r.Status)
	}
	want := []Status{StatusFailed, StatusLoaded, StatusStaged}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("statuses = %v, want %v", statuses, want)
			break
		}
	}
}

func TestLifecycle_copyFailureContinues(t *testing.T) {
	e := newEnv(t)
	testutil.CreateExtension(t, e.mods, "Foo", `<Corpus>
  <Bundle>
    <Resource name="absent" type="Dll"/>
    <Resource name="present" type="Dll"/>
  </Bundle>
</Corpus>`, map[string]string{"present.so": "p"})

	lc := e.lifecycle("linux")
	report, err := lc.Start()
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	failures := report.FailuresOf(KindResourceLoadFailure)
	if len(failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(failures))
	}
	f := failures[0]
	if f.Extension != "Foo" || f.Resource != "absent" || f.Destination != filepath.Join(e.work, "absent.so") {
		t.Errorf("failure = %+v", f)
	}
	var ce *stage.CopyError
	if !errors.As(f, &ce) {
		t.Errorf("failure should wrap *stage.CopyError: %v", f)
	}
	if len(lc.Staged()) != 1 {
		t.Errorf("Staged() = %v, want only present.so", lc.Staged())
	}
}

func TestLifecycle_unsupportedPlatform(t *testing.T) {
	e := newEnv(t)
	testutil.CreateExtension(t, e.mods, "Foo", `<Corpus><Bundle><Resource name="native" type="Dll"/></Bundle></Corpus>`,
		map[string]string{"native.so": "x"})

	lc := e.lifecycle("plan9")
	report, err := lc.Start()
	if !IsKind(err, KindPlatformUnsupported) {
		t.Fatalf("Start() error = %v, want PlatformUnsupported", err)
	}
	if report != nil {
		t.Errorf("report = %+v, want nil", report)
	}
	if e.source.calls != 0 {
		t.Errorf("extensions enumerated %d times, want 0", e.source.calls)
	}
	if len(e.asm.calls) != 0 {
		t.Errorf("loader calls = %v, want none", e.asm.calls)
	}
	if len(e.quit.hooks) != 0 {
		t.Error("shutdown hook must not be registered on an unsupported platform")
	}
	entries, err := os.ReadDir(e.work)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("working directory should be untouched, has %d entries", len(entries))
	}
	if !strings.Contains(e.logs.String(), "plan9") {
		t.Errorf("log should name the platform:\n%s", e.logs.String())
	}
}

func TestLifecycle_malformedManifestIsolated(t *testing.T) {
	e := newEnv(t)
	good := `<Corpus><Bundle><Resource name="%s" type="NetStandardAssembly"/></Bundle></Corpus>`
	testutil.CreateExtension(t, e.mods, "A", strings.Replace(good, "%s", "First", 1), map[string]string{"First.dll": "1"})
	testutil.CreateExtension(t, e.mods, "B", `<Corpus><Bundle>`, nil)
	testutil.CreateExtension(t, e.mods, "C", strings.Replace(good, "%s", "Last", 1), map[string]string{"Last.dll": "3"})

	report, err := e.lifecycle("linux").Start()
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	malformed := report.FailuresOf(KindManifestMalformed)
	if len(malformed) != 1 || malformed[0].Extension != "B" {
		t.Fatalf("malformed failures = %v, want one for B", malformed)
	}
	for _, name := range []string{"First.dll", "Last.dll"} {
		if !testutil.Exists(filepath.Join(e.work, name)) {
			t.Errorf("%s should be staged despite B's malformed manifest", name)
		}
	}
	if report.Extensions[1].Status != StatusMalformed {
		t.Errorf("B status = %q, want %q", report.Extensions[1].Status, StatusMalformed)
	}
}

func TestLifecycle_emptyManifestIsMalformed(t *testing.T) {
	e := newEnv(t)
	root := testutil.Mkdir(t, e.mods, "Empty")
	testutil.WriteFile(t, root, "corpus.yaml", "~\n")

	report, err := e.lifecycle("linux").Start()
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if len(report.FailuresOf(KindManifestMalformed)) != 1 {
		t.Errorf("failures = %v, want one ManifestMalformed", report.Failures)
	}
}

func TestLifecycle_missingManifestIsNotAFailure(t *testing.T) {
	e := newEnv(t)
	testutil.CreateExtension(t, e.mods, "Plain", "", map[string]string{"About/About.xml": "<ModMetaData><name>Plain Mod</name></ModMetaData>"})

	report, err := e.lifecycle("linux").Start()
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !report.OK() {
		t.Errorf("missing manifest must not be a failure: %v", report.Failures)
	}
	if len(report.Extensions) != 1 || report.Extensions[0].Status != StatusNoCorpus {
		t.Errorf("extensions = %+v", report.Extensions)
	}
	if !strings.Contains(e.logs.String(), "Plain Mod") {
		t.Errorf("skip should be logged informationally:\n%s", e.logs.String())
	}
}

func TestLifecycle_yamlManifest(t *testing.T) {
	e := newEnv(t)
	root := testutil.Mkdir(t, e.mods, "Yaml")
	testutil.WriteFile(t, root, "corpus.yaml", `bundles:
  - root: Libraries
    resources:
      - name: native
        type: Dll
`)
	testutil.WriteFile(t, root, "Libraries/native.so", "y")

	report, err := e.lifecycle("linux").Start()
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if report.Count(StatusStaged) != 1 {
		t.Errorf("staged = %d, want 1; failures: %v", report.Count(StatusStaged), report.Failures)
	}
}

func TestLifecycle_idempotentAcrossRuns(t *testing.T) {
	e := newEnv(t)
	testutil.CreateExtension(t, e.mods, "Foo", `<Corpus><Bundle>
  <Resource name="native" type="Dll"/>
  <Resource name="Helper" type="NetStandardAssembly"/>
</Bundle></Corpus>`, map[string]string{"native.so": "n", "Helper.dll": "h"})

	first := e.lifecycle("linux")
	if _, err := first.Start(); err != nil {
		t.Fatal(err)
	}
	if len(first.Staged()) != 2 {
		t.Fatalf("first run staged %v, want 2 files", first.Staged())
	}

	second := e.lifecycle("linux")
	report, err := second.Start()
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Staged()) != 0 {
		t.Errorf("second run staged %v, want nothing", second.Staged())
	}
	if report.Count(StatusPresent) != 2 {
		t.Errorf("present = %d, want 2", report.Count(StatusPresent))
	}
}

func TestLifecycle_sameNameAcrossExtensions(t *testing.T) {
	e := newEnv(t)
	corpus := `<Corpus><Bundle><Resource name="shared" type="Dll"/></Bundle></Corpus>`
	testutil.CreateExtension(t, e.mods, "A", corpus, map[string]string{"shared.so": "from A"})
	testutil.CreateExtension(t, e.mods, "B", corpus, map[string]string{"shared.so": "from B"})

	lc := e.lifecycle("linux")
	report, err := lc.Start()
	if err != nil {
		t.Fatal(err)
	}
	if !report.OK() {
		t.Errorf("unexpected failures: %v", report.Failures)
	}
	if got := testutil.ReadFile(t, filepath.Join(e.work, "shared.so")); got != "from A" {
		t.Errorf("content = %q, want first extension's copy", got)
	}
	if len(lc.Staged()) != 1 {
		t.Errorf("Staged() = %v, want one entry", lc.Staged())
	}
}

func TestLifecycle_startTwice(t *testing.T) {
	e := newEnv(t)
	lc := e.lifecycle("linux")
	if _, err := lc.Start(); err != nil {
		t.Fatal(err)
	}
	if _, err := lc.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
	if e.source.calls != 1 {
		t.Errorf("extensions enumerated %d times, want 1", e.source.calls)
	}
	if len(e.quit.hooks) != 1 {
		t.Errorf("quit hooks = %d, want 1", len(e.quit.hooks))
	}
}

func TestLifecycle_enumerationFailure(t *testing.T) {
	e := newEnv(t)
	lc := NewLifecycle(Config{GOOS: "linux", Version: testVersion, WorkDir: e.work, Extensions: failingSource{}, Assemblies: e.asm})
	if _, err := lc.Start(); err == nil {
		t.Fatal("expected error when extensions cannot be enumerated")
	}
}

func TestLifecycle_shutdownContinuesPastFailures(t *testing.T) {
	e := newEnv(t)
	testutil.CreateExtension(t, e.mods, "Foo", `<Corpus><Bundle>
  <Resource name="a" type="Dll"/>
  <Resource name="b" type="Dll"/>
  <Resource name="c" type="Dll"/>
</Bundle></Corpus>`, map[string]string{"a.so": "a", "b.so": "b", "c.so": "c"})

	lc := e.lifecycle("linux")
	if _, err := lc.Start(); err != nil {
		t.Fatal(err)
	}

	// a.so becomes a non-empty directory that os.Remove cannot delete;
	// b.so disappears before shutdown.
	a := filepath.Join(e.work, "a.so")
	if err := os.Remove(a); err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, a, "child", "x")
	if err := os.Remove(filepath.Join(e.work, "b.so")); err != nil {
		t.Fatal(err)
	}

	cleanup := lc.Shutdown()
	if len(cleanup.Failures) != 1 || cleanup.Failures[0].Destination != a {
		t.Fatalf("failures = %v, want one for %s", cleanup.Failures, a)
	}
	if cleanup.Failures[0].Kind != KindCleanupFailure {
		t.Errorf("kind = %v, want CleanupFailure", cleanup.Failures[0].Kind)
	}
	if len(cleanup.Removed) != 2 {
		t.Errorf("removed = %v, want b.so and c.so", cleanup.Removed)
	}
	if testutil.Exists(filepath.Join(e.work, "c.so")) {
		t.Error("c.so should be removed after a's failure")
	}

	if again := lc.Shutdown(); len(again.Removed)+len(again.Failures) != 0 {
		t.Errorf("second Shutdown() = %+v, want no-op", again)
	}
}

func TestLifecycle_atomicStaging(t *testing.T) {
	e := newEnv(t)
	testutil.CreateExtension(t, e.mods, "Foo", `<Corpus><Bundle><Resource name="native" type="Dll"/></Bundle></Corpus>`,
		map[string]string{"native.so": "atomic"})

	lc := e.lifecycle("linux", stage.WithAtomicCopy())
	if _, err := lc.Start(); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ReadFile(t, filepath.Join(e.work, "native.so")); got != "atomic" {
		t.Errorf("content = %q", got)
	}
	if len(lc.Staged()) != 1 {
		t.Errorf("Staged() = %v", lc.Staged())
	}
}
