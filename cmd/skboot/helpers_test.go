package main

import (
	"bytes"
	"testing"

	"github.com/SirRandoo/streamkit/internal/testutil"
)

const fixtureCorpus = `<?xml version="1.0"?>
<Corpus>
  <Bundle root="Natives">
    <Resource name="native" type="Dll"/>
  </Bundle>
  <Bundle root="Assemblies">
    <Resource name="Core" type="Assembly"/>
  </Bundle>
</Corpus>
`

// setupHost creates a mods directory with one extension carrying a native
// and a managed resource, plus an empty working directory.
func setupHost(t *testing.T) (mods, workDir string) {
	t.Helper()
	dir := t.TempDir()
	mods = testutil.Mkdir(t, dir, "Mods")
	workDir = testutil.Mkdir(t, dir, "game")
	testutil.CreateExtension(t, mods, "Foo", fixtureCorpus, map[string]string{
		"Natives/native.so":   "native-bytes",
		"Assemblies/Core.dll": "managed-bytes",
	})
	return mods, workDir
}

func hostArgs(mods, workDir string, args ...string) []string {
	base := []string{
		"--mods", mods,
		"--workdir", workDir,
		"--host-version", "1.5.0.1",
		"--platform", "linux",
		"--log-level", "error",
	}
	return append(base, args...)
}

// execute runs the root command and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	if stderr.Len() > 0 {
		t.Logf("stderr:\n%s", stderr.String())
	}
	return stdout.String(), err
}
