package bootstrap

import (
	"path/filepath"

	"github.com/SirRandoo/streamkit/internal/extension"
	"github.com/SirRandoo/streamkit/internal/layout"
	"github.com/SirRandoo/streamkit/internal/manifest"
)

// Step is the planned handling of one resource, computed without touching
// the working directory or the module loader.
type Step struct {
	Extension    string                `json:"extension"`
	Bundle       string                `json:"bundle"`
	BundleExists bool                  `json:"bundle_exists"`
	Resource     string                `json:"resource"`
	Type         manifest.ResourceType `json:"type"`
	Source       string                `json:"source"`
	SourceExists bool                  `json:"source_exists"`
	Destination  string                `json:"destination,omitempty"`
	Action       string                `json:"action"`
}

// Plan resolves the paths of every resource ext declares. It returns the
// same manifest errors as LoadExtension but never logs or records them.
func (l *Loader) Plan(ext extension.Extension) ([]Step, error) {
	corpus, _, err := readCorpus(ext)
	if err != nil {
		return nil, err
	}

	var steps []Step
	for _, bundle := range corpus.Bundles {
		dir := layout.BundleDir(ext.Root, bundle, l.version)
		exists := layout.Exists(dir)
		for _, res := range bundle.Resources {
			fileName := l.fileName(res)
			source := filepath.Join(layout.ResourceDir(dir, res), fileName)
			step := Step{
				Extension:    ext.Name,
				Bundle:       dir,
				BundleExists: exists,
				Resource:     res.Name,
				Type:         res.Type,
				Source:       source,
				SourceExists: exists && fileExists(source),
				Action:       "load",
			}
			if res.Type.Staged() {
				step.Action = "stage"
				if l.stager != nil {
					step.Destination = l.stager.Destination(fileName)
				}
			}
			steps = append(steps, step)
		}
	}
	return steps, nil
}
