package bootstrap

import "github.com/SirRandoo/streamkit/internal/manifest"

// Status is the outcome of one resource or extension.
type Status string

const (
	StatusStaged    Status = "staged"
	StatusPresent   Status = "present"
	StatusLoaded    Status = "loaded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusNoCorpus  Status = "no-manifest"
	StatusMalformed Status = "malformed"
)

// ResourceResult records what happened to a single resource.
type ResourceResult struct {
	Extension   string                `json:"extension"`
	Bundle      string                `json:"bundle"`
	Resource    string                `json:"resource"`
	Type        manifest.ResourceType `json:"type"`
	Source      string                `json:"source"`
	Destination string                `json:"destination,omitempty"`
	Status      Status                `json:"status"`
	Error       string                `json:"error,omitempty"`
}

// ExtensionResult records the manifest handling of a single extension.
// Status is StatusLoaded once its bundles were processed, even if some of
// them failed.
type ExtensionResult struct {
	Name     string `json:"name"`
	Root     string `json:"root"`
	Manifest string `json:"manifest,omitempty"`
	Status   Status `json:"status"`
	Bundles  int    `json:"bundles"`
	Error    string `json:"error,omitempty"`
}

// Report collects the results of one Startup.
type Report struct {
	Platform    string            `json:"platform"`
	HostVersion string            `json:"host_version"`
	Extensions  []ExtensionResult `json:"extensions"`
	Resources   []ResourceResult  `json:"resources"`
	Failures    []*Error          `json:"-"`
}

func (r *Report) fail(err *Error) {
	r.Failures = append(r.Failures, err)
}

// Count returns the number of resources with the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Resources {
		if res.Status == s {
			n++
		}
	}
	return n
}

// FailuresOf returns the failures of the given kind.
func (r *Report) FailuresOf(kind Kind) []*Error {
	var out []*Error
	for _, f := range r.Failures {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// OK reports whether no failure was recorded.
func (r *Report) OK() bool {
	return len(r.Failures) == 0
}
