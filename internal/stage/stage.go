package stage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Outcome describes what Stage did with a resource.
type Outcome int

const (
	// OutcomeStaged means the file was copied and recorded.
	OutcomeStaged Outcome = iota + 1
	// OutcomePresent means a file of that name already existed and nothing
	// was done.
	OutcomePresent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStaged:
		return "staged"
	case OutcomePresent:
		return "present"
	default:
		return "unknown"
	}
}

// CopyError reports a failed copy into the working directory.
type CopyError struct {
	Source      string
	Destination string
	Err         error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copying %s to %s: %v", e.Source, e.Destination, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

// Option configures a Stager.
type Option func(*Stager)

// WithAtomicCopy makes Stage write to a temporary file in the working
// directory and rename it into place, so an interrupted copy never leaves a
// partial file under the final name.
func WithAtomicCopy() Option {
	return func(s *Stager) {
		s.atomic = true
	}
}

// Stager copies resource files into a fixed directory.
type Stager struct {
	dir    string
	record *Record
	atomic bool
}

// New returns a Stager writing into dir and appending to record.
func New(dir string, record *Record, opts ...Option) *Stager {
	s := &Stager{dir: dir, record: record}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the directory files are staged into.
func (s *Stager) Dir() string {
	return s.dir
}

// Destination returns the staged path for fileName.
func (s *Stager) Destination(fileName string) string {
	return filepath.Join(s.dir, fileName)
}

// Stage copies src to <dir>/fileName unless a file of that name already
// exists there. Only files it creates are recorded.
func (s *Stager) Stage(src, fileName string) (Outcome, error) {
	dest := s.Destination(fileName)
	if info, err := os.Stat(dest); err == nil && !info.IsDir() {
		return OutcomePresent, nil
	}

	var err error
	if s.atomic {
		err = copyAtomic(src, dest)
	} else {
		err = copyFile(src, dest)
	}
	if err != nil {
		return 0, &CopyError{Source: src, Destination: dest, Err: err}
	}

	s.record.Add(dest)
	return OutcomeStaged, nil
}

func copyFile(src, dest string) error {
	in, info, err := openSource(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm()) //nolint:gosec // dest is inside the working directory
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return err
	}
	return nil
}

func copyAtomic(src, dest string) error {
	in, info, err := openSource(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		cleanup()
		return err
	}
	return nil
}

func openSource(src string) (*os.File, os.FileInfo, error) {
	in, err := os.Open(src) //nolint:gosec // src comes from an extension manifest
	if err != nil {
		return nil, nil, err
	}
	info, err := in.Stat()
	if err != nil {
		_ = in.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		_ = in.Close()
		return nil, nil, fmt.Errorf("%s is a directory", src)
	}
	return in, info, nil
}
