package render

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Stage is a scratch output directory next to Target. Artifacts are written
// into Dir and only reach Target through Promote, so a failed run leaves the
// previous artifacts untouched.
type Stage struct {
	Dir    string
	Target string
}

// NewStage creates a staging directory beside target
func NewStage(target string) (*Stage, error) {
	target = filepath.Clean(target)
	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", parent, err)
	}
	dir, err := os.MkdirTemp(parent, "."+filepath.Base(target)+"-staging-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Stage{Dir: dir, Target: target}, nil
}

// Promote publishes the staged artifacts. With replace the target directory
// is swapped for the staging directory as a whole, dropping artifacts that
// were not regenerated. Otherwise staged files are moved over existing ones.
func (s *Stage) Promote(replace bool) error {
	_, err := os.Stat(s.Target)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return os.Rename(s.Dir, s.Target)
	case err != nil:
		return err
	case replace:
		return s.swap()
	default:
		return s.merge()
	}
}

func (s *Stage) swap() error {
	old := fmt.Sprintf("%s.old-%d", s.Target, time.Now().UnixNano())
	if err := os.Rename(s.Target, old); err != nil {
		return fmt.Errorf("move aside %s: %w", s.Target, err)
	}
	if err := os.Rename(s.Dir, s.Target); err != nil {
		if rerr := os.Rename(old, s.Target); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	return os.RemoveAll(old)
}

func (s *Stage) merge() error {
	err := filepath.WalkDir(s.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.Dir, p)
		if err != nil {
			return err
		}
		dst := filepath.Join(s.Target, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		return os.Rename(p, dst)
	})
	if err != nil {
		return fmt.Errorf("promote into %s: %w", s.Target, err)
	}
	return os.RemoveAll(s.Dir)
}

// Discard removes the staging directory
func (s *Stage) Discard() error {
	return os.RemoveAll(s.Dir)
}
