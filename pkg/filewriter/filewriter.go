// Package filewriter writes files atomically: data goes to a temp file in the
// target directory which is renamed over the target on Close.
package filewriter

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileWriter writes to a temp file and later atomically renames it.
// The first write error is kept and later writes become no-ops.
type FileWriter struct {
	p    string   // target filename
	f    *os.File // temp file
	werr error    // first error encountered while writing
	done bool
}

// New returns a FileWriter for path p, creating the parent directory if needed.
func New(p string) (*FileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("create dir for %s: %w", p, err)
	}
	f, err := os.CreateTemp(filepath.Dir(p), filepath.Base(p)+".*")
	if err != nil {
		return nil, err
	}
	return &FileWriter{p: p, f: f}, nil
}

// Write implements io.Writer.
func (fw *FileWriter) Write(b []byte) (int, error) {
	if fw.werr != nil {
		return 0, fw.werr
	}
	var n int
	n, fw.werr = fw.f.Write(b)
	return n, fw.werr
}

// Printf writes the formatted data and returns the number of bytes written.
func (fw *FileWriter) Printf(format string, args ...interface{}) int {
	var n int
	if fw.werr == nil {
		n, fw.werr = fmt.Fprintf(fw.f, format, args...)
	}
	return n
}

// Close renames the temp file to the target path.
// If a write error occurred earlier it is returned and the target is untouched.
func (fw *FileWriter) Close() error {
	if fw.done {
		return nil
	}
	fw.done = true
	defer os.Remove(fw.f.Name()) // no-op on success
	cerr := fw.f.Close()
	if fw.werr != nil {
		return fw.werr
	}
	if cerr != nil {
		return cerr
	}
	return os.Rename(fw.f.Name(), fw.p)
}

// Abort discards the temp file without touching the target.
func (fw *FileWriter) Abort() {
	if fw.done {
		return
	}
	fw.done = true
	fw.f.Close()
	os.Remove(fw.f.Name())
}

// WriteFile atomically replaces p with data.
func WriteFile(p string, data []byte) error {
	fw, err := New(p)
	if err != nil {
		return err
	}
	if _, err := fw.Write(data); err != nil {
		fw.Abort()
		return err
	}
	return fw.Close()
}
