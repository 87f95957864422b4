// filesystem.go - Virtual filesystem used for song and wavetable resolution

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// File is the handle type returned by a FileSystem. The bitstream decoders
// need random access, so a plain io.Reader is not enough.
type File interface {
	io.ReadSeeker
	io.Closer
}

// FileSystem resolves engine paths ("/Org/Access.org") to opened resources.
// The engine only specifies the ordered trial sequence over candidate paths;
// where the bytes actually come from is the host's business.
type FileSystem interface {
	Exists(path string) bool
	Open(path string) (File, error)
}

// DirFS serves engine paths from a restricted directory on the host.
type DirFS struct {
	baseDir string
}

// NewDirFS creates a filesystem rooted at baseDir.
func NewDirFS(baseDir string) *DirFS {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		absBase = baseDir
	}
	return &DirFS{baseDir: absBase}
}

// resolve maps an engine path to a host path, refusing escapes from baseDir.
func (d *DirFS) resolve(path string) (string, bool) {
	clean := filepath.Clean("/" + strings.TrimPrefix(path, "/"))
	full := filepath.Join(d.baseDir, filepath.FromSlash(clean))
	if full != d.baseDir && !strings.HasPrefix(full, d.baseDir+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}

// Exists reports whether the path resolves to a regular file.
func (d *DirFS) Exists(path string) bool {
	full, ok := d.resolve(path)
	if !ok {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.Mode().IsRegular()
}

// Open opens the resolved file for reading.
func (d *DirFS) Open(path string) (File, error) {
	full, ok := d.resolve(path)
	if !ok {
		return nil, fmt.Errorf("path escapes filesystem root: %s", path)
	}
	return os.Open(full)
}
