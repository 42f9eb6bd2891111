package storage

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"

	errs "rozhodnutia/pkg/errors"
)

// Manager lays out harvest output under one root directory: downloaded
// files go to a flat files subdirectory, exports sit next to it.
type Manager struct {
	root     string
	filesDir string
}

// NewManager creates a manager for root. It does not touch the filesystem.
func NewManager(root, filesDir string) *Manager {
	if filesDir == "" {
		filesDir = "files"
	}
	return &Manager{root: root, filesDir: filesDir}
}

// FilesDir returns the on-disk files directory
func (m *Manager) FilesDir() string {
	return filepath.Join(m.root, m.filesDir)
}

// EnsureFilesDir creates the files directory if it is missing. The error
// matches errors.ErrFilesDirectory when the directory still does not exist.
func (m *Manager) EnsureFilesDir() error {
	dir := m.FilesDir()
	mkErr := os.MkdirAll(dir, 0755)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return nil
	}
	if mkErr == nil {
		mkErr = fmt.Errorf("%s is not a directory", dir)
	}
	return errs.New(errs.ErrorTypeFilesystem, 0, errs.ErrFilesDirectory,
		"cannot create %s: %v", dir, mkErr)
}

// Basename returns the last path segment of rawURL, the name a download
// is stored under.
func Basename(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid file URL %q: %w", rawURL, err)
	}

	name := path.Base(u.Path)
	switch name {
	case "", ".", "/", "..":
		return "", fmt.Errorf("file URL %q has no file name", rawURL)
	}
	return name, nil
}

// PathFor returns where a download named basename is written
func (m *Manager) PathFor(basename string) string {
	return filepath.Join(m.FilesDir(), basename)
}

// RelativePath returns the export-facing path of basename, relative to the
// output root and always slash separated
func (m *Manager) RelativePath(basename string) string {
	return path.Join(filepath.ToSlash(m.filesDir), basename)
}

// Remove deletes a download; a missing file is not an error
func (m *Manager) Remove(basename string) error {
	err := os.Remove(m.PathFor(basename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", basename, err)
	}
	return nil
}

// OutputPath returns the path of a top-level output file such as an export
func (m *Manager) OutputPath(name string) string {
	return filepath.Join(m.root, name)
}

// WriteFile writes a top-level output file through a temporary file and
// rename, so readers never observe a half-written export.
func (m *Manager) WriteFile(name string, write func(w io.Writer) error) error {
	filename := m.OutputPath(name)
	tempFile := filename + ".tmp"

	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	err = write(out)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
