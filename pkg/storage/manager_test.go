package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "rozhodnutia/pkg/errors"
)

func TestEnsureFilesDir(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, "")

	require.NoError(t, m.EnsureFilesDir())
	assert.DirExists(t, filepath.Join(root, "files"))

	// already present is fine
	require.NoError(t, m.EnsureFilesDir())
}

func TestEnsureFilesDirBlockedByFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "files"), []byte("not a dir"), 0644))

	err := NewManager(root, "files").EnsureFilesDir()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrFilesDirectory)
}

func TestBasename(t *testing.T) {
	tests := []struct {
		url      string
		expected string
		wantErr  bool
	}{
		{"http://www.supcourt.gov.sk/data/att/12345.pdf", "12345.pdf", false},
		{"http://www.supcourt.gov.sk/data/att/12345.pdf?download=1", "12345.pdf", false},
		{"http://www.supcourt.gov.sk/data/att/rozhodnutie%201.doc", "rozhodnutie 1.doc", false},
		{"http://www.supcourt.gov.sk/", "", true},
		{"http://www.supcourt.gov.sk", "", true},
		{"http://www.supcourt.gov.sk/a/..", "", true},
		{"http://[::1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			name, err := Basename(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestPaths(t *testing.T) {
	m := NewManager("/out", "files")

	assert.Equal(t, filepath.Join("/out", "files", "a.pdf"), m.PathFor("a.pdf"))
	assert.Equal(t, "files/a.pdf", m.RelativePath("a.pdf"))
	assert.Equal(t, filepath.Join("/out", "metadata.csv"), m.OutputPath("metadata.csv"))
}

func TestRemove(t *testing.T) {
	m := NewManager(t.TempDir(), "files")
	require.NoError(t, m.EnsureFilesDir())
	require.NoError(t, os.WriteFile(m.PathFor("x.pdf"), []byte("404 page"), 0644))

	require.NoError(t, m.Remove("x.pdf"))
	assert.NoFileExists(t, m.PathFor("x.pdf"))

	// removing again is not an error
	assert.NoError(t, m.Remove("x.pdf"))
}

func TestWriteFile(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, "files")

	err := m.WriteFile("metadata.csv", func(w io.Writer) error {
		_, err := io.WriteString(w, "a,b\n")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "metadata.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
	assert.NoFileExists(t, filepath.Join(root, "metadata.csv.tmp"))
}

func TestWriteFileFailureLeavesNothing(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, "files")

	boom := errors.New("encoder failed")
	err := m.WriteFile("metadata.json", func(w io.Writer) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoFileExists(t, filepath.Join(root, "metadata.json"))
	assert.NoFileExists(t, filepath.Join(root, "metadata.json.tmp"))
}
