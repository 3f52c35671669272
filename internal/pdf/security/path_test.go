package security

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) (*PathValidator, string) {
	t.Helper()
	dir := t.TempDir()
	v, err := NewPathValidator(dir)
	require.NoError(t, err)
	return v, v.Root()
}

func TestNewPathValidator(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.txt")
	require.NoError(t, os.WriteFile(file, []byte("test"), 0o644))

	tests := []struct {
		name      string
		dir       string
		wantError bool
	}{
		{name: "valid directory", dir: dir},
		{name: "empty directory", dir: "", wantError: true},
		{name: "non-existent directory", dir: filepath.Join(dir, "missing"), wantError: true},
		{name: "file instead of directory", dir: file, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewPathValidator(tt.dir)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(v.Root()))
		})
	}
}

func TestPathValidator_Resolve(t *testing.T) {
	v, root := newValidator(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	tests := []struct {
		name    string
		path    string
		want    string
		outside bool
	}{
		{name: "root itself", path: root, want: root},
		{name: "absolute inside", path: filepath.Join(root, "a.pdf"), want: filepath.Join(root, "a.pdf")},
		{name: "relative inside", path: "a.pdf", want: filepath.Join(root, "a.pdf")},
		{name: "relative subdirectory", path: "sub/b.pdf", want: filepath.Join(root, "sub", "b.pdf")},
		{name: "dot", path: ".", want: root},
		{name: "null bytes stripped", path: "a\x00.pdf", want: filepath.Join(root, "a.pdf")},
		{name: "traversal", path: "../escape.pdf", outside: true},
		{name: "nested traversal", path: "sub/../../escape.pdf", outside: true},
		{name: "absolute outside", path: filepath.Dir(root), outside: true},
		{name: "sibling with shared prefix", path: root + "-other/a.pdf", outside: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Resolve(tt.path)
			if tt.outside {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrOutsideDirectory))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathValidator_ResolveEmpty(t *testing.T) {
	v, _ := newValidator(t)

	_, err := v.Resolve("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")

	_, err = v.Resolve("\x00")
	require.Error(t, err)
}

func TestPathValidator_Symlinks(t *testing.T) {
	v, root := newValidator(t)
	outside := t.TempDir()

	target := filepath.Join(root, "target.pdf")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	secret := filepath.Join(outside, "secret.pdf")
	require.NoError(t, os.WriteFile(secret, []byte("x"), 0o644))

	inner := filepath.Join(root, "inner.pdf")
	escape := filepath.Join(root, "escape.pdf")
	escapeDir := filepath.Join(root, "escape")
	if err := os.Symlink(target, inner); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(secret, escape))
	require.NoError(t, os.Symlink(outside, escapeDir))

	got, err := v.Resolve(inner)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	_, err = v.Resolve(escape)
	assert.True(t, errors.Is(err, ErrOutsideDirectory))

	_, err = v.Resolve("escape/not-yet-created.pdf")
	assert.True(t, errors.Is(err, ErrOutsideDirectory))
}

func TestPathValidator_ResolveFile(t *testing.T) {
	v, root := newValidator(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	got, err := v.ResolveFile("a.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a.pdf"), got)

	_, err = v.ResolveFile("missing.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = v.ResolveFile("sub")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestPathValidator_ResolveDirectory(t *testing.T) {
	v, root := newValidator(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	got, err := v.ResolveDirectory("sub")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "sub"), got)

	got, err = v.ResolveDirectory(".")
	require.NoError(t, err)
	assert.Equal(t, root, got)

	_, err = v.ResolveDirectory("a.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")

	_, err = v.ResolveDirectory("missing")
	require.Error(t, err)
}
