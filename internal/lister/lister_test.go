package lister

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lstree/internal/walk"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(filepath.Base(path)), 0o644))
}

func TestReadFiles_ChildrenBeforeParent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "root")
	writeFile(t, filepath.Join(root, "a.txt"))
	writeFile(t, filepath.Join(root, "sub", "b.txt"))

	var out bytes.Buffer
	require.NoError(t, ReadFiles(context.Background(), &out, root, walk.Options{}))

	want := strings.Join([]string{
		filepath.Join(root, "sub"),
		`["b.txt"]`,
		root,
		`["a.txt"]`,
	}, "\n") + "\n"
	assert.Equal(t, want, out.String())
}

func TestReadFiles_FlatDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "x"))
	writeFile(t, filepath.Join(root, "y"))

	var out bytes.Buffer
	require.NoError(t, ReadFiles(context.Background(), &out, root, walk.Options{}))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, root, lines[0])
	// enumeration order is not assumed
	assert.Contains(t, []string{`["x","y"]`, `["y","x"]`}, lines[1])
}

func TestReadFiles_FileRootFails(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.txt")
	writeFile(t, file)

	var out bytes.Buffer
	err := ReadFiles(context.Background(), &out, file, walk.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, walk.ErrNotDir))
	assert.Empty(t, out.String())
}

func TestReadFiles_MissingRootFails(t *testing.T) {
	var out bytes.Buffer
	err := ReadFiles(context.Background(), &out, filepath.Join(t.TempDir(), "nope"), walk.Options{})
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPrint_EmptyDirectory(t *testing.T) {
	fsys := fstest.MapFS{"only": {Mode: os.ModeDir | 0o755}}
	var out bytes.Buffer
	require.NoError(t, Print(context.Background(), &out, walk.New(fsys, "mem", walk.Options{})))
	assert.Equal(t, "mem/only\n[]\nmem\n[]\n", out.String())
}

func TestFormatNames(t *testing.T) {
	s, err := FormatNames(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	s, err = FormatNames([]string{`quo"te`, "ü", "R&D <draft>"})
	require.NoError(t, err)
	assert.Equal(t, `["quo\"te","ü","R&D <draft>"]`, s)
}

func TestSweep_FilePrintsSiblingFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"))
	writeFile(t, filepath.Join(root, "b.txt"))
	writeFile(t, filepath.Join(root, "nested", "c.txt"))

	// the working directory must not matter
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	require.NoError(t, Sweep(context.Background(), &out, filepath.Join(root, "a.txt"), walk.Options{}))
	assert.Equal(t, "[\"a.txt\",\"b.txt\"]\n", out.String())
}

func TestSweep_DirectoryPrintsNothing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "b", "c.txt"))

	var out bytes.Buffer
	require.NoError(t, Sweep(context.Background(), &out, root, walk.Options{}))
	assert.Empty(t, out.String())
}

func TestSweep_MissingPath(t *testing.T) {
	var out bytes.Buffer
	err := Sweep(context.Background(), &out, filepath.Join(t.TempDir(), "nope"), walk.Options{})
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
