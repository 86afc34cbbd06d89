package walk

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lstree/internal/model"
)

func sampleFS() fstest.MapFS {
	return fstest.MapFS{
		"a.txt":           {Data: []byte("a")},
		"sub/b.txt":       {Data: []byte("b")},
		"sub/deep/c.txt":  {Data: []byte("c")},
		"other/d.txt":     {Data: []byte("d")},
		"other/.git/HEAD": {Data: []byte("ref")},
	}
}

func paths(listings []model.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.Path)
	}
	return out
}

func TestWalk_PostOrder(t *testing.T) {
	w := New(sampleFS(), "root", Options{})
	got, err := Collect(context.Background(), w)
	require.NoError(t, err)

	assert.Equal(t, []string{"root/other/.git", "root/other", "root/sub/deep", "root/sub", "root"}, paths(got))

	root := got[len(got)-1]
	assert.Equal(t, ".", root.Name)
	assert.Equal(t, 0, root.Depth)
	assert.Equal(t, []string{"other", "sub"}, root.Dirs)
	assert.Equal(t, []string{"a.txt"}, root.Files)

	assert.Equal(t, 2, got[2].Depth)
	assert.Equal(t, "sub/deep", got[2].Name)
	assert.Equal(t, []string{"c.txt"}, got[2].Files)
}

func TestWalk_PreOrder(t *testing.T) {
	w := New(sampleFS(), "root", Options{Order: PreOrder})
	got, err := Collect(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "root/other", "root/other/.git", "root/sub", "root/sub/deep"}, paths(got))
}

func TestWalk_PreOrderSkipDir(t *testing.T) {
	w := New(sampleFS(), "root", Options{Order: PreOrder})
	var seen []string
	err := w.Walk(context.Background(), func(l model.Listing) error {
		seen = append(seen, l.Path)
		if l.Name == "sub" {
			return SkipDir
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "root/other", "root/other/.git", "root/sub"}, seen)
}

func TestWalk_MaxDepthAndSkipDirs(t *testing.T) {
	w := New(sampleFS(), "root", Options{MaxDepth: 1, SkipDirs: []string{"other"}})
	got, err := Collect(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, []string{"root/sub", "root"}, paths(got))
	// deeper directories are still listed by their parent
	assert.Equal(t, []string{"deep"}, got[0].Dirs)
	assert.Equal(t, []string{"other", "sub"}, got[1].Dirs)
}

func TestWalk_EmptyDirectoryHasNonNilSlices(t *testing.T) {
	fsys := fstest.MapFS{"empty": {Mode: fs.ModeDir | 0o755}}
	got, err := Collect(context.Background(), New(fsys, "", Options{}))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "empty", got[0].Path)
	assert.NotNil(t, got[0].Files)
	assert.NotNil(t, got[0].Dirs)
	assert.Empty(t, got[0].Files)
	assert.Equal(t, "", got[1].Path)
}

func TestWalk_RootIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	err := NewLocal(file, Options{}).Walk(context.Background(), func(model.Listing) error {
		t.Fatal("visitor must not run")
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotDir))
	var pe *fs.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, file, pe.Path)
}

func TestWalk_RootMissing(t *testing.T) {
	err := NewLocal(filepath.Join(t.TempDir(), "missing"), Options{}).
		Walk(context.Background(), func(model.Listing) error { return nil })
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestWalk_VisitorErrorStopsWalk(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := New(sampleFS(), "root", Options{}).Walk(context.Background(), func(model.Listing) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWalk_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(sampleFS(), "root", Options{}).Walk(ctx, func(model.Listing) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalk_LocalTreeUsesArgumentNotWorkingDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), nil, 0o644))

	// a working directory with unrelated content must not leak in
	elsewhere := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(elsewhere, "noise.txt"), nil, 0o644))
	t.Chdir(elsewhere)

	got, err := Collect(context.Background(), NewLocal(root, Options{}))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, filepath.Join(root, "sub"), got[0].Path)
	assert.Equal(t, []string{"b.txt"}, got[0].Files)
	assert.Equal(t, root, got[1].Path)
	assert.Equal(t, []string{"a.txt"}, got[1].Files)
}

func TestWalk_SymlinkCycle(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	if err := os.Symlink(root, filepath.Join(root, "sub", "loop")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := Collect(context.Background(), NewLocal(root, Options{FollowSymlinks: true}))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "sub"), root}, paths(got))
	assert.Equal(t, []string{"loop"}, got[0].Dirs)

	// without following, the link is a plain entry
	got, err = Collect(context.Background(), NewLocal(root, Options{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"loop"}, got[0].Files)
}

func TestWalk_BrokenSymlinkIsFile(t *testing.T) {
	root := t.TempDir()
	if err := os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "dangling")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	got, err := Collect(context.Background(), NewLocal(root, Options{FollowSymlinks: true}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"dangling"}, got[0].Files)
}

func TestStream(t *testing.T) {
	out, errCh := Stream(context.Background(), New(sampleFS(), "root", Options{}))
	var got []model.Listing
	for l := range out {
		got = append(got, l)
	}
	require.NoError(t, <-errCh)
	assert.Len(t, got, 5)
	assert.Equal(t, "root", got[4].Path)
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, PostOrder, o)

	o, err = ParseOrder("PRE")
	require.NoError(t, err)
	assert.Equal(t, PreOrder, o)
	assert.Equal(t, "pre", o.String())

	_, err = ParseOrder("sideways")
	assert.Error(t, err)
}

func TestOSFS_InvalidName(t *testing.T) {
	_, err := OSFS(t.TempDir()).Stat("../escape")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}
