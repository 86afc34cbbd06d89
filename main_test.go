package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lstree/internal/config"
	"lstree/internal/ratio"
	"lstree/internal/report"
	"lstree/internal/walk"
)

func TestWalkOptions(t *testing.T) {
	cfg := &config.Config{MaxDepth: 3, FollowSymlinks: true, SkipDirs: []string{".git"}}

	opts, err := walkOptions(cfg, cliFlags{maxDepth: -1})
	require.NoError(t, err)
	assert.Equal(t, walk.Options{Order: walk.PostOrder, MaxDepth: 3, FollowSymlinks: true, SkipDirs: []string{".git"}}, opts)

	opts, err = walkOptions(cfg, cliFlags{maxDepth: 0, pre: true, noFollow: true, skip: []string{"node_modules"}})
	require.NoError(t, err)
	assert.Equal(t, walk.PreOrder, opts.Order)
	assert.Equal(t, 0, opts.MaxDepth)
	assert.False(t, opts.FollowSymlinks)
	assert.Equal(t, []string{".git", "node_modules"}, opts.SkipDirs)
	assert.Equal(t, []string{".git"}, cfg.SkipDirs)

	opts, err = walkOptions(cfg, cliFlags{maxDepth: -1, tui: true})
	require.NoError(t, err)
	assert.Equal(t, walk.PreOrder, opts.Order)

	_, err = walkOptions(cfg, cliFlags{maxDepth: -4})
	assert.Error(t, err)
}

func TestRunRule3Mode(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runRule3Mode(&out, []string{"2", "3", "1"}))
	assert.Equal(t, "6.0\n", out.String())

	out.Reset()
	require.NoError(t, runRule3Mode(&out, []string{"1.5", "4", "3"}))
	assert.Equal(t, "2.0\n", out.String())

	err := runRule3Mode(&out, []string{"1", "1", "0"})
	assert.ErrorIs(t, err, ratio.ErrDivisionByZero)

	assert.Error(t, runRule3Mode(&out, []string{"1", "2"}))
}

func TestRule3NegativeArgsAfterDashes(t *testing.T) {
	var f cliFlags
	fs := pflag.NewFlagSet("lstree", pflag.ContinueOnError)
	bindFlags(fs, &f)
	require.NoError(t, fs.Parse([]string{"--rule3", "--", "-2", "3", "1"}))
	require.True(t, f.rule3)
	assert.Equal(t, []string{"-2", "3", "1"}, fs.Args())

	var out bytes.Buffer
	require.NoError(t, runRule3Mode(&out, fs.Args()))
	assert.Equal(t, "-6.0\n", out.String())

	fs = pflag.NewFlagSet("lstree", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	bindFlags(fs, &cliFlags{})
	assert.Error(t, fs.Parse([]string{"--rule3", "-2", "3", "1"}))
}

func TestOpenWalkerLocal(t *testing.T) {
	w, err := openWalker(context.Background(), &config.Config{}, "", "some/dir", walk.Options{})
	require.NoError(t, err)
	assert.Equal(t, "some/dir", w.Display("."))
}

func TestOpenWalkerS3NeedsEndpoint(t *testing.T) {
	_, err := openWalker(context.Background(), &config.Config{}, "bucket/prefix", ".", walk.Options{})
	assert.ErrorContains(t, err, "endpoint")

	_, err = openWalker(context.Background(), &config.Config{}, "/", ".", walk.Options{})
	assert.ErrorContains(t, err, "bucket")
}

func TestRunExportModeToFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "a.txt"), nil, 0o644))
	out := filepath.Join(t.TempDir(), "tree.cbor")

	w := walk.NewLocal(root, walk.Options{})
	require.NoError(t, runExportMode(context.Background(), w, report.FormatCBOR, walk.PostOrder, out))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	doc, err := report.DecodeCBOR(b)
	require.NoError(t, err)
	assert.Equal(t, root, doc.Root)
	assert.Equal(t, "post", doc.Order)
	require.Len(t, doc.Listings, 2)
	assert.Equal(t, []string{"a.txt"}, doc.Listings[0].Files)
}
