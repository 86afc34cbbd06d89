// Package lister prints directory listings produced by the walker.
package lister

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lstree/internal/model"
	"lstree/internal/walk"
)

// ReadFiles walks path depth-first and prints, for every directory, its path
// followed by the names of its non-directory entries. Subdirectories are
// printed before their parent. opts.Order is honoured, so callers that want
// the parent first can pass walk.PreOrder.
func ReadFiles(ctx context.Context, w io.Writer, path string, opts walk.Options) error {
	return Print(ctx, w, walk.NewLocal(path, opts))
}

// Print writes every listing of walker to w in the ReadFiles format.
func Print(ctx context.Context, w io.Writer, walker *walk.Walker) error {
	return walker.Walk(ctx, func(l model.Listing) error {
		return WriteListing(w, l)
	})
}

// WriteListing writes the two-line form of l: the path, then its file names
// as a JSON array.
func WriteListing(w io.Writer, l model.Listing) error {
	names, err := FormatNames(l.Files)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n%s\n", l.Path, names)
	return err
}

// FormatNames renders names as a JSON array; nil renders as [].
func FormatNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(names); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Sweep recurses through every subdirectory of a directory path without
// printing, failing on the first unreadable directory. When path is not a
// directory it prints the non-directory entries of the directory holding
// path.
func Sweep(ctx context.Context, w io.Writer, path string, opts walk.Options) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return walk.NewLocal(path, opts).Walk(ctx, func(model.Listing) error {
			return nil
		})
	}

	parent := filepath.Dir(path)
	l, err := walk.ReadListing(walk.OSFS(parent), ".", opts.FollowSymlinks)
	if err != nil {
		return err
	}
	names, err := FormatNames(l.Files)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, names)
	return err
}
