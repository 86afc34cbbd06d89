// Package walk implements the single recursive directory walker behind
// every lister. All file system queries go through the fs.FS handed to the
// Walker together with an explicit directory name; the process working
// directory is never consulted.
package walk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"lstree/internal/logging"
	"lstree/internal/model"
)

// ErrNotDir is returned (wrapped in an *fs.PathError) when the walk root is
// not a directory.
var ErrNotDir = errors.New("not a directory")

// SkipDir may be returned by a PreOrder visitor to prune the directory's
// children.
var SkipDir = fs.SkipDir

// Order selects when a directory is handed to the visitor.
type Order int

const (
	// PostOrder visits every subdirectory before its parent.
	PostOrder Order = iota
	// PreOrder visits a directory before its subdirectories.
	PreOrder
)

func (o Order) String() string {
	if o == PreOrder {
		return "pre"
	}
	return "post"
}

// ParseOrder accepts "post", "pre" and the empty string (post).
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "post", "postorder":
		return PostOrder, nil
	case "pre", "preorder":
		return PreOrder, nil
	}
	return PostOrder, fmt.Errorf("walk: unknown order %q", s)
}

// Options tune a walk. The zero value walks everything post-order without
// following symlinks.
type Options struct {
	Order          Order
	MaxDepth       int      // 0 means unlimited; the root is depth 0
	FollowSymlinks bool     // Treat symlinks to directories as directories
	SkipDirs       []string // Directory names listed but never descended into
}

// Visitor is called once per directory.
type Visitor func(l model.Listing) error

// RealPathFS is implemented by file systems that can canonicalise a name,
// resolving symlinks. It drives cycle detection.
type RealPathFS interface {
	fs.FS
	RealPath(name string) (string, error)
}

// Walker walks the tree rooted at "." of its file system.
type Walker struct {
	fsys  fs.FS
	base  string
	local bool
	opts  Options
	skip  map[string]bool
}

// New returns a Walker over fsys. base is the display path of the root and
// is joined (slash separated) in front of every visited name.
func New(fsys fs.FS, base string, opts Options) *Walker {
	skip := make(map[string]bool, len(opts.SkipDirs))
	for _, name := range opts.SkipDirs {
		skip[name] = true
	}
	return &Walker{fsys: fsys, base: base, opts: opts, skip: skip}
}

// NewLocal returns a Walker over the OS directory dir.
func NewLocal(dir string, opts Options) *Walker {
	w := New(OSFS(dir), dir, opts)
	w.local = true
	return w
}

// Display maps a name inside the walked FS to the path shown to users.
func (w *Walker) Display(name string) string {
	if name == "." {
		return w.base
	}
	if w.base == "" {
		return name
	}
	if w.local {
		return filepath.Join(w.base, filepath.FromSlash(name))
	}
	return path.Join(w.base, name)
}

// Walk visits every reachable directory. It fails fast: the first stat,
// read or visitor error ends the walk and is returned.
func (w *Walker) Walk(ctx context.Context, visit Visitor) error {
	info, err := fs.Stat(w.fsys, ".")
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "readdir", Path: w.Display("."), Err: ErrNotDir}
	}

	visited := make(map[string]bool)
	w.markVisited(visited, ".")
	err = w.walkDir(ctx, ".", 0, visited, visit)
	if errors.Is(err, SkipDir) {
		return nil
	}
	return err
}

func (w *Walker) walkDir(ctx context.Context, name string, depth int, visited map[string]bool, visit Visitor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l, err := ReadListing(w.fsys, name, w.opts.FollowSymlinks)
	if err != nil {
		return err
	}
	l.Path = w.Display(name)
	l.Depth = depth

	if w.opts.Order == PreOrder {
		if err := visit(l); err != nil {
			if errors.Is(err, SkipDir) {
				return nil
			}
			return err
		}
	}

	if w.opts.MaxDepth == 0 || depth < w.opts.MaxDepth {
		for _, dir := range l.Dirs {
			if w.skip[dir] {
				logging.Logf("walk", "skipping %s", w.Display(path.Join(name, dir)))
				continue
			}
			child := path.Join(name, dir)
			if w.opts.FollowSymlinks && !w.markVisited(visited, child) {
				logging.Logf("walk", "cycle: %s already visited", w.Display(child))
				continue
			}
			if err := w.walkDir(ctx, child, depth+1, visited, visit); err != nil {
				return err
			}
		}
	}

	if w.opts.Order == PostOrder {
		if err := visit(l); err != nil && !errors.Is(err, SkipDir) {
			return err
		}
	}
	return nil
}

// markVisited records the canonical form of name and reports whether it
// was new.
func (w *Walker) markVisited(visited map[string]bool, name string) bool {
	key := name
	if rp, ok := w.fsys.(RealPathFS); ok {
		if real, err := rp.RealPath(name); err == nil {
			key = real
		}
	}
	if visited[key] {
		return false
	}
	visited[key] = true
	return true
}

// ReadListing reads the directory name and partitions its entries into
// subdirectories and everything else. Path and Depth are left for the
// caller to fill in.
func ReadListing(fsys fs.FS, name string, followSymlinks bool) (model.Listing, error) {
	entries, err := fs.ReadDir(fsys, name)
	if err != nil {
		return model.Listing{}, err
	}

	l := model.Listing{
		Name:  name,
		Dirs:  []string{},
		Files: []string{},
	}
	for _, e := range entries {
		if EntryIsDir(fsys, name, e, followSymlinks) {
			l.Dirs = append(l.Dirs, e.Name())
		} else {
			l.Files = append(l.Files, e.Name())
		}
	}
	return l, nil
}

// EntryIsDir reports whether e, found in dir, counts as a directory. Symlinks
// count only when followSymlinks is set and they resolve to a directory.
func EntryIsDir(fsys fs.FS, dir string, e fs.DirEntry, followSymlinks bool) bool {
	if e.IsDir() {
		return true
	}
	if !followSymlinks || e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	// Broken links are not directories.
	info, err := fs.Stat(fsys, path.Join(dir, e.Name()))
	return err == nil && info.IsDir()
}

// Collect walks w and returns every listing in visit order.
func Collect(ctx context.Context, w *Walker) ([]model.Listing, error) {
	var out []model.Listing
	err := w.Walk(ctx, func(l model.Listing) error {
		out = append(out, l)
		return nil
	})
	return out, err
}

// Stream walks w in a goroutine and sends listings over a channel. errCh
// receives a single error (nil on success) after out is closed. Cancelling
// ctx stops the walk.
func Stream(ctx context.Context, w *Walker) (<-chan model.Listing, <-chan error) {
	out := make(chan model.Listing, 32)
	errCh := make(chan error, 1)

	go func() {
		err := w.Walk(ctx, func(l model.Listing) error {
			select {
			case out <- l:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		close(out)
		errCh <- err
		close(errCh)
	}()

	return out, errCh
}
