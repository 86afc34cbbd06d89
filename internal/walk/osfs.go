package walk

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFS is an fs.FS rooted at an OS path. Unlike os.DirFS it resolves the
// root name "." to the root itself, so a root that is a regular file stats
// as a file instead of failing.
type OSFS string

func (fsys OSFS) join(op, name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return filepath.Join(string(fsys), filepath.FromSlash(name)), nil
}

func (fsys OSFS) Open(name string) (fs.File, error) {
	full, err := fsys.join("open", name)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (fsys OSFS) Stat(name string) (fs.FileInfo, error) {
	full, err := fsys.join("stat", name)
	if err != nil {
		return nil, err
	}
	return os.Stat(full)
}

func (fsys OSFS) ReadDir(name string) ([]fs.DirEntry, error) {
	full, err := fsys.join("readdir", name)
	if err != nil {
		return nil, err
	}
	return os.ReadDir(full)
}

// RealPath returns the canonical OS path of name with symlinks resolved.
func (fsys OSFS) RealPath(name string) (string, error) {
	full, err := fsys.join("realpath", name)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}
