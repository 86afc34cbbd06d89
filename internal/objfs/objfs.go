// Package objfs exposes a bucket prefix of an S3 compatible object store as
// a read-only fs.FS. Key separators ("/") map to directories.
package objfs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// objectAPI is the subset of *minio.Client used here.
type objectAPI interface {
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

type FS struct {
	api    objectAPI
	bucket string
	prefix string // "" or ends with "/"
	ctx    context.Context
}

// ParseLocation splits "bucket/some/prefix" into its bucket and prefix.
func ParseLocation(loc string) (bucket, prefix string, err error) {
	loc = strings.TrimPrefix(strings.TrimSpace(loc), "s3://")
	loc = strings.Trim(loc, "/")
	if loc == "" {
		return "", "", fmt.Errorf("objfs: bucket is required")
	}
	bucket, prefix, _ = strings.Cut(loc, "/")
	return bucket, prefix, nil
}

func New(cfg Config) (*FS, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("objfs: s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("objfs: s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("objfs: s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("objfs: init s3 client: %w", err)
	}
	return newFS(client, bucket, cfg.Prefix), nil
}

func newFS(api objectAPI, bucket, prefix string) *FS {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix != "" {
		prefix += "/"
	}
	return &FS{api: api, bucket: bucket, prefix: prefix, ctx: context.Background()}
}

// WithContext returns a copy of f whose requests use ctx.
func (f *FS) WithContext(ctx context.Context) *FS {
	c := *f
	c.ctx = ctx
	return &c
}

// Location returns "bucket" or "bucket/prefix", the display root of f.
func (f *FS) Location() string {
	return strings.TrimSuffix(f.bucket+"/"+f.prefix, "/")
}

func (f *FS) objectKey(name string) string {
	if name == "." {
		return strings.TrimSuffix(f.prefix, "/")
	}
	return f.prefix + name
}

func (f *FS) dirPrefix(name string) string {
	if name == "." {
		return f.prefix
	}
	return f.prefix + name + "/"
}

func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	ctx, cancel := context.WithCancel(f.ctx)
	defer cancel()

	dirPrefix := f.dirPrefix(name)
	var entries []fs.DirEntry
	for obj := range f.api.ListObjects(ctx, f.bucket, minio.ListObjectsOptions{Prefix: dirPrefix}) {
		if obj.Err != nil {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: obj.Err}
		}
		rel := strings.TrimPrefix(obj.Key, dirPrefix)
		if rel == "" {
			continue // directory marker object
		}
		if strings.HasSuffix(rel, "/") {
			entries = append(entries, &fileInfo{name: strings.TrimSuffix(rel, "/"), dir: true})
			continue
		}
		entries = append(entries, &fileInfo{name: rel, size: obj.Size, modTime: obj.LastModified})
	}

	if len(entries) == 0 && name != "." {
		info, err := f.Stat(name)
		if err != nil {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
		}
		if !info.IsDir() {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: syscall.ENOTDIR}
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (f *FS) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	base := path.Base(name)
	if name == "." {
		// The bucket root always exists; a prefix root is checked like any name.
		base = path.Base(f.Location())
		if f.prefix == "" {
			return &fileInfo{name: base, dir: true}, nil
		}
	}

	obj, err := f.api.StatObject(f.ctx, f.bucket, f.objectKey(name), minio.StatObjectOptions{})
	if err == nil {
		return &fileInfo{name: base, size: obj.Size, modTime: obj.LastModified}, nil
	}
	if !isNotFound(err) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}

	ctx, cancel := context.WithCancel(f.ctx)
	defer cancel()
	for obj := range f.api.ListObjects(ctx, f.bucket, minio.ListObjectsOptions{Prefix: f.dirPrefix(name), MaxKeys: 1}) {
		if obj.Err != nil {
			return nil, &fs.PathError{Op: "stat", Path: name, Err: obj.Err}
		}
		return &fileInfo{name: base, dir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (f *FS) Open(name string) (fs.File, error) {
	info, err := f.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return &dirFile{fsys: f, name: name, info: info}, nil
	}
	return &objectFile{fsys: f, key: f.objectKey(name), info: info}, nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

// fileInfo serves as both fs.FileInfo and fs.DirEntry.
type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
	dir     bool
}

func (i *fileInfo) Name() string       { return i.name }
func (i *fileInfo) Size() int64        { return i.size }
func (i *fileInfo) ModTime() time.Time { return i.modTime }
func (i *fileInfo) IsDir() bool        { return i.dir }
func (i *fileInfo) Sys() any           { return nil }

func (i *fileInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}

func (i *fileInfo) Type() fs.FileMode          { return i.Mode().Type() }
func (i *fileInfo) Info() (fs.FileInfo, error) { return i, nil }

type dirFile struct {
	fsys    *FS
	name    string
	info    fs.FileInfo
	entries []fs.DirEntry
	read    bool
	offset  int
}

func (d *dirFile) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *dirFile) Close() error               { return nil }

func (d *dirFile) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: syscall.EISDIR}
}

func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.read {
		entries, err := d.fsys.ReadDir(d.name)
		if err != nil {
			return nil, err
		}
		d.entries, d.read = entries, true
	}
	rest := d.entries[d.offset:]
	if n <= 0 {
		d.offset = len(d.entries)
		return rest, nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}
	if n > len(rest) {
		n = len(rest)
	}
	d.offset += n
	return rest[:n], nil
}

// objectFile fetches the object on first Read.
type objectFile struct {
	fsys *FS
	key  string
	info fs.FileInfo
	obj  *minio.Object
}

func (o *objectFile) Stat() (fs.FileInfo, error) { return o.info, nil }

func (o *objectFile) Read(p []byte) (int, error) {
	if o.obj == nil {
		obj, err := o.fsys.api.GetObject(o.fsys.ctx, o.fsys.bucket, o.key, minio.GetObjectOptions{})
		if err != nil {
			return 0, &fs.PathError{Op: "read", Path: o.key, Err: err}
		}
		o.obj = obj
	}
	return o.obj.Read(p)
}

func (o *objectFile) Close() error {
	if o.obj == nil {
		return nil
	}
	return o.obj.Close()
}
