package scaffold

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/nullslate/nullslate/pkg/vcs"
)

// Source is somewhere a template can be read from.
type Source interface {
	FS(context.Context) (fs.FS, error)
	Root() string
	Close() error
}

// FSSource wraps any io/fs.FS
func NewFSSource(fsys fs.FS, root string) *FSSource {
	return &FSSource{fs: fsys, root: root}
}

type FSSource struct {
	fs   fs.FS
	root string
}

func (f *FSSource) FS(ctx context.Context) (fs.FS, error) {
	return f.fs, nil
}

func (f *FSSource) Root() string {
	return f.root
}

func (f *FSSource) Close() error {
	return nil
}

// OSSource reads a local directory.
func NewOSSource(path string) *OSSource {
	return &OSSource{path: path}
}

type OSSource struct {
	path string
}

func (o *OSSource) FS(ctx context.Context) (fs.FS, error) {
	return os.DirFS(o.path), nil
}

func (o *OSSource) Root() string {
	return "."
}

// Dir is the directory on disk backing the source.
func (o *OSSource) Dir() string {
	return o.path
}

func (o *OSSource) Close() error {
	return nil
}

// RemoteSource clones a git repository into a temporary directory on first
// use. Close removes the clone.
func NewRemoteSource(url string) *RemoteSource {
	return &RemoteSource{url: url}
}

type RemoteSource struct {
	url     string
	tempDir string
	once    sync.Once
	err     error
}

func (r *RemoteSource) FS(ctx context.Context) (fs.FS, error) {
	r.once.Do(func() {
		r.tempDir, r.err = r.clone(ctx)
	})

	if r.err != nil {
		return nil, r.err
	}

	return os.DirFS(r.tempDir), nil
}

func (r *RemoteSource) Root() string {
	return "."
}

// Dir is the clone directory, empty until FS has succeeded.
func (r *RemoteSource) Dir() string {
	return r.tempDir
}

func (r *RemoteSource) Close() error {
	if r.tempDir != "" {
		return os.RemoveAll(r.tempDir)
	}
	return nil
}

func (r *RemoteSource) clone(ctx context.Context) (string, error) {
	tempDir, err := os.MkdirTemp("", "nullslate-template-*")
	if err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}

	if err := vcs.Clone(ctx, r.url, tempDir); err != nil {
		os.RemoveAll(tempDir)
		return "", err
	}

	return tempDir, nil
}
