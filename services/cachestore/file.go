package cachestore

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileBackend keeps the record in a single JSON file. Writes go to a temp
// file in the same directory which is then renamed over the target.
type FileBackend struct {
	fs   afero.Fs
	path string
}

func NewFileBackend(fsys afero.Fs, path string) *FileBackend {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FileBackend{fs: fsys, path: path}
}

func (b *FileBackend) Name() string { return "file" }

func (b *FileBackend) Read(_ context.Context) ([]byte, error) {
	data, err := afero.ReadFile(b.fs, b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (b *FileBackend) Write(_ context.Context, data []byte) error {
	if dir := filepath.Dir(b.path); dir != "." {
		if err := b.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := b.path + ".tmp"
	f, err := b.fs.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = b.fs.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = b.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = b.fs.Remove(tmp)
		return err
	}
	if err := b.fs.Rename(tmp, b.path); err != nil {
		_ = b.fs.Remove(tmp)
		return err
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }
