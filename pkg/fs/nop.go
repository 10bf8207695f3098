package fs

import "path/filepath"

type nopFilesystem struct{}

// NewNopFilesystem yields a filesystem that performs no operations.
func NewNopFilesystem() Filesystem {
	return nopFilesystem{}
}

func (nopFilesystem) Create(path string) (File, error) { return nopFile{path}, nil }
func (nopFilesystem) Open(path string) (File, error)   { return nopFile{path}, nil }
func (nopFilesystem) Rename(string, string) error      { return nil }
func (nopFilesystem) Exists(string) bool               { return false }
func (nopFilesystem) Remove(string) error              { return nil }
func (nopFilesystem) MkdirAll(string) error            { return nil }

func (nopFilesystem) Walk(string, filepath.WalkFunc) error { return nil }

type nopFile struct {
	name string
}

func (nopFile) Read(p []byte) (int, error)  { return len(p), nil }
func (nopFile) Write(p []byte) (int, error) { return len(p), nil }
func (nopFile) Close() error                { return nil }
func (f nopFile) Name() string              { return f.name }
func (nopFile) Size() int64                 { return 0 }
func (nopFile) Sync() error                 { return nil }
