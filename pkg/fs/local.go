package fs

import (
	"os"
	"path/filepath"
)

const mkdirAllMode = 0755

type localFilesystem struct{}

// NewLocalFilesystem yields a local disk filesystem.
func NewLocalFilesystem() Filesystem {
	return localFilesystem{}
}

func (localFilesystem) Create(path string) (File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return localFile{f}, nil
}

func (localFilesystem) Open(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errNotFound{err}
		}
		return nil, err
	}
	return localFile{f}, nil
}

func (localFilesystem) Rename(oldname, newname string) error {
	if err := os.Rename(oldname, newname); err != nil {
		if os.IsNotExist(err) {
			return errNotFound{err}
		}
		return err
	}
	return nil
}

func (localFilesystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func (localFilesystem) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errNotFound{err}
		}
		return err
	}
	return nil
}

func (localFilesystem) MkdirAll(path string) error {
	return os.MkdirAll(path, mkdirAllMode)
}

func (localFilesystem) Walk(root string, walkFn filepath.WalkFunc) error {
	return filepath.Walk(root, walkFn)
}

type localFile struct {
	*os.File
}

func (f localFile) Size() int64 {
	fi, err := f.File.Stat()
	if err != nil {
		panic(err)
	}
	return fi.Size()
}
