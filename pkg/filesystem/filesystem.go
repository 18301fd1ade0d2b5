package filesystem

import (
	"io/fs"
)

// FS is the filesystem interface required for guiderails file operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	AppendFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error

	// Permission operations
	Chmod(name string, mode fs.FileMode) error
}
