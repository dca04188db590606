// Package filesys wraps the small set of filesystem primitives the
// segment registry needs: creating the data directory, listing segment
// files, and unlinking retired segments after compaction.
package filesys

import (
	"errors"
	"os"
	"path/filepath"
)

var ErrIsNotDir = errors.New("path isn't a directory")

// CreateDir creates a directory at dirPath with the given permission.
//
// If 'force' is false, it creates the directory only when the path does
// not exist; otherwise it returns os.Stat's result as is (nil when the
// path exists, whether it is a directory or a file).
//
// If 'force' is true, it returns ErrIsNotDir when the existing path is a
// file, and otherwise creates the directory (a no-op if it exists).
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	if !force && !os.IsNotExist(err) {
		return err
	}

	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}

	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	return os.Chmod(dirPath, 0755)
}

// ReadDir expands a glob pattern (dirName may itself contain glob meta
// characters, e.g. "segments/*.log") into the list of matching paths.
func ReadDir(dirName string) ([]string, error) {
	return filepath.Glob(dirName)
}

// DeleteFile removes the file at filePath.
func DeleteFile(filePath string) error {
	return os.Remove(filePath)
}
