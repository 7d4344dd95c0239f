// Package fsutil holds the file primitives shared by the file-backed store
// and the config writer.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// WriteFileAtomic writes data to a temp file next to path, fsyncs it and
// renames it into place. Windows cannot rename over an existing file, so
// there the destination is removed first and the swap is not atomic.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := tmp.Chmod(perm); err != nil {
		return fail(fmt.Errorf("chmod %s: %w", tmpPath, err))
	}
	if _, err := tmp.Write(data); err != nil {
		return fail(fmt.Errorf("write %s: %w", tmpPath, err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("fsync %s: %w", tmpPath, err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if runtime.GOOS == "windows" && os.Remove(path) == nil {
			if err := os.Rename(tmpPath, path); err == nil {
				syncDir(dir)
				return nil
			}
		}
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename %s -> %s: %w", tmpPath, path, err)
	}

	syncDir(dir)
	return nil
}

// Backup copies the current contents of path to path+".bak" when keep
// accepts them. A missing file is not an error.
func Backup(path string, perm os.FileMode, keep func([]byte) bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if keep != nil && !keep(data) {
		return nil
	}
	return WriteFileAtomic(path+".bak", data, perm)
}

// MoveAside renames path to path+".corrupt.<timestamp>" and returns the new
// name.
func MoveAside(path string, at time.Time) (string, error) {
	dest := fmt.Sprintf("%s.corrupt.%s", path, at.Format("20060102-150405"))
	if err := os.Rename(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
