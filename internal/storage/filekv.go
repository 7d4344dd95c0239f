package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"taskboard/internal/fsutil"

	"github.com/rs/zerolog"
)

const (
	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600
)

// FileKV keeps each key in its own <key>.json file inside a directory.
// Writes go through a temp file and a rename, and the previous contents are
// kept as <key>.json.bak. A value that fails ValidValue is replaced by the
// backup when one is usable.
type FileKV struct {
	dir string
	log zerolog.Logger
	now func() time.Time
}

// NewFileKV creates dir if needed and returns a FileKV rooted there.
func NewFileKV(dir string, log zerolog.Logger) (*FileKV, error) {
	if err := os.MkdirAll(dir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileKV{dir: dir, log: log, now: time.Now}, nil
}

// Dir returns the directory holding the value files.
func (f *FileKV) Dir() string {
	return f.dir
}

func (f *FileKV) Close() error { return nil }

func (f *FileKV) path(key string) (string, error) {
	if key == "" || filepath.Base(key) != key || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileKV) Get(key string) (string, bool, error) {
	path, err := f.path(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if ValidValue(key, data) {
		return string(data), true, nil
	}
	return f.recover(key, path)
}

func (f *FileKV) Set(key, value string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	valid := func(data []byte) bool { return ValidValue(key, data) }
	if err := fsutil.Backup(path, dataFilePerm, valid); err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("backup skipped")
	}
	if err := fsutil.WriteFileAtomic(path, []byte(value), dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// recover handles a damaged value file: the broken file is moved aside and
// the backup, if valid, takes its place.
func (f *FileKV) recover(key, path string) (string, bool, error) {
	corrupt, err := fsutil.MoveAside(path, f.now())
	if err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("could not move damaged file aside")
	}

	bak, err := os.ReadFile(path + ".bak")
	if err != nil || !ValidValue(key, bak) {
		f.log.Warn().Str("key", key).Str("moved_to", corrupt).Msg("damaged value reset to default")
		return "", false, nil
	}
	if err := fsutil.WriteFileAtomic(path, bak, dataFilePerm); err != nil {
		f.log.Warn().Err(err).Str("key", key).Msg("could not restore backup")
	}
	f.log.Warn().Str("key", key).Str("moved_to", corrupt).Msg("damaged value recovered from backup")
	return string(bak), true, nil
}
