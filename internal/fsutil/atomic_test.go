package fsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	if err := WriteFileAtomic(path, []byte("one"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if err := WriteFileAtomic(path, []byte("two"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "two" {
		t.Errorf("contents = %q, want two", data)
	}

	leftovers, _ := filepath.Glob(path + ".tmp-*")
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "tasks.json")
	if err := WriteFileAtomic(path, []byte("x"), 0600); err == nil {
		t.Fatal("WriteFileAtomic() expected error for missing directory")
	}
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")

	if err := Backup(path, 0600, nil); err != nil {
		t.Fatalf("Backup() of missing file error = %v", err)
	}
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Fatal("backup written for a missing file")
	}

	os.WriteFile(path, []byte("bad"), 0600)
	reject := func([]byte) bool { return false }
	if err := Backup(path, 0600, reject); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Fatal("backup written for rejected contents")
	}

	os.WriteFile(path, []byte("good"), 0600)
	if err := Backup(path, 0600, nil); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	data, _ := os.ReadFile(path + ".bak")
	if string(data) != "good" {
		t.Errorf("backup = %q, want good", data)
	}
}

func TestMoveAside(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	os.WriteFile(path, []byte("{"), 0600)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	dest, err := MoveAside(path, at)
	if err != nil {
		t.Fatalf("MoveAside() error = %v", err)
	}
	if want := path + ".corrupt.20260102-030405"; dest != want {
		t.Errorf("dest = %q, want %q", dest, want)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("original file still present")
	}
}
