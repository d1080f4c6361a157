package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestFSStoreGet(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "styles.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	s := NewFSStore(dir)

	rc, err := s.Get("styles.css")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "body{}" {
		t.Errorf("unexpected content %q", b)
	}

	for _, key := range []string{"", "missing.js", "sub", "../../etc/passwd"} {
		if _, err := s.Get(key); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q): expected ErrNotFound, got %v", key, err)
		}
	}
}

func TestFSStoreStaysInsideRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "web")
	_ = os.Mkdir(root, 0o755)
	_ = os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("x"), 0o644)

	if _, err := NewFSStore(root).Get("../secret.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected traversal to be contained, got %v", err)
	}
}
