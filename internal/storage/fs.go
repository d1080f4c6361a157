package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrNotFound = errors.New("asset not found")

// AssetStore serves read-only files by slash-separated key.
type AssetStore interface {
	Get(key string) (io.ReadCloser, error)
}

type FSStore struct{ base string }

func NewFSStore(base string) *FSStore {
	if base == "" {
		base = "./web"
	}
	return &FSStore{base: base}
}

// Get opens key under the store root. Keys cannot escape the root.
func (s *FSStore) Get(key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	p := filepath.Join(s.base, filepath.Clean("/"+filepath.FromSlash(key)))
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		_ = f.Close()
		return nil, ErrNotFound
	}
	return f, nil
}
