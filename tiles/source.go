package tiles

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/exp/mmap"
)

var (
	ErrNotFound = errors.New("tile asset not found")
	ErrClosed   = errors.New("tile manager closed")
)

// Source provides prepared tile assets. Await blocks until the asset at
// path is available; a source backed by a preparation service may poll
// while the asset is being built.
type Source interface {
	Await(ctx context.Context, path string) ([]byte, error)
}

// DirSource serves assets that were prepared ahead of time into a
// directory.
type DirSource struct {
	Root string
}

func (d DirSource) Await(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := mmap.Open(filepath.Join(d.Root, filepath.FromSlash(path)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	} else if err != nil {
		return nil, err
	}
	defer reader.Close()

	buf := make([]byte, reader.Len())
	if _, err := reader.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf, nil
}

// WriteAsset stores data under path in the directory, creating parents.
func (d DirSource) WriteAsset(path string, data []byte) error {
	full := filepath.Join(d.Root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}
