package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// ErrNotFound is returned when no snapshot exists under a key.
var ErrNotFound = errors.New("snapshot not found")

// Store persists snapshots under string keys.
type Store interface {
	// Save writes snap under key, replacing any previous snapshot.
	Save(ctx context.Context, key string, snap Snapshot) error

	// Load reads the snapshot stored under key. It returns an error
	// matching ErrNotFound if there is none.
	Load(ctx context.Context, key string) (Snapshot, error)
}

// validateKey rejects keys that would escape the store's root.
func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("snapshot: invalid key %q", key)
	}
	return nil
}

// FileStore stores each snapshot as <dir>/<key>.json.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, rerrors.New("S081").Wrap(err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Save writes the snapshot to a temp file and renames it into place.
func (s *FileStore) Save(ctx context.Context, key string, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return rerrors.New("S081").Wrap(err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return rerrors.New("S081").Wrap(err)
	}

	f, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return rerrors.New("S081").Wrap(err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return rerrors.New("S081").Wrap(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return rerrors.New("S081").Wrap(err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		os.Remove(tmp)
		return rerrors.New("S081").Wrap(err)
	}
	return nil
}

// Load reads <dir>/<key>.json.
func (s *FileStore) Load(ctx context.Context, key string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if err := validateKey(key); err != nil {
		return Snapshot{}, rerrors.New("S080").Wrap(err)
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, rerrors.New("S080").
				WithDetail(fmt.Sprintf("no snapshot %q in %s", key, s.dir)).
				Wrap(ErrNotFound)
		}
		return Snapshot{}, rerrors.New("S080").Wrap(err)
	}
	return decode(data)
}

func decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, rerrors.New("S080").Wrap(err)
	}
	if snap.Values == nil {
		snap.Values = map[string]json.RawMessage{}
	}
	return snap, nil
}
