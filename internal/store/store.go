package store

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultNamespace keys the live document record.
	DefaultNamespace = "associate-os-v1"
	// DefaultSnapshotNamespace keys the snapshot collection.
	DefaultSnapshotNamespace = "associate-os-snapshots"

	sqliteFileName = "associate.sqlite"
)

// Backend is the durable key/value surface the document store sits on.
// Payloads are opaque bytes; the backend never interprets them.
type Backend interface {
	ReadRecord(ctx context.Context, namespace string) ([]byte, bool, error)
	WriteRecord(ctx context.Context, namespace string, payload []byte) error

	PutSnapshot(ctx context.Context, namespace string, info SnapshotInfo, payload []byte) error
	// ListSnapshots returns snapshots most recent first.
	ListSnapshots(ctx context.Context, namespace string) ([]SnapshotInfo, error)
	ReadSnapshot(ctx context.Context, namespace, key string) ([]byte, bool, error)
}

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	Key       string    `json:"key" yaml:"key"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Size      int       `json:"size" yaml:"size"`
}

// Store is the SQLite-backed Backend rooted at Dir.
type Store struct {
	Dir string
}

var _ Backend = Store{}

// DefaultDir is the data directory used when neither flags, env nor config name one.
func DefaultDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}
