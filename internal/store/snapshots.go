package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"associate-os/internal/schema"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrSnapshotCorrupt  = errors.New("snapshot is corrupt")
)

// SnapshotKeyLayout renders the capture time as day.month.year, time of day.
const SnapshotKeyLayout = "02.01.2006, 15:04:05"

// SnapshotKey builds the key a snapshot taken at t with the given name is stored under.
func SnapshotKey(t time.Time, name string) string {
	key := t.Format(SnapshotKeyLayout)
	if name = strings.TrimSpace(name); name != "" {
		key += " - " + name
	}
	return key
}

// Snapshot copies the durable document bytes into the snapshot collection and
// returns the key. Snapshots taken within the same second under the same name
// share a key; the later one wins.
func (d *Documents) Snapshot(ctx context.Context, name string) (string, error) {
	raw, err := d.durableBytes(ctx)
	if err != nil {
		return "", err
	}
	now := d.now()
	info := SnapshotInfo{
		Key:       SnapshotKey(now, name),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		Size:      len(raw),
	}
	if err := d.backend.PutSnapshot(ctx, d.snapshotNamespace, info, raw); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	d.log.Info("snapshot created", "key", info.Key, "bytes", info.Size)
	return info.Key, nil
}

// ListSnapshots returns the stored snapshots, most recent first.
func (d *Documents) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	return d.backend.ListSnapshots(ctx, d.snapshotNamespace)
}

// Restore replaces the live document with a snapshot. ref is a snapshot key;
// if no key matches, the most recent snapshot whose name equals ref is used.
// The snapshot is validated first; a corrupt snapshot leaves the live
// document untouched.
func (d *Documents) Restore(ctx context.Context, ref string) error {
	key, raw, err := d.findSnapshot(ctx, strings.TrimSpace(ref))
	if err != nil {
		return err
	}
	doc, err := schema.Validate(raw)
	if err != nil {
		d.log.Warn("snapshot rejected", "key", key, "err", err)
		return fmt.Errorf("restore %q: %w: %w", key, ErrSnapshotCorrupt, err)
	}
	if err := d.Replace(ctx, doc); err != nil {
		return fmt.Errorf("restore %q: %w", key, err)
	}
	d.log.Info("snapshot restored", "key", key)
	return nil
}

func (d *Documents) findSnapshot(ctx context.Context, ref string) (string, []byte, error) {
	if ref == "" {
		return "", nil, ErrSnapshotNotFound
	}
	raw, ok, err := d.backend.ReadSnapshot(ctx, d.snapshotNamespace, ref)
	if err != nil {
		return "", nil, err
	}
	if ok {
		return ref, raw, nil
	}
	infos, err := d.backend.ListSnapshots(ctx, d.snapshotNamespace)
	if err != nil {
		return "", nil, err
	}
	for _, info := range infos {
		if info.Name != ref {
			continue
		}
		raw, ok, err := d.backend.ReadSnapshot(ctx, d.snapshotNamespace, info.Key)
		if err != nil {
			return "", nil, err
		}
		if ok {
			return info.Key, raw, nil
		}
	}
	return "", nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, ref)
}
