package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			namespace TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			name TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			PRIMARY KEY(namespace, key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(namespace, created_at_unixms);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (s Store) ReadRecord(ctx context.Context, namespace string) ([]byte, bool, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, false, err
	}
	defer db.Close()

	var payload string
	err = db.QueryRowContext(ctx, `SELECT payload FROM records WHERE namespace = ?`, namespace).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(payload), true, nil
}

func (s Store) WriteRecord(ctx context.Context, namespace string, payload []byte) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO records(namespace, payload, updated_at_unixms) VALUES(?, ?, ?)`,
		namespace, string(payload), time.Now().UTC().UnixMilli()); err != nil {
		return err
	}
	return tx.Commit()
}

// PutSnapshot stores payload under info.Key. An existing snapshot with the same key is overwritten.
func (s Store) PutSnapshot(ctx context.Context, namespace string, info SnapshotInfo, payload []byte) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	created := info.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO snapshots(namespace, key, name, payload, created_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		namespace, info.Key, strings.TrimSpace(info.Name), string(payload), created.UTC().UnixMilli())
	return err
}

func (s Store) ListSnapshots(ctx context.Context, namespace string) ([]SnapshotInfo, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT key, name, length(CAST(payload AS BLOB)), created_at_unixms
		FROM snapshots
		WHERE namespace = ?
		ORDER BY created_at_unixms DESC, rowid DESC`, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SnapshotInfo{}
	for rows.Next() {
		var (
			info      SnapshotInfo
			createdMs int64
		)
		if err := rows.Scan(&info.Key, &info.Name, &info.Size, &createdMs); err != nil {
			return nil, err
		}
		info.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s Store) ReadSnapshot(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, false, err
	}
	defer db.Close()

	var payload string
	err = db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE namespace = ? AND key = ?`, namespace, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(payload), true, nil
}
