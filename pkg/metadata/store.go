// Package metadata maintains the durable index of cache entries: one row per
// content hash with the originating query, creation time, last access time
// and hit count. The index backs cache statistics and eviction by age; it is
// best-effort instrumentation, so callers log and continue on error.
package metadata

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/corebrain-ai/querycore/pkg/models"
)

const createTable = `
CREATE TABLE IF NOT EXISTS cache_metadata (
	hash TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	config_id TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	last_accessed INTEGER NOT NULL,
	hit_count INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_cache_metadata_accessed ON cache_metadata(last_accessed);
`

// Store is the SQLite-backed metadata index.
type Store struct {
	db *sql.DB
}

// New opens the metadata database and creates the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open metadata db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate metadata db: %w", err)
	}

	return &Store{db: db}, nil
}

// Touch records an access to the entry: a new row starts with hit_count 1,
// an existing row bumps its count and last-access time. Timestamps are
// stored as Unix milliseconds.
func (s *Store) Touch(hash, query, configID string) error {
	now := time.Now().UnixMilli()
	_, err := s.db.Exec(
		`INSERT INTO cache_metadata (hash, query, config_id, created_at, last_accessed, hit_count)
		 VALUES (?, ?, ?, ?, ?, 1)
		 ON CONFLICT(hash) DO UPDATE SET
			last_accessed = excluded.last_accessed,
			hit_count = cache_metadata.hit_count + 1`,
		hash, query, configID, now, now,
	)
	if err != nil {
		return fmt.Errorf("touch metadata: %w", err)
	}
	return nil
}

// HitCount returns the recorded hit count for a hash, or 0 if untracked.
func (s *Store) HitCount(hash string) (int64, error) {
	var count int64
	err := s.db.QueryRow(`SELECT hit_count FROM cache_metadata WHERE hash = ?`, hash).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("hit count: %w", err)
	}
	return count, nil
}

// HashesOlderThan returns the hashes of entries last accessed before cutoff.
func (s *Store) HashesOlderThan(cutoff time.Time) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT hash FROM cache_metadata WHERE last_accessed < ?`, cutoff.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("query old hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan hash: %w", err)
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}

// Delete removes the row for a hash.
func (s *Store) Delete(hash string) error {
	if _, err := s.db.Exec(`DELETE FROM cache_metadata WHERE hash = ?`, hash); err != nil {
		return fmt.Errorf("delete metadata: %w", err)
	}
	return nil
}

// Clear removes every row.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM cache_metadata`); err != nil {
		return fmt.Errorf("clear metadata: %w", err)
	}
	return nil
}

// Stats returns the tracked entry count, the topN most-hit queries and the
// mean entry age in seconds.
func (s *Store) Stats(topN int) (total int64, top []models.QueryHits, avgAge float64, err error) {
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM cache_metadata`).Scan(&total); err != nil {
		return 0, nil, 0, fmt.Errorf("metadata count: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT query, hit_count FROM cache_metadata ORDER BY hit_count DESC LIMIT ?`, topN,
	)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("top queries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var q models.QueryHits
		if err := rows.Scan(&q.Query, &q.Hits); err != nil {
			return 0, nil, 0, fmt.Errorf("scan top query: %w", err)
		}
		top = append(top, q)
	}
	if err = rows.Err(); err != nil {
		return 0, nil, 0, err
	}

	err = s.db.QueryRow(
		`SELECT COALESCE(AVG(? - created_at), 0) / 1000.0 FROM cache_metadata`,
		time.Now().UnixMilli(),
	).Scan(&avgAge)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("average age: %w", err)
	}

	return total, top, avgAge, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
