// Package analyzer keeps the durable log of executed queries, maintains
// per-pattern rolling statistics and derives cost-saving suggestions from
// usage. Logging failures are isolated per call and never affect the cache
// or template subsystems.
package analyzer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/corebrain-ai/querycore/pkg/models"
)

var (
	// ErrMissingQuery is returned when a record has no query text.
	ErrMissingQuery = errors.New("analyzer: missing query")
	// ErrMissingConfigID is returned when a record has no configuration ID.
	ErrMissingConfigID = errors.New("analyzer: missing config id")
)

// Config carries the advisor thresholds. The defaults mirror the tuning the
// suggestions were calibrated with; they are configuration, not derived from
// a cost model.
type Config struct {
	DefaultCost        float64       `yaml:"default_cost"`
	VolumeWindowDays   int           `yaml:"volume_window_days"`
	VolumeThreshold    int64         `yaml:"volume_threshold"`
	MinTTL             time.Duration `yaml:"min_ttl"`
	MaxTTL             time.Duration `yaml:"max_ttl"`
	PrecompileMinCount int64         `yaml:"precompile_min_count"`
	PrecompileSaving   float64       `yaml:"precompile_saving"`
	ExpensiveAvgCost   float64       `yaml:"expensive_avg_cost"`
	LoadWindowDays     int           `yaml:"load_window_days"`
	HourlyLoadMin      int64         `yaml:"hourly_load_min"`
	TopHours           int           `yaml:"top_hours"`
	RedundantRepeatMin int64         `yaml:"redundant_repeat_min"`
}

// DefaultConfig returns the standard advisor thresholds.
func DefaultConfig() Config {
	return Config{
		DefaultCost:        0.09,
		VolumeWindowDays:   30,
		VolumeThreshold:    100,
		MinTTL:             time.Hour,
		MaxTTL:             3 * 24 * time.Hour,
		PrecompileMinCount: 5,
		PrecompileSaving:   0.9,
		ExpensiveAvgCost:   0.1,
		LoadWindowDays:     7,
		HourlyLoadMin:      20,
		TopHours:           5,
		RedundantRepeatMin: 3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DefaultCost <= 0 {
		c.DefaultCost = d.DefaultCost
	}
	if c.VolumeWindowDays <= 0 {
		c.VolumeWindowDays = d.VolumeWindowDays
	}
	if c.VolumeThreshold <= 0 {
		c.VolumeThreshold = d.VolumeThreshold
	}
	if c.MinTTL <= 0 {
		c.MinTTL = d.MinTTL
	}
	if c.MaxTTL <= 0 {
		c.MaxTTL = d.MaxTTL
	}
	if c.PrecompileMinCount <= 0 {
		c.PrecompileMinCount = d.PrecompileMinCount
	}
	if c.PrecompileSaving <= 0 {
		c.PrecompileSaving = d.PrecompileSaving
	}
	if c.ExpensiveAvgCost <= 0 {
		c.ExpensiveAvgCost = d.ExpensiveAvgCost
	}
	if c.LoadWindowDays <= 0 {
		c.LoadWindowDays = d.LoadWindowDays
	}
	if c.HourlyLoadMin <= 0 {
		c.HourlyLoadMin = d.HourlyLoadMin
	}
	if c.TopHours <= 0 {
		c.TopHours = d.TopHours
	}
	if c.RedundantRepeatMin <= 0 {
		c.RedundantRepeatMin = d.RedundantRepeatMin
	}
	return c
}

const createTables = `
CREATE TABLE IF NOT EXISTS query_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT NOT NULL,
	config_id TEXT NOT NULL,
	collection_name TEXT,
	timestamp INTEGER NOT NULL,
	execution_time REAL NOT NULL,
	cost REAL NOT NULL,
	result_count INTEGER NOT NULL,
	pattern TEXT
);
CREATE INDEX IF NOT EXISTS idx_query_log_time ON query_log(timestamp);
CREATE TABLE IF NOT EXISTS query_patterns (
	pattern TEXT PRIMARY KEY,
	count INTEGER NOT NULL,
	avg_execution_time REAL NOT NULL,
	avg_cost REAL NOT NULL,
	last_updated INTEGER NOT NULL
);
`

// commonPatterns is the ordered list of query shapes checked during pattern
// detection. The linear first-match-wins scan over this exact order is part
// of the observable contract; queries are lowercased before matching.
var commonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`muestra\s+(?:todos\s+)?los\s+(\w+)`),
	regexp.MustCompile(`lista\s+(?:de\s+)?(?:todos\s+)?los\s+(\w+)`),
	regexp.MustCompile(`busca\s+(\w+)\s+donde`),
	regexp.MustCompile(`cu[aá]ntos\s+(\w+)\s+hay`),
	regexp.MustCompile(`total\s+de\s+(\w+)`),
}

// Analyzer is the SQLite-backed query log and optimization advisor.
type Analyzer struct {
	db  *sql.DB
	cfg Config
	log zerolog.Logger
}

// New opens the query-log database, creates the schema and normalizes any
// zero-valued thresholds in cfg to their defaults.
func New(dbPath string, cfg Config, logger zerolog.Logger) (*Analyzer, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open query log db: %w", err)
	}
	// A single connection serializes concurrent recorders instead of
	// surfacing SQLITE_BUSY to them.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTables); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate query log db: %w", err)
	}

	return &Analyzer{db: db, cfg: cfg.withDefaults(), log: logger}, nil
}

// Record appends one executed query to the log and folds it into the
// statistics of its detected pattern. The stat update uses the running-mean
// formula inside a transaction so concurrent recorders cannot lose
// increments.
func (a *Analyzer) Record(ctx context.Context, query, configID, collection string, executionTime, cost float64, resultCount int) error {
	if query == "" {
		return ErrMissingQuery
	}
	if configID == "" {
		return ErrMissingConfigID
	}

	pattern := detectPattern(query)

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin log tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO query_log (query, config_id, collection_name, timestamp, execution_time, cost, result_count, pattern)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		query, configID, collection, time.Now().Unix(), executionTime, cost, resultCount, pattern,
	)
	if err != nil {
		return fmt.Errorf("record query: %w", err)
	}

	if pattern != "" {
		if err := upsertPatternStat(ctx, tx, pattern, executionTime, cost); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit log tx: %w", err)
	}
	return nil
}

func upsertPatternStat(ctx context.Context, tx *sql.Tx, pattern string, executionTime, cost float64) error {
	var count int64
	var avgTime, avgCost float64
	err := tx.QueryRowContext(ctx,
		`SELECT count, avg_execution_time, avg_cost FROM query_patterns WHERE pattern = ?`,
		pattern,
	).Scan(&count, &avgTime, &avgCost)

	now := time.Now().Unix()
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO query_patterns (pattern, count, avg_execution_time, avg_cost, last_updated)
			 VALUES (?, 1, ?, ?, ?)`,
			pattern, executionTime, cost, now,
		)
	case err == nil:
		newCount := count + 1
		newAvgTime := (avgTime*float64(count) + executionTime) / float64(newCount)
		newAvgCost := (avgCost*float64(count) + cost) / float64(newCount)
		_, err = tx.ExecContext(ctx,
			`UPDATE query_patterns SET count = ?, avg_execution_time = ?, avg_cost = ?, last_updated = ?
			 WHERE pattern = ?`,
			newCount, newAvgTime, newAvgCost, now, pattern,
		)
	}
	if err != nil {
		return fmt.Errorf("update pattern stat: %w", err)
	}
	return nil
}

// detectPattern labels a query with its matching common pattern, or derives a
// coarse lista_de_<entity> label for listing queries of three or more words.
// Returns "" when no pattern applies.
func detectPattern(query string) string {
	normalized := strings.ToLower(query)

	for _, re := range commonPatterns {
		if m := re.FindStringSubmatch(normalized); m != nil {
			return strings.Replace(re.String(), `(\w+)`, m[1], 1)
		}
	}

	words := strings.Fields(normalized)
	if len(words) < 3 {
		return ""
	}

	listing := false
	for _, w := range words {
		if w == "mostrar" || w == "muestra" || w == "listar" || w == "lista" {
			listing = true
			break
		}
	}
	if !listing {
		return ""
	}
	for i, w := range words {
		switch w {
		case "de", "los", "las", "todos", "todas":
			if i+1 < len(words) {
				return "lista_de_" + words[i+1]
			}
		}
	}
	return ""
}

// CommonPatterns returns the limit most frequent pattern stats, each with the
// monthly cost extrapolated from the 7-day observation window.
func (a *Analyzer) CommonPatterns(ctx context.Context, limit int) ([]models.PatternStat, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT pattern, count, avg_execution_time, avg_cost, last_updated
		 FROM query_patterns ORDER BY count DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("common patterns: %w", err)
	}
	defer rows.Close()

	var stats []models.PatternStat
	for rows.Next() {
		var s models.PatternStat
		var updated int64
		if err := rows.Scan(&s.Pattern, &s.Count, &s.AvgExecutionTime, &s.AvgCost, &updated); err != nil {
			return nil, fmt.Errorf("scan pattern stat: %w", err)
		}
		s.LastUpdated = time.Unix(updated, 0)
		s.EstimatedMonthlyCost = round2(s.AvgCost * float64(s.Count) * 30 / 7)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// RecentRecords returns up to limit log records since a given time, newest
// first.
func (a *Analyzer) RecentRecords(ctx context.Context, since time.Time, limit int) ([]models.QueryLogRecord, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, query, config_id, collection_name, timestamp, execution_time, cost, result_count, pattern
		 FROM query_log WHERE timestamp >= ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		since.Unix(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent records: %w", err)
	}
	defer rows.Close()

	var records []models.QueryLogRecord
	for rows.Next() {
		var r models.QueryLogRecord
		var collection, pattern sql.NullString
		var ts int64
		if err := rows.Scan(&r.ID, &r.Query, &r.ConfigID, &collection, &ts, &r.ExecutionTime, &r.Cost, &r.ResultCount, &pattern); err != nil {
			return nil, fmt.Errorf("scan log record: %w", err)
		}
		r.Collection = collection.String
		r.Pattern = pattern.String
		r.Timestamp = time.Unix(ts, 0)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Purge deletes log records older than the cutoff and returns the count.
func (a *Analyzer) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := a.db.ExecContext(ctx,
		`DELETE FROM query_log WHERE timestamp < ?`, before.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("purge query log: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database connection.
func (a *Analyzer) Close() error {
	return a.db.Close()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
