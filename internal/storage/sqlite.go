package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"

	"importlens/internal/index"
)

// DefaultCacheSize bounds the in-memory verification cache.
const DefaultCacheSize = 1024

type verification struct {
	valid     bool
	checkedAt int64
}

type SQLiteStore struct {
	db    *sql.DB
	cache *lru.Cache[string, verification]
	now   func() time.Time
	ttl   time.Duration
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	cache, err := lru.New[string, verification](DefaultCacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db, cache: cache, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

// SetVerificationTTL makes verification outcomes older than ttl invisible
// to lookups. Zero keeps them forever.
func (s *SQLiteStore) SetVerificationTTL(ttl time.Duration) {
	s.ttl = ttl
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			path TEXT PRIMARY KEY,
			statements JSON,
			unresolved INTEGER,
			scanned_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS report_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS verifications (
			statement TEXT,
			interpreter TEXT,
			valid INTEGER,
			checked_at INTEGER,
			PRIMARY KEY (statement, interpreter)
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- ReportStore Implementation ---

func (s *SQLiteStore) SaveReport(ctx context.Context, r *index.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reports"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO report_meta (key, value) VALUES ('root', ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value
	`, r.Root); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reports (path, statements, unresolved, scanned_at) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	scannedAt := s.now().Unix()
	for _, f := range r.Files {
		statements, err := json.Marshal(f.Statements)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, f.Path, statements, f.Unresolved, scannedAt); err != nil {
			return fmt.Errorf("failed to save report for %s: %w", f.Path, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadReport(ctx context.Context) (*index.Report, error) {
	r := &index.Report{}

	var root string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM report_meta WHERE key = 'root'").Scan(&root)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, fmt.Errorf("failed to query report root: %w", err)
	default:
		r.Root = root
	}

	rows, err := s.db.QueryContext(ctx, "SELECT path, statements, unresolved FROM reports ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f index.FileReport
		var statements []byte
		if err := rows.Scan(&f.Path, &statements, &f.Unresolved); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		if len(statements) > 0 {
			if err := json.Unmarshal(statements, &f.Statements); err != nil {
				return nil, fmt.Errorf("corrupt statements for %s: %w", f.Path, err)
			}
		}
		r.Files = append(r.Files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// --- VerificationStore Implementation ---

func cacheKey(interpreter, stmt string) string {
	return interpreter + "\x00" + stmt
}

func (s *SQLiteStore) fresh(checkedAt int64) bool {
	return s.ttl <= 0 || s.now().Sub(time.Unix(checkedAt, 0)) < s.ttl
}

func (s *SQLiteStore) LookupVerifications(ctx context.Context, interpreter string, stmts []string) (map[string]bool, error) {
	out := make(map[string]bool, len(stmts))
	var missing []string
	for _, stmt := range stmts {
		if v, ok := s.cache.Get(cacheKey(interpreter, stmt)); ok && s.fresh(v.checkedAt) {
			out[stmt] = v.valid
			continue
		}
		missing = append(missing, stmt)
	}
	if len(missing) == 0 {
		return out, nil
	}

	query, err := s.db.PrepareContext(ctx, "SELECT valid, checked_at FROM verifications WHERE statement = ? AND interpreter = ?")
	if err != nil {
		return nil, err
	}
	defer query.Close()

	for _, stmt := range missing {
		var v verification
		err := query.QueryRowContext(ctx, stmt, interpreter).Scan(&v.valid, &v.checkedAt)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query verification: %w", err)
		}
		if !s.fresh(v.checkedAt) {
			continue
		}
		s.cache.Add(cacheKey(interpreter, stmt), v)
		out[stmt] = v.valid
	}
	return out, nil
}

func (s *SQLiteStore) SaveVerifications(ctx context.Context, interpreter string, outcomes map[string]bool) error {
	if len(outcomes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO verifications (statement, interpreter, valid, checked_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(statement, interpreter) DO UPDATE SET valid=excluded.valid, checked_at=excluded.checked_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	checkedAt := s.now().Unix()
	for statement, valid := range outcomes {
		if _, err := stmt.ExecContext(ctx, statement, interpreter, valid, checkedAt); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	for statement, valid := range outcomes {
		s.cache.Add(cacheKey(interpreter, statement), verification{valid: valid, checkedAt: checkedAt})
	}
	return nil
}
