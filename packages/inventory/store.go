package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abdul-hamid-achik/reqspec/packages/requirements"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		files      INTEGER NOT NULL,
		valid      INTEGER NOT NULL,
		invalid    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS dependencies (
		run_id     TEXT NOT NULL REFERENCES runs(id),
		path       TEXT NOT NULL,
		line       INTEGER NOT NULL,
		dep_group  TEXT NOT NULL,
		name       TEXT NOT NULL,
		normalized TEXT NOT NULL,
		version    TEXT NOT NULL,
		extras     TEXT NOT NULL,
		uri        TEXT NOT NULL,
		markers    TEXT NOT NULL,
		raw        TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dependencies_run ON dependencies (run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dependencies_normalized ON dependencies (normalized)`,
}

// createdAtLayout is fixed width so created_at sorts as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run summarizes one SaveRun call.
type Run struct {
	ID        string
	CreatedAt time.Time
	Files     int
	Valid     int
	Invalid   int
}

// Record is one stored dependency.
type Record struct {
	RunID   string
	Path    string
	Line    int
	Group   string
	Name    string
	Version string
	Extras  []string
	URI     string
	Markers []string
	Raw     string
}

type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
	newID  func() string
}

// Open connects to the database named by conn ("sqlite://path",
// "sqlite:path" or "postgres://...").
func Open(ctx context.Context, conn string) (*Store, error) {
	db, driver, err := openDB(ctx, conn)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:     db,
		driver: driver,
		now:    time.Now,
		newID:  uuid.NewString,
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// SaveRun stores every valid dependency of results under a new run in one
// transaction and returns the run ID.
func (s *Store) SaveRun(ctx context.Context, results []*requirements.FileResult) (string, error) {
	run := Run{
		ID:        s.newID(),
		CreatedAt: s.now().UTC(),
		Files:     len(results),
	}
	for _, r := range results {
		run.Valid += r.Valid()
		run.Invalid += r.Invalid()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("start tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, s.q(`INSERT INTO runs (id, created_at, files, valid, invalid) VALUES (?, ?, ?, ?, ?)`),
		run.ID, run.CreatedAt.Format(createdAtLayout), run.Files, run.Valid, run.Invalid)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.q(`INSERT INTO dependencies
		(run_id, path, line, dep_group, name, normalized, version, extras, uri, markers, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return "", fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		for i := range r.Entries {
			e := &r.Entries[i]
			if e.Dependency == nil {
				continue
			}
			dep := e.Dependency
			extras, err := json.Marshal(dep.Extras)
			if err != nil {
				return "", err
			}
			markers, err := json.Marshal(dep.Markers)
			if err != nil {
				return "", err
			}
			_, err = stmt.ExecContext(ctx,
				run.ID, r.Path, e.Line, e.Group, dep.Name, NormalizeName(dep.Name),
				dep.Version.String(), string(extras), dep.URI, string(markers), e.Raw)
			if err != nil {
				return "", fmt.Errorf("insert %s:%d: %w", r.Path, e.Line, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return run.ID, nil
}

// Runs returns every run, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, files, valid, invalid FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var created string
		if err := rows.Scan(&run.ID, &created, &run.Files, &run.Valid, &run.Invalid); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		run.CreatedAt, err = time.Parse(createdAtLayout, created)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

const recordColumns = `run_id, path, line, dep_group, name, version, extras, uri, markers, raw`

// Dependencies returns the dependencies stored for runID in file order.
func (s *Store) Dependencies(ctx context.Context, runID string) ([]Record, error) {
	return s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM dependencies WHERE run_id = ? ORDER BY path, line`, runID)
}

// FindByName returns every stored dependency whose normalized name matches.
func (s *Store) FindByName(ctx context.Context, name string) ([]Record, error) {
	return s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM dependencies WHERE normalized = ? ORDER BY run_id, path, line`, NormalizeName(name))
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var extras, markers string
		if err := rows.Scan(&rec.RunID, &rec.Path, &rec.Line, &rec.Group, &rec.Name,
			&rec.Version, &extras, &rec.URI, &markers, &rec.Raw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(extras), &rec.Extras); err != nil {
			return nil, fmt.Errorf("extras: %w", err)
		}
		if err := json.Unmarshal([]byte(markers), &rec.Markers); err != nil {
			return nil, fmt.Errorf("markers: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

func (s *Store) q(query string) string {
	return rebind(s.driver, query)
}

var nameSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizeName lower-cases a project name and folds runs of "-", "_" and
// "." into a single "-".
func NormalizeName(name string) string {
	return nameSeparators.ReplaceAllString(strings.ToLower(name), "-")
}
