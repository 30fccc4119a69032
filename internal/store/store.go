package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sandpy"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

var ErrNotFound = errors.New("store: run not found")

type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeParseFailure     Outcome = "parse"
	OutcomeExecutionFailure Outcome = "execution"
)

// Run is one recorded call to Exec.
type Run struct {
	ID           int64
	Source       string
	TTL          int64
	Outcome      Outcome
	ErrorKind    string
	ErrorMessage string
	CreatedAt    time.Time
	// Bindings is nil for failed runs and in ListRuns results.
	Bindings *sandpy.Bindings
}

// NewRun describes the result of Exec(source, ttl).
func NewRun(source string, ttl int64, b *sandpy.Bindings, err error) *Run {
	run := &Run{
		Source:    source,
		TTL:       ttl,
		Outcome:   OutcomeOK,
		CreatedAt: time.Now().UTC(),
		Bindings:  b,
	}
	if err == nil {
		return run
	}
	run.Bindings = nil
	run.Outcome = OutcomeExecutionFailure
	run.ErrorMessage = err.Error()
	var execErr *sandpy.ExecError
	if errors.As(err, &execErr) && execErr.Kind == sandpy.ParseFailure {
		run.Outcome = OutcomeParseFailure
	}
	if kind, ok := sandpy.KindOf(err); ok {
		run.ErrorKind = kind.String()
	}
	return run
}

type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Open connects to one of the supported drivers and pings it.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: failed to open connection: %w", err)
	}
	if driver == DriverSQLite {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: failed to ping database: %w", err)
	}
	return &Store{db: db, driver: driver, logger: slog.Default()}, nil
}

func (s *Store) SetLogger(logger *slog.Logger) { s.logger = logger }

func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the tables if they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) schema() []string {
	var id, text, name string
	switch s.driver {
	case DriverMySQL:
		id, text, name = "BIGINT AUTO_INCREMENT PRIMARY KEY", "LONGTEXT", "VARCHAR(255)"
	case DriverPostgres:
		id, text, name = "BIGSERIAL PRIMARY KEY", "TEXT", "TEXT"
	default:
		id, text, name = "INTEGER PRIMARY KEY AUTOINCREMENT", "TEXT", "TEXT"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id ` + id + `,
			source ` + text + ` NOT NULL,
			ttl BIGINT NOT NULL,
			outcome ` + name + ` NOT NULL,
			error_kind ` + name + ` NOT NULL,
			error_message ` + text + ` NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_bindings (
			run_id BIGINT NOT NULL,
			position INTEGER NOT NULL,
			name ` + name + ` NOT NULL,
			kind ` + name + ` NOT NULL,
			value ` + text + ` NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
	}
}

// rebind rewrites ? placeholders for drivers that number them.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SaveRun inserts run and its bindings in one transaction and sets run.ID.
func (s *Store) SaveRun(ctx context.Context, run *Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	insert := `INSERT INTO runs (source, ttl, outcome, error_kind, error_message, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	args := []any{run.Source, run.TTL, string(run.Outcome), run.ErrorKind, run.ErrorMessage, run.CreatedAt.UnixNano()}

	var id int64
	if s.driver == DriverPostgres {
		err = tx.QueryRowContext(ctx, s.rebind(insert+" RETURNING id"), args...).Scan(&id)
	} else {
		var res sql.Result
		res, err = tx.ExecContext(ctx, s.rebind(insert), args...)
		if err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("store: insert run: %w", err)
	}

	if run.Bindings != nil {
		stmt := s.rebind(`INSERT INTO run_bindings (run_id, position, name, kind, value) VALUES (?, ?, ?, ?, ?)`)
		i := 0
		for name, v := range run.Bindings.All() {
			value, err := encodeValue(v)
			if err != nil {
				return 0, fmt.Errorf("store: encode %q: %w", name, err)
			}
			if _, err := tx.ExecContext(ctx, stmt, id, i, name, run.Bindings.Type(name), value); err != nil {
				return 0, fmt.Errorf("store: insert binding %q: %w", name, err)
			}
			i++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	run.ID = id
	s.logger.Debug("run saved", slog.Int64("id", id), slog.String("outcome", string(run.Outcome)))
	return id, nil
}

// LoadRun reads a run with its bindings. It returns ErrNotFound for an
// unknown id.
func (s *Store) LoadRun(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, source, ttl, outcome, error_kind, error_message, created_at FROM runs WHERE id = ?`), id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load run %d: %w", id, err)
	}
	if run.Outcome != OutcomeOK {
		return run, nil
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT name, kind, value FROM run_bindings WHERE run_id = ? ORDER BY position`), id)
	if err != nil {
		return nil, fmt.Errorf("store: load bindings %d: %w", id, err)
	}
	defer rows.Close()

	run.Bindings = sandpy.NewBindings()
	for rows.Next() {
		var name, kind, value string
		if err := rows.Scan(&name, &kind, &value); err != nil {
			return nil, fmt.Errorf("store: scan binding: %w", err)
		}
		v, err := decodeValue(kind, value)
		if err != nil {
			return nil, fmt.Errorf("store: decode %q: %w", name, err)
		}
		run.Bindings.Set(name, kind, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: load bindings %d: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first, without bindings.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT id, source, ttl, outcome, error_kind, error_message, created_at FROM runs ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run     Run
		outcome string
		created int64
	)
	err := row.Scan(&run.ID, &run.Source, &run.TTL, &outcome, &run.ErrorKind, &run.ErrorMessage, &created)
	if err != nil {
		return nil, err
	}
	run.Outcome = Outcome(outcome)
	run.CreatedAt = time.Unix(0, created).UTC()
	return &run, nil
}
