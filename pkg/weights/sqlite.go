package weights

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteBackend implements Backend using SQLite, so weights survive process
// restarts. It uses WAL mode with periodic checkpoints.
type SQLiteBackend struct {
	db               *sql.DB
	dbPath           string
	snapshotInterval time.Duration
	done             chan struct{}
	mu               sync.RWMutex
	closeOnce        sync.Once

	saveStmt   *sql.Stmt
	loadStmt   *sql.Stmt
	deleteStmt *sql.Stmt
}

// SQLiteBackendConfig configures the SQLite backend.
type SQLiteBackendConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// SnapshotInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	SnapshotInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteBackend creates a SQLite backend with default settings.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	return NewSQLiteBackendWithConfig(SQLiteBackendConfig{DBPath: dbPath})
}

// NewSQLiteBackendWithConfig creates a SQLite backend with custom configuration.
func NewSQLiteBackendWithConfig(cfg SQLiteBackendConfig) (*SQLiteBackend, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.SnapshotInterval == 0 {
		cfg.SnapshotInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		cfg.DBPath, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	backend := &SQLiteBackend{
		db:               db,
		dbPath:           cfg.DBPath,
		snapshotInterval: cfg.SnapshotInterval,
		done:             make(chan struct{}),
	}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := backend.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go backend.checkpointLoop()

	return backend, nil
}

func (s *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS strategy_weights (
		strategy TEXT PRIMARY KEY,
		weight REAL NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteBackend) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO strategy_weights (strategy, weight, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (strategy) DO UPDATE SET
			weight = excluded.weight,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT strategy, weight, updated_at
		FROM strategy_weights
		ORDER BY strategy
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`DELETE FROM strategy_weights WHERE strategy = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	return nil
}

// Save upserts records in a single transaction.
func (s *SQLiteBackend) Save(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := tx.StmtContext(ctx, s.saveStmt)
	for _, r := range records {
		if r.Strategy == "" {
			return fmt.Errorf("strategy name cannot be empty")
		}
		updatedAt := r.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, r.Strategy, r.Weight, updatedAt.UnixMilli()); err != nil {
			return fmt.Errorf("failed to save weight for %q: %w", r.Strategy, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit weights: %w", err)
	}
	return nil
}

// Load returns all persisted weights ordered by strategy name.
func (s *SQLiteBackend) Load(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.loadStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weights: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r         Record
			updatedAt int64
		)
		if err := rows.Scan(&r.Strategy, &r.Weight, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.UpdatedAt = time.UnixMilli(updatedAt)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// Delete removes the weight for strategy.
func (s *SQLiteBackend) Delete(ctx context.Context, strategy string) error {
	if strategy == "" {
		return fmt.Errorf("strategy name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.deleteStmt.ExecContext(ctx, strategy); err != nil {
		return fmt.Errorf("failed to delete weight: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *SQLiteBackend) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("weights database unreachable: %w", err)
	}
	return nil
}

// Close releases the database. Close is idempotent.
func (s *SQLiteBackend) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		if s.saveStmt != nil {
			s.saveStmt.Close()
		}
		if s.loadStmt != nil {
			s.loadStmt.Close()
		}
		if s.deleteStmt != nil {
			s.deleteStmt.Close()
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

func (s *SQLiteBackend) checkpointLoop() {
	ticker := time.NewTicker(s.snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
