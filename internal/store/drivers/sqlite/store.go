package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/stockroom/internal/store"
	_ "modernc.org/sqlite"
)

// Store keeps session values in an SQLite file. Rows are scoped by a session
// name so several terminal sessions can share one file without seeing each
// other's tokens.
type Store struct {
	db      *sql.DB
	dsn     string
	session string
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

func NewStore(dsn, session string) (*Store, error) {
	if session == "" {
		return nil, errors.New("sqlite: empty session name")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One writer at a time; concurrent refreshes would otherwise hit SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:      db,
		dsn:     dsn,
		session: session,
		now:     time.Now,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Session returns the scope this Store reads and writes.
func (s *Store) Session() string { return s.session }

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_values WHERE session = ? AND key = ?`,
		s.session, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany upserts every entry in one transaction.
func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	for k := range entries {
		if k == "" {
			return store.ErrEmptyKey
		}
	}

	now := s.now().Unix()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for k, v := range entries {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO session_values (session, key, value, updated_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT (session, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				s.session, k, v, now,
			)
			if err != nil {
				return fmt.Errorf("sqlite: set %q: %w", k, err)
			}
		}
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_values WHERE session = ? AND key = ?`,
		s.session, key,
	)
	if err != nil {
		return fmt.Errorf("sqlite: delete %q: %w", key, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_values WHERE session = ?`, s.session); err != nil {
		return fmt.Errorf("sqlite: clear: %w", err)
	}
	return nil
}

// Prune removes every session whose newest row was written before before.
// A session goes as a whole: a refresh rewrites only the tokens, so judging
// rows one by one would drop the username of a session still in use.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM session_values
		WHERE session IN (
			SELECT session FROM session_values
			GROUP BY session
			HAVING MAX(updated_at) < ?
		)`,
		before.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prune: %w", err)
	}
	return res.RowsAffected()
}

// withTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err // rollback happens in defer
	}

	return tx.Commit()
}
