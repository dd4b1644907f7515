package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/svcauth/pkg/clockx"
	"github.com/aussiebroadwan/svcauth/pkg/idx"
	"github.com/aussiebroadwan/svcauth/pkg/tokenstore/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore is a disk-backed Store for single-user setups.
type SQLiteStore struct {
	db    *sql.DB
	clock clockx.Clock
	dsn   string
}

// NewSQLite opens (creating it if needed) the SQLite database at dsn and
// applies any pending schema migrations. A nil clock defaults to the system
// clock.
func NewSQLite(dsn string, clock clockx.Clock) (*SQLiteStore, error) {
	if clock == nil {
		clock = clockx.System()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Two CLI invocations may race on the same cache file. Wait for the
	// other writer instead of failing with SQLITE_BUSY.
	if _, err := db.ExecContext(context.Background(), `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db, clock: clock, dsn: dsn}
	if err := s.applyMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// applyMigrations applies any pending schema migrations using the embedded
// migration files which are compiled into the binary. Running against an
// already-migrated database is a no-op.
func (s *SQLiteStore) applyMigrations() error {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return err
	}

	migrationsFilesystem, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", migrationsFilesystem, "", driver)
	if err != nil {
		return err
	}

	err = instance.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get returns the live entry for key. Rows whose expiry has passed are
// treated as absent; PurgeExpired removes them for real.
func (s *SQLiteStore) Get(ctx context.Context, key string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, key, token, token_type, expires_at
		FROM tokens
		WHERE key = ?1 AND expires_at > ?2;`,
		key, s.clock.Now().Unix(),
	)

	var (
		e         Entry
		rawID     string
		expiresAt int64
	)
	if err := row.Scan(&rawID, &e.Key, &e.Token, &e.Type, &expiresAt); err != nil {
		return Entry{}, mapNotFound(err)
	}

	id, err := idx.Parse(rawID)
	if err != nil {
		return Entry{}, err
	}
	e.ID = id
	e.Expiry = time.Unix(expiresAt, 0).UTC()
	return e, nil
}

// Put inserts or replaces the entry for e.Key. A zero ID is assigned;
// replacing an existing key keeps the row's original ID.
func (s *SQLiteStore) Put(ctx context.Context, e Entry) error {
	if e.ID.IsZero() {
		e.ID = idx.NewAt(s.clock.Now())
	}
	typ := e.Type
	if typ == "" {
		typ = "Bearer"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tokens (id, key, token, token_type, expires_at)
		VALUES (?1, ?2, ?3, ?4, ?5)
		ON CONFLICT (key) DO UPDATE SET
			token      = excluded.token,
			token_type = excluded.token_type,
			expires_at = excluded.expires_at;`,
		e.ID.String(), e.Key, e.Token, typ, e.Expiry.Unix(),
	)
	return err
}

// Delete removes the entry for key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE key = ?1;`, key)
	return err
}

// PurgeExpired drops entries whose expiry has passed and reports how many
// rows were removed.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE expires_at <= ?1;`,
		s.clock.Now().Unix(),
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
