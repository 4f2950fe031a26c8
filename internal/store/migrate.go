package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// MigrationVersion is the schema version reported by Version.
type MigrationVersion struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// MigrateUp applies all pending migrations.
func (s *Store) MigrateUp() error {
	return s.migrate(func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown reverts all migrations.
func (s *Store) MigrateDown() error {
	return s.migrate(func(m *migrate.Migrate) error { return m.Down() })
}

// Version reports the current schema version. A database with no
// migrations applied reports version 0.
func (s *Store) Version() (MigrationVersion, error) {
	var v MigrationVersion
	err := s.migrate(func(m *migrate.Migrate) error {
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		v = MigrationVersion{Version: version, Dirty: dirty}
		return err
	})
	return v, err
}

// migrate runs fn against a dedicated connection; closing a migrate
// instance closes its database handle.
func (s *Store) migrate(fn func(*migrate.Migrate) error) error {
	dir := "migrations/sqlite"
	if s.driver == "pgx" {
		dir = "migrations/postgres"
	}
	src, err := iofs.New(migrations, dir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	conn, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}

	var drv database.Driver
	var name string
	switch s.driver {
	case "pgx":
		name = "pgx5"
		drv, err = migratepgx.WithInstance(conn, &migratepgx.Config{})
	default:
		name = "sqlite3"
		drv, err = migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	}
	if err != nil {
		conn.Close()
		return fmt.Errorf("init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, name, drv)
	if err != nil {
		drv.Close()
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := fn(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: %w", err)
	}
	s.log.Info("migrations checked", "dir", dir)
	return nil
}
