package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/vscpa/backend/migrations"
)

// Migrator applies the versioned SQL schema with golang-migrate
type Migrator struct {
	migrate *migrate.Migrate
	source  source.Driver
	logger  *zap.Logger
}

// EmbeddedSource reads the migrations compiled into the binary
func EmbeddedSource() (source.Driver, error) {
	return FSSource(migrations.FS)
}

// DirSource reads migrations from a directory on disk
func DirSource(dir string) (source.Driver, error) {
	return FSSource(os.DirFS(dir))
}

// FSSource reads migrations from the root of fsys
func FSSource(fsys fs.FS) (source.Driver, error) {
	src, err := iofs.New(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}
	return src, nil
}

// New creates a Migrator for a PostgreSQL database
func New(db *sql.DB, src source.Driver, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}
	return NewWithDriver(src, "postgres", driver, logger)
}

// NewWithDriver creates a Migrator over any golang-migrate database driver
func NewWithDriver(src source.Driver, dbName string, driver database.Driver, logger *zap.Logger) (*Migrator, error) {
	m, err := migrate.NewWithInstance("iofs", src, dbName, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{migrate: m, source: src, logger: logger.Named("migrate")}, nil
}

// run executes op and reports whether it changed the schema
func (m *Migrator) run(op string, fn func() error) (bool, error) {
	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("No migrations to apply", zap.String("op", op))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("migration %s failed: %w", op, err)
	}
	return true, nil
}

func (m *Migrator) logVersion(msg string) {
	version, dirty, err := m.Version()
	if err != nil {
		m.logger.Warn("Could not read migration version", zap.Error(err))
		return
	}
	m.logger.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
}

// Up applies all pending migrations
func (m *Migrator) Up() error {
	changed, err := m.run("up", m.migrate.Up)
	if changed {
		m.logVersion("Migrations applied")
	}
	return err
}

// Down rolls back all migrations
func (m *Migrator) Down() error {
	changed, err := m.run("down", m.migrate.Down)
	if changed {
		m.logger.Info("All migrations rolled back")
	}
	return err
}

// Steps applies n migrations; a negative n rolls back
func (m *Migrator) Steps(n int) error {
	changed, err := m.run("steps", func() error { return m.migrate.Steps(n) })
	if changed {
		m.logVersion("Migration steps applied")
	}
	return err
}

// GoTo migrates up or down to version
func (m *Migrator) GoTo(version uint) error {
	changed, err := m.run("goto", func() error { return m.migrate.Migrate(version) })
	if changed {
		m.logVersion("Migrated to version")
	}
	return err
}

// Version returns the applied version, or 0 when nothing is applied
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Pending lists the versions in the source that are newer than the applied one
func (m *Migrator) Pending() ([]uint, error) {
	current, _, err := m.Version()
	if err != nil {
		return nil, err
	}

	var pending []uint
	v, err := m.source.First()
	for err == nil {
		if v > current {
			pending = append(pending, v)
		}
		v, err = m.source.Next(v)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read migration source: %w", err)
	}
	return pending, nil
}

// Force records version as applied and clears the dirty flag without
// running any SQL. It repairs a database left dirty by a failed migration.
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every table in the database
func (m *Migrator) Drop() error {
	m.logger.Warn("Dropping database - all data will be lost")
	if err := m.migrate.Drop(); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}
	return nil
}

// Close releases the source and database handles
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}
