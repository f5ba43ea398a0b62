package integration

import (
	"context"
	"encoding/base64"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	migrations "github.com/docvault/docvault/db"
	"github.com/docvault/docvault/pkg/config"
	"github.com/docvault/docvault/pkg/enclave"
	"github.com/docvault/docvault/pkg/identity"
	"github.com/docvault/docvault/pkg/ledger"
	ledgergorm "github.com/docvault/docvault/pkg/ledger/gorm"
	"github.com/docvault/docvault/pkg/server"
	"github.com/docvault/docvault/pkg/server/endpoints"
)

// TestContext holds all the resources needed for integration tests. The
// server runs in-process against a PostgreSQL testcontainer with the real
// migrations applied.
type TestContext struct {
	DB          *gorm.DB
	Container   testcontainers.Container
	DatabaseURL string
	DataKey     []byte
	Vault       *enclave.Vault
	Ledger      *ledger.Ledger
	Server      *server.Server
}

// NewTestContext starts a PostgreSQL container, migrates the schema and
// wires an in-process server against it.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("docvault_test"),
		tcpostgres.WithUsername("docvault"),
		tcpostgres.WithPassword("docvault"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	dbURL, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if err := runMigrations(dbURL); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	db, err := gorm.Open(
		gormpostgres.New(gormpostgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	dataKey, err := base64.StdEncoding.DecodeString("6QrDHLBWYXieY5FM5DlRWRXX/wA8hefCuwMciHQ5ms0=")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	vault, err := enclave.NewVault(dataKey)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	docLedger := ledger.New(ledgergorm.NewStore(db), vault, identity.ID{0x1d})

	cfg, err := config.Load()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	srv := server.NewServer(vault, docLedger, cfg, db, "", "0")
	endpoints.RegisterAll(srv)

	return &TestContext{
		DB:          db,
		Container:   pgContainer,
		DatabaseURL: dbURL,
		DataKey:     dataKey,
		Vault:       vault,
		Ledger:      docLedger,
		Server:      srv,
	}, nil
}

// Cleanup tears down the container.
func (tc *TestContext) Cleanup(ctx context.Context) {
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

func runMigrations(dbURL string) error {
	migrationsFS, err := fs.Sub(migrations.Migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to get embedded migrations: %w", err)
	}

	d, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("failed to create iofs driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
