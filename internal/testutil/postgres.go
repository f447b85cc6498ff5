// Package testutil provides test helpers: a throwaway PostgreSQL save
// database and a Telnet client that plays the game over TCP.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/idlegather/internal/config"
	"github.com/cory-johannsen/idlegather/internal/storage/postgres"
)

const (
	postgresImage = "postgres:16-alpine"
	testDatabase  = "idle_test"
)

// PostgresContainer is a disposable save database built from the game's
// default database settings.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	Config    config.DatabaseConfig
}

// databaseDefaults returns the configured database settings with the
// database renamed so tests never share a name with a development save store.
func databaseDefaults(t *testing.T) config.DatabaseConfig {
	t.Helper()
	cfg, err := config.LoadFromViper(config.Defaults())
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	db := cfg.Database
	db.Name = testDatabase
	db.SSLMode = "disable"
	return db
}

// NewPostgresContainer starts PostgreSQL with the game's default user and
// password and connects a pool to it. Both are released when the test ends.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	start := time.Now()
	db := databaseDefaults(t)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     db.User,
				"POSTGRES_PASSWORD": db.Password,
				"POSTGRES_DB":       db.Name,
			},
			// The entrypoint restarts the server once after initdb.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting %s: %v [%s]", postgresImage, err, time.Since(start))
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	if db.Host, err = container.Host(ctx); err != nil {
		t.Fatalf("resolving container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("resolving mapped port: %v", err)
	}
	db.Port = port.Int()

	pool, err := postgres.NewPool(ctx, db)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", db.Name, err, time.Since(start))
	}
	t.Cleanup(pool.Close)
	t.Logf("postgres %s ready on %s:%d [%s]", db.Name, db.Host, db.Port, time.Since(start))

	return &PostgresContainer{container: container, Pool: pool, Config: db}
}

// ApplyMigrations runs the embedded schema migrations against the container.
//
// Postcondition: The players, player_skills, and player_inventory tables exist.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	start := time.Now()
	if err := postgres.Migrate(pc.Config.DSN()); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}

// NewPool returns a migrated save database for repository tests. The test is
// skipped under -short since it needs Docker.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests skipped in -short mode")
	}
	pc := NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.Pool.DB()
}
