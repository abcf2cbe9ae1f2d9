// Package dbtest opens a migrated Postgres database for integration tests.
package dbtest

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	internaldb "ruangbelajar/internal/db"
)

const EnvIntegration = "RUANGBELAJAR_INTEGRATION"

// Open skips the test unless RUANGBELAJAR_INTEGRATION=1. It connects to
// RUANGBELAJAR_TEST_DSN when set, otherwise it starts a throwaway
// postgres container. Migrations are applied before returning.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	if os.Getenv(EnvIntegration) != "1" {
		t.Skip("set " + EnvIntegration + "=1 to run integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dsn := strings.TrimSpace(os.Getenv("RUANGBELAJAR_TEST_DSN"))
	if dsn == "" {
		dsn = startContainer(ctx, t)
	}

	conn, err := internaldb.Open(ctx, dsn, internaldb.PoolConfig{MaxOpenConns: 10})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if _, err := internaldb.Migrate(ctx, conn); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

func startContainer(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("ruangbelajar_test"),
		postgres.WithUsername("ruangbelajar"),
		postgres.WithPassword("ruangbelajar"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}
	return dsn
}

// Suffix returns a per-test unique token for ids so tests sharing one
// database do not collide.
func Suffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
