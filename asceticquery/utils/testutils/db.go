package testutils

import (
	"context"
	"os"
	"testing"
	"time"

	pgsession "github.com/krew-solutions/ascetic-query-go/asceticquery/session/pg"
)

// PgDSN builds the test database DSN from DB_* variables.
func PgDSN() string {
	var dbUsername string = getEnv("DB_USERNAME", "devel")
	var dbPassword string = getEnv("DB_PASSWORD", "devel")
	var dbHost string = getEnv("DB_HOST", "localhost")
	var dbPort string = getEnv("DB_PORT", "5432")
	var dbBasename string = getEnv("DB_DATABASE", "devel_grade")

	return "postgres://" + dbUsername + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbBasename
}

// NewPgSessionPool connects to the test database or skips the test when it
// is not reachable.
func NewPgSessionPool(t *testing.T) *pgsession.SessionPool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	pool, err := pgsession.Connect(ctx, PgDSN())
	if err != nil {
		t.Skipf("PostgreSQL is not available: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}
