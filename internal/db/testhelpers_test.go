package db

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testPool is the shared pool; nil when Docker is unavailable or -short is set.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp"),
		},
		Started: true,
	})
	if err != nil {
		log.Printf("postgres container unavailable, skipping integration tests: %v", err)
		os.Exit(m.Run())
	}

	code := func() int {
		defer func() {
			_ = container.Terminate(ctx)
		}()

		host, err := container.Host(ctx)
		if err != nil {
			log.Fatalf("getting container host: %v", err)
		}
		port, err := container.MappedPort(ctx, "5432")
		if err != nil {
			log.Fatalf("getting container port: %v", err)
		}
		dsn := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

		d, err := New(ctx, dsn)
		if err != nil {
			log.Fatalf("connecting to test db: %v", err)
		}
		defer d.Close()

		if err := RunMigrations(ctx, d.Pool()); err != nil {
			log.Fatalf("running migrations: %v", err)
		}

		testPool = d.Pool()
		return m.Run()
	}()
	os.Exit(code)
}

// setupTestDB returns the shared pool with an empty progress table.
func setupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	if testPool == nil {
		tb.Skip("postgres is not available")
	}

	if _, err := testPool.Exec(context.Background(), "TRUNCATE progress"); err != nil {
		tb.Fatalf("truncating progress: %v", err)
	}
	return testPool
}
