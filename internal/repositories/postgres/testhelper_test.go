package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/asakaida/unicatalog/internal/infrastructure/database"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	testImage          = "postgres:16-alpine"
	testMigrationsPath = "../../../internal/infrastructure/database/migrations/postgres"
)

var (
	sharedContainer *tcpostgres.PostgresContainer
	sharedConnStr   string
	sharedOnce      sync.Once
	sharedErr       error
)

// SetupTestDB returns a connection to a migrated PostgreSQL database.
// The container is started once per test run; tests are skipped in -short
// mode or when no container runtime is available.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedOnce.Do(func() {
		sharedConnStr, sharedErr = startContainer()
	})
	if sharedErr != nil {
		t.Skipf("PostgreSQL test container unavailable: %v", sharedErr)
	}

	db, err := sql.Open("postgres", sharedConnStr)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	pg := &database.Postgres{DB: db}
	if err := pg.RunMigrations(testMigrationsPath); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	if _, err := db.Exec("TRUNCATE eav_values, eav_entities, eav_attributes RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("Failed to reset tables: %v", err)
	}

	return db
}

func startContainer() (string, error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, testImage,
		tcpostgres.WithDatabase("unicatalog_test"),
		tcpostgres.WithUsername("unicatalog"),
		tcpostgres.WithPassword("unicatalog"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}
	sharedContainer = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return "", fmt.Errorf("failed to get connection string: %w", err)
	}

	// Verify connection with retry
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return "", fmt.Errorf("failed to ping database: %w", err)
	}

	return connStr, nil
}

// CleanupTestDB removes all catalog data and closes the connection
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec("TRUNCATE eav_values, eav_entities, eav_attributes RESTART IDENTITY CASCADE")
	if err != nil {
		t.Logf("Warning: Failed to clean up tables: %v", err)
	}

	if err := db.Close(); err != nil {
		t.Logf("Warning: Failed to close database: %v", err)
	}
}
