package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/asakaida/unicatalog/internal/handlers"
	"github.com/asakaida/unicatalog/internal/infrastructure/database"
	"github.com/asakaida/unicatalog/internal/infrastructure/logging"
	"github.com/asakaida/unicatalog/internal/infrastructure/metrics"
	"github.com/asakaida/unicatalog/internal/repositories/postgres"
	"github.com/asakaida/unicatalog/internal/retry"
	"github.com/asakaida/unicatalog/internal/services"
	"github.com/asakaida/unicatalog/internal/services/filter"
	"github.com/asakaida/unicatalog/pkg/cache/memorycache"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const bufSize = 1024 * 1024

var (
	containerOnce sync.Once
	connStr       string
	containerErr  error
)

// E2ETestServer is an in-memory catalog server backed by a PostgreSQL container
type E2ETestServer struct {
	Server   *grpc.Server
	Client   *handlers.CatalogClient
	Conn     *grpc.ClientConn
	DB       *sql.DB
	Listener *bufconn.Listener
	Metrics  *metrics.Collector
}

// SetupE2ETest sets up an E2E test environment
func SetupE2ETest(t *testing.T) *E2ETestServer {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping E2E test in short mode (requires Docker)")
	}

	containerOnce.Do(func() {
		connStr, containerErr = startPostgres()
	})
	if containerErr != nil {
		t.Skipf("PostgreSQL test container unavailable: %v", containerErr)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	pg := &database.Postgres{DB: db}

	projectRoot, err := findProjectRoot()
	if err != nil {
		t.Fatalf("failed to find project root: %v", err)
	}
	migrationsPath := filepath.Join(projectRoot, "internal/infrastructure/database/migrations/postgres")
	if err := pg.RunMigrations(migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupDatabase(t, db)

	attrCache, err := memorycache.New(&memorycache.Config{
		MaxSizeBytes:  1024 * 1024,
		DefaultTTL:    time.Minute,
		EnableMetrics: true,
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	attributeRepo := postgres.NewPostgresAttributeRepository(db, &postgres.AttributeRepositoryConfig{
		Cache:    attrCache,
		CacheTTL: time.Minute,
	})
	entityRepo := postgres.NewPostgresEntityRepository(db, attributeRepo)

	engine, err := filter.NewEngine()
	if err != nil {
		t.Fatalf("failed to create filter engine: %v", err)
	}

	logger := zaptest.NewLogger(t)
	catalog := services.NewCatalogService(entityRepo, attributeRepo, engine,
		services.WithRetry(retry.DefaultConfig()),
		services.WithLogger(logger),
	)

	collector := metrics.NewCollector()
	collector.SetCache(attrCache)
	exporter := metrics.NewPrometheusExporter(collector, prometheus.NewRegistry())

	listener := bufconn.Listen(bufSize)
	server := grpc.NewServer(grpc.ChainUnaryInterceptor(
		metrics.UnaryServerInterceptor(collector, exporter),
		logging.UnaryServerInterceptor(logger),
	))
	handlers.RegisterCatalogServer(server, handlers.NewCatalogHandler(catalog))

	go func() {
		_ = server.Serve(listener)
	}()

	bufDialer := func(context.Context, string) (net.Conn, error) {
		return listener.Dial()
	}
	conn, err := grpc.NewClient(
		"passthrough://bufconn",
		grpc.WithContextDialer(bufDialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to create client connection: %v", err)
	}

	return &E2ETestServer{
		Server:   server,
		Client:   handlers.NewCatalogClient(conn),
		Conn:     conn,
		DB:       db,
		Listener: listener,
		Metrics:  collector,
	}
}

// Teardown cleans up the E2E test environment
func (e *E2ETestServer) Teardown(t *testing.T) {
	t.Helper()

	if e.Conn != nil {
		e.Conn.Close()
	}
	if e.Server != nil {
		e.Server.Stop()
	}
	if e.Listener != nil {
		e.Listener.Close()
	}
	if e.DB != nil {
		cleanupDatabase(t, e.DB)
		e.DB.Close()
	}
}

// Call invokes method with a request built from fields
func (e *E2ETestServer) Call(ctx context.Context, t *testing.T, method string, fields map[string]interface{}) (*structpb.Struct, error) {
	t.Helper()

	req, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("failed to build %s request: %v", method, err)
	}
	return e.Client.Call(ctx, method, req)
}

// MustCall is Call that fails the test on error
func (e *E2ETestServer) MustCall(ctx context.Context, t *testing.T, method string, fields map[string]interface{}) *structpb.Struct {
	t.Helper()

	resp, err := e.Call(ctx, t, method, fields)
	if err != nil {
		t.Fatalf("%s failed: %v", method, err)
	}
	return resp
}

// EntityList extracts the "entities" list of a list response
func EntityList(resp *structpb.Struct) []*structpb.Struct {
	var out []*structpb.Struct
	for _, v := range resp.GetFields()["entities"].GetListValue().GetValues() {
		out = append(out, v.GetStructValue())
	}
	return out
}

func startPostgres() (string, error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("unicatalog_e2e"),
		tcpostgres.WithUsername("unicatalog"),
		tcpostgres.WithPassword("unicatalog"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}
	return container.ConnectionString(ctx, "sslmode=disable")
}

// cleanupDatabase removes all data from test database
func cleanupDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "TRUNCATE eav_values, eav_entities, eav_attributes RESTART IDENTITY CASCADE"); err != nil {
		t.Logf("warning: failed to clean up tables: %v", err)
	}
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
