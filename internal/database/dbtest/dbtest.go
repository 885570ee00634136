// Package dbtest gives tests a migrated PostgreSQL database of their own.
//
// An embedded server is started on first use and shared by the package's
// tests. Setting TEST_DB_HOST points the helpers at an existing server
// instead. Tests are skipped when no server can be reached.
package dbtest

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/repository"
)

var (
	once       sync.Once
	server     *embeddedpostgres.EmbeddedPostgres
	runtimeDir string
	base       *config.Config
	startErr   error
)

// Main runs the tests and stops the embedded server afterwards. Use it from
// TestMain: os.Exit(dbtest.Main(m)).
func Main(m *testing.M) int {
	code := m.Run()
	if server != nil {
		if err := server.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "stop embedded postgres: %v\n", err)
		}
	}
	if runtimeDir != "" {
		os.RemoveAll(runtimeDir)
	}
	return code
}

// Store returns a GormStore on a fresh database.
func Store(t *testing.T) repository.Store {
	t.Helper()
	return repository.NewStore(New(t))
}

// New creates an empty database, applies the migrations and opens it. The
// database is dropped when the test ends.
func New(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres tests are skipped in short mode")
	}
	once.Do(func() { base, startErr = start() })
	if startErr != nil {
		t.Skipf("postgres unavailable: %v", startErr)
	}

	log := quiet()
	admin, err := database.Open(base, log)
	require.NoError(t, err)

	name := "taskboard_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	require.NoError(t, admin.Exec("CREATE DATABASE "+name).Error)

	cfg := *base
	cfg.DBName = name
	require.NoError(t, database.MigrateUp(&cfg, log))
	db, err := database.Open(&cfg, log)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		if err := admin.Exec("DROP DATABASE IF EXISTS " + name + " WITH (FORCE)").Error; err != nil {
			t.Logf("drop %s: %v", name, err)
		}
		if sqlDB, err := admin.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func start() (*config.Config, error) {
	if host := os.Getenv("TEST_DB_HOST"); host != "" {
		return &config.Config{
			DBHost:     host,
			DBPort:     getEnv("TEST_DB_PORT", "5432"),
			DBUser:     getEnv("TEST_DB_USER", "postgres"),
			DBPassword: getEnv("TEST_DB_PASSWORD", "postgres"),
			DBName:     getEnv("TEST_DB_NAME", "postgres"),
		}, nil
	}

	port, err := freePort()
	if err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp("", "taskboard-pg-")
	if err != nil {
		return nil, err
	}
	runtimeDir = dir

	cfg := &config.Config{
		DBHost:     "localhost",
		DBPort:     strconv.Itoa(port),
		DBUser:     "postgres",
		DBPassword: "postgres",
		DBName:     "postgres",
	}
	pg := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Port(uint32(port)).
		Username(cfg.DBUser).
		Password(cfg.DBPassword).
		Database(cfg.DBName).
		RuntimePath(filepath.Join(dir, "runtime")).
		Logger(io.Discard))
	if err := pg.Start(); err != nil {
		return nil, fmt.Errorf("start embedded postgres: %w", err)
	}
	server = pg
	return cfg, nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func quiet() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
