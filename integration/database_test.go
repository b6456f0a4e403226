//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDeeprepoWithMySQL tests the deeprepo CLI with a MySQL backend.
func TestDeeprepoWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "deeprepo",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/deeprepo?parseTime=true", host, port.Port())

	// Set environment variables
	_ = os.Setenv("DEEPREPO_CACHE_BACKEND", "mysql")
	_ = os.Setenv("DEEPREPO_CACHE_DB_CONNECT", connStr)
	_ = os.Setenv("DEEPREPO_HISTORY_BACKEND", "mysql")
	_ = os.Setenv("DEEPREPO_HISTORY_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("DEEPREPO_CACHE_BACKEND") }()
	defer func() { _ = os.Unsetenv("DEEPREPO_CACHE_DB_CONNECT") }()
	defer func() { _ = os.Unsetenv("DEEPREPO_HISTORY_BACKEND") }()
	defer func() { _ = os.Unsetenv("DEEPREPO_HISTORY_DB_CONNECT") }()

	runBackendScenario(t)
}

// TestDeeprepoWithPostgres tests the deeprepo CLI with a PostgreSQL backend.
func TestDeeprepoWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	// Set environment variables
	_ = os.Setenv("DEEPREPO_CACHE_BACKEND", "postgresql")
	_ = os.Setenv("DEEPREPO_CACHE_DB_CONNECT", connStr)
	_ = os.Setenv("DEEPREPO_HISTORY_BACKEND", "postgresql")
	_ = os.Setenv("DEEPREPO_HISTORY_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("DEEPREPO_CACHE_BACKEND") }()
	defer func() { _ = os.Unsetenv("DEEPREPO_CACHE_DB_CONNECT") }()
	defer func() { _ = os.Unsetenv("DEEPREPO_HISTORY_BACKEND") }()
	defer func() { _ = os.Unsetenv("DEEPREPO_HISTORY_DB_CONNECT") }()

	runBackendScenario(t)
}

// runBackendScenario exercises the cache, analysis, and history paths against
// whichever backend the environment selects.
func runBackendScenario(t *testing.T) {
	feedPath, err := writeFeedFixture(t.TempDir())
	require.NoError(t, err)

	// Run deeprepo cache clear
	err = runDeeprepoCommand(t, "cache", "clear")
	require.NoError(t, err)

	// Run deeprepo history clear
	err = runDeeprepoCommand(t, "history", "clear")
	require.NoError(t, err)

	// Run deeprepo boomerangs on the fixture feed
	err = runDeeprepoCommand(t, "boomerangs", "--ci-results", feedPath, "--limit", "5")
	require.NoError(t, err)

	// Run deeprepo cache status
	err = runDeeprepoCommand(t, "cache", "status")
	require.NoError(t, err)

	// Run deeprepo history status
	err = runDeeprepoCommand(t, "history", "status")
	require.NoError(t, err)
}

func runDeeprepoCommand(t *testing.T, args ...string) error {
	deeprepoPath := getDeeprepoBinary()
	cmd := exec.Command(deeprepoPath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return err
	}
	return nil
}
