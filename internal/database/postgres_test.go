package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Tomlord1122/taskapi/internal/config"
	"github.com/Tomlord1122/taskapi/internal/domain"
)

func startPostgres(t *testing.T) config.DBConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	const (
		dbName = "database"
		dbUser = "user"
		dbPwd  = "password"
	)

	container, err := tcpostgres.Run(
		ctx,
		"docker.io/postgres:16-alpine",
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername(dbUser),
		tcpostgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return config.DBConfig{
		Driver:   config.DriverPostgres,
		Host:     host,
		Port:     port.Port(),
		Username: dbUser,
		Password: dbPwd,
		Database: dbName,
		LogLevel: "silent",
	}
}

func TestPostgres_MigrateAndHealth(t *testing.T) {
	cfg := startPostgres(t)

	srv, err := New(cfg)
	require.NoError(t, err)
	defer srv.Close()

	require.NoError(t, srv.Migrate(context.Background()))
	assert.Equal(t, "up", srv.Health()["status"])

	db := srv.GetDB()
	require.NoError(t, db.Create(&domain.User{Username: "alice", PasswordHash: "x"}).Error)

	// TranslateError maps the unique violation to gorm.ErrDuplicatedKey.
	err = db.Create(&domain.User{Username: "alice", PasswordHash: "y"}).Error
	require.Error(t, err)

	// Foreign key on todos.user_id.
	err = db.Create(&domain.Todo{Title: "orphan", UserID: 9999}).Error
	require.Error(t, err)
}
