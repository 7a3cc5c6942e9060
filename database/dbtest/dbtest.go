// Package dbtest starts a disposable postgres for tests that need real storage.
package dbtest

import (
	"testing"
	"time"

	"github.com/irsalhamdi/course-platform/database"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	image   = "postgres"
	tag     = "15-alpine"
	dbName  = "courses"
	dbPass  = "postgres"
	timeout = 2 * time.Minute
)

// New runs a migrated postgres container for the duration of the test. The
// test is skipped when no docker daemon is reachable.
func New(t *testing.T) *sqlx.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	pool.MaxWait = timeout

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: image,
		Tag:        tag,
		Env: []string{
			"POSTGRES_PASSWORD=" + dbPass,
			"POSTGRES_DB=" + dbName,
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	_ = resource.Expire(uint(timeout.Seconds()))

	cfg := database.Config{
		User:         "postgres",
		Password:     dbPass,
		Host:         resource.GetHostPort("5432/tcp"),
		Name:         dbName,
		MaxIdleConns: 2,
		MaxOpenConns: 10,
		DisableTLS:   true,
	}

	var db *sqlx.DB
	err = pool.Retry(func() error {
		var err error
		db, err = database.Open(cfg)
		if err != nil {
			return err
		}
		return db.Ping()
	})
	if err != nil {
		_ = pool.Purge(resource)
		t.Fatalf("connecting to postgres: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		if err := pool.Purge(resource); err != nil {
			t.Logf("purging postgres container: %v", err)
		}
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	return db
}
