//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgUser     = "test"
	pgPassword = "testpass"
)

// endpoint is a container port as reachable from the test process.
type endpoint struct {
	host string
	port nat.Port
}

func (e endpoint) addr() string { return fmt.Sprintf("%s:%s", e.host, e.port.Port()) }

// sharedContainer starts its container on first use and reuses it for every
// suite in the process.
type sharedContainer struct {
	once      sync.Once
	container testcontainers.Container
	err       error
}

func (s *sharedContainer) endpoint(t *testing.T, req testcontainers.ContainerRequest, port string, startup time.Duration) endpoint {
	t.Helper()

	s.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), startup)
		defer cancel()
		s.container, s.err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
	})
	require.NoError(t, s.err, "%s コンテナの起動に失敗", req.Image)

	ctx := context.Background()
	mapped, err := s.container.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	host, err := s.container.Host(ctx)
	require.NoError(t, err)
	return endpoint{host: host, port: mapped}
}

var (
	postgresC sharedContainer
	redisC    sharedContainer
)

// postgresRequest trades durability for speed: data lives on tmpfs and every
// fsync is off.
func postgresRequest() testcontainers.ContainerRequest {
	settings := []string{
		"fsync=off",
		"full_page_writes=off",
		"synchronous_commit=off",
		"shared_buffers=256MB",
		"max_connections=200",
		"log_statement=none",
		"log_lock_waits=off",
	}
	cmd := []string{"postgres"}
	for _, s := range settings {
		cmd = append(cmd, "-c", s)
	}

	return testcontainers.ContainerRequest{
		Image:        "postgres:17",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     pgUser,
			"POSTGRES_PASSWORD": pgPassword,
			"POSTGRES_DB":       "postgres",
		},
		Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw,size=512m"},
		Cmd:   cmd,
		WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
			return adminDSN(endpoint{host: host, port: port})
		}).WithStartupTimeout(60 * time.Second),
		Labels: map[string]string{"purpose": "hotel-booking-e2e"},
	}
}

func redisRequest() testcontainers.ContainerRequest {
	return testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		Cmd:          []string{"redis-server", "--save", "", "--appendonly", "no"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		Labels:       map[string]string{"purpose": "hotel-booking-e2e"},
	}
}

func adminDSN(ep endpoint) string {
	return fmt.Sprintf("postgres://%s:%s@%s/postgres?sslmode=disable", pgUser, pgPassword, ep.addr())
}

func startContainers(t *testing.T) (pg, rd endpoint) {
	t.Helper()
	pg = postgresC.endpoint(t, postgresRequest(), "5432/tcp", 3*time.Minute)
	rd = redisC.endpoint(t, redisRequest(), "6379/tcp", 2*time.Minute)
	slog.Debug("e2e containers ready", "postgres", pg.addr(), "redis", rd.addr())
	return pg, rd
}
