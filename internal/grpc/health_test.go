package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/bookstore/library/internal/db"
	"github.com/bookstore/library/internal/events"
	"github.com/bookstore/library/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
	gormlogger "gorm.io/gorm/logger"
)

const bufSize = 1024 * 1024

type failingPinger struct{}

func (failingPinger) Ping() error { return errors.New("connection refused") }

type closedBroker struct{}

func (closedBroker) IsHealthy() bool { return false }

func setupHealthClient(t *testing.T, health *HealthServer) grpc_health_v1.HealthClient {
	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(s, health)

	go func() {
		if err := s.Serve(lis); err != nil {
			t.Logf("Server exited with error: %v", err)
		}
	}()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return grpc_health_v1.NewHealthClient(conn)
}

func TestHealthServing(t *testing.T) {
	database, err := db.Connect(db.DriverSQLite, ":memory:", gormlogger.Silent)
	require.NoError(t, err)
	defer database.Close()

	log := logger.NewLogger("test", "info")
	client := setupHealthClient(t, NewHealthServer(database, events.NopPublisher{}, log))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
}

func TestHealthNotServing(t *testing.T) {
	log := logger.NewLogger("test", "info")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := setupHealthClient(t, NewHealthServer(failingPinger{}, events.NopPublisher{}, log))
	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)

	database, err := db.Connect(db.DriverSQLite, ":memory:", gormlogger.Silent)
	require.NoError(t, err)
	defer database.Close()

	health := NewHealthServer(database, closedBroker{}, log)
	assert.ErrorIs(t, health.Healthy(), errBrokerUnavailable)

	client = setupHealthClient(t, health)
	stream, err := client.Watch(ctx, &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	resp, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
}
