package grpc

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping() error
}

// BrokerStatus reports whether the event broker connection is usable.
type BrokerStatus interface {
	IsHealthy() bool
}

var errBrokerUnavailable = errors.New("event broker connection is closed")

// HealthServer implements the gRPC health checking protocol
type HealthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	db        Pinger
	publisher BrokerStatus
	log       *zap.Logger
}

// NewHealthServer creates a new health check server
func NewHealthServer(database Pinger, publisher BrokerStatus, log *zap.Logger) *HealthServer {
	return &HealthServer{
		db:        database,
		publisher: publisher,
		log:       log,
	}
}

// Healthy returns nil when the database and the broker are reachable.
func (h *HealthServer) Healthy() error {
	if err := h.db.Ping(); err != nil {
		h.log.Error("Database health check failed", zap.Error(err))
		return err
	}
	if !h.publisher.IsHealthy() {
		h.log.Error("RabbitMQ health check failed")
		return errBrokerUnavailable
	}
	return nil
}

// Check implements the health check
func (h *HealthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	return &grpc_health_v1.HealthCheckResponse{Status: h.status()}, nil
}

// Watch sends the current status once and returns
func (h *HealthServer) Watch(req *grpc_health_v1.HealthCheckRequest, server grpc_health_v1.Health_WatchServer) error {
	return server.Send(&grpc_health_v1.HealthCheckResponse{Status: h.status()})
}

func (h *HealthServer) status() grpc_health_v1.HealthCheckResponse_ServingStatus {
	if h.Healthy() != nil {
		return grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	return grpc_health_v1.HealthCheckResponse_SERVING
}
