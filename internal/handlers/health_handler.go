package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler keeps the gRPC health status of the server and the catalog
// service in line with the database health check.
type HealthHandler struct {
	server   *health.Server
	pinger   Pinger
	interval time.Duration
	logger   *zap.Logger

	serving bool
}

// NewHealthHandler creates a health handler polling pinger every interval
func NewHealthHandler(pinger Pinger, interval time.Duration, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	h := &HealthHandler{
		server:   health.NewServer(),
		pinger:   pinger,
		interval: interval,
		logger:   logger,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Server returns the health service to register with grpc.Server
func (h *HealthHandler) Server() *health.Server {
	return h.server
}

// Check runs one health probe and updates the serving status.
// It must not be called concurrently with Run.
func (h *HealthHandler) Check(ctx context.Context) error {
	err := h.pinger.HealthCheck(ctx)
	if err != nil {
		if h.serving {
			h.logger.Warn("database unhealthy, reporting NOT_SERVING", zap.Error(err))
		}
		h.serving = false
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return err
	}

	if !h.serving {
		h.logger.Info("database healthy, reporting SERVING")
	}
	h.serving = true
	h.set(healthpb.HealthCheckResponse_SERVING)
	return nil
}

// Run probes until ctx is done, then marks everything NOT_SERVING
func (h *HealthHandler) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	_ = h.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			_ = h.Check(ctx)
		}
	}
}

func (h *HealthHandler) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(CatalogServiceName, status)
}
