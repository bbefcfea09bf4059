package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/helixir/scholarly-search-proxy/internal/papersources"
	httpserver "github.com/helixir/scholarly-search-proxy/internal/server/http"
)

// shutdown stops every server within timeout. In-flight searches are
// allowed to finish; their upstream calls keep their own deadline.
func shutdown(
	timeout time.Duration,
	httpSrv *httpserver.Server,
	metricsServer *http.Server,
	grpcServer *grpc.Server,
	healthServer *health.Server,
	logger zerolog.Logger,
) {
	logger.Info().Msg("shutting down scholarly-search-proxy")

	// Mark health as not serving.
	healthServer.SetServingStatus(healthService, healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	// Gracefully stop gRPC server with timeout.
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		logger.Info().Msg("gRPC server stopped gracefully")
	case <-shutdownCtx.Done():
		logger.Warn().Msg("gRPC server forced shutdown due to timeout")
		grpcServer.Stop()
	}
}

func providerNames(registry *papersources.Registry) []string {
	providers := registry.Providers()
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.String()
	}
	return names
}
