package prometheus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type PrometheusServerConfig struct {
	Port int
}

// PrometheusServer exposes a client's registry on /metrics.
type PrometheusServer struct {
	config *PrometheusServerConfig
	client *PrometheusMetricsClient
	logger *zap.Logger
	server *http.Server
}

func NewPrometheusServer(config *PrometheusServerConfig, client *PrometheusMetricsClient, l *zap.Logger) *PrometheusServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", client.Handler())
	return &PrometheusServer{
		config: config,
		client: client,
		logger: l,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start begins serving in the background and returns once the port is bound.
// Sending on stop shuts the server down.
func (ps *PrometheusServer) Start(stop chan bool) error {
	listener, err := net.Listen("tcp", ps.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", ps.server.Addr, err)
	}
	ps.logger.Sugar().Infow("Starting prometheus server", zap.String("addr", listener.Addr().String()))

	go func() {
		if err := ps.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ps.logger.Sugar().Errorw("Prometheus server stopped", zap.Error(err))
		}
	}()
	go func() {
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ps.server.Shutdown(ctx); err != nil {
			ps.logger.Sugar().Errorw("Failed to shut down prometheus server", zap.Error(err))
		}
	}()
	return nil
}
