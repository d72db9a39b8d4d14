// Package health поднимает gRPC health-сервер (grpc.health.v1) и держит
// его статус в соответствии с доступностью PostgreSQL.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/license-manager/internal/lib/sl"
)

// ServiceName имя сервиса в health-протоколе. Пустое имя означает весь сервер.
const ServiceName = "license-manager.LicenseAPI"

const probeTimeout = 2 * time.Second

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server gRPC-сервер с единственным сервисом health.
type Server struct {
	log      *slog.Logger
	grpc     *grpc.Server
	health   *health.Server
	db       Pinger
	interval time.Duration
}

// New создаёт Server. До первой проверки статус NOT_SERVING.
func New(log *slog.Logger, db Pinger, interval time.Duration) *Server {
	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)

	s := &Server{
		log:      log,
		grpc:     grpcServer,
		health:   healthSrv,
		db:       db,
		interval: interval,
	}
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Serve принимает соединения на lis до вызова Stop.
func (s *Server) Serve(lis net.Listener) error {
	const op = "health.Serve"
	if err := s.grpc.Serve(lis); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RunProber проверяет хранилище сразу и затем каждые interval до отмены ctx.
func (s *Server) RunProber(ctx context.Context) {
	s.Probe(ctx)
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Probe выполняет одну проверку и выставляет статус.
func (s *Server) Probe(ctx context.Context) {
	const op = "health.Probe"
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		s.log.Warn("storage ping failed", sl.Op(op), sl.Err(err))
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

// Stop переводит сервер в NOT_SERVING и дожидается завершения активных вызовов.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
