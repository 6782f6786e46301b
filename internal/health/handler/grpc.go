package handler

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the grpc.health.v1 service name reported next to the overall ("") status.
const ServiceName = "docverify.portal"

// PolicyChecker is used for readiness (e.g. the OPA route guard).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server implements grpc.health.v1 for readiness and liveness. The portal is
// SERVING while its route policy evaluates.
type Server struct {
	*health.Server
	policy PolicyChecker
}

// NewServer returns a health server. policy may be nil, in which case the policy check is skipped.
func NewServer(policy PolicyChecker) *Server {
	return &Server{Server: health.NewServer(), policy: policy}
}

// Check refreshes the readiness status before answering, so a probe always sees a current result.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	s.Refresh(ctx)
	return s.Server.Check(ctx, req)
}

// Refresh runs the readiness checks and publishes the result to Check and Watch callers.
func (s *Server) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if s.policy != nil {
		if err := s.policy.HealthCheck(ctx); err != nil {
			log.Printf("health: policy check failed: %v", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.SetServingStatus("", status)
	s.SetServingStatus(ServiceName, status)
	return status
}

// Run refreshes the status every interval until ctx is done.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Refresh(ctx)
		}
	}
}
