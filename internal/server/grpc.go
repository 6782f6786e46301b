package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	healthhandler "docverify-portal/internal/health/handler"
)

// Deps holds the gRPC service implementations.
type Deps struct {
	// Health answers grpc.health.v1. If nil, a server without readiness checks is registered.
	Health *healthhandler.Server
}

// RegisterServices registers all gRPC services with the given server.
//
// Service → handler mapping:
//   - grpc.health.v1.Health → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	h := deps.Health
	if h == nil {
		h = healthhandler.NewServer(nil)
	}
	healthpb.RegisterHealthServer(s, h)
}

// NewGRPCServer returns a gRPC server instrumented with otelgrpc and with
// every service registered. Extra options are appended.
func NewGRPCServer(deps Deps, opts ...grpc.ServerOption) *grpc.Server {
	all := append([]grpc.ServerOption{grpc.StatsHandler(otelgrpc.NewServerHandler())}, opts...)
	s := grpc.NewServer(all...)
	RegisterServices(s, deps)
	return s
}
