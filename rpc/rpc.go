package rpc

import (
	"errors"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/wfunc/neonwhisper/logger"
)

// ServiceName is the name reported by the health service alongside "".
const ServiceName = "neonwhisper.Game"

// Server exposes grpc.health.v1 and reflection for probes and tooling.
type Server struct {
	listener net.Listener
	address  string
	grpc     *grpc.Server
	health   *health.Server
}

// NewServer listens on addr. Both services start out NOT_SERVING until Start.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return newServer(listener), nil
}

func newServer(listener net.Listener) *Server {
	s := &Server{
		listener: listener,
		address:  listener.Addr().String(),
		grpc:     grpc.NewServer(),
		health:   health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	s.SetServing(false)
	return s
}

// SetServing flips the reported status of the game service and the server as a whole.
func (s *Server) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	logger.Log.Infof("RPC server listening on %s", s.address)
	s.SetServing(true)
	if err := s.grpc.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	logger.Log.Info("RPC server stopped.")
	return nil
}

// Stop marks the server as shutting down and drains in-flight calls.
func (s *Server) Stop() {
	logger.Log.Info("Stopping RPC server.")
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
