// Package grpc provides a gRPC controller exposing the standard health
// service and server reflection for the profile service.
package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/chrissnell/tourprofile/internal/engine"
	"github.com/chrissnell/tourprofile/internal/log"
	"github.com/chrissnell/tourprofile/internal/profile"
	"github.com/chrissnell/tourprofile/pkg/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-checked service name
const ServiceName = "tourprofile.v1.Profiles"

// Controller represents the gRPC controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	Server     *grpc.Server
	GRPCConfig *config.GRPCData
	Health     *health.Server
	engine     *engine.Engine
}

// NewController creates a new gRPC controller instance
func NewController(ctx context.Context, wg *sync.WaitGroup, eng *engine.Engine, grpcConfig config.GRPCData) (*Controller, error) {
	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		GRPCConfig: &grpcConfig,
		Health:     health.NewServer(),
		engine:     eng,
	}

	// Create gRPC server with optional TLS
	if grpcConfig.Cert != "" && grpcConfig.Key != "" {
		creds, err := credentials.NewServerTLSFromFile(grpcConfig.Cert, grpcConfig.Key)
		if err != nil {
			return nil, fmt.Errorf("could not create TLS server from keypair: %v", err)
		}
		ctrl.Server = grpc.NewServer(grpc.Creds(creds))
	} else {
		ctrl.Server = grpc.NewServer()
	}

	healthpb.RegisterHealthServer(ctrl.Server, ctrl.Health)
	reflection.Register(ctrl.Server)

	status := healthpb.HealthCheckResponse_NOT_SERVING
	if err := ctrl.selfTest(); err != nil {
		log.Warnf("gRPC controller: profile engine not ready: %v", err)
	} else {
		status = healthpb.HealthCheckResponse_SERVING
	}
	ctrl.Health.SetServingStatus("", status)
	ctrl.Health.SetServingStatus(ServiceName, status)

	return ctrl, nil
}

// readinessRoute holds exactly one climb: 3 km gaining 150 m
var readinessRoute = profile.ElevationData{
	RouteName: "readiness",
	Samples: []profile.Sample{
		{DistanceKM: 0, ElevationM: 0, GradientPct: 0},
		{DistanceKM: 1, ElevationM: 50, GradientPct: 5},
		{DistanceKM: 2, ElevationM: 100, GradientPct: 5},
		{DistanceKM: 3, ElevationM: 150, GradientPct: 5},
		{DistanceKM: 4, ElevationM: 150, GradientPct: 0},
	},
}

// selfTest runs the engine over a known route and checks the detected climb
func (c *Controller) selfTest() error {
	if c.engine == nil {
		return fmt.Errorf("no engine configured")
	}
	data := readinessRoute
	a, err := c.engine.Analyze(&data)
	if err != nil {
		return fmt.Errorf("analyse readiness route: %w", err)
	}
	if len(a.Climbs) != 1 {
		return fmt.Errorf("readiness route: expected 1 climb, detected %d", len(a.Climbs))
	}
	return nil
}

// StartController starts the gRPC controller
func (c *Controller) StartController() error {
	log.Info("Starting gRPC controller...")

	listenAddr := fmt.Sprintf("%s:%v", c.GRPCConfig.ListenAddr, c.GRPCConfig.Port)
	l, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("gRPC controller could not create listener: %v", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		log.Infof("gRPC controller listening on %s", l.Addr())
		if err := c.Server.Serve(l); err != nil {
			log.Errorf("gRPC controller serve error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.StopController()
	}()

	return nil
}

// StopController marks the service as not serving and stops the server
func (c *Controller) StopController() {
	log.Info("Stopping gRPC controller...")
	c.Health.Shutdown()
	if c.Server != nil {
		c.Server.GracefulStop()
	}
}
