package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/tourprofile/internal/controllers/grpc"
	"github.com/chrissnell/tourprofile/internal/controllers/restserver"
	"github.com/chrissnell/tourprofile/internal/engine"
	"github.com/chrissnell/tourprofile/pkg/config"
	"go.uber.org/zap"
)

// ControllerManager interface for the controller manager
type ControllerManager interface {
	StartControllers() error
}

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// NewControllerManager creates a new controller manager
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, c *config.ConfigData, eng *engine.Engine, logger *zap.SugaredLogger) (ControllerManager, error) {
	cm := &controllerManager{
		ctx:         ctx,
		wg:          wg,
		config:      c,
		engine:      eng,
		logger:      logger,
		controllers: make([]Controller, 0),
	}

	// Create controllers based on configuration
	for _, con := range c.Controllers {
		controller, err := cm.createController(con)
		if err != nil {
			return nil, fmt.Errorf("error creating controller: %v", err)
		}
		cm.controllers = append(cm.controllers, controller)
	}

	return cm, nil
}

type controllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	config      *config.ConfigData
	engine      *engine.Engine
	logger      *zap.SugaredLogger
	controllers []Controller
}

func (c *controllerManager) StartControllers() error {
	c.logger.Info("Starting controller manager...")

	for _, controller := range c.controllers {
		err := controller.StartController()
		if err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("Started %d controllers successfully", len(c.controllers))
	return nil
}

// createController creates a controller based on the controller configuration
func (cm *controllerManager) createController(cc config.ControllerData) (Controller, error) {
	switch cc.Type {
	case "restserver", "rest":
		if cc.RESTServer == nil {
			return nil, fmt.Errorf("controller %q has no rest settings", cc.Type)
		}
		return restserver.NewController(cm.ctx, cm.wg, cm.engine, *cc.RESTServer, cm.config.Render, cm.logger.Named("rest"))
	case "grpc":
		if cc.GRPC == nil {
			return nil, fmt.Errorf("controller %q has no grpc settings", cc.Type)
		}
		return grpc.NewController(cm.ctx, cm.wg, cm.engine, *cc.GRPC)
	default:
		return nil, fmt.Errorf("unknown controller type: %s", cc.Type)
	}
}
