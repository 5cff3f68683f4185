package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/tourprofile/internal/engine"
	"github.com/chrissnell/tourprofile/internal/log"
	"github.com/chrissnell/tourprofile/pkg/config"
	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	render     config.RenderData
	engine     *engine.Engine
	Server     http.Server
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, eng *engine.Engine, rc config.RESTServerData, render config.RenderData, logger *zap.SugaredLogger) (*Controller, error) {
	if eng == nil {
		return nil, fmt.Errorf("REST server requires an engine")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		render:     render,
		engine:     eng,
		logger:     logger,
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}

	if rc.Port == 0 {
		logger.Infof("rest.port not provided; defaulting to %d", config.DefaultRESTPort)
		rc.Port = config.DefaultRESTPort
	}

	if rc.MaxBodyBytes <= 0 {
		rc.MaxBodyBytes = config.DefaultMaxBodyBytes
	}
	ctrl.restConfig = rc

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.Handler()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server controller on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Handler is the router wrapped with panic recovery and gzip compression
func (c *Controller) Handler() http.Handler {
	recovery := ghandlers.RecoveryHandler(
		ghandlers.RecoveryLogger(recoveryLogger{c.logger}),
		ghandlers.PrintRecoveryStack(true),
	)
	return recovery(ghandlers.CompressHandler(c.Router()))
}

// recoveryLogger adapts zap to the Println logger the recovery handler wants
type recoveryLogger struct {
	logger *zap.SugaredLogger
}

func (r recoveryLogger) Println(v ...interface{}) {
	r.logger.Errorw("panic in HTTP handler", "detail", fmt.Sprint(v...))
}

// Router builds the HTTP router with all endpoints
func (c *Controller) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware(c.logger))

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/profiles", c.handlers.CreateProfile).Methods(http.MethodPost)
	api.HandleFunc("/profiles/{id}", c.handlers.GetProfile).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{id}/projection/2d", c.handlers.GetProjection2D).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{id}/projection/3d", c.handlers.GetProjection3D).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{id}/locate", c.handlers.Locate).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{id}/chart.{format:png|svg|html}", c.handlers.GetChart).Methods(http.MethodGet)
	api.HandleFunc("/analyze", c.handlers.Analyze).Methods(http.MethodPost)
	api.HandleFunc("/legend", c.handlers.GetLegend).Methods(http.MethodGet)

	router.HandleFunc("/healthz", c.handlers.Healthz).Methods(http.MethodGet)
	router.NotFoundHandler = http.HandlerFunc(c.handlers.NotFound)

	return router
}
