package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/flightline/api"
	"github.com/Domenick1991/flightline/config"
	"github.com/Domenick1991/flightline/docs"
	workflowapi "github.com/Domenick1991/flightline/internal/api/workflow_service_api"
	"github.com/Domenick1991/flightline/internal/service/acceptance"
	"github.com/Domenick1991/flightline/internal/service/aircraft"
	"github.com/Domenick1991/flightline/internal/service/auth"
	"github.com/Domenick1991/flightline/internal/service/bfs"
	"github.com/Domenick1991/flightline/internal/service/postflight"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

// Services are the use cases exposed over HTTP and gRPC.
type Services struct {
	Auth       auth.AuthUseCase
	Aircraft   aircraft.AircraftUseCase
	BFS        bfs.BFSUseCase
	Acceptance acceptance.AcceptanceUseCase
	PostFlight postflight.PostFlightUseCase
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

// Run starts the gRPC and REST servers and blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services, logger *zap.Logger) error {
	s := newServers(cfg, svc, logger)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("grpc server listening", zap.String("address", cfg.GRPC.Address))
		return s.grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logger.Info("http server listening", zap.String("address", cfg.HTTP.Address))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func newServers(cfg *config.Config, svc Services, logger *zap.Logger) *Servers {
	grpcSrv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		workflowapi.ErrorInterceptor(logger),
		workflowapi.AuthInterceptor(svc.Auth),
	))
	workflowapi.RegisterWorkflowServiceServer(grpcSrv, workflowapi.NewServer(svc.Auth, svc.Aircraft, svc.BFS, svc.Acceptance, svc.PostFlight))

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           NewRouter(cfg.HTTP, svc, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter builds the REST API. Everything under /api except login needs a
// session token.
func NewRouter(cfg config.HTTPConfig, svc Services, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := api.NewAuthHandler(svc.Auth, logger)
	root := router.Group("/api")
	protected := root.Group("", authHandler.RequireSession())

	authHandler.Register(root.Group("/auth"), protected.Group("/auth"))
	api.NewAircraftHandler(svc.Aircraft, logger).Register(protected.Group("/aircraft"))
	api.NewBFSHandler(svc.BFS, logger).Register(protected.Group("/before-flying-service"))
	api.NewAcceptanceHandler(svc.Acceptance, logger).Register(protected.Group("/pilot-acceptance"))
	api.NewPostFlightHandler(svc.PostFlight, logger).Register(protected.Group("/post-flying"))

	if cfg.Swagger {
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName()),
			httpSwagger.URL("/swagger/doc.json"),
		)))
	}
	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
