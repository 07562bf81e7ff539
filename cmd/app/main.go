package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightline/config"
	"github.com/Domenick1991/flightline/internal/bootstrap"
	"github.com/Domenick1991/flightline/internal/cache"
	"github.com/Domenick1991/flightline/internal/identity"
	"github.com/Domenick1991/flightline/internal/kafka"
	"github.com/Domenick1991/flightline/internal/logging"
	"github.com/Domenick1991/flightline/internal/repository"
	"github.com/Domenick1991/flightline/internal/service/acceptance"
	"github.com/Domenick1991/flightline/internal/service/aircraft"
	"github.com/Domenick1991/flightline/internal/service/auth"
	"github.com/Domenick1991/flightline/internal/service/bfs"
	"github.com/Domenick1991/flightline/internal/service/postflight"
	"github.com/Domenick1991/flightline/internal/service/signoff"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("apply schema", zap.Error(err))
	}

	lockWait := time.Duration(cfg.Workflow.LockWaitMilliseconds) * time.Millisecond

	var (
		locker        signoff.Locker
		sessions      auth.SessionStore
		aircraftCache aircraft.Cache
		invalidator   postflight.AircraftCache
	)
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cache.Options{
			AircraftTTL: time.Duration(cfg.Workflow.AircraftCacheSeconds) * time.Second,
			LockTTL:     time.Duration(cfg.Workflow.LockTTLSeconds) * time.Second,
			LockWait:    lockWait,
		})
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Fatal("connect redis", zap.Error(err))
		}
		locker, sessions, aircraftCache, invalidator = redisCache, redisCache, redisCache, redisCache
	} else {
		local := cache.NewLocal(lockWait)
		locker, sessions = local, local
		logger.Warn("redis not configured, record locks and sessions are process local")
	}

	var publisher signoff.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logger.Warn("kafka unreachable at startup", zap.Error(err))
		}
		publisher = producer
	}

	prover, err := identity.NewProver([]byte(cfg.Auth.ProofKey))
	if err != nil {
		logger.Fatal("init prover", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(pool)
	aircraftRepo := repository.NewAircraftRepository(pool)
	bfsRepo := repository.NewBFSRepository(pool)
	acceptanceRepo := repository.NewAcceptanceRepository(pool)
	postFlightRepo := repository.NewPostFlightRepository(pool)

	wf := signoff.Workflow{
		Signer: signoff.NewSigner(identity.NewPINVerifier(userRepo), prover),
		Locker: locker,
		Events: signoff.NewEvents(publisher, cfg.Kafka, logger),
		Policy: signoff.PolicyFromConfig(cfg.Workflow),
		Logger: logger,
	}

	services := bootstrap.Services{
		Auth:       auth.NewAuthService(userRepo, sessions, time.Duration(cfg.Auth.SessionTTLMinutes)*time.Minute, logger),
		Aircraft:   aircraft.NewAircraftService(aircraftRepo, aircraftCache, logger),
		BFS:        bfs.NewBFSService(bfsRepo, aircraftRepo, userRepo, wf),
		Acceptance: acceptance.NewAcceptanceService(acceptanceRepo, bfsRepo, wf),
		PostFlight: postflight.NewPostFlightService(postFlightRepo, acceptanceRepo, invalidator, wf),
	}

	if err := bootstrap.Run(ctx, cfg, services, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
