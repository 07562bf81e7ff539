package main

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/Domenick1991/flightline/config"
	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type aircraftStore interface {
	List(ctx context.Context) ([]domain.Aircraft, error)
	GetByTail(ctx context.Context, tail string) (*domain.Aircraft, error)
	Create(ctx context.Context, a *domain.Aircraft) error
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
}

type stores struct {
	aircraft aircraftStore
	users    userStore
	migrate  func(ctx context.Context) error
	close    func()
}

type storeOpener func(ctx context.Context, cfg *config.Config) (*stores, error)

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	return &stores{
		aircraft: repository.NewAircraftRepository(pool),
		users:    repository.NewUserRepository(pool),
		migrate:  func(ctx context.Context) error { return repository.EnsureSchema(ctx, pool) },
		close:    pool.Close,
	}, nil
}

type commandContext struct {
	configFlag string
	open       storeOpener

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(open storeOpener) *commandContext {
	return &commandContext{open: open}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(c.configFlag)
		if path == "" {
			path = os.Getenv("CONFIG_PATH")
		}
		if path == "" {
			path = "config.yaml"
		}
		c.config, c.configErr = config.LoadConfig(path)
	})
	return c.config, c.configErr
}

// withStores runs fn against freshly opened stores and closes them afterwards.
func (c *commandContext) withStores(ctx context.Context, fn func(s *stores) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	s, err := c.open(ctx, cfg)
	if err != nil {
		return err
	}
	if s.close != nil {
		defer s.close()
	}
	return fn(s)
}
