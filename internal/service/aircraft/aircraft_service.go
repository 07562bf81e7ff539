package aircraft

import (
	"context"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/logging"
	"github.com/Domenick1991/flightline/internal/repository"
	"go.uber.org/zap"
)

type AircraftUseCase interface {
	GetByID(ctx context.Context, id int64) (*domain.Aircraft, error)
}

type Cache interface {
	GetAircraft(ctx context.Context, id int64) (*domain.Aircraft, error)
	SetAircraft(ctx context.Context, aircraft *domain.Aircraft) error
}

// AircraftService reads aircraft telemetry through an optional cache.
type AircraftService struct {
	repo   repository.AircraftRepository
	cache  Cache
	logger *zap.Logger
}

func NewAircraftService(repo repository.AircraftRepository, cache Cache, logger *zap.Logger) *AircraftService {
	return &AircraftService{repo: repo, cache: cache, logger: logging.Component(logger, "aircraft")}
}

func (s *AircraftService) GetByID(ctx context.Context, id int64) (*domain.Aircraft, error) {
	if s.cache != nil {
		cached, err := s.cache.GetAircraft(ctx, id)
		if err != nil {
			s.logger.Debug("aircraft cache read failed", zap.Int64(logging.FieldAircraftID, id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	aircraft, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetAircraft(ctx, aircraft); err != nil {
			s.logger.Debug("aircraft cache write failed", zap.Int64(logging.FieldAircraftID, id), zap.Error(err))
		}
	}
	return aircraft, nil
}

var _ AircraftUseCase = (*AircraftService)(nil)
