package postflight

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/kafka"
	"github.com/Domenick1991/flightline/internal/logging"
	"github.com/Domenick1991/flightline/internal/repository"
	"github.com/Domenick1991/flightline/internal/service/signoff"
	"go.uber.org/zap"
)

type PostFlightUseCase interface {
	Create(ctx context.Context, actorID int64, input CreateInput) (*domain.PostFlight, error)
	Get(ctx context.Context, id int64) (*domain.PostFlight, error)
	SignPilot(ctx context.Context, id, actorID int64, pin string) (*domain.PostFlight, error)
	SignEngineer(ctx context.Context, id, actorID int64, pin string) (*domain.PostFlight, error)
}

type AcceptanceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.PilotAcceptance, error)
}

// AircraftCache drops cached telemetry once a flight has been committed.
type AircraftCache interface {
	InvalidateAircraft(ctx context.Context, id int64) error
}

type CreateInput struct {
	AcceptanceID    int64           `json:"pilot_acceptance"`
	Outcome         string          `json:"flight_status"`
	FlightHours     float64         `json:"flight_hours"`
	FuelConsumed    float64         `json:"fuel_consumed"`
	After           domain.Readings `json:"readings_after"`
	EngineCondition string          `json:"engine_condition"`
	IssuesFound     string          `json:"issues_found"`
	DefectsReported bool            `json:"defects_reported"`
	Remarks         string          `json:"remarks"`
}

type PostFlightService struct {
	records     repository.PostFlightRepository
	acceptances AcceptanceReader
	cache       AircraftCache
	wf          signoff.Workflow
	logger      *zap.Logger
}

func NewPostFlightService(records repository.PostFlightRepository, acceptances AcceptanceReader, cache AircraftCache, wf signoff.Workflow) *PostFlightService {
	return &PostFlightService{
		records:     records,
		acceptances: acceptances,
		cache:       cache,
		wf:          wf,
		logger:      logging.Component(wf.Logger, "postflight"),
	}
}

func (s *PostFlightService) Create(ctx context.Context, actorID int64, input CreateInput) (*domain.PostFlight, error) {
	if input.AcceptanceID <= 0 {
		return nil, domain.ErrInvalidInput.With("pilot_acceptance is required")
	}
	outcome := domain.FlightOutcomeCompleted
	if input.Outcome != "" {
		parsed, ok := domain.ParseFlightOutcome(input.Outcome)
		if !ok {
			return nil, domain.ErrInvalidInput.With("unknown flight_status %q", input.Outcome)
		}
		outcome = parsed
	}
	if input.FlightHours < 0 || input.FuelConsumed < 0 {
		return nil, domain.ErrInvalidInput.With("flight_hours and fuel_consumed must not be negative")
	}

	a, err := s.acceptances.GetByID(ctx, input.AcceptanceID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AcceptanceStatusAccepted {
		return nil, domain.ErrNotAccepted.With("pilot acceptance %d is %s", a.ID, a.Status)
	}

	p := &domain.PostFlight{
		AcceptanceID:    a.ID,
		AircraftID:      a.AircraftID,
		PostFlightDate:  s.wf.Signer.Now(),
		Outcome:         outcome,
		Status:          domain.PostFlightStatusInProgress,
		FlightHours:     input.FlightHours,
		FuelConsumed:    input.FuelConsumed,
		After:           input.After,
		EngineCondition: strings.TrimSpace(input.EngineCondition),
		IssuesFound:     strings.TrimSpace(input.IssuesFound),
		DefectsReported: input.DefectsReported,
		Remarks:         strings.TrimSpace(input.Remarks),
	}
	if err := s.records.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create post flying record: %w", err)
	}

	s.logger.Info("post flying record created", zap.Int64(logging.FieldRecordID, p.ID), zap.String("outcome", string(p.Outcome)))
	s.emit(ctx, kafka.EventPostFlightCreated, p, actorID)
	return p, nil
}

func (s *PostFlightService) Get(ctx context.Context, id int64) (*domain.PostFlight, error) {
	return s.records.GetByID(ctx, id)
}

func (s *PostFlightService) SignPilot(ctx context.Context, id, actorID int64, pin string) (*domain.PostFlight, error) {
	if pin == "" {
		return nil, domain.ErrPINRequired
	}

	var out *domain.PostFlight
	err := signoff.WithLock(ctx, s.wf.Locker, signoff.LockKey(signoff.RecordPostFlight, id), func() error {
		p, err := s.openRecord(ctx, id)
		if err != nil {
			return err
		}
		p.Pilot, err = s.wf.Signer.SignWith(ctx, s.wf.Policy.VerifyPostFlightPilotPIN, signoff.RecordPostFlight, p.ID, "pilot", actorID, pin)
		if err != nil {
			return err
		}
		if err := s.records.Update(ctx, p); err != nil {
			return fmt.Errorf("save post flying record %d: %w", id, err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("post flight pilot signed", zap.Int64(logging.FieldRecordID, id), zap.Int64(logging.FieldActorID, actorID))
	s.emit(ctx, kafka.EventPostFlightPilotSigned, out, actorID)
	return out, nil
}

// SignEngineer closes the record. A completed flight adds its hours and
// post-flight readings to the aircraft in the same commit; a record can be
// closed only once.
func (s *PostFlightService) SignEngineer(ctx context.Context, id, actorID int64, pin string) (*domain.PostFlight, error) {
	if pin == "" {
		return nil, domain.ErrPINRequired
	}

	var (
		out       *domain.PostFlight
		telemetry *domain.TelemetryUpdate
	)
	err := signoff.WithLock(ctx, s.wf.Locker, signoff.LockKey(signoff.RecordPostFlight, id), func() error {
		p, err := s.openRecord(ctx, id)
		if err != nil {
			return err
		}
		sig, err := s.wf.Signer.SignWith(ctx, s.wf.Policy.VerifyEngineerPIN, signoff.RecordPostFlight, p.ID, "engineer", actorID, pin)
		if err != nil {
			return err
		}
		p.Engineer = sig
		p.Status = p.ClosingStatus()
		telemetry = p.Telemetry()
		if telemetry != nil {
			if err := s.invalidateAircraft(ctx, p.AircraftID); err != nil {
				s.logger.Debug("invalidate aircraft cache before close failed", zap.Int64(logging.FieldAircraftID, p.AircraftID), zap.Error(err))
			}
		}
		if err := s.records.Close(ctx, p, telemetry); err != nil {
			return fmt.Errorf("close post flying record %d: %w", id, err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.Int64(logging.FieldRecordID, id),
		zap.Int64(logging.FieldAircraftID, out.AircraftID),
		zap.String("status", string(out.Status)),
	}
	if telemetry != nil {
		fields = append(fields, zap.Float64("flight_hours", telemetry.AddHours))
		if err := s.invalidateAircraft(ctx, out.AircraftID); err != nil {
			s.logger.Warn("invalidate aircraft cache failed", zap.Int64(logging.FieldAircraftID, out.AircraftID), zap.Error(err))
		}
	}
	s.logger.Info("post flying record closed", fields...)
	s.emit(ctx, kafka.EventPostFlightClosed, out, actorID)
	return out, nil
}

// invalidateAircraft drops the cached aircraft. SignEngineer calls it before
// and after the telemetry commit; a read racing the commit can still refill
// the old row until the cache entry expires.
func (s *PostFlightService) invalidateAircraft(ctx context.Context, id int64) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateAircraft(ctx, id)
}

func (s *PostFlightService) openRecord(ctx context.Context, id int64) (*domain.PostFlight, error) {
	p, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Open() {
		return nil, domain.ErrPostFlightClosed.With("post flying record %d is %s", p.ID, p.Status)
	}
	return p, nil
}

func (s *PostFlightService) emit(ctx context.Context, typ string, p *domain.PostFlight, actorID int64) {
	s.wf.Events.Emit(ctx, kafka.WorkflowEvent{
		Type:            typ,
		RecordKind:      signoff.RecordPostFlight,
		RecordID:        p.ID,
		AircraftID:      p.AircraftID,
		ActorID:         actorID,
		Status:          string(p.Status),
		DefectsReported: p.DefectsReported,
		FlightHours:     p.FlightHours,
	})
}

var _ PostFlightUseCase = (*PostFlightService)(nil)
