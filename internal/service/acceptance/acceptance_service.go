package acceptance

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

type AcceptanceUseCase interface {
	Create(ctx context.Context, actorID int64, input CreateInput) (*domain.PilotAcceptance, error)
	Get(ctx context.Context, id int64) (*domain.PilotAcceptance, error)
	SignPilot(ctx context.Context, id, actorID int64, pin string) (*domain.PilotAcceptance, error)
	Reject(ctx context.Context, id, actorID int64, pin, remarks string) (*domain.PilotAcceptance, error)
}

type BFSReader interface {
	GetByID(ctx context.Context, id int64) (*domain.BFS, error)
}

type CreateInput struct {
	BFSID    int64                  `json:"bfs_record"`
	Checks   domain.PreflightChecks `json:"checks"`
	Readings domain.Readings        `json:"current_readings"`
	Remarks  string                 `json:"remarks"`
}

type AcceptanceService struct {
	records repository.AcceptanceRepository
	bfs     BFSReader
	wf      signoff.Workflow
	logger  *zap.Logger
}

func NewAcceptanceService(records repository.AcceptanceRepository, bfs BFSReader, wf signoff.Workflow) *AcceptanceService {
	return &AcceptanceService{
		records: records,
		bfs:     bfs,
		wf:      wf,
		logger:  logging.Component(wf.Logger, "acceptance"),
	}
}

func (s *AcceptanceService) Create(ctx context.Context, actorID int64, input CreateInput) (*domain.PilotAcceptance, error) {
	if input.BFSID <= 0 {
		return nil, domain.ErrInvalidInput.With("bfs_record is required")
	}
	record, err := s.bfs.GetByID(ctx, input.BFSID)
	if err != nil {
		return nil, err
	}
	if err := s.requireApproved(record); err != nil {
		return nil, err
	}

	a := &domain.PilotAcceptance{
		BFSID:          record.ID,
		AircraftID:     record.AircraftID,
		AcceptanceDate: s.wf.Signer.Now(),
		Status:         domain.AcceptanceStatusPending,
		Checks:         input.Checks,
		Readings:       input.Readings,
		Remarks:        strings.TrimSpace(input.Remarks),
	}
	if err := s.records.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create pilot acceptance: %w", err)
	}

	s.logger.Info("pilot acceptance created", zap.Int64(logging.FieldRecordID, a.ID), zap.Int64("bfs_id", a.BFSID))
	s.emit(ctx, kafka.EventAcceptanceCreated, a, actorID)
	return a, nil
}

func (s *AcceptanceService) Get(ctx context.Context, id int64) (*domain.PilotAcceptance, error) {
	return s.records.GetByID(ctx, id)
}

// SignPilot accepts the aircraft on behalf of the calling pilot.
func (s *AcceptanceService) SignPilot(ctx context.Context, id, actorID int64, pin string) (*domain.PilotAcceptance, error) {
	a, err := s.decide(ctx, id, actorID, pin, func(a *domain.PilotAcceptance) {
		a.Status = domain.AcceptanceStatusAccepted
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pilot accepted aircraft", zap.Int64(logging.FieldRecordID, id), zap.Int64(logging.FieldActorID, actorID))
	s.emit(ctx, kafka.EventAcceptanceSigned, a, actorID)
	return a, nil
}

// Reject refuses the aircraft. The pilot's signature is recorded the same way
// as for an acceptance.
func (s *AcceptanceService) Reject(ctx context.Context, id, actorID int64, pin, remarks string) (*domain.PilotAcceptance, error) {
	a, err := s.decide(ctx, id, actorID, pin, func(a *domain.PilotAcceptance) {
		a.Status = domain.AcceptanceStatusRejected
		if r := strings.TrimSpace(remarks); r != "" {
			a.Remarks = r
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pilot rejected aircraft", zap.Int64(logging.FieldRecordID, id), zap.Int64(logging.FieldActorID, actorID))
	s.emit(ctx, kafka.EventAcceptanceRejected, a, actorID)
	return a, nil
}

func (s *AcceptanceService) decide(ctx context.Context, id, actorID int64, pin string, apply func(a *domain.PilotAcceptance)) (*domain.PilotAcceptance, error) {
	if pin == "" {
		return nil, domain.ErrPINRequired
	}

	var out *domain.PilotAcceptance
	err := signoff.WithLock(ctx, s.wf.Locker, signoff.LockKey(signoff.RecordAcceptance, id), func() error {
		a, err := s.records.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !a.Pending() {
			return domain.ErrAcceptanceClosed.With("status %s", a.Status)
		}
		record, err := s.bfs.GetByID(ctx, a.BFSID)
		if err != nil {
			return err
		}
		if err := s.requireApproved(record); err != nil {
			return err
		}
		sig, err := s.wf.Signer.Sign(ctx, signoff.RecordAcceptance, a.ID, "pilot", actorID, pin)
		if err != nil {
			return err
		}
		a.Pilot = sig
		apply(a)
		if err := s.records.Update(ctx, a); err != nil {
			return fmt.Errorf("save pilot acceptance %d: %w", id, err)
		}
		out = a
		return nil
	})
	return out, err
}

func (s *AcceptanceService) requireApproved(b *domain.BFS) error {
	if s.wf.Policy.AcceptanceRequiresApproval && b.State() != domain.BFSStateApproved {
		return domain.ErrBFSNotApproved.With("BFS record %d is %s", b.ID, b.Status)
	}
	return nil
}

func (s *AcceptanceService) emit(ctx context.Context, typ string, a *domain.PilotAcceptance, actorID int64) {
	s.wf.Events.Emit(ctx, kafka.WorkflowEvent{
		Type:       typ,
		RecordKind: signoff.RecordAcceptance,
		RecordID:   a.ID,
		AircraftID: a.AircraftID,
		ActorID:    actorID,
		Status:     string(a.Status),
	})
}

var _ AcceptanceUseCase = (*AcceptanceService)(nil)
