package bfs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/kafka"
	"github.com/Domenick1991/flightline/internal/logging"
	"github.com/Domenick1991/flightline/internal/repository"
	"github.com/Domenick1991/flightline/internal/service/signoff"
	"go.uber.org/zap"
)

type BFSUseCase interface {
	Initiate(ctx context.Context, actorID int64, input InitiateInput) (*domain.BFS, error)
	Get(ctx context.Context, id int64) (*domain.BFS, error)
	FSIInitialAuth(ctx context.Context, id, actorID int64, pin string) (*domain.BFS, error)
	AssignPersonnel(ctx context.Context, id, actorID int64, input AssignInput) (*domain.BFS, error)
	SignTradesman(ctx context.Context, id, actorID int64, trade, pin string) (*domain.BFS, error)
	SignSupervisor(ctx context.Context, id, actorID int64, pin string) (*domain.BFS, error)
	SignFSI(ctx context.Context, id, actorID int64, pin string) (*domain.BFS, error)
}

type AircraftReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Aircraft, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type InitiateInput struct {
	AircraftID  int64           `json:"aircraft"`
	ServiceDate *time.Time      `json:"service_date,omitempty"`
	Before      domain.Readings `json:"readings_before"`
	Remarks     string          `json:"remarks"`
}

// AssignInput names the user for each trade slot; zero leaves a slot as is.
type AssignInput struct {
	AE                 int64 `json:"ae"`
	AL                 int64 `json:"al"`
	AO                 int64 `json:"ao"`
	AR                 int64 `json:"ar"`
	SE                 int64 `json:"se"`
	Supervisor         int64 `json:"supervisor"`
	SupervisorRequired bool  `json:"supervisor_required"`
}

func (in AssignInput) assignment() domain.Assignment {
	users := map[domain.Trade]int64{
		domain.TradeAE:         in.AE,
		domain.TradeAL:         in.AL,
		domain.TradeAO:         in.AO,
		domain.TradeAR:         in.AR,
		domain.TradeSE:         in.SE,
		domain.TradeSupervisor: in.Supervisor,
	}
	for t, id := range users {
		if id == 0 {
			delete(users, t)
		}
	}
	return domain.Assignment{Users: users, SupervisorRequired: in.SupervisorRequired}
}

type BFSService struct {
	records  repository.BFSRepository
	aircraft AircraftReader
	users    UserReader
	wf       signoff.Workflow
	logger   *zap.Logger
}

func NewBFSService(records repository.BFSRepository, aircraft AircraftReader, users UserReader, wf signoff.Workflow) *BFSService {
	return &BFSService{
		records:  records,
		aircraft: aircraft,
		users:    users,
		wf:       wf,
		logger:   logging.Component(wf.Logger, "bfs"),
	}
}

func (s *BFSService) Initiate(ctx context.Context, actorID int64, input InitiateInput) (*domain.BFS, error) {
	if input.AircraftID <= 0 {
		return nil, domain.ErrInvalidInput.With("aircraft is required")
	}
	if _, err := s.aircraft.GetByID(ctx, input.AircraftID); err != nil {
		return nil, err
	}

	record := &domain.BFS{
		AircraftID:  input.AircraftID,
		ServiceDate: s.wf.Signer.Now(),
		Status:      domain.BFSStatusInProgress,
		Before:      input.Before,
		Remarks:     strings.TrimSpace(input.Remarks),
	}
	if input.ServiceDate != nil {
		record.ServiceDate = input.ServiceDate.UTC()
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create BFS record: %w", err)
	}

	s.logger.Info("BFS record created", zap.Int64(logging.FieldRecordID, record.ID), zap.Int64(logging.FieldAircraftID, record.AircraftID))
	s.emit(ctx, kafka.EventBFSInitiated, record, actorID, nil)
	return record, nil
}

func (s *BFSService) Get(ctx context.Context, id int64) (*domain.BFS, error) {
	return s.records.GetByID(ctx, id)
}

// FSIInitialAuth records the FSI's opening signature, moving the record to
// personnel selection.
func (s *BFSService) FSIInitialAuth(ctx context.Context, id, actorID int64, pin string) (*domain.BFS, error) {
	if pin == "" {
		return nil, domain.ErrPINRequired
	}
	record, err := s.transition(ctx, id, func(b *domain.BFS) error {
		next, err := b.State().Next(domain.EventFSIAuthenticate)
		if err != nil {
			return err
		}
		sig, err := s.wf.Signer.SignWith(ctx, s.wf.Policy.VerifyFSIPIN, signoff.RecordBFS, b.ID, "fsi_initial", actorID, pin)
		if err != nil {
			return err
		}
		b.FSIInitial = sig
		b.Enter(next)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("FSI authenticated", zap.Int64(logging.FieldRecordID, id), zap.Int64(logging.FieldActorID, actorID))
	s.emit(ctx, kafka.EventFSIAuthenticated, record, actorID, nil)
	return record, nil
}

func (s *BFSService) AssignPersonnel(ctx context.Context, id, actorID int64, input AssignInput) (*domain.BFS, error) {
	record, err := s.transition(ctx, id, func(b *domain.BFS) error {
		next, err := b.State().Next(domain.EventAssignPersonnel)
		if err != nil {
			return err
		}
		if input.AE == 0 {
			return domain.ErrAERequired
		}
		assignment := input.assignment()
		for t, userID := range assignment.Users {
			if _, err := s.users.GetByID(ctx, userID); err != nil {
				return fmt.Errorf("%s assignee: %w", t.Name(), err)
			}
		}
		b.Assign(assignment)
		b.Enter(next)
		return nil
	})
	if err != nil {
		return nil, err
	}

	assignees := make(map[string]int64)
	for t, userID := range record.Assignees() {
		assignees[t.String()] = userID
	}
	s.logger.Info("personnel assigned", zap.Int64(logging.FieldRecordID, id), zap.Int("assignees", len(assignees)))
	s.emit(ctx, kafka.EventPersonnelAssigned, record, actorID, func(ev *kafka.WorkflowEvent) {
		ev.Assignees = assignees
	})
	return record, nil
}

// SignTradesman signs trade's slot on behalf of its assignee. The PIN is
// checked against the assignee, not the caller.
func (s *BFSService) SignTradesman(ctx context.Context, id, actorID int64, trade, pin string) (*domain.BFS, error) {
	if strings.TrimSpace(trade) == "" || pin == "" {
		return nil, domain.ErrMissingFields
	}
	t, ok := domain.ParseTrade(trade)
	if !ok || !t.Tradesman() {
		return nil, domain.ErrInvalidTrade.With("%q", trade)
	}

	record, err := s.transition(ctx, id, func(b *domain.BFS) error {
		if _, err := b.State().Next(domain.EventSignTrade); err != nil {
			return err
		}
		return s.signSlot(ctx, b, t, pin, domain.ErrTradeUnassigned.With("%s", t.Name()))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("trade signed", zap.Int64(logging.FieldRecordID, id), zap.String(logging.FieldTrade, t.String()))
	s.emit(ctx, kafka.EventTradeSigned, record, actorID, func(ev *kafka.WorkflowEvent) {
		ev.Trade = t.String()
	})
	return record, nil
}

func (s *BFSService) SignSupervisor(ctx context.Context, id, actorID int64, pin string) (*domain.BFS, error) {
	if pin == "" {
		return nil, domain.ErrPINRequired
	}
	record, err := s.transition(ctx, id, func(b *domain.BFS) error {
		if !b.SupervisorRequired {
			return domain.ErrSupervisorNotNeeded
		}
		if _, err := b.State().Next(domain.EventSignSupervisor); err != nil {
			return err
		}
		return s.signSlot(ctx, b, domain.TradeSupervisor, pin, domain.ErrSupervisorUnassigned)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("supervisor signed", zap.Int64(logging.FieldRecordID, id))
	s.emit(ctx, kafka.EventSupervisorSigned, record, actorID, func(ev *kafka.WorkflowEvent) {
		ev.Trade = domain.TradeSupervisor.String()
	})
	return record, nil
}

func (s *BFSService) signSlot(ctx context.Context, b *domain.BFS, t domain.Trade, pin string, unassigned error) error {
	slot := b.Slot(t)
	if !slot.HasAssignee() {
		return unassigned
	}
	if s.wf.Policy.RejectResign && slot.Signed() {
		return domain.ErrAlreadySigned.With("%s", t.Name())
	}
	sig, err := s.wf.Signer.Sign(ctx, signoff.RecordBFS, b.ID, t.String(), slot.Assigned, pin)
	if err != nil {
		return err
	}
	slot.Signature = sig
	return nil
}

// SignFSI is the FSI's final approval. It closes the record.
func (s *BFSService) SignFSI(ctx context.Context, id, actorID int64, pin string) (*domain.BFS, error) {
	if pin == "" {
		return nil, domain.ErrPINRequired
	}
	record, err := s.transition(ctx, id, func(b *domain.BFS) error {
		next, err := b.State().Next(domain.EventApproveFSI)
		if err != nil {
			return err
		}
		sig, err := s.wf.Signer.SignWith(ctx, s.wf.Policy.VerifyFSIPIN, signoff.RecordBFS, b.ID, "fsi_final", actorID, pin)
		if err != nil {
			return err
		}
		if pending := b.UnsignedAssignments(); s.wf.Policy.RequireAllSignatures && len(pending) > 0 {
			names := make([]string, len(pending))
			for i, t := range pending {
				names[i] = t.String()
			}
			return domain.ErrSignaturesIncomplete.With("waiting on %s", strings.Join(names, ", "))
		}
		b.FSIFinal = sig
		b.Enter(next)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("BFS approved", zap.Int64(logging.FieldRecordID, id), zap.Int64(logging.FieldActorID, actorID))
	s.emit(ctx, kafka.EventBFSApproved, record, actorID, nil)
	return record, nil
}

// transition loads record id under its lock, applies fn and saves the result.
// Nothing is saved when fn fails.
func (s *BFSService) transition(ctx context.Context, id int64, fn func(b *domain.BFS) error) (*domain.BFS, error) {
	var out *domain.BFS
	err := signoff.WithLock(ctx, s.wf.Locker, signoff.LockKey(signoff.RecordBFS, id), func() error {
		b, err := s.records.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
		if err := s.records.Update(ctx, b); err != nil {
			return fmt.Errorf("save BFS record %d: %w", id, err)
		}
		out = b
		return nil
	})
	return out, err
}

func (s *BFSService) emit(ctx context.Context, typ string, b *domain.BFS, actorID int64, extra func(ev *kafka.WorkflowEvent)) {
	ev := kafka.WorkflowEvent{
		Type:       typ,
		RecordKind: signoff.RecordBFS,
		RecordID:   b.ID,
		AircraftID: b.AircraftID,
		ActorID:    actorID,
		Status:     string(b.Status),
	}
	if extra != nil {
		extra(&ev)
	}
	s.wf.Events.Emit(ctx, ev)
}

var _ BFSUseCase = (*BFSService)(nil)
