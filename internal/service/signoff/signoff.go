// Package signoff holds the plumbing shared by the BFS, acceptance and
// post-flight services: PIN-verified signatures, record locks, workflow
// policy and event publishing.
package signoff

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightline/config"
	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/identity"
	"go.uber.org/zap"
)

// Record kinds used in lock keys, PIN-proof claims and events.
const (
	RecordBFS        = "bfs"
	RecordAcceptance = "acceptance"
	RecordPostFlight = "postflight"
)

type PINVerifier interface {
	VerifyPIN(ctx context.Context, userID int64, pin string) error
}

type Prover interface {
	Proof(c identity.Claim) string
}

// Locker grants exclusive access to a record key until the returned func is called.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Policy carries the configurable answers to the workflow's open questions.
type Policy struct {
	// RequireAllSignatures makes FSI final approval wait for every assigned slot.
	RequireAllSignatures bool
	// RejectResign refuses a second signature on an already signed slot.
	RejectResign bool
	// AcceptanceRequiresApproval gates pilot acceptance on an FSI approved BFS.
	AcceptanceRequiresApproval bool
	// VerifyPostFlightPilotPIN checks the post-flight pilot PIN against the caller.
	VerifyPostFlightPilotPIN bool
	// VerifyFSIPIN checks FSI initial and final PINs against the caller.
	VerifyFSIPIN bool
	// VerifyEngineerPIN checks the post-flight engineer PIN against the caller.
	VerifyEngineerPIN bool
}

func PolicyFromConfig(cfg config.WorkflowConfig) Policy {
	return Policy{
		RequireAllSignatures:       cfg.RequireAllSignatures,
		RejectResign:               cfg.RejectResign,
		AcceptanceRequiresApproval: cfg.AcceptanceRequiresApproval,
		VerifyPostFlightPilotPIN:   cfg.VerifyPostFlightPilotPIN,
		VerifyFSIPIN:               cfg.VerifyFSIPIN,
		VerifyEngineerPIN:          cfg.VerifyEngineerPIN,
	}
}

// DefaultPolicy mirrors the defaults of config.Default.
func DefaultPolicy() Policy {
	return PolicyFromConfig(config.Default().Workflow)
}

// Signer turns a verified PIN into a stored Signature.
type Signer struct {
	pins   PINVerifier
	prover Prover
	now    func() time.Time
}

func NewSigner(pins PINVerifier, prover Prover) *Signer {
	return &Signer{pins: pins, prover: prover, now: time.Now}
}

// WithClock replaces the signer's time source.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

func (s *Signer) Now() time.Time {
	return s.now().UTC()
}

// Sign verifies pin against signerID and returns the signature for role on
// the given record. The PIN is not retained.
func (s *Signer) Sign(ctx context.Context, kind string, recordID int64, role string, signerID int64, pin string) (domain.Signature, error) {
	if err := s.pins.VerifyPIN(ctx, signerID, pin); err != nil {
		return domain.Signature{}, err
	}
	return s.Attest(kind, recordID, role, signerID), nil
}

// SignWith is Sign when verify is set and Attest otherwise.
func (s *Signer) SignWith(ctx context.Context, verify bool, kind string, recordID int64, role string, signerID int64, pin string) (domain.Signature, error) {
	if verify {
		return s.Sign(ctx, kind, recordID, role, signerID, pin)
	}
	return s.Attest(kind, recordID, role, signerID), nil
}

// Attest records signerID for role without a PIN check.
func (s *Signer) Attest(kind string, recordID int64, role string, signerID int64) domain.Signature {
	at := s.Now()
	proof := s.prover.Proof(identity.Claim{
		RecordKind: kind,
		RecordID:   recordID,
		Role:       role,
		SignerID:   signerID,
		SignedAt:   at,
	})
	return domain.Signature{SignedBy: signerID, PINProof: proof, SignedAt: &at}
}

func LockKey(kind string, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// WithLock runs fn while holding the lock for key. A nil locker runs fn directly.
func WithLock(ctx context.Context, l Locker, key string, fn func() error) error {
	if l == nil {
		return fn()
	}
	unlock, err := l.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// Workflow bundles the collaborators every sign-off service needs. Locker,
// Events and Logger may be nil.
type Workflow struct {
	Signer *Signer
	Locker Locker
	Events *Events
	Policy Policy
	Logger *zap.Logger
}
