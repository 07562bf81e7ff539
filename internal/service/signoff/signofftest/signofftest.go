// Package signofftest provides in-memory stand-ins for the signoff
// collaborators, for use in service tests.
package signofftest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/identity"
	"github.com/Domenick1991/flightline/internal/kafka"
)

// PINs maps user ids to their PIN.
type PINs map[int64]string

func (p PINs) VerifyPIN(_ context.Context, userID int64, pin string) error {
	want, ok := p[userID]
	if !ok || want != pin {
		return domain.ErrInvalidPIN.With("user %d", userID)
	}
	return nil
}

// Prover renders claims as readable strings.
type Prover struct{}

func (Prover) Proof(c identity.Claim) string {
	return fmt.Sprintf("%s/%d/%s/%d", c.RecordKind, c.RecordID, c.Role, c.SignerID)
}

// Clock returns a fixed instant.
func Clock() time.Time {
	return time.Date(2026, 5, 4, 6, 30, 0, 0, time.UTC)
}

// Publisher records every published event.
type Publisher struct {
	Err error

	mu     sync.Mutex
	Topics []string
	Events []kafka.WorkflowEvent
}

func (p *Publisher) Publish(_ context.Context, topic, _ string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	ev, ok := payload.(kafka.WorkflowEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	p.Topics = append(p.Topics, topic)
	p.Events = append(p.Events, ev)
	return nil
}

// Types lists the recorded event types published to topic.
func (p *Publisher) Types(topic string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for i, ev := range p.Events {
		if p.Topics[i] == topic {
			out = append(out, ev.Type)
		}
	}
	return out
}
