// Package notify turns workflow events into messages for the people who have
// to act on them next.
package notify

import (
	"context"
	"fmt"
	"sort"

	"github.com/Domenick1991/flightline/internal/kafka"
	"github.com/Domenick1991/flightline/internal/logging"
	"go.uber.org/zap"
)

// ChannelEngineering receives defect reports and rejected acceptances.
const ChannelEngineering = "engineering"

type Notification struct {
	// UserID is set for personal notices; Channel for group ones.
	UserID  int64
	Channel string
	Subject string
	Body    string
}

type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

type Notifier struct {
	sink   Sink
	logger *zap.Logger
}

func NewNotifier(sink Sink, logger *zap.Logger) *Notifier {
	return &Notifier{sink: sink, logger: logging.Component(logger, "notify")}
}

// Handle delivers every notification derived from event. Events nobody needs
// to hear about are skipped.
func (n *Notifier) Handle(ctx context.Context, event kafka.WorkflowEvent) error {
	msgs := Build(event)
	for _, msg := range msgs {
		if err := n.sink.Deliver(ctx, msg); err != nil {
			return fmt.Errorf("deliver %s for %s: %w", event.Type, event.Key(), err)
		}
	}
	n.logger.Debug("event handled", zap.String("type", event.Type), zap.Int("notifications", len(msgs)))
	return nil
}

func Build(event kafka.WorkflowEvent) []Notification {
	switch event.Type {
	case kafka.EventPersonnelAssigned:
		trades := make([]string, 0, len(event.Assignees))
		for trade := range event.Assignees {
			trades = append(trades, trade)
		}
		sort.Strings(trades)
		out := make([]Notification, 0, len(trades))
		for _, trade := range trades {
			out = append(out, Notification{
				UserID:  event.Assignees[trade],
				Subject: fmt.Sprintf("BFS %d: %s signature required", event.RecordID, trade),
				Body:    fmt.Sprintf("You are assigned as %s on Before Flying Service %d for aircraft %d.", trade, event.RecordID, event.AircraftID),
			})
		}
		return out
	case kafka.EventBFSApproved:
		return []Notification{{
			Channel: "pilots",
			Subject: fmt.Sprintf("Aircraft %d ready for acceptance", event.AircraftID),
			Body:    fmt.Sprintf("Before Flying Service %d was approved by the FSI.", event.RecordID),
		}}
	case kafka.EventAcceptanceRejected:
		return []Notification{{
			Channel: ChannelEngineering,
			Subject: fmt.Sprintf("Aircraft %d rejected by pilot", event.AircraftID),
			Body:    fmt.Sprintf("Pilot acceptance %d was rejected by user %d.", event.RecordID, event.ActorID),
		}}
	case kafka.EventPostFlightClosed:
		if !event.DefectsReported {
			return nil
		}
		return []Notification{{
			Channel: ChannelEngineering,
			Subject: fmt.Sprintf("Defects reported on aircraft %d", event.AircraftID),
			Body:    fmt.Sprintf("Post flying record %d closed as %s with defects reported.", event.RecordID, event.Status),
		}}
	}
	return nil
}

// LogSink writes notifications to the log. It stands in for a mail or
// messaging gateway.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logging.Component(logger, "notify")}
}

func (s *LogSink) Deliver(_ context.Context, n Notification) error {
	s.logger.Info("notification",
		zap.Int64("user_id", n.UserID),
		zap.String("channel", n.Channel),
		zap.String("subject", n.Subject),
		zap.String("body", n.Body),
	)
	return nil
}
