package signoff

import (
	"context"
	"time"

	"github.com/Domenick1991/flightline/config"
	"github.com/Domenick1991/flightline/internal/kafka"
	"github.com/Domenick1991/flightline/internal/logging"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// Events publishes workflow events to the workflow topic and mirrors them to
// the notifications topic. Publishing is best effort: failures are logged and
// never fail the transition that produced the event.
type Events struct {
	pub                Publisher
	workflowTopic      string
	notificationsTopic string
	logger             *zap.Logger
}

func NewEvents(pub Publisher, cfg config.KafkaConfig, logger *zap.Logger) *Events {
	return &Events{
		pub:                pub,
		workflowTopic:      cfg.WorkflowTopic,
		notificationsTopic: cfg.NotificationsTopic,
		logger:             logging.Component(logger, "events"),
	}
}

func (e *Events) Emit(ctx context.Context, ev kafka.WorkflowEvent) {
	if e == nil || e.pub == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	for _, topic := range []string{e.workflowTopic, e.notificationsTopic} {
		if topic == "" {
			continue
		}
		if err := e.pub.Publish(ctx, topic, ev.Key(), ev); err != nil {
			e.logger.Warn("publish workflow event failed",
				zap.String("topic", topic),
				zap.String("type", ev.Type),
				zap.String(logging.FieldRecordKind, ev.RecordKind),
				zap.Int64(logging.FieldRecordID, ev.RecordID),
				zap.Error(err))
		}
	}
}
