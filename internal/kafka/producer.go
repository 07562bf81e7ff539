package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/flightline/internal/logging"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Workflow event types.
const (
	EventBFSInitiated          = "bfs_initiated"
	EventFSIAuthenticated      = "bfs_fsi_authenticated"
	EventPersonnelAssigned     = "bfs_personnel_assigned"
	EventTradeSigned           = "bfs_trade_signed"
	EventSupervisorSigned      = "bfs_supervisor_signed"
	EventBFSApproved           = "bfs_fsi_approved"
	EventAcceptanceCreated     = "acceptance_created"
	EventAcceptanceSigned      = "acceptance_signed"
	EventAcceptanceRejected    = "acceptance_rejected"
	EventPostFlightCreated     = "post_flight_created"
	EventPostFlightPilotSigned = "post_flight_pilot_signed"
	EventPostFlightClosed      = "post_flight_closed"
)

type WorkflowEvent struct {
	Type            string           `json:"type"`
	RecordKind      string           `json:"record_kind"`
	RecordID        int64            `json:"record_id"`
	AircraftID      int64            `json:"aircraft_id"`
	ActorID         int64            `json:"actor_id,omitempty"`
	Status          string           `json:"status"`
	Trade           string           `json:"trade,omitempty"`
	Assignees       map[string]int64 `json:"assignees,omitempty"`
	DefectsReported bool             `json:"defects_reported,omitempty"`
	FlightHours     float64          `json:"flight_hours,omitempty"`
	OccurredAt      time.Time        `json:"occurred_at"`
}

// Key partitions events by record so a record's events stay ordered.
func (e WorkflowEvent) Key() string {
	return fmt.Sprintf("%s:%d", e.RecordKind, e.RecordID)
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
	logger  *zap.Logger
}

func NewProducer(brokers []string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
		logger:  logging.Component(logger, "kafka_producer"),
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.logger.Debug("published", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and lists its partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no Kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	p.logger.Info("connected to Kafka", zap.String("broker", p.brokers[0]), zap.Int("partitions", len(partitions)))
	return nil
}
