package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/flightline/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSink struct {
	got []Notification
	err error
}

func (s *recordingSink) Deliver(_ context.Context, n Notification) error {
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, n)
	return nil
}

func TestBuild(t *testing.T) {
	assigned := Build(kafka.WorkflowEvent{
		Type:       kafka.EventPersonnelAssigned,
		RecordKind: "bfs",
		RecordID:   4,
		AircraftID: 2,
		Assignees:  map[string]int64{"SUPERVISOR": 20, "AE": 10},
	})
	require.Len(t, assigned, 2)
	assert.Equal(t, int64(10), assigned[0].UserID)
	assert.Equal(t, "BFS 4: AE signature required", assigned[0].Subject)
	assert.Equal(t, int64(20), assigned[1].UserID)

	assert.Empty(t, Build(kafka.WorkflowEvent{Type: kafka.EventPostFlightClosed}))
	defects := Build(kafka.WorkflowEvent{Type: kafka.EventPostFlightClosed, DefectsReported: true, Status: "COMPLETED"})
	require.Len(t, defects, 1)
	assert.Equal(t, ChannelEngineering, defects[0].Channel)

	rejected := Build(kafka.WorkflowEvent{Type: kafka.EventAcceptanceRejected, AircraftID: 3})
	require.Len(t, rejected, 1)
	assert.Equal(t, ChannelEngineering, rejected[0].Channel)

	assert.Empty(t, Build(kafka.WorkflowEvent{Type: kafka.EventTradeSigned}))
}

func TestNotifier_Handle(t *testing.T) {
	sink := &recordingSink{}
	n := NewNotifier(sink, zap.NewNop())

	err := n.Handle(context.Background(), kafka.WorkflowEvent{Type: kafka.EventBFSApproved, RecordKind: "bfs", RecordID: 1, AircraftID: 5})
	require.NoError(t, err)
	require.Len(t, sink.got, 1)
	assert.Equal(t, "pilots", sink.got[0].Channel)

	sink.err = errors.New("gateway down")
	err = n.Handle(context.Background(), kafka.WorkflowEvent{Type: kafka.EventBFSApproved, RecordKind: "bfs", RecordID: 1})
	assert.ErrorContains(t, err, "bfs:1")
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	require.NoError(t, NewLogSink(zap.New(core)).Deliver(context.Background(), Notification{UserID: 3, Subject: "s"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "notification", logs.All()[0].Message)
	assert.Equal(t, int64(3), logs.All()[0].ContextMap()["user_id"])
}
