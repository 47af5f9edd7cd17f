package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

var _ Publisher = (*KafkaPublisher)(nil)
var _ Publisher = Nop{}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w)
	id := uuid.New()

	err := p.Publish(context.Background(), TripEvent{Type: TripSaved, TripID: id, OwnerID: "u1"})

	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, id.String(), string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, TripSaved, string(msg.Headers[0].Value))

	var got TripEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, id, got.TripID)
	assert.Equal(t, "u1", got.OwnerID)
	assert.False(t, got.OccurredAt.IsZero(), "OccurredAt should be stamped")
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := newKafkaPublisher(w)

	err := p.Publish(context.Background(), TripEvent{Type: TripDeleted, TripID: uuid.New()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newKafkaPublisher(w).Close())
	assert.True(t, w.closed)
}
