package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradie-match-server/config"
	"tradie-match-server/logger"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewPublisherWithoutBrokers(t *testing.T) {
	p := NewPublisher(config.KafkaConfig{}, logger.Nop())
	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.PublishJobEvent(context.Background(), JobEvent{JobID: "j"}))
	assert.NoError(t, p.Close())
}

func TestNewPublisherDefaultsTopic(t *testing.T) {
	p := NewPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}}, logger.Nop())
	kp, ok := p.(*KafkaPublisher)
	require.True(t, ok)
	assert.Equal(t, DefaultTopic, kp.writer.(*kafka.Writer).Topic)
	assert.NoError(t, p.Close())
}

func TestPublishJobEventKeysByJob(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w, log: logger.Nop()}
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	err := p.PublishJobEvent(context.Background(), JobEvent{
		JobID: "job-1", Event: "accept", Actor: "tradie", FromStatus: "Pending", ToStatus: "Accepted", OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("job-1"), w.msgs[0].Key)
	assert.Equal(t, at, w.msgs[0].Time)

	var got JobEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "Accepted", got.ToStatus)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishJobEventReturnsWriterError(t *testing.T) {
	p := &KafkaPublisher{writer: &recordingWriter{err: errors.New("broker down")}, log: logger.Nop()}
	assert.Error(t, p.PublishJobEvent(context.Background(), JobEvent{JobID: "j"}))
}
