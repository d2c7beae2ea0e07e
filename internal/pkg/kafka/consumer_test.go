package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
)

// fakeReader replays messages, then blocks until the context is cancelled.
type fakeReader struct {
	messages []kafka.Message
	errs     []error
	cancel   context.CancelFunc
	closed   bool
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return kafka.Message{}, err
	}
	if len(r.messages) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func eventMessage(t *testing.T, event entity.WatermarkEvent) kafka.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Topic: "watermark-events", Value: data}
}

func TestConsumeEventsDecodesAndSkipsGarbage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		messages: []kafka.Message{
			eventMessage(t, entity.WatermarkEvent{ID: "1", Success: true, ImageURL: "/static/results/1.png"}),
			{Topic: "watermark-events", Value: []byte("not json")},
			eventMessage(t, entity.WatermarkEvent{ID: "2", Error: "bad text"}),
		},
	}

	var got []entity.WatermarkEvent
	err := ConsumeEvents(ctx, reader, func(event entity.WatermarkEvent) error {
		got = append(got, event)
		return errors.New("handler errors are only logged")
	})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.True(t, got[0].Success)
	assert.Equal(t, "bad text", got[1].Error)
	assert.True(t, reader.closed)
}

func TestConsumeEventsStopsOnCancelledRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &fakeReader{cancel: cancel, errs: []error{errors.New("broker down")}}
	err := ConsumeEvents(ctx, reader, func(entity.WatermarkEvent) error { return nil })

	assert.NoError(t, err)
	assert.True(t, reader.closed)
}
