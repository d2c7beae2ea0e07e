package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/kafka"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/scheduler"
)

type stubClient struct {
	resp    *entity.WatermarkResponse
	err     error
	calls   int
	fetched string
}

func (c *stubClient) Apply(ctx context.Context, req entity.WatermarkRequest) (*entity.WatermarkResponse, error) {
	c.calls++
	return c.resp, c.err
}

func (c *stubClient) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, error) {
	c.fetched = rawURL
	return io.NopCloser(strings.NewReader("img")), "image/png", nil
}

func validRequest() entity.WatermarkRequest {
	return entity.WatermarkRequest{
		Image:    "data:image/png;base64,aGVsbG8=",
		Text:     "Hello",
		FontSize: 10,
		Opacity:  50,
		Color:    "#112233",
		Angle:    45,
	}
}

func decodeEvent(t *testing.T, data []byte) entity.WatermarkEvent {
	t.Helper()
	var event entity.WatermarkEvent
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestApplyPublishesEvent(t *testing.T) {
	tests := []struct {
		name        string
		resp        *entity.WatermarkResponse
		err         error
		wantSuccess bool
		wantError   string
	}{
		{
			name:        "success",
			resp:        &entity.WatermarkResponse{Success: true, ImageURL: "/static/results/1.png"},
			wantSuccess: true,
		},
		{
			name:      "logical failure",
			resp:      &entity.WatermarkResponse{Success: false, Error: "bad text"},
			wantError: "bad text",
		},
		{
			name:      "transport failure",
			err:       errors.New("connection refused"),
			wantError: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubClient{resp: tt.resp, err: tt.err}
			producer := kafka.NewMockProducer()
			svc := NewWatermarkService(client, producer, scheduler.NewManual(time.Unix(0, 0)))

			resp, err := svc.Apply(context.Background(), "req-1", validRequest())
			assert.Equal(t, tt.resp, resp)
			assert.Equal(t, tt.err, err)

			msgs := producer.Messages()
			require.Len(t, msgs, 1)
			event := decodeEvent(t, msgs[0])
			assert.Equal(t, "req-1", event.RequestID)
			assert.Equal(t, tt.wantSuccess, event.Success)
			assert.Equal(t, tt.wantError, event.Error)
			assert.Equal(t, "Hello", event.Params.Text)
			assert.Equal(t, len(validRequest().Image), event.ImageBytes)
		})
	}
}

func TestApplyRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entity.WatermarkRequest)
	}{
		{name: "blank text", mutate: func(r *entity.WatermarkRequest) { r.Text = "  " }},
		{name: "no image", mutate: func(r *entity.WatermarkRequest) { r.Image = "" }},
		{name: "bad color", mutate: func(r *entity.WatermarkRequest) { r.Color = "red" }},
		{name: "not a data url", mutate: func(r *entity.WatermarkRequest) { r.Image = "https://example.com/a.png" }},
		{name: "corrupt payload", mutate: func(r *entity.WatermarkRequest) { r.Image = "data:image/png;base64,***" }},
		{name: "not an image", mutate: func(r *entity.WatermarkRequest) { r.Image = "data:text/plain;base64,aGVsbG8=" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubClient{}
			producer := kafka.NewMockProducer()
			svc := NewWatermarkService(client, producer, scheduler.SystemClock())

			req := validRequest()
			tt.mutate(&req)
			_, err := svc.Apply(context.Background(), "", req)

			assert.ErrorIs(t, err, entity.ErrInvalidInput)
			assert.Zero(t, client.calls)
			assert.Empty(t, producer.Messages())
		})
	}
}

func TestFetchResult(t *testing.T) {
	client := &stubClient{}
	svc := NewWatermarkService(client, kafka.NewMockProducer(), scheduler.SystemClock())

	body, contentType, err := svc.FetchResult(context.Background(), "abc.png")
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, "/static/results/abc.png", client.fetched)
	assert.Equal(t, "image/png", contentType)

	for _, name := range []string{"", "../secret", "a/b.png", `a\b.png`} {
		_, _, err := svc.FetchResult(context.Background(), name)
		assert.ErrorIs(t, err, entity.ErrInvalidInput, name)
	}
}
