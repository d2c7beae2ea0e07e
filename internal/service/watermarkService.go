package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/dataurl"
)

const resultsPath = "/static/results/"

// Apply forwards req to the watermarking server and records the outcome as
// an audit event. A failing event publish never fails the request.
func (s *watermarkService) Apply(ctx context.Context, requestID string, req entity.WatermarkRequest) (*entity.WatermarkResponse, error) {
	if strings.TrimSpace(req.Text) == "" || req.Image == "" {
		return nil, fmt.Errorf("%w: image and text are required", entity.ErrInvalidInput)
	}
	if req.Color != "" && !entity.IsHexColor(req.Color) {
		return nil, fmt.Errorf("%w: %w", entity.ErrInvalidInput, entity.ErrInvalidColor)
	}
	mime, _, err := dataurl.Decode(req.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
	}
	if !dataurl.IsImage(mime) {
		return nil, fmt.Errorf("%w: %w", entity.ErrInvalidInput, entity.ErrNotImage)
	}

	start := s.clock.Now()
	resp, err := s.client.Apply(ctx, req)

	event := entity.WatermarkEvent{
		ID:         uuid.New().String(),
		RequestID:  requestID,
		Params:     req.Params(),
		ImageBytes: len(req.Image),
		Duration:   s.clock.Now().Sub(start),
		CreatedAt:  start,
	}
	switch {
	case err != nil:
		event.Error = err.Error()
	case resp.Success:
		event.Success = true
		event.ImageURL = resp.ImageURL
	default:
		event.Error = resp.Error
	}

	if perr := s.producer.SendMessage(ctx, event.ID, event); perr != nil {
		logrus.WithError(perr).WithField("event_id", event.ID).Warn("Failed to publish watermark event")
	}

	return resp, err
}

// FetchResult streams a result image produced by the watermarking server.
func (s *watermarkService) FetchResult(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, "", fmt.Errorf("%w: bad result name %q", entity.ErrInvalidInput, name)
	}
	return s.client.Fetch(ctx, resultsPath+name)
}
