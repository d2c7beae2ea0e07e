package service

import (
	"context"
	"io"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/kafka"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/scheduler"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/watermarkapi"
)

type WatermarkService interface {
	Apply(ctx context.Context, requestID string, req entity.WatermarkRequest) (*entity.WatermarkResponse, error)
	FetchResult(ctx context.Context, name string) (io.ReadCloser, string, error)
}

type watermarkService struct {
	client   watermarkapi.Client
	producer kafka.Producer
	clock    scheduler.Clock
}

func NewWatermarkService(client watermarkapi.Client, producer kafka.Producer, clock scheduler.Clock) WatermarkService {
	return &watermarkService{
		client:   client,
		producer: producer,
		clock:    clock,
	}
}
