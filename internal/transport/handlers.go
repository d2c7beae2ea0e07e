package transport

import (
	"github.com/ds124wfegd/WB_L3/watermark/internal/service"
)

type WatermarkHandler struct {
	service      service.WatermarkService
	maxBodyBytes int64
}

// NewWatermarkHandler limits request bodies to maxBodyBytes; zero means no limit.
func NewWatermarkHandler(service service.WatermarkService, maxBodyBytes int64) *WatermarkHandler {
	return &WatermarkHandler{service: service, maxBodyBytes: maxBodyBytes}
}
