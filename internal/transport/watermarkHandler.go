package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/watermarkapi"
	"github.com/ds124wfegd/WB_L3/watermark/internal/transport/middleware"
)

func (h *WatermarkHandler) ApplyWatermark(c *gin.Context) {
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}

	var req entity.WatermarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, entity.WatermarkResponse{Error: entity.ErrImageTooLarge.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, entity.WatermarkResponse{Error: "invalid request: " + err.Error()})
		return
	}

	resp, err := h.service.Apply(c.Request.Context(), middleware.GetRequestID(c), req)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, entity.WatermarkResponse{Error: err.Error()})
			return
		}
		logrus.WithError(err).WithField("request_id", middleware.GetRequestID(c)).Error("Upstream watermark call failed")
		c.JSON(http.StatusBadGateway, entity.WatermarkResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *WatermarkHandler) GetResult(c *gin.Context) {
	body, contentType, err := h.service.FetchResult(c.Request.Context(), c.Param("file"))
	if err != nil {
		var statusErr *watermarkapi.StatusError
		switch {
		case errors.Is(err, entity.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Result not found"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "no-cache")
	c.DataFromReader(http.StatusOK, -1, contentType, body, nil)
}
