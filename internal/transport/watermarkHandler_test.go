package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/watermarkapi"
	"github.com/ds124wfegd/WB_L3/watermark/internal/transport/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	logrus.SetOutput(io.Discard)
}

type stubService struct {
	resp      *entity.WatermarkResponse
	err       error
	requestID string
	got       *entity.WatermarkRequest
	fetchErr  error
}

func (s *stubService) Apply(ctx context.Context, requestID string, req entity.WatermarkRequest) (*entity.WatermarkResponse, error) {
	s.requestID = requestID
	s.got = &req
	return s.resp, s.err
}

func (s *stubService) FetchResult(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if s.fetchErr != nil {
		return nil, "", s.fetchErr
	}
	return io.NopCloser(strings.NewReader("image:" + name)), "image/png", nil
}

const validBody = `{"image":"data:image/png;base64,aGVsbG8=","text":"Hello","fontSize":10,"opacity":50,"color":"#ff0000","angle":45}`

// range inputs report their value as strings
const stringNumbersBody = `{"image":"data:image/png;base64,aGVsbG8=","text":"Hello","fontSize":"10","opacity":"50","color":"#ff0000","angle":"45"}`

func TestApplyWatermarkHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *stubService
		wantStatus int
		wantResp   entity.WatermarkResponse
	}{
		{
			name:       "success",
			body:       validBody,
			svc:        &stubService{resp: &entity.WatermarkResponse{Success: true, ImageURL: "/static/results/1.png"}},
			wantStatus: http.StatusOK,
			wantResp:   entity.WatermarkResponse{Success: true, ImageURL: "/static/results/1.png"},
		},
		{
			name:       "numbers sent as strings",
			body:       stringNumbersBody,
			svc:        &stubService{resp: &entity.WatermarkResponse{Success: true, ImageURL: "/static/results/1.png"}},
			wantStatus: http.StatusOK,
			wantResp:   entity.WatermarkResponse{Success: true, ImageURL: "/static/results/1.png"},
		},
		{
			name:       "logical failure passes through",
			body:       validBody,
			svc:        &stubService{resp: &entity.WatermarkResponse{Error: "bad text"}},
			wantStatus: http.StatusOK,
			wantResp:   entity.WatermarkResponse{Error: "bad text"},
		},
		{
			name:       "upstream down",
			body:       validBody,
			svc:        &stubService{err: errors.New("connection refused")},
			wantStatus: http.StatusBadGateway,
			wantResp:   entity.WatermarkResponse{Error: "connection refused"},
		},
		{
			name:       "invalid input from service",
			body:       validBody,
			svc:        &stubService{err: fmt.Errorf("%w: bad color", entity.ErrInvalidInput)},
			wantStatus: http.StatusBadRequest,
			wantResp:   entity.WatermarkResponse{Error: "invalid input: bad color"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := InitRoutes(NewWatermarkHandler(tt.svc, 0), "")

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/watermark", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(middleware.RequestIDHeader, "req-42")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var got entity.WatermarkResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.wantResp, got)
			assert.Equal(t, "req-42", tt.svc.requestID)
			assert.Equal(t, "req-42", w.Header().Get(middleware.RequestIDHeader))
			require.NotNil(t, tt.svc.got)
			assert.Equal(t, "Hello", tt.svc.got.Text)
			assert.Equal(t, 45, tt.svc.got.Angle)
			assert.Equal(t, 10, tt.svc.got.FontSize)
			assert.Equal(t, 50, tt.svc.got.Opacity)
		})
	}
}

func TestApplyWatermarkBadRequests(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		maxBody    int64
		wantStatus int
	}{
		{name: "not json", body: "nope", wantStatus: http.StatusBadRequest},
		{name: "missing image", body: `{"text":"Hello"}`, wantStatus: http.StatusBadRequest},
		{name: "missing text", body: `{"image":"data:image/png;base64,aGVsbG8="}`, wantStatus: http.StatusBadRequest},
		{name: "non-numeric font size", body: `{"image":"data:image/png;base64,aGVsbG8=","text":"Hello","fontSize":"big"}`, wantStatus: http.StatusBadRequest},
		{name: "too large", body: validBody, maxBody: 16, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			router := InitRoutes(NewWatermarkHandler(svc, tt.maxBody), "")

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/watermark", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Nil(t, svc.got)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestGetResult(t *testing.T) {
	router := InitRoutes(NewWatermarkHandler(&stubService{}, 0), "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/results/1.png?t=123", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image:1.png", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestGetResultErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "bad name", err: entity.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "not found", err: &watermarkapi.StatusError{StatusCode: http.StatusNotFound, Status: "404 Not Found"}, wantStatus: http.StatusNotFound},
		{name: "upstream error", err: errors.New("boom"), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := InitRoutes(NewWatermarkHandler(&stubService{fetchErr: tt.err}, 0), "")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/results/x.png", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestStaticAndHealth(t *testing.T) {
	webDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html>form</html>"), 0644))

	router := InitRoutes(NewWatermarkHandler(&stubService{}, 0), webDir)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "form")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/watermark", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
