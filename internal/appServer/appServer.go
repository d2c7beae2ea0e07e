// launching the dev server: web form assets, watermark API forwarding, kafka events
package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/WB_L3/watermark/config"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/kafka"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/scheduler"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/watermarkapi"
	"github.com/ds124wfegd/WB_L3/watermark/internal/service"
	"github.com/ds124wfegd/WB_L3/watermark/internal/transport"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(logrus.StandardLogger().WriterLevel(logrus.ErrorLevel), "", 0),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// maxBodyBytes allows for base64 growth plus the JSON envelope around the image.
func maxBodyBytes(maxImageBytes int64) int64 {
	if maxImageBytes <= 0 {
		return 0
	}
	return maxImageBytes/3*4 + 4 + 64<<10
}

func newProducer(cfg config.KafkaConfig) kafka.Producer {
	if !cfg.Enabled {
		return kafka.NewMockProducer()
	}
	return kafka.NewProducer(cfg.Brokers, cfg.Topic)
}

// NewHandler wires the HTTP stack without starting a listener.
func NewHandler(cfg *config.Config, producer kafka.Producer) (http.Handler, error) {
	client, err := watermarkapi.NewClient(cfg.Client.BaseURL,
		watermarkapi.WithTimeout(cfg.Client.Timeout),
		watermarkapi.WithLogger(logrus.WithField("component", "watermarkapi")),
	)
	if err != nil {
		return nil, err
	}

	svc := service.NewWatermarkService(client, producer, scheduler.SystemClock())
	handler := transport.NewWatermarkHandler(svc, maxBodyBytes(cfg.Form.MaxImageBytes))
	return transport.InitRoutes(handler, cfg.Server.WebDir), nil
}

// NewServer runs the dev server until SIGINT or SIGTERM.
func NewServer(cfg *config.Config) error {

	logrus.SetFormatter(new(logrus.JSONFormatter))

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	producer := newProducer(cfg.Kafka)
	defer producer.Close()

	handler, err := NewHandler(cfg, producer)
	if err != nil {
		return err
	}

	srv := new(Server)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Run(cfg, handler); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	logrus.WithFields(logrus.Fields{
		"addr":     cfg.Server.Host + ":" + cfg.Server.Port,
		"upstream": cfg.Client.BaseURL,
	}).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	select {
	case <-quit:
	case err := <-errCh:
		logrus.Errorf("error occured while running http server: %s", err.Error())
		return err
	}

	logrus.Print("App Shutting Down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
		return err
	}
	return nil
}
