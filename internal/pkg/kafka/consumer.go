package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// EventHandler receives every decoded watermark event.
type EventHandler func(event entity.WatermarkEvent) error

func NewEventReader(brokers, topic, groupID string) MessageReader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        strings.Split(brokers, ","),
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
}

// ConsumeEvents reads the audit topic until ctx is done. Messages that do
// not decode are logged and skipped, handler errors are logged only.
func ConsumeEvents(ctx context.Context, reader MessageReader, handle EventHandler) error {
	defer reader.Close()

	logrus.Info("Watermark event consumer started")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			logrus.WithError(err).Error("Error reading message from Kafka")
			if !sleep(ctx, time.Second) {
				return nil
			}
			continue
		}

		log := logrus.WithFields(logrus.Fields{
			"topic":     msg.Topic,
			"partition": msg.Partition,
			"offset":    msg.Offset,
		})

		var event entity.WatermarkEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.WithError(err).Warn("Failed to parse watermark event")
			continue
		}

		if err := handle(event); err != nil {
			log.WithError(err).WithField("event_id", event.ID).Error("Event handler failed")
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
