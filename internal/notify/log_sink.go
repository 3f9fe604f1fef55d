package notify

import (
	"context"
	"encoding/json"
	"log"
)

// LogSink writes notifications to the process log. It stands in for email or push delivery.
type LogSink struct {
	logger *log.Logger
}

func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(_ context.Context, n Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return err
	}
	s.logger.Printf("[notification] to=%s kind=%s payload=%s", n.UserID, n.Kind, payload)
	return nil
}
