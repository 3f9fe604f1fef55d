package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

const DefaultSubject = "weeklyplanner.notifications"

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes notifications as JSON on <subject>.<kind>.
type NATSSink struct {
	conn    *nats.Conn
	pub     publisher
	subject string
}

// ConnectNATS dials the server and returns a sink publishing under subject.
func ConnectNATS(url, subject string) (*NATSSink, error) {
	conn, err := nats.Connect(url,
		nats.Name("weekly-planner"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	sink := newNATSSink(conn, subject)
	sink.conn = conn
	return sink, nil
}

func newNATSSink(pub publisher, subject string) *NATSSink {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSSink{pub: pub, subject: subject}
}

func (s *NATSSink) Name() string { return "nats" }

func (s *NATSSink) Send(_ context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := s.pub.Publish(s.subjectFor(n.Kind), data); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (s *NATSSink) subjectFor(kind Kind) string {
	return s.subject + "." + strings.ToLower(string(kind))
}

// Close flushes pending messages and closes the connection.
func (s *NATSSink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Drain()
}
