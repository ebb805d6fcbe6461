// Package queue publishes analysis results to a message broker for
// downstream aggregation.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/solarops/inverter-insight/internal/domain"
)

// NATSSink is a ReportSink that publishes one JSON record per analyzed
// device-day.
type NATSSink struct {
	conn    *nats.Conn
	subject string
	log     *zap.Logger
}

// NewNATSSink connects to the broker.
func NewNATSSink(url, subject string, log *zap.Logger) (*NATSSink, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("Successfully connected to NATS", zap.String("url", url), zap.String("subject", subject))
	return &NATSSink{
		conn:    nc,
		subject: subject,
		log:     log,
	}, nil
}

func (s *NATSSink) Report(_ context.Context, rec *domain.DayReport) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal day report: %w", err)
	}
	return s.conn.Publish(s.subject, data)
}

// Close flushes pending publishes and drops the connection.
func (s *NATSSink) Close() error {
	if err := s.conn.Flush(); err != nil {
		return err
	}
	s.conn.Close()
	return nil
}
