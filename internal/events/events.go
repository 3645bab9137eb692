// Package events publishes reading-ingested notifications to a
// message broker so dashboards and downstream pipelines can react
// without polling the database. Publishing is best-effort: the
// ingestion endpoints log a failed publish and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uvify/apiserver/config"
)

// ReadingEvent is the payload published for every ingested reading.
type ReadingEvent struct {
	ReadingID int             `json:"reading_id,omitempty"`
	UserID    *int            `json:"user_id"`
	Date      string          `json:"date"`
	Time      string          `json:"time"`
	UVI       decimal.Decimal `json:"uvi"`
	Level     string          `json:"level"`
	// Persisted reports whether the database write succeeded. The
	// degraded-mode device path publishes with Persisted=false.
	Persisted  bool      `json:"persisted"`
	ReceivedAt time.Time `json:"received_at"`
}

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher wraps a backend and the configured topic with a stable API.
type Publisher struct {
	backend Backend
	topic   string
}

// New constructs a Publisher for the provided backend and topic.
func New(backend Backend, topic string) *Publisher {
	return &Publisher{backend: backend, topic: topic}
}

// NewFromConfig selects a backend by name. An empty or "none" backend
// yields a publisher that drops events.
func NewFromConfig(ctx context.Context, cfg config.EventsConfig) (*Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "none":
		return New(noopBackend{}, cfg.Topic), nil
	case "pubsub":
		backend, err := NewPubSubBackend(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return New(backend, cfg.Topic), nil
	case "rabbitmq":
		backend, err := NewRabbitMQBackend(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return New(backend, cfg.Topic), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// ReadingIngested publishes the event to the configured topic.
func (p *Publisher) ReadingIngested(ctx context.Context, event ReadingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	attrs := map[string]string{"event": "reading.ingested"}
	_, err = p.backend.Publish(ctx, p.topic, data, attrs)
	return err
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	return p.backend.Close()
}

type noopBackend struct{}

func (noopBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return "", nil
}

func (noopBackend) Close() error { return nil }
