// Package kafka publishes audit events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/twmb/franz-go/pkg/kgo"

	"willgate/pkg/platform/audit"
	"willgate/pkg/platform/circuit"
)

// ErrCircuitOpen is returned while the broker is considered unhealthy.
var ErrCircuitOpen = errors.New("kafka audit sink circuit open")

// Producer is the subset of *kgo.Client the sink uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Sink is a best-effort audit.Appender. Records are keyed by account so a
// consumer sees one account's history in order.
type Sink struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	logger   *slog.Logger
	probe    atomic.Int64
}

type Option func(*Sink)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) { s.logger = logger }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Sink) { s.breaker = b }
}

func New(producer Producer, topic string, opts ...Option) *Sink {
	s := &Sink{
		producer: producer,
		topic:    topic,
		breaker:  circuit.New("kafka-audit", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(1)),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// probeEvery sets how many events are skipped between probes while open.
const probeEvery = 10

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	if s.breaker.IsOpen() {
		if s.probe.Add(1)%probeEvery != 0 {
			return ErrCircuitOpen
		}
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Account.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(event.Category)},
			{Key: "action", Value: []byte(event.Action)},
		},
	}

	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "kafka audit sink circuit opened", "topic", s.topic, "error", err)
		}
		return fmt.Errorf("produce audit event: %w", err)
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "kafka audit sink circuit closed", "topic", s.topic)
	}
	return nil
}
