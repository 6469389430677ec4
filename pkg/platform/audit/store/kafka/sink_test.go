package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"willgate/pkg/domain"
	"willgate/pkg/platform/audit"
	"willgate/pkg/platform/circuit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	calls   int
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	p.calls++
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if p.err == nil {
			p.records = append(p.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

var account = domain.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")

func TestSink_ProducesKeyedJSON(t *testing.T) {
	producer := &fakeProducer{}
	sink := New(producer, "willgate.audit")

	err := sink.Append(context.Background(), audit.Event{
		ID:       "evt-1",
		Account:  account,
		Action:   audit.ActionVoteCast,
		Category: audit.CategoryCompliance,
		Epoch:    3,
	})
	require.NoError(t, err)
	require.Len(t, producer.records, 1)

	rec := producer.records[0]
	assert.Equal(t, "willgate.audit", rec.Topic)
	assert.Equal(t, account.String(), string(rec.Key))

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, "evt-1", decoded.ID)
	assert.Equal(t, uint64(3), decoded.Epoch)
}

func TestSink_BreakerOpensAndSkipsBroker(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker unreachable")}
	sink := New(producer, "willgate.audit", WithBreaker(circuit.New("test", circuit.WithFailureThreshold(2))))

	for range 2 {
		require.Error(t, sink.Append(context.Background(), audit.Event{Account: account}))
	}
	assert.Equal(t, 2, producer.calls)

	err := sink.Append(context.Background(), audit.Event{Account: account})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, producer.calls, "open circuit should not reach the broker")
}

func TestSink_ProbeClosesBreaker(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker unreachable")}
	sink := New(producer, "willgate.audit", WithBreaker(circuit.New("test",
		circuit.WithFailureThreshold(1), circuit.WithSuccessThreshold(1))))

	require.Error(t, sink.Append(context.Background(), audit.Event{Account: account}))
	producer.err = nil

	var lastErr error
	for range probeEvery {
		lastErr = sink.Append(context.Background(), audit.Event{Account: account})
	}
	require.NoError(t, lastErr)
	assert.False(t, sink.breaker.IsOpen())
}
