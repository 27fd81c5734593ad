package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/logger"
)

func TestSenderHistory_UrgencyRate(t *testing.T) {
	h := &SenderHistory{TotalMessages: 20, UrgentMessages: 5}
	assert.InDelta(t, 0.25, h.UrgencyRate(), 0.001)

	empty := &SenderHistory{}
	assert.Zero(t, empty.UrgencyRate())

	var nilHistory *SenderHistory
	assert.Zero(t, nilHistory.UrgencyRate())
}

func TestSenderHistory_Known(t *testing.T) {
	assert.False(t, (&SenderHistory{TotalMessages: 4}).Known())
	assert.True(t, (&SenderHistory{TotalMessages: 5}).Known())

	var nilHistory *SenderHistory
	assert.False(t, nilHistory.Known())
}

func TestSenderHistory_RarelyUrgent(t *testing.T) {
	assert.True(t, (&SenderHistory{TotalMessages: 100, UrgentMessages: 2}).RarelyUrgent())
	assert.False(t, (&SenderHistory{TotalMessages: 100, UrgentMessages: 40}).RarelyUrgent())
	// Not enough history to call it either way.
	assert.False(t, (&SenderHistory{TotalMessages: 3, UrgentMessages: 0}).RarelyUrgent())
}

func TestBreakerReader_PassesThrough(t *testing.T) {
	want := &SenderHistory{SenderID: "sender-1", TotalMessages: 12}
	inner := ReaderFunc(func(ctx context.Context, tenantID, userID, senderID string) (*SenderHistory, error) {
		return want, nil
	})

	r := NewBreakerReader(inner, time.Second, logger.NopLogger())
	got, err := r.GetSenderHistory(context.Background(), "t", "u", "sender-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBreakerReader_DegradesOnError(t *testing.T) {
	inner := ReaderFunc(func(ctx context.Context, tenantID, userID, senderID string) (*SenderHistory, error) {
		return nil, errors.New("connection refused")
	})

	r := NewBreakerReader(inner, time.Second, logger.NopLogger())
	got, err := r.GetSenderHistory(context.Background(), "t", "u", "s")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestBreakerReader_DegradesOnTimeout(t *testing.T) {
	inner := ReaderFunc(func(ctx context.Context, tenantID, userID, senderID string) (*SenderHistory, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return &SenderHistory{}, nil
		}
	})

	r := NewBreakerReader(inner, 20*time.Millisecond, logger.NopLogger())
	got, err := r.GetSenderHistory(context.Background(), "t", "u", "s")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestBreakerReader_OpensAfterRepeatedFailures(t *testing.T) {
	calls := 0
	inner := ReaderFunc(func(ctx context.Context, tenantID, userID, senderID string) (*SenderHistory, error) {
		calls++
		return nil, errors.New("down")
	})

	r := NewBreakerReader(inner, time.Second, logger.NopLogger())
	for i := 0; i < 10; i++ {
		got, err := r.GetSenderHistory(context.Background(), "t", "u", "s")
		assert.NoError(t, err)
		assert.Nil(t, got)
	}

	assert.True(t, r.BreakerOpen())
	// Once open, the breaker stops calling the inner reader.
	assert.Less(t, calls, 10)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "history:acme:u1:s1", cacheKey("acme", "u1", "s1"))
}
