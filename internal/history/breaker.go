package history

import (
	"context"
	"time"

	"herald/internal/logger"
	"herald/pkg/circuitbreaker"
	"herald/pkg/metrics"
)

// BreakerReader bounds history lookups with a timeout and a circuit
// breaker. Any failure, including an open circuit, degrades to a nil
// history so the pipeline keeps moving on its conservative path.
type BreakerReader struct {
	inner   Reader
	cb      *circuitbreaker.Wrapper
	timeout time.Duration
	log     logger.Logger
}

func NewBreakerReader(inner Reader, timeout time.Duration, log logger.Logger) *BreakerReader {
	return &BreakerReader{
		inner:   inner,
		cb:      circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig("history")),
		timeout: timeout,
		log:     log,
	}
}

func (r *BreakerReader) GetSenderHistory(ctx context.Context, tenantID, userID, senderID string) (*SenderHistory, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.cb.ExecuteWithContext(lookupCtx, func() (interface{}, error) {
		return r.inner.GetSenderHistory(lookupCtx, tenantID, userID, senderID)
	})
	r.cb.RecordRequest(err == nil)

	if err != nil {
		metrics.FallbackUsageTotal.WithLabelValues("history", "lookup_failed").Inc()
		r.log.WarnwCtx(ctx, "history lookup degraded to first contact",
			"sender_id", senderID,
			"breaker_state", r.cb.State().String(),
			"error", err,
		)
		return nil, nil
	}

	h, _ := result.(*SenderHistory)
	return h, nil
}

func (r *BreakerReader) BreakerOpen() bool {
	return r.cb.IsOpen()
}
