package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"herald/internal/logger"
	"herald/pkg/metrics"
)

// sender_stats is written by the learning system; this reader never
// mutates it.
const senderStatsQuery = `
	SELECT total_messages, urgent_messages, avg_response_seconds, last_interaction, updated_at
	FROM sender_stats
	WHERE tenant_id = $1 AND user_id = $2 AND sender_id = $3`

// PostgresReader reads sender statistics from the learning system's
// postgres store.
type PostgresReader struct {
	db  *sql.DB
	log logger.Logger
}

func NewPostgresReader(db *sql.DB, log logger.Logger) *PostgresReader {
	return &PostgresReader{db: db, log: log}
}

func (r *PostgresReader) GetSenderHistory(ctx context.Context, tenantID, userID, senderID string) (*SenderHistory, error) {
	start := time.Now()

	h := &SenderHistory{
		TenantID: tenantID,
		UserID:   userID,
		SenderID: senderID,
	}

	var (
		avgResponse                sql.NullFloat64
		lastInteraction, updatedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, senderStatsQuery, tenantID, userID, senderID).Scan(
		&h.TotalMessages,
		&h.UrgentMessages,
		&avgResponse,
		&lastInteraction,
		&updatedAt,
	)
	metrics.ObserveHistoryLookupDuration("postgres", time.Since(start))

	if errors.Is(err, sql.ErrNoRows) {
		metrics.HistoryLookupsTotal.WithLabelValues("postgres", "not_found").Inc()
		return nil, nil
	}
	if err != nil {
		metrics.HistoryLookupsTotal.WithLabelValues("postgres", "error").Inc()
		return nil, fmt.Errorf("sender stats query failed: %w", err)
	}

	if avgResponse.Valid {
		h.AvgResponseSeconds = avgResponse.Float64
	}
	if lastInteraction.Valid {
		h.LastInteraction = lastInteraction.Time
	}
	if updatedAt.Valid {
		h.UpdatedAt = updatedAt.Time
	}

	metrics.HistoryLookupsTotal.WithLabelValues("postgres", "hit").Inc()
	r.log.DebugwCtx(ctx, "sender history loaded",
		"sender_id", senderID,
		"total_messages", h.TotalMessages,
		"urgent_messages", h.UrgentMessages,
	)
	return h, nil
}
