package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"herald/internal/logger"
	"herald/pkg/models"
)

const (
	containerStartupTimeout = 60
)

func createTestLogger() logger.Logger {
	return logger.NopLogger()
}

func insertSenderStats(t *testing.T, db *sql.DB, tenantID, userID, senderID string, total, urgent int64, avgResponseSeconds float64) {
	t.Helper()

	_, err := db.ExecContext(context.Background(),
		`INSERT INTO sender_stats (tenant_id, user_id, sender_id, total_messages, urgent_messages, avg_response_seconds, last_interaction, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 ON CONFLICT (tenant_id, user_id, sender_id) DO UPDATE
		 SET total_messages = $4, urgent_messages = $5, avg_response_seconds = $6, updated_at = $7`,
		tenantID, userID, senderID, total, urgent, avgResponseSeconds, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("failed to insert sender stats: %v", err)
	}
}

func createTestResult(messageID, tenantID string, decision models.RoutingDecision, processedAt time.Time) *models.ProcessingResult {
	return &models.ProcessingResult{
		MessageID:   messageID,
		TenantID:    tenantID,
		UserID:      "user-1",
		Decision:    decision,
		Confidence:  0.85,
		Category:    "financial",
		Summary:     "Fatura vence amanhã",
		RuleName:    "financial_content",
		ProcessedAt: processedAt,
		AuditTrail: []models.AuditEntry{
			{Step: "rule_engine", Timestamp: processedAt},
			{Step: "route_decision", Timestamp: processedAt},
		},
	}
}
