package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/history"
	"herald/internal/inference"
	"herald/internal/logger"
	"herald/internal/routing"
	"herald/internal/rules"
	"herald/internal/urgency"
	pkgerrors "herald/pkg/errors"
	"herald/pkg/models"
)

func newOrchestrator(t *testing.T, capability inference.Capability, reader history.Reader) *Orchestrator {
	t.Helper()
	log := logger.NopLogger()
	if reader == nil {
		reader = history.ReaderFunc(func(ctx context.Context, tenantID, userID, senderID string) (*history.SenderHistory, error) {
			return nil, nil
		})
	}
	return New(
		rules.NewEngine(log),
		urgency.NewClassifier(capability, reader, log),
		routing.NewClassifier(nil, nil, log),
		log,
	)
}

func message(content string, chatType models.ChatType) *models.NormalizedMessage {
	return &models.NormalizedMessage{
		MessageID: "msg-1",
		TenantID:  "tenant-1",
		UserID:    "user-1",
		SenderID:  "sender-1",
		Content:   content,
		ChatType:  chatType,
		Timestamp: time.Now().Unix(),
	}
}

func auditStep(t *testing.T, result *models.ProcessingResult, step string) models.AuditEntry {
	t.Helper()
	for _, e := range result.AuditTrail {
		if e.Step == step {
			return e
		}
	}
	t.Fatalf("audit trail missing step %q", step)
	return models.AuditEntry{}
}

func TestProcess_FinancialMessageRoutesImmediate(t *testing.T) {
	o := newOrchestrator(t, inference.NewStubClientWith("", errors.New("must not be called")), nil)

	result, err := o.Process(context.Background(), message("Sua fatura de R$ 350,00 vence amanhã", models.ChatTypeIndividual))
	require.NoError(t, err)

	assert.Equal(t, models.RouteImmediate, result.Decision)
	assert.Equal(t, rules.RuleFinancialContent, result.RuleName)
	assert.False(t, result.InferenceUsed)
	assert.GreaterOrEqual(t, result.Confidence, 0.85)

	ruleEntry := auditStep(t, result, StepRuleEngine)
	assert.NotEmpty(t, ruleEntry.Fields["reasoning"])

	// Rule was decisive, so the secondary classifier entry is a skip that
	// preserves the rule's verdict.
	skipped := auditStep(t, result, StepSecondaryClassifier)
	assert.True(t, skipped.Skipped)
	assert.Equal(t, SkipReasonRuleDecisive, skipped.SkipReason)
	assert.Equal(t, "urgent", skipped.Fields["decision"])
	assert.Equal(t, result.Confidence, skipped.Fields["confidence"])
}

func TestProcess_GroupMessageNeverImmediate(t *testing.T) {
	o := newOrchestrator(t, inference.NewStubClientWith("", errors.New("must not be called")), nil)

	result, err := o.Process(context.Background(), message("Sua fatura de R$ 350,00 vence amanhã", models.ChatTypeGroup))
	require.NoError(t, err)

	assert.Equal(t, models.RouteDigest, result.Decision)
	assert.Equal(t, rules.RuleGroupMessage, result.RuleName)
}

func TestProcess_MarketingMessageGoesToDigest(t *testing.T) {
	o := newOrchestrator(t, inference.NewStubClientWith("", errors.New("must not be called")), nil)

	result, err := o.Process(context.Background(), message("Promoção Black Friday! 50% de desconto, aproveite hoje", models.ChatTypeIndividual))
	require.NoError(t, err)

	assert.Equal(t, models.RouteDigest, result.Decision)
	assert.Equal(t, rules.RuleMarketingContent, result.RuleName)
}

func TestProcess_EmptyMessageSkipsSecondary(t *testing.T) {
	o := newOrchestrator(t, inference.NewStubClientWith("", errors.New("must not be called")), nil)

	result, err := o.Process(context.Background(), message("", models.ChatTypeIndividual))
	require.NoError(t, err)

	assert.Equal(t, models.RouteDigest, result.Decision)
	assert.Equal(t, rules.RuleEmptyMessage, result.RuleName)
	assert.InDelta(t, 0.70, result.Confidence, 0.001)
	assert.True(t, auditStep(t, result, StepSecondaryClassifier).Skipped)
}

func TestProcess_UndecidedInvokesSecondary(t *testing.T) {
	capability := inference.NewStubClientWith(`{"urgent": true, "confidence": 0.92, "reasoning": "emergência"}`, nil)
	o := newOrchestrator(t, capability, nil)

	result, err := o.Process(context.Background(), message("minha mãe passou mal, me liga assim que puder", models.ChatTypeIndividual))
	require.NoError(t, err)

	assert.Equal(t, models.RouteImmediate, result.Decision)
	assert.Equal(t, rules.RuleNoMatch, result.RuleName)
	assert.True(t, result.InferenceUsed)

	secondary := auditStep(t, result, StepSecondaryClassifier)
	assert.False(t, secondary.Skipped)
	assert.Equal(t, true, secondary.Fields["urgent"])
}

func TestProcess_ConservativeOverrideEndsInDigest(t *testing.T) {
	// First contact plus a 0.70-confidence urgent verdict: the override
	// forces not urgent, and routing lands on digest.
	capability := inference.NewStubClientWith(`{"urgent": true, "confidence": 0.70, "reasoning": "parece importante"}`, nil)
	o := newOrchestrator(t, capability, nil)

	result, err := o.Process(context.Background(), message("podemos conversar sobre aquele assunto hoje?", models.ChatTypeIndividual))
	require.NoError(t, err)

	assert.Equal(t, models.RouteDigest, result.Decision)
	secondary := auditStep(t, result, StepSecondaryClassifier)
	assert.Equal(t, false, secondary.Fields["urgent"])
	assert.Equal(t, true, secondary.Fields["overridden"])
}

func TestProcess_InferenceFailureStillProducesResult(t *testing.T) {
	capability := inference.NewStubClientWith("", errors.New("model unavailable"))
	o := newOrchestrator(t, capability, nil)

	result, err := o.Process(context.Background(), message("podemos conversar sobre aquele assunto hoje?", models.ChatTypeIndividual))
	require.NoError(t, err)

	assert.Equal(t, models.RouteDigest, result.Decision)
	assert.False(t, result.InferenceUsed)
}

func TestProcess_AuditTrailIsComplete(t *testing.T) {
	o := newOrchestrator(t, inference.NewStubClient(), nil)

	result, err := o.Process(context.Background(), message("Você viu o jogo ontem?", models.ChatTypeIndividual))
	require.NoError(t, err)

	steps := make([]string, len(result.AuditTrail))
	for i, e := range result.AuditTrail {
		steps[i] = e.Step
	}
	assert.Equal(t, []string{
		StepRuleEngine,
		StepSecondaryClassifier,
		StepRoutingClassifier,
		StepRouteDecision,
		StepAuditFinalize,
	}, steps)

	assert.NotZero(t, result.ProcessedAt)
	assert.Greater(t, result.ProcessingTime, time.Duration(0))
}

func TestFallbackResult_KeepsAccumulatedAuditTrail(t *testing.T) {
	msg := message("Você viu o jogo ontem?", models.ChatTypeIndividual)
	trail := []models.AuditEntry{
		{Step: StepRuleEngine, Timestamp: time.Now().UTC()},
		{Step: StepSecondaryClassifier, Timestamp: time.Now().UTC()},
	}

	result := fallbackResult(msg, trail, time.Now().Add(-time.Millisecond))

	assert.Equal(t, models.RouteDigest, result.Decision)
	assert.Len(t, result.AuditTrail, 2)
	assert.Equal(t, StepRuleEngine, result.AuditTrail[0].Step)
	assert.NotZero(t, result.ProcessedAt)
}

func TestProcess_MalformedMessageRejected(t *testing.T) {
	o := newOrchestrator(t, inference.NewStubClient(), nil)

	tests := []struct {
		name string
		msg  *models.NormalizedMessage
	}{
		{"nil message", nil},
		{"missing message id", &models.NormalizedMessage{TenantID: "t", UserID: "u", SenderID: "s", ChatType: models.ChatTypeIndividual}},
		{"missing tenant", &models.NormalizedMessage{MessageID: "m", UserID: "u", SenderID: "s", ChatType: models.ChatTypeIndividual}},
		{"bad chat type", &models.NormalizedMessage{MessageID: "m", TenantID: "t", UserID: "u", SenderID: "s", ChatType: "broadcast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := o.Process(context.Background(), tt.msg)
			assert.Nil(t, result)
			assert.True(t, pkgerrors.IsMalformedMessage(err))
		})
	}
}

func TestProcess_RuleStatsAccumulate(t *testing.T) {
	o := newOrchestrator(t, inference.NewStubClient(), nil)
	ctx := context.Background()

	_, err := o.Process(ctx, message("Sua fatura de R$ 350,00 vence amanhã", models.ChatTypeIndividual))
	require.NoError(t, err)
	_, err = o.Process(ctx, message("Você viu o jogo ontem?", models.ChatTypeIndividual))
	require.NoError(t, err)

	assert.Equal(t, int64(2), o.RuleStats().Total())
}
