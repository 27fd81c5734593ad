package urgency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"herald/internal/history"
	"herald/internal/inference"
	"herald/internal/logger"
	"herald/pkg/models"
)

func noHistory() history.Reader {
	return history.ReaderFunc(func(ctx context.Context, tenantID, userID, senderID string) (*history.SenderHistory, error) {
		return nil, nil
	})
}

func fixedHistory(h *history.SenderHistory) history.Reader {
	return history.ReaderFunc(func(ctx context.Context, tenantID, userID, senderID string) (*history.SenderHistory, error) {
		return h, nil
	})
}

func testMessage(content string, chatType models.ChatType) *models.NormalizedMessage {
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

func TestClassify_GroupFastPath(t *testing.T) {
	capability := inference.NewStubClientWith("", errors.New("must not be called"))
	c := NewClassifier(capability, noHistory(), logger.NopLogger())

	v := c.Classify(context.Background(), testMessage("mensagem longa o suficiente para análise", models.ChatTypeGroup))

	assert.False(t, v.Urgent)
	assert.GreaterOrEqual(t, v.Confidence, 0.90)
	assert.Equal(t, "group", v.FastPath)
	assert.False(t, v.InferenceUsed)
}

func TestClassify_EmptyFastPath(t *testing.T) {
	capability := inference.NewStubClientWith("", errors.New("must not be called"))
	c := NewClassifier(capability, noHistory(), logger.NopLogger())

	v := c.Classify(context.Background(), testMessage("oi", models.ChatTypeIndividual))

	assert.False(t, v.Urgent)
	assert.GreaterOrEqual(t, v.Confidence, 0.85)
	assert.Equal(t, "empty", v.FastPath)
	assert.False(t, v.InferenceUsed)
}

func TestClassify_UrgentWithKnownSender(t *testing.T) {
	capability := inference.NewStubClientWith(`{"urgent": true, "confidence": 0.70, "reasoning": "parece importante"}`, nil)
	reader := fixedHistory(&history.SenderHistory{TotalMessages: 30, UrgentMessages: 15})
	c := NewClassifier(capability, reader, logger.NopLogger())

	v := c.Classify(context.Background(), testMessage("preciso falar com você sobre o projeto", models.ChatTypeIndividual))

	// Known sender lowers the urgent minimum to 0.65, so 0.70 stands.
	assert.True(t, v.Urgent)
	assert.False(t, v.Overridden)
	assert.True(t, v.InferenceUsed)
}

func TestClassify_ConservativeOverrideOnFirstContact(t *testing.T) {
	capability := inference.NewStubClientWith(`{"urgent": true, "confidence": 0.70, "reasoning": "parece importante"}`, nil)
	c := NewClassifier(capability, noHistory(), logger.NopLogger())

	v := c.Classify(context.Background(), testMessage("preciso falar com você sobre o projeto", models.ChatTypeIndividual))

	// First contact requires 0.85 to keep an urgent verdict.
	assert.False(t, v.Urgent)
	assert.True(t, v.Overridden)
	assert.Contains(t, v.Reasoning, "rebaixado")
}

func TestClassify_OverrideForRarelyUrgentSender(t *testing.T) {
	capability := inference.NewStubClientWith(`{"urgent": true, "confidence": 0.80, "reasoning": "talvez importante"}`, nil)
	reader := fixedHistory(&history.SenderHistory{TotalMessages: 100, UrgentMessages: 3})
	c := NewClassifier(capability, reader, logger.NopLogger())

	v := c.Classify(context.Background(), testMessage("preciso falar com você sobre o projeto", models.ChatTypeIndividual))

	// Rarely urgent sender raises the minimum to 0.85 even though known.
	assert.False(t, v.Urgent)
	assert.True(t, v.Overridden)
}

func TestClassify_OverrideForRarelyUrgentNewishSender(t *testing.T) {
	capability := inference.NewStubClientWith(`{"urgent": true, "confidence": 0.80, "reasoning": "talvez importante"}`, nil)
	reader := fixedHistory(&history.SenderHistory{TotalMessages: 2, UrgentMessages: 0})
	c := NewClassifier(capability, reader, logger.NopLogger())

	v := c.Classify(context.Background(), testMessage("preciso falar com você sobre o projeto", models.ChatTypeIndividual))

	// A low urgency rate raises the minimum to 0.85 even before the
	// sender counts as known.
	assert.False(t, v.Urgent)
	assert.True(t, v.Overridden)
}

func TestClassify_HighConfidenceFirstContactStands(t *testing.T) {
	capability := inference.NewStubClientWith(`{"urgent": true, "confidence": 0.92, "reasoning": "emergência médica"}`, nil)
	c := NewClassifier(capability, noHistory(), logger.NopLogger())

	v := c.Classify(context.Background(), testMessage("minha mãe passou mal, me liga assim que puder", models.ChatTypeIndividual))

	assert.True(t, v.Urgent)
	assert.False(t, v.Overridden)
}

func TestClassify_InferenceFailureFallsBack(t *testing.T) {
	capability := inference.NewStubClientWith("", errors.New("model unavailable"))
	c := NewClassifier(capability, noHistory(), logger.NopLogger())

	v := c.Classify(context.Background(), testMessage("preciso falar com você sobre o projeto", models.ChatTypeIndividual))

	assert.False(t, v.Urgent)
	assert.LessOrEqual(t, v.Confidence, 0.5)
	assert.False(t, v.InferenceUsed)
	assert.NotEmpty(t, v.Reasoning)
}

func TestClassify_UnparseableReplyFallsBack(t *testing.T) {
	capability := inference.NewStubClientWith("I am not able to answer in JSON today.", nil)
	c := NewClassifier(capability, noHistory(), logger.NopLogger())

	v := c.Classify(context.Background(), testMessage("preciso falar com você sobre o projeto", models.ChatTypeIndividual))

	assert.False(t, v.Urgent)
	assert.LessOrEqual(t, v.Confidence, 0.5)
}

func TestClassify_HistoryErrorTreatedAsFirstContact(t *testing.T) {
	capability := inference.NewStubClientWith(`{"urgent": true, "confidence": 0.80, "reasoning": "importante"}`, nil)
	reader := history.ReaderFunc(func(ctx context.Context, tenantID, userID, senderID string) (*history.SenderHistory, error) {
		return nil, errors.New("postgres down")
	})
	c := NewClassifier(capability, reader, logger.NopLogger())

	v := c.Classify(context.Background(), testMessage("preciso falar com você sobre o projeto", models.ChatTypeIndividual))

	// 0.80 is below the 0.85 first-contact minimum.
	assert.False(t, v.Urgent)
	assert.True(t, v.Overridden)
}

func TestMinimumConfidence(t *testing.T) {
	individual := testMessage("conteúdo longo o bastante", models.ChatTypeIndividual)
	group := testMessage("conteúdo longo o bastante", models.ChatTypeGroup)

	tests := []struct {
		name    string
		msg     *models.NormalizedMessage
		history *history.SenderHistory
		want    float64
	}{
		{"first contact", individual, nil, 0.85},
		{"few messages", individual, &history.SenderHistory{TotalMessages: 2, UrgentMessages: 1}, 0.75},
		{"few messages, never urgent", individual, &history.SenderHistory{TotalMessages: 2}, 0.85},
		{"known sender", individual, &history.SenderHistory{TotalMessages: 30, UrgentMessages: 10}, 0.65},
		{"known but rarely urgent", individual, &history.SenderHistory{TotalMessages: 100, UrgentMessages: 2}, 0.85},
		{"group", group, nil, 0.90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, minimumConfidence(tt.msg, tt.history), 0.001)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	msg := testMessage("Sua fatura vence amanhã", models.ChatTypeIndividual)

	prompt := BuildPrompt(msg, nil)
	assert.Contains(t, prompt, "Sua fatura vence amanhã")
	assert.Contains(t, prompt, "primeiro contato")
	assert.Contains(t, prompt, `"urgent"`)

	prompt = BuildPrompt(msg, &history.SenderHistory{
		SenderID:       "sender-1",
		TotalMessages:  40,
		UrgentMessages: 8,
	})
	assert.Contains(t, prompt, "Total de mensagens: 40")
	assert.Contains(t, prompt, "20.0%")
	assert.NotContains(t, prompt, "primeiro contato")
	assert.NotContains(t, prompt, "Tempo médio de resposta")

	prompt = BuildPrompt(msg, &history.SenderHistory{
		SenderID:           "sender-1",
		TotalMessages:      40,
		UrgentMessages:     8,
		AvgResponseSeconds: 540,
	})
	assert.Contains(t, prompt, "Tempo médio de resposta: 9.0 min")
}

func TestBuildPrompt_BoundsContent(t *testing.T) {
	long := make([]byte, 3000)
	for i := range long {
		long[i] = 'a'
	}
	msg := testMessage(string(long), models.ChatTypeIndividual)

	prompt := BuildPrompt(msg, nil)
	assert.Less(t, len(prompt), 2000)
}
