package urgency

import (
	"fmt"
	"strings"

	"herald/internal/constants"
	"herald/internal/history"
	"herald/pkg/models"
)

// BuildPrompt assembles the classification prompt sent to the inference
// capability. Content is bounded to a fixed prefix so one oversized
// message can't blow the token budget.
func BuildPrompt(msg *models.NormalizedMessage, h *history.SenderHistory) string {
	text := msg.Text()
	if len(text) > constants.PromptContentPrefixLen {
		text = text[:constants.PromptContentPrefixLen]
	}

	sender := msg.SenderName
	if sender == "" {
		sender = msg.SenderID
	}

	var b strings.Builder
	b.WriteString("You are an expert in analyzing message urgency for a Brazilian notification system.\n\n")
	b.WriteString("Analyze the following message and determine its urgency level:\n\n")
	b.WriteString("MESSAGE METADATA:\n")
	fmt.Fprintf(&b, "- From: %s\n", sender)
	fmt.Fprintf(&b, "- Is Group: %t\n\n", msg.IsGroup())
	fmt.Fprintf(&b, "MESSAGE CONTENT (first %d chars):\n%s\n\n", constants.PromptContentPrefixLen, text)

	b.WriteString(historicalContext(msg.SenderID, h))

	b.WriteString("CLASSIFICATION GUIDELINES:\n")
	b.WriteString("- URGENT: Requires immediate action (financial alerts, security codes, emergencies, time-sensitive)\n")
	b.WriteString("- NOT URGENT: Can wait (general messages, marketing, casual conversation, information)\n\n")
	b.WriteString("Respond with ONLY a valid JSON object (no markdown, no extra text):\n")
	b.WriteString(`{"urgent": <bool>, "confidence": <float 0.0-1.0>, "reasoning": "<brief explanation in Portuguese>"}`)

	return b.String()
}

// historicalContext renders the sender statistics as plain-language text.
// A nil history is a first contact and is said so explicitly; the model
// should not have to guess why the block is empty.
func historicalContext(senderID string, h *history.SenderHistory) string {
	var b strings.Builder
	b.WriteString("CONTEXTO HISTÓRICO DO FEEDBACK:\n\n")

	if h == nil || h.TotalMessages == 0 {
		fmt.Fprintf(&b, "Remetente (%s): Nenhum histórico disponível (primeiro contato ou dados insuficientes)\n\n", senderID)
		return b.String()
	}

	fmt.Fprintf(&b, "Remetente (%s):\n", senderID)
	fmt.Fprintf(&b, "  - Total de mensagens: %d\n", h.TotalMessages)
	fmt.Fprintf(&b, "  - Taxa de importância: %.1f%%\n", h.UrgencyRate()*100)
	fmt.Fprintf(&b, "  - Confirmadas como importantes: %d\n", h.UrgentMessages)
	fmt.Fprintf(&b, "  - Confirmadas como não importantes: %d\n", h.TotalMessages-h.UrgentMessages)
	if h.AvgResponseSeconds > 0 {
		fmt.Fprintf(&b, "  - Tempo médio de resposta: %.1f min\n", h.AvgResponseSeconds/60)
	}
	b.WriteString("\n")

	return b.String()
}
