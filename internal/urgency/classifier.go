// Package urgency implements the secondary classifier that handles
// messages the rule engine could not decide. It leans on an external
// inference capability but is built so that every failure mode degrades
// to a conservative not-urgent verdict.
package urgency

import (
	"context"
	"fmt"
	"strings"

	"herald/internal/constants"
	"herald/internal/history"
	"herald/internal/inference"
	"herald/internal/logger"
	pkgerrors "herald/pkg/errors"
	"herald/pkg/metrics"
	"herald/pkg/models"
)

// Override minimum confidences for keeping an urgent verdict. The less we
// know about a sender, the stronger the evidence has to be.
const (
	minConfidenceDefault      = 0.75
	minConfidenceKnownSender  = 0.65
	minConfidenceFirstContact = 0.85
	minConfidenceRarelyUrgent = 0.85
	minConfidenceGroup        = 0.90
)

// Fast-path confidences. Group and empty messages never reach inference.
const (
	fastPathGroupConfidence = 0.90
	fastPathEmptyConfidence = 0.85
)

// fallbackConfidence is the confidence attached to any fault-driven
// conservative verdict. Kept below the routing immediate threshold.
const fallbackConfidence = 0.5

// Verdict is the classifier's output. It never carries an error; faults
// are folded into a conservative verdict with the reasoning explaining
// what happened.
type Verdict struct {
	Urgent        bool    `json:"urgent"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning"`
	InferenceUsed bool    `json:"inference_used"`
	FastPath      string  `json:"fast_path,omitempty"`
	Overridden    bool    `json:"overridden,omitempty"`
}

// Classifier decides urgency for rule-undecided messages.
type Classifier struct {
	capability inference.Capability
	reader     history.Reader
	log        logger.Logger
}

func NewClassifier(capability inference.Capability, reader history.Reader, log logger.Logger) *Classifier {
	return &Classifier{
		capability: capability,
		reader:     reader,
		log:        log,
	}
}

// Classify produces an urgency verdict for the message. It never panics
// and never returns an error; the worst case is a not-urgent verdict at
// fallback confidence.
func (c *Classifier) Classify(ctx context.Context, msg *models.NormalizedMessage) (verdict Verdict) {
	defer func() {
		if err := pkgerrors.RecoverPanic(recover()); err != nil {
			c.log.ErrorwCtx(ctx, "urgency classifier panic recovered",
				"message_id", msg.MessageID,
				"error", err,
			)
			metrics.UrgencyClassifierTotal.WithLabelValues("panic").Inc()
			verdict = conservativeVerdict(fmt.Sprintf("falha interna: %v", err))
		}
	}()

	if msg.IsGroup() {
		metrics.UrgencyClassifierTotal.WithLabelValues("fast_path_group").Inc()
		return Verdict{
			Urgent:     false,
			Confidence: fastPathGroupConfidence,
			Reasoning:  "mensagem de grupo, raramente acionável individualmente",
			FastPath:   "group",
		}
	}

	if len(strings.TrimSpace(msg.Text())) < constants.MinMeaningfulContentLen {
		metrics.UrgencyClassifierTotal.WithLabelValues("fast_path_empty").Inc()
		return Verdict{
			Urgent:     false,
			Confidence: fastPathEmptyConfidence,
			Reasoning:  "conteúdo vazio ou trivial",
			FastPath:   "empty",
		}
	}

	// A failed lookup comes back as nil history and is handled like a
	// first contact.
	h, err := c.reader.GetSenderHistory(ctx, msg.TenantID, msg.UserID, msg.SenderID)
	if err != nil {
		c.log.WarnwCtx(ctx, "history lookup failed, treating as first contact",
			"message_id", msg.MessageID,
			"error", err,
		)
		h = nil
	}

	reply, err := c.capability.Complete(ctx, BuildPrompt(msg, h))
	if err != nil {
		metrics.UrgencyClassifierTotal.WithLabelValues("inference_error").Inc()
		metrics.FallbackUsageTotal.WithLabelValues("urgency", "inference_error").Inc()
		return conservativeVerdict(fmt.Sprintf("falha na inferência: %v", err))
	}

	urgent, confidence, reasoning, err := ParseVerdict(reply)
	if err != nil {
		metrics.UrgencyClassifierTotal.WithLabelValues("parse_error").Inc()
		metrics.FallbackUsageTotal.WithLabelValues("urgency", "parse_error").Inc()
		return conservativeVerdict(fmt.Sprintf("resposta ilegível do modelo: %v", err))
	}

	verdict = Verdict{
		Urgent:        urgent,
		Confidence:    confidence,
		Reasoning:     reasoning,
		InferenceUsed: true,
	}
	verdict = c.applyOverride(ctx, msg, h, verdict)

	metrics.UrgencyClassifierTotal.WithLabelValues("inference").Inc()
	c.log.DebugwCtx(ctx, "urgency classification complete",
		"message_id", msg.MessageID,
		"urgent", verdict.Urgent,
		"confidence", verdict.Confidence,
		"overridden", verdict.Overridden,
	)
	return verdict
}

// applyOverride downgrades urgent verdicts whose confidence does not meet
// the minimum for what we know about the sender. The reasoning is amended
// so the audit trail shows the downgrade.
func (c *Classifier) applyOverride(ctx context.Context, msg *models.NormalizedMessage, h *history.SenderHistory, v Verdict) Verdict {
	if !v.Urgent {
		return v
	}

	minimum := minimumConfidence(msg, h)
	if v.Confidence >= minimum {
		return v
	}

	metrics.UrgencyOverridesTotal.Inc()
	c.log.InfowCtx(ctx, "urgent verdict downgraded by conservative override",
		"message_id", msg.MessageID,
		"confidence", v.Confidence,
		"minimum", minimum,
	)

	v.Urgent = false
	v.Overridden = true
	v.Reasoning = fmt.Sprintf(
		"%s [rebaixado: confiança %.2f abaixo do mínimo %.2f para este remetente]",
		v.Reasoning, v.Confidence, minimum,
	)
	return v
}

func minimumConfidence(msg *models.NormalizedMessage, h *history.SenderHistory) float64 {
	minimum := minConfidenceDefault

	switch {
	case h.Known():
		minimum = minConfidenceKnownSender
	case h == nil || h.TotalMessages == 0:
		minimum = minConfidenceFirstContact
	}

	if h.RarelyUrgent() && minimum < minConfidenceRarelyUrgent {
		minimum = minConfidenceRarelyUrgent
	}
	if msg.IsGroup() && minimum < minConfidenceGroup {
		minimum = minConfidenceGroup
	}
	return minimum
}

func conservativeVerdict(reasoning string) Verdict {
	return Verdict{
		Urgent:     false,
		Confidence: fallbackConfidence,
		Reasoning:  reasoning,
	}
}
