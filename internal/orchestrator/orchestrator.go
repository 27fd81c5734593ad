// Package orchestrator runs the triage pipeline for one message at a
// time: rule engine, secondary urgency classifier, routing classifier,
// then audit finalization. The machine is strictly linear with a single
// conditional skip; no state is revisited.
package orchestrator

import (
	"context"
	"time"

	"herald/internal/logger"
	"herald/internal/routing"
	"herald/internal/rules"
	"herald/internal/urgency"
	pkgerrors "herald/pkg/errors"
	"herald/pkg/metrics"
	"herald/pkg/models"
)

// Audit step names, in execution order.
const (
	StepRuleEngine          = "rule_engine"
	StepSecondaryClassifier = "secondary_classifier"
	StepRoutingClassifier   = "routing_classifier"
	StepRouteDecision       = "route_decision"
	StepAuditFinalize       = "audit_finalize"
)

// SkipReasonRuleDecisive marks the secondary classifier entry when the
// rule engine already settled the message.
const SkipReasonRuleDecisive = "rule_engine_decisive"

// Orchestrator coordinates the pipeline stages. Runs for different
// messages are fully independent and may execute in parallel.
type Orchestrator struct {
	rules   *rules.Engine
	urgency *urgency.Classifier
	routing *routing.Classifier
	log     logger.Logger
}

func New(ruleEngine *rules.Engine, urgencyClassifier *urgency.Classifier, routingClassifier *routing.Classifier, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		rules:   ruleEngine,
		urgency: urgencyClassifier,
		routing: routingClassifier,
		log:     log,
	}
}

// RuleStats exposes the rule engine's advisory counters.
func (o *Orchestrator) RuleStats() *rules.Stats {
	return o.rules.Stats()
}

// Process runs the full pipeline for one message. The only refusal is a
// malformed input, surfaced as a typed validation error; everything else
// degrades internally to conservative decisions.
func (o *Orchestrator) Process(ctx context.Context, msg *models.NormalizedMessage) (*models.ProcessingResult, error) {
	if err := models.ValidateNormalizedMessage(msg); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrMalformedMessage)
	}

	start := time.Now()
	trail := make([]models.AuditEntry, 0, 5)

	// rule_engine
	eval := o.rules.Evaluate(ctx, msg)
	trail = append(trail, entry(StepRuleEngine, map[string]interface{}{
		"rule_name":     eval.RuleName,
		"decision":      string(eval.Decision),
		"confidence":    eval.Confidence,
		"reasoning":     eval.Reasoning,
		"matched_terms": eval.MatchedTerms,
	}))

	// secondary_classifier
	var (
		urgent        bool
		confidence    float64
		inferenceUsed bool
	)
	if eval.Decisive() {
		urgent = eval.Decision == rules.DecisionUrgent
		confidence = eval.Confidence
		trail = append(trail, models.AuditEntry{
			Step:       StepSecondaryClassifier,
			Timestamp:  time.Now().UTC(),
			Skipped:    true,
			SkipReason: SkipReasonRuleDecisive,
			Fields: map[string]interface{}{
				"decision":   string(eval.Decision),
				"confidence": eval.Confidence,
			},
		})
	} else {
		verdict := o.urgency.Classify(ctx, msg)
		urgent = verdict.Urgent
		confidence = verdict.Confidence
		inferenceUsed = verdict.InferenceUsed
		trail = append(trail, entry(StepSecondaryClassifier, map[string]interface{}{
			"urgent":         verdict.Urgent,
			"confidence":     verdict.Confidence,
			"reasoning":      verdict.Reasoning,
			"inference_used": verdict.InferenceUsed,
			"fast_path":      verdict.FastPath,
			"overridden":     verdict.Overridden,
		}))
	}

	// routing_classifier, always runs
	routed := o.routing.Classify(ctx, msg, urgent, confidence)
	trail = append(trail, entry(StepRoutingClassifier, map[string]interface{}{
		"routing":   string(routed.Routing),
		"category":  routed.Category,
		"summary":   routed.Summary,
		"reasoning": routed.Reasoning,
	}))

	// route_decision
	trail = append(trail, entry(StepRouteDecision, map[string]interface{}{
		"decision": string(routed.Routing),
	}))

	// audit_finalize never drops the message; a panic while assembling
	// degrades to a minimal record.
	result := o.finalize(ctx, msg, eval, routed, confidence, inferenceUsed, trail, start)

	metrics.TriageMessagesTotal.WithLabelValues(string(result.Decision)).Inc()
	metrics.ObserveTriageDuration(result.ProcessingTime, string(result.Decision))

	o.log.InfowCtx(ctx, "message triaged",
		"message_id", msg.MessageID,
		"decision", result.Decision,
		"category", result.Category,
		"rule_name", result.RuleName,
		"inference_used", result.InferenceUsed,
		"duration_ms", result.ProcessingTime.Milliseconds(),
	)
	return result, nil
}

func (o *Orchestrator) finalize(
	ctx context.Context,
	msg *models.NormalizedMessage,
	eval rules.Evaluation,
	routed routing.Result,
	confidence float64,
	inferenceUsed bool,
	trail []models.AuditEntry,
	start time.Time,
) (result *models.ProcessingResult) {
	defer func() {
		if err := pkgerrors.RecoverPanic(recover()); err != nil {
			o.log.ErrorwCtx(ctx, "audit finalize panic recovered",
				"message_id", msg.MessageID,
				"error", err,
			)
			result = fallbackResult(msg, trail, start)
		}
	}()

	trail = append(trail, entry(StepAuditFinalize, nil))

	return &models.ProcessingResult{
		MessageID:      msg.MessageID,
		TenantID:       msg.TenantID,
		UserID:         msg.UserID,
		Decision:       routed.Routing,
		Confidence:     confidence,
		Category:       routed.Category,
		Summary:        routed.Summary,
		RuleName:       eval.RuleName,
		InferenceUsed:  inferenceUsed,
		AuditTrail:     trail,
		ProcessingTime: time.Since(start),
		ProcessedAt:    time.Now().UTC(),
	}
}

// fallbackResult is the minimal record emitted when assembling the full
// result panics. The audit entries accumulated before the panic survive;
// only the finalize entry itself is lost.
func fallbackResult(msg *models.NormalizedMessage, trail []models.AuditEntry, start time.Time) *models.ProcessingResult {
	return &models.ProcessingResult{
		MessageID:      msg.MessageID,
		TenantID:       msg.TenantID,
		UserID:         msg.UserID,
		Decision:       models.RouteDigest,
		AuditTrail:     trail,
		ProcessingTime: time.Since(start),
		ProcessedAt:    time.Now().UTC(),
	}
}

func entry(step string, fields map[string]interface{}) models.AuditEntry {
	return models.AuditEntry{
		Step:      step,
		Timestamp: time.Now().UTC(),
		Fields:    fields,
	}
}
