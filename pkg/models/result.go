package models

import "time"

// RoutingDecision is the final action the delivery system takes for one
// message.
type RoutingDecision string

const (
	RouteImmediate RoutingDecision = "immediate"
	RouteDigest    RoutingDecision = "digest"
	RouteSpam      RoutingDecision = "spam"
)

func (d RoutingDecision) Valid() bool {
	switch d {
	case RouteImmediate, RouteDigest, RouteSpam:
		return true
	}
	return false
}

// AuditEntry records one pipeline stage's decision (or skip) for one
// message. Entries are append-only and never mutated after being added.
type AuditEntry struct {
	Step       string                 `json:"step" bson:"step"`
	Timestamp  time.Time              `json:"timestamp" bson:"timestamp"`
	Skipped    bool                   `json:"skipped,omitempty" bson:"skipped,omitempty"`
	SkipReason string                 `json:"skip_reason,omitempty" bson:"skip_reason,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty" bson:"fields,omitempty"`
}

// ProcessingResult is the final output of one orchestration run. The caller
// owns persistence and any downstream delivery action keyed off Decision.
type ProcessingResult struct {
	MessageID      string          `json:"message_id" bson:"message_id"`
	TenantID       string          `json:"tenant_id" bson:"tenant_id"`
	UserID         string          `json:"user_id" bson:"user_id"`
	Decision       RoutingDecision `json:"decision" bson:"decision"`
	Confidence     float64         `json:"confidence" bson:"confidence"`
	Category       string          `json:"category" bson:"category"`
	Summary        string          `json:"summary" bson:"summary"`
	RuleName       string          `json:"rule_name" bson:"rule_name"`
	InferenceUsed  bool            `json:"inference_used" bson:"inference_used"`
	AuditTrail     []AuditEntry    `json:"audit_trail" bson:"audit_trail"`
	ProcessingTime time.Duration   `json:"processing_time" bson:"processing_time_ns"`
	ProcessedAt    time.Time       `json:"processed_at" bson:"processed_at"`
}
