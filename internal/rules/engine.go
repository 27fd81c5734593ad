// Package rules implements the deterministic first stage of the triage
// pipeline. Rules run in a fixed order and the first hit wins; messages no
// rule claims come back undecided so a later stage can take over.
package rules

import (
	"context"
	"fmt"
	"strings"

	"herald/internal/constants"
	"herald/internal/keyword"
	"herald/internal/logger"
	"herald/pkg/metrics"
	"herald/pkg/models"
)

// Decision is the outcome of a rule pass.
type Decision string

const (
	DecisionUrgent    Decision = "urgent"
	DecisionNotUrgent Decision = "not_urgent"
	DecisionUndecided Decision = "undecided"
)

// Rule names as recorded in audit trails and metrics.
const (
	RuleGroupMessage     = "group_message"
	RuleFinancialContent = "financial_content"
	RuleMarketingContent = "marketing_content"
	RuleSecurityContent  = "security_content"
	RuleEmptyMessage     = "empty_message"
	RuleNoMatch          = "no_match"
)

// marketingMinMatches is the combined keyword and pattern hit count a
// message needs before the marketing rule claims it. A single "offer" in
// an otherwise personal message is not enough.
const marketingMinMatches = 2

// maxReportedTerms caps how many matched terms an Evaluation carries.
const maxReportedTerms = 5

// Evaluation is the result of running the rule chain over one message.
type Evaluation struct {
	Decision     Decision `json:"decision"`
	Confidence   float64  `json:"confidence"`
	RuleName     string   `json:"rule_name"`
	Category     string   `json:"category,omitempty"`
	Reasoning    string   `json:"reasoning,omitempty"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
}

// Decisive reports whether the rule pass settled the message, letting the
// orchestrator skip the secondary classifier.
func (e Evaluation) Decisive() bool {
	return e.Decision != DecisionUndecided
}

// Engine evaluates messages against the fixed rule chain. It is stateless
// apart from hit counters and safe for concurrent use.
type Engine struct {
	matcher *keyword.Matcher
	stats   *Stats
	log     logger.Logger
}

func NewEngine(log logger.Logger) *Engine {
	return &Engine{
		matcher: keyword.NewMatcher(),
		stats:   NewStats(),
		log:     log,
	}
}

// Stats returns the engine's per-rule hit counters.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// Evaluate runs the rule chain and returns the first matching rule's
// verdict. It never fails; a message nothing claims yields an undecided
// Evaluation with zero confidence.
func (e *Engine) Evaluate(ctx context.Context, msg *models.NormalizedMessage) Evaluation {
	eval := e.evaluate(msg)

	e.stats.Record(eval.RuleName)
	metrics.IncRuleEvaluation(eval.RuleName, string(eval.Decision))

	e.log.DebugwCtx(ctx, "rule evaluation complete",
		"message_id", msg.MessageID,
		"rule_name", eval.RuleName,
		"decision", eval.Decision,
		"confidence", eval.Confidence,
	)
	return eval
}

func (e *Engine) evaluate(msg *models.NormalizedMessage) Evaluation {
	text := msg.Text()

	if msg.IsGroup() {
		return Evaluation{
			Decision:   DecisionNotUrgent,
			Confidence: 0.95,
			RuleName:   RuleGroupMessage,
			Category:   "group",
			Reasoning:  "mensagem de grupo, raramente acionável individualmente",
		}
	}

	if matched := e.matcher.MatchDomain(text, keyword.DomainFinancial); len(matched) > 0 {
		return Evaluation{
			Decision:     DecisionUrgent,
			Confidence:   scaledConfidence(0.80, len(matched), 0.99),
			RuleName:     RuleFinancialContent,
			Category:     string(keyword.DomainFinancial),
			Reasoning:    fmt.Sprintf("conteúdo financeiro detectado: %d ocorrência(s)", len(matched)),
			MatchedTerms: capTerms(matched),
		}
	}

	if matched := e.matcher.MatchDomain(text, keyword.DomainMarketing); len(matched) >= marketingMinMatches {
		return Evaluation{
			Decision:     DecisionNotUrgent,
			Confidence:   scaledConfidence(0.65, len(matched), 0.95),
			RuleName:     RuleMarketingContent,
			Category:     string(keyword.DomainMarketing),
			Reasoning:    fmt.Sprintf("conteúdo promocional detectado: %d ocorrência(s)", len(matched)),
			MatchedTerms: capTerms(matched),
		}
	}

	if matched := e.matcher.MatchDomain(text, keyword.DomainSecurity); len(matched) > 0 {
		return Evaluation{
			Decision:     DecisionUrgent,
			Confidence:   scaledConfidence(0.75, len(matched), 0.99),
			RuleName:     RuleSecurityContent,
			Category:     string(keyword.DomainSecurity),
			Reasoning:    fmt.Sprintf("conteúdo de segurança detectado: %d ocorrência(s)", len(matched)),
			MatchedTerms: capTerms(matched),
		}
	}

	if len(strings.TrimSpace(text)) < constants.MinMeaningfulContentLen {
		return Evaluation{
			Decision:   DecisionNotUrgent,
			Confidence: 0.70,
			RuleName:   RuleEmptyMessage,
			Category:   "empty",
			Reasoning:  "conteúdo vazio ou trivial",
		}
	}

	return Evaluation{
		Decision:  DecisionUndecided,
		RuleName:  RuleNoMatch,
		Reasoning: "nenhuma regra aplicável",
	}
}

// scaledConfidence grows base by 0.05 per match, capped. More evidence
// means more confidence, monotonically.
func scaledConfidence(base float64, matches int, limit float64) float64 {
	conf := base + float64(matches)*0.05
	if conf > limit {
		return limit
	}
	return conf
}

func capTerms(terms []string) []string {
	if len(terms) > maxReportedTerms {
		return terms[:maxReportedTerms]
	}
	return terms
}
