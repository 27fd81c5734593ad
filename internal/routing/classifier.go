// Package routing turns an urgency verdict into the final delivery
// decision plus a human-facing category and summary. Like the urgency
// stage it never lets a fault escape; the worst case is a digest.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"herald/internal/constants"
	"herald/internal/inference"
	"herald/internal/logger"
	"herald/pkg/cel"
	pkgerrors "herald/pkg/errors"
	"herald/pkg/metrics"
	"herald/pkg/models"
)

// Routing thresholds. Not-urgent messages never route immediate no
// matter how confident the verdict.
const (
	immediateMinConfidence = 0.75
	digestMaxConfidence    = 0.5
)

// Result is the routing stage's output.
type Result struct {
	Routing   models.RoutingDecision `json:"routing"`
	Category  string                 `json:"category"`
	Summary   string                 `json:"summary"`
	Reasoning string                 `json:"reasoning"`
}

// Classifier assigns category, summary and the final routing decision.
// The inference capability is optional; with a nil capability the
// deterministic keyword fallback covers category and summary.
type Classifier struct {
	capability inference.Capability
	fallback   *CategoryFallback
	spamPolicy *cel.Evaluator
	log        logger.Logger
}

func NewClassifier(capability inference.Capability, spamPolicy *cel.Evaluator, log logger.Logger) *Classifier {
	return &Classifier{
		capability: capability,
		fallback:   NewCategoryFallback(),
		spamPolicy: spamPolicy,
		log:        log,
	}
}

// Classify computes the final routing for a message given the urgency
// verdict. It never returns an error; internal failures degrade to a
// digest with the fallback category.
func (c *Classifier) Classify(ctx context.Context, msg *models.NormalizedMessage, urgent bool, confidence float64) (result Result) {
	defer func() {
		if err := pkgerrors.RecoverPanic(recover()); err != nil {
			c.log.ErrorwCtx(ctx, "routing classifier panic recovered",
				"message_id", msg.MessageID,
				"error", err,
			)
			result = Result{
				Routing:   models.RouteDigest,
				Category:  CategoryOther,
				Summary:   c.fallback.Summarize(msg),
				Reasoning: "falha interna, roteado para digest por segurança",
			}
		}
	}()

	category, summary := c.describe(ctx, msg, urgent, confidence)

	routing := decideRouting(urgent, confidence)
	reasoning := routingReasoning(routing, urgent, confidence)

	if routing != models.RouteImmediate && c.spamPolicy != nil {
		if c.isSpam(ctx, msg, category, summary, urgent, confidence) {
			routing = models.RouteSpam
			reasoning = "política de spam aplicada à categoria " + category
		}
	}

	metrics.RoutingDecisionsTotal.WithLabelValues(string(routing), category).Inc()
	return Result{
		Routing:   routing,
		Category:  category,
		Summary:   summary,
		Reasoning: reasoning,
	}
}

// decideRouting applies the fixed thresholds. Order matters: the
// low-confidence digest default wins over everything else.
func decideRouting(urgent bool, confidence float64) models.RoutingDecision {
	switch {
	case confidence < digestMaxConfidence:
		return models.RouteDigest
	case urgent && confidence > immediateMinConfidence:
		return models.RouteImmediate
	default:
		return models.RouteDigest
	}
}

func routingReasoning(routing models.RoutingDecision, urgent bool, confidence float64) string {
	switch {
	case routing == models.RouteImmediate:
		return fmt.Sprintf("urgente com confiança %.2f, entrega imediata", confidence)
	case confidence < digestMaxConfidence:
		return fmt.Sprintf("confiança baixa (%.2f), digest por padrão conservador", confidence)
	case urgent:
		return fmt.Sprintf("urgente mas confiança %.2f insuficiente para interrupção", confidence)
	default:
		return "não urgente, adicionado ao digest"
	}
}

// describe obtains category and summary, via inference when available and
// via the keyword fallback otherwise.
func (c *Classifier) describe(ctx context.Context, msg *models.NormalizedMessage, urgent bool, confidence float64) (string, string) {
	if c.capability == nil {
		return c.fallback.Categorize(msg), c.fallback.Summarize(msg)
	}

	reply, err := c.capability.Complete(ctx, buildDescribePrompt(msg, urgent, confidence))
	if err != nil {
		metrics.FallbackUsageTotal.WithLabelValues("routing", "inference_error").Inc()
		return c.fallback.Categorize(msg), c.fallback.Summarize(msg)
	}

	category, summary, err := parseDescribeReply(reply)
	if err != nil {
		metrics.FallbackUsageTotal.WithLabelValues("routing", "parse_error").Inc()
		return c.fallback.Categorize(msg), c.fallback.Summarize(msg)
	}
	return category, summary
}

func (c *Classifier) isSpam(ctx context.Context, msg *models.NormalizedMessage, category, summary string, urgent bool, confidence float64) bool {
	spam, err := c.spamPolicy.Evaluate(ctx, cel.PolicyInput{
		Category:   category,
		Summary:    summary,
		Urgent:     urgent,
		Confidence: confidence,
		ChatType:   string(msg.ChatType),
		SenderID:   msg.SenderID,
		Content:    msg.Text(),
	})
	if err != nil {
		c.log.WarnwCtx(ctx, "spam policy evaluation failed, keeping routing",
			"message_id", msg.MessageID,
			"error", err,
		)
		return false
	}
	return spam
}

func buildDescribePrompt(msg *models.NormalizedMessage, urgent bool, confidence float64) string {
	text := msg.Text()
	if len(text) > constants.PromptContentPrefixLen {
		text = text[:constants.PromptContentPrefixLen]
	}

	sender := msg.SenderName
	if sender == "" {
		sender = msg.SenderID
	}

	var b strings.Builder
	b.WriteString("You are a routing agent for a Brazilian notification system.\n\n")
	b.WriteString("Describe the following message for its recipient:\n\n")
	fmt.Fprintf(&b, "MESSAGE:\n- Sender: %s\n- Is Group: %t\n- Content: %s\n\n", sender, msg.IsGroup(), text)
	fmt.Fprintf(&b, "URGENCY ASSESSMENT:\n- Urgent: %t\n- Confidence: %.2f\n\n", urgent, confidence)
	b.WriteString("Valid categories: financial, security, promotions, group, personal, other.\n\n")
	b.WriteString("Respond with ONLY a valid JSON object (no markdown):\n")
	fmt.Fprintf(&b, `{"category": "<one valid category>", "summary": "<resumo em Português, máximo %d caracteres>"}`, constants.SummaryMaxLen)
	return b.String()
}

type describeReply struct {
	Category string `json:"category"`
	Summary  string `json:"summary"`
}

func parseDescribeReply(reply string) (string, string, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return "", "", fmt.Errorf("no JSON object in reply")
	}

	var d describeReply
	if err := json.Unmarshal([]byte(reply[start:end+1]), &d); err != nil {
		return "", "", fmt.Errorf("malformed describe reply: %w", err)
	}

	d.Category = strings.ToLower(strings.TrimSpace(d.Category))
	if !validCategories[d.Category] {
		d.Category = CategoryOther
	}
	if strings.TrimSpace(d.Summary) == "" {
		return "", "", fmt.Errorf("empty summary in reply")
	}
	return d.Category, truncateRunes(d.Summary, constants.SummaryMaxLen), nil
}
