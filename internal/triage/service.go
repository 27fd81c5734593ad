// Package triage is the service façade over the pipeline: it runs the
// orchestrator, persists results best-effort, and answers stats queries.
package triage

import (
	"context"
	"time"

	"herald/internal/logger"
	"herald/internal/orchestrator"
	"herald/internal/results"
	"herald/pkg/models"
)

// Stats is the observability payload served by the stats endpoint.
type Stats struct {
	TenantID       string           `json:"tenant_id,omitempty"`
	Since          time.Time        `json:"since"`
	RuleCounts     map[string]int64 `json:"rule_counts"`
	RuleEvaluated  int64            `json:"rule_evaluated"`
	RuleDecided    int64            `json:"rule_decided"`
	DecisionCounts map[string]int64 `json:"decision_counts,omitempty"`
}

// Service ties the pipeline to its collaborators. The results repository
// is optional; without it results are emitted downstream only.
type Service struct {
	orchestrator *orchestrator.Orchestrator
	results      results.Repository
	log          logger.Logger
}

func NewService(o *orchestrator.Orchestrator, repo results.Repository, log logger.Logger) *Service {
	return &Service{
		orchestrator: o,
		results:      repo,
		log:          log,
	}
}

// Process triages one message. Persistence is best-effort: a store
// failure is logged but the decision still stands and is returned.
func (s *Service) Process(ctx context.Context, msg *models.NormalizedMessage) (*models.ProcessingResult, error) {
	result, err := s.orchestrator.Process(ctx, msg)
	if err != nil {
		return nil, err
	}

	if s.results != nil {
		if err := s.results.Save(ctx, result); err != nil {
			s.log.WarnwCtx(ctx, "failed to persist processing result",
				"message_id", result.MessageID,
				"error", err,
			)
		}
	}
	return result, nil
}

// Stats combines the in-process rule counters with persisted decision
// counts for the tenant.
func (s *Service) Stats(ctx context.Context, tenantID string, since time.Time) (*Stats, error) {
	ruleStats := s.orchestrator.RuleStats()

	stats := &Stats{
		TenantID:      tenantID,
		Since:         since,
		RuleCounts:    ruleStats.Snapshot(),
		RuleEvaluated: ruleStats.Total(),
		RuleDecided:   ruleStats.Decided(),
	}

	if s.results != nil && tenantID != "" {
		counts, err := s.results.DecisionCounts(ctx, tenantID, since)
		if err != nil {
			return nil, err
		}
		stats.DecisionCounts = counts
	}
	return stats, nil
}

// Result looks up a previously persisted processing result.
func (s *Service) Result(ctx context.Context, tenantID, messageID string) (*models.ProcessingResult, error) {
	if s.results == nil {
		return nil, nil
	}
	return s.results.GetByMessageID(ctx, tenantID, messageID)
}
