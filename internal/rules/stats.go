package rules

import "sync/atomic"

// Stats tracks per-rule hit counts since process start. All methods are
// safe for concurrent use.
type Stats struct {
	groupMessage     atomic.Int64
	financialContent atomic.Int64
	marketingContent atomic.Int64
	securityContent  atomic.Int64
	emptyMessage     atomic.Int64
	noMatch          atomic.Int64
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) Record(ruleName string) {
	switch ruleName {
	case RuleGroupMessage:
		s.groupMessage.Add(1)
	case RuleFinancialContent:
		s.financialContent.Add(1)
	case RuleMarketingContent:
		s.marketingContent.Add(1)
	case RuleSecurityContent:
		s.securityContent.Add(1)
	case RuleEmptyMessage:
		s.emptyMessage.Add(1)
	case RuleNoMatch:
		s.noMatch.Add(1)
	}
}

// Snapshot returns the current counters keyed by rule name.
func (s *Stats) Snapshot() map[string]int64 {
	return map[string]int64{
		RuleGroupMessage:     s.groupMessage.Load(),
		RuleFinancialContent: s.financialContent.Load(),
		RuleMarketingContent: s.marketingContent.Load(),
		RuleSecurityContent:  s.securityContent.Load(),
		RuleEmptyMessage:     s.emptyMessage.Load(),
		RuleNoMatch:          s.noMatch.Load(),
	}
}

// Total returns the number of evaluations recorded.
func (s *Stats) Total() int64 {
	return s.groupMessage.Load() +
		s.financialContent.Load() +
		s.marketingContent.Load() +
		s.securityContent.Load() +
		s.emptyMessage.Load() +
		s.noMatch.Load()
}

// Decided returns the number of evaluations a rule settled.
func (s *Stats) Decided() int64 {
	return s.Total() - s.noMatch.Load()
}
