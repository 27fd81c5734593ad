package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultHTTPTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixHistory = "history:"
)

const (
	DefaultInputTopic  = "normalized_messages"
	DefaultOutputTopic = "triage_decisions"
)

const (
	DefaultMongoDBName = "herald"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultLimit       = 100
	MaxLimit           = 1000
	DefaultTruncateLen = 100
)

// Content shorter than this (after trimming) is treated as trivial by the
// rule engine and the urgency classifier's defensive fast path.
const MinMeaningfulContentLen = 10

// PromptContentPrefixLen bounds how much message content is included in an
// inference payload.
const PromptContentPrefixLen = 500

// SummaryMaxLen caps the human-facing summary in a classification result.
const SummaryMaxLen = 150

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)
