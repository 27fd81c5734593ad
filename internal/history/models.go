// Package history reads per-sender interaction statistics maintained by the
// upstream learning system. Providers compose like a middleware chain:
// postgres at the bottom, redis caching and a circuit breaker on top.
package history

import "time"

// SenderHistory is a read-only snapshot of the relationship between one
// user and one sender inside a tenant.
type SenderHistory struct {
	TenantID           string    `json:"tenant_id"`
	UserID             string    `json:"user_id"`
	SenderID           string    `json:"sender_id"`
	TotalMessages      int64     `json:"total_messages"`
	UrgentMessages     int64     `json:"urgent_messages"`
	AvgResponseSeconds float64   `json:"avg_response_time_seconds"`
	LastInteraction    time.Time `json:"last_interaction"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// knownSenderMinMessages is the interaction count after which a sender
// stops being treated as new.
const knownSenderMinMessages = 5

// lowUrgencyRate marks senders whose messages almost never turn out urgent.
const lowUrgencyRate = 0.10

// UrgencyRate returns the fraction of this sender's past messages that
// were classified urgent.
func (h *SenderHistory) UrgencyRate() float64 {
	if h == nil || h.TotalMessages == 0 {
		return 0
	}
	return float64(h.UrgentMessages) / float64(h.TotalMessages)
}

// Known reports whether there is enough interaction history to trust
// sender-level statistics. A nil history means first contact.
func (h *SenderHistory) Known() bool {
	return h != nil && h.TotalMessages >= knownSenderMinMessages
}

// RarelyUrgent reports whether this sender's messages are almost never
// urgent. It applies to any sender with recorded interactions, however
// few; a nil or empty history says nothing about urgency habits.
func (h *SenderHistory) RarelyUrgent() bool {
	return h != nil && h.TotalMessages > 0 && h.UrgencyRate() < lowUrgencyRate
}
