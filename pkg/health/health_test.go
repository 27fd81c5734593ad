package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeChecker struct {
	name string
	err  error
}

func (c fakeChecker) Name() string                  { return c.name }
func (c fakeChecker) Check(_ context.Context) error { return c.err }

func TestCheckerRegistry_Aggregation(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name     string
		checkers []Checker
		want     Status
	}{
		{"no checkers", nil, StatusHealthy},
		{"all healthy", []Checker{fakeChecker{name: "a"}, fakeChecker{name: "b"}}, StatusHealthy},
		{"one of two down", []Checker{fakeChecker{name: "a"}, fakeChecker{name: "b", err: down}}, StatusDegraded},
		{"all down", []Checker{fakeChecker{name: "a", err: down}}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewCheckerRegistry()
			for _, c := range tt.checkers {
				r.Register(c)
			}

			h := r.Check(context.Background())
			assert.Equal(t, tt.want, h.Status)
			assert.Len(t, h.Checks, len(tt.checkers))
		})
	}
}

func TestCheckerRegistry_ReportsFailureMessage(t *testing.T) {
	r := NewCheckerRegistry()
	r.Register(fakeChecker{name: "postgresql", err: errors.New("connection refused")})

	h := r.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, h.Checks["postgresql"].Status)
	assert.Contains(t, h.Checks["postgresql"].Message, "connection refused")
}
