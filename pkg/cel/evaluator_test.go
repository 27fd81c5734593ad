package cel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluator(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		wantError bool
	}{
		{
			name:      "valid category check",
			expr:      `category == "promotional"`,
			wantError: false,
		},
		{
			name:      "valid compound policy",
			expr:      `category == "promotional" && !urgent && confidence < 0.5`,
			wantError: false,
		},
		{
			name:      "valid contains",
			expr:      `content.contains("unsubscribe")`,
			wantError: false,
		},
		{
			name:      "non-bool expression",
			expr:      `confidence`,
			wantError: true,
		},
		{
			name:      "invalid syntax",
			expr:      `invalid syntax here!!!`,
			wantError: true,
		},
		{
			name:      "undefined variable",
			expr:      `undefinedVar == "test"`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEvaluator(tt.expr)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	input := PolicyInput{
		Category:   "promotional",
		Summary:    "50% discount on everything",
		Urgent:     false,
		Confidence: 0.82,
		ChatType:   "individual",
		SenderID:   "5511999990000",
		Content:    "Aproveite! 50% OFF, clique aqui para cancelar inscrição",
	}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{
			name: "category equality true",
			expr: `category == "promotional"`,
			want: true,
		},
		{
			name: "category equality false",
			expr: `category == "financial"`,
			want: false,
		},
		{
			name: "compound spam policy",
			expr: `category == "promotional" && !urgent`,
			want: true,
		},
		{
			name: "confidence threshold",
			expr: `confidence > 0.9`,
			want: false,
		},
		{
			name: "content contains",
			expr: `content.contains("cancelar inscrição")`,
			want: true,
		},
		{
			name: "chat type guard",
			expr: `chat_type == "group" || category == "promotional"`,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := NewEvaluator(tt.expr)
			require.NoError(t, err)

			result, err := eval.Evaluate(ctx, input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result)
		})
	}
}
