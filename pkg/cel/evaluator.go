// Package cel evaluates routing policy expressions against classified
// messages. Policies are compiled once at construction; evaluation is
// side-effect free.
package cel

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
)

// PolicyInput is the variable set a policy expression can reference.
type PolicyInput struct {
	Category   string
	Summary    string
	Urgent     bool
	Confidence float64
	ChatType   string
	SenderID   string
	Content    string
}

type Evaluator struct {
	program cel.Program
}

// NewEvaluator compiles a policy expression. The expression must evaluate
// to bool.
func NewEvaluator(expression string) (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("category", cel.StringType),
		cel.Variable("summary", cel.StringType),
		cel.Variable("urgent", cel.BoolType),
		cel.Variable("confidence", cel.DoubleType),
		cel.Variable("chat_type", cel.StringType),
		cel.Variable("sender_id", cel.StringType),
		cel.Variable("content", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("policy expression must return bool, got %v", ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &Evaluator{program: program}, nil
}

// Evaluate runs the compiled policy against one classified message.
func (e *Evaluator) Evaluate(ctx context.Context, input PolicyInput) (bool, error) {
	vars := map[string]interface{}{
		"category":   input.Category,
		"summary":    input.Summary,
		"urgent":     input.Urgent,
		"confidence": input.Confidence,
		"chat_type":  input.ChatType,
		"sender_id":  input.SenderID,
		"content":    input.Content,
	}

	result, _, err := e.program.ContextEval(ctx, vars)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	boolVal, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return bool, got %T", result.Value())
	}

	return boolVal, nil
}
