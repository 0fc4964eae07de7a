package logging

import (
	"context"
)

// Context keys for decision log fields.
type contextKey string

const (
	// DecisionIDKey is the context key for decision IDs.
	DecisionIDKey contextKey = "decision_id"

	// TaskTypeKey is the context key for task types.
	TaskTypeKey contextKey = "task_type"

	// StrategyKey is the context key for strategy names.
	StrategyKey contextKey = "strategy"
)

// WithDecisionID adds a decision ID to the context.
func WithDecisionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, DecisionIDKey, id)
}

// GetDecisionID retrieves the decision ID from the context.
func GetDecisionID(ctx context.Context) string {
	if id, ok := ctx.Value(DecisionIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTaskType adds a task type to the context.
func WithTaskType(ctx context.Context, taskType string) context.Context {
	return context.WithValue(ctx, TaskTypeKey, taskType)
}

// GetTaskType retrieves the task type from the context.
func GetTaskType(ctx context.Context) string {
	if t, ok := ctx.Value(TaskTypeKey).(string); ok {
		return t
	}
	return ""
}

// WithStrategy adds a strategy name to the context.
func WithStrategy(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, StrategyKey, name)
}

// GetStrategy retrieves the strategy name from the context.
func GetStrategy(ctx context.Context) string {
	if s, ok := ctx.Value(StrategyKey).(string); ok {
		return s
	}
	return ""
}

// Fields returns the decision fields present in ctx as key-value pairs
// suitable for slog.Logger.With.
func Fields(ctx context.Context) []any {
	var fields []any

	if id := GetDecisionID(ctx); id != "" {
		fields = append(fields, string(DecisionIDKey), id)
	}
	if t := GetTaskType(ctx); t != "" {
		fields = append(fields, string(TaskTypeKey), t)
	}
	if s := GetStrategy(ctx); s != "" {
		fields = append(fields, string(StrategyKey), s)
	}

	return fields
}
