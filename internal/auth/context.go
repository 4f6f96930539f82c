package auth

import "context"

type contextKey string

const operatorKey contextKey = "operator"

// WithOperator returns a context carrying the authenticated operator name.
func WithOperator(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operatorKey, name)
}

// FromContext returns the authenticated operator name, if any.
func FromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(operatorKey).(string)
	return name, ok
}
