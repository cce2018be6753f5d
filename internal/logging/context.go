package logging

import "context"

type attrsKey struct{}

// ContextWith returns a copy of ctx carrying extra key-value pairs. SlogLogger
// adds them to every record logged with that context, so request-scoped
// fields such as a request id reach loggers created elsewhere.
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev := attrsFrom(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

func attrsFrom(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(attrsKey{}).([]any)
	return attrs
}
