package index

import "context"

type suppressWarningsKey struct{}

// SuppressWarnings returns a context that asks stores to discard non-fatal
// warnings (ie deprecation headers) raised by requests made with it.
func SuppressWarnings(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressWarningsKey{}, true)
}

// WarningsSuppressed reports whether ctx was derived from SuppressWarnings.
func WarningsSuppressed(ctx context.Context) bool {
	suppressed, _ := ctx.Value(suppressWarningsKey{}).(bool)

	return suppressed
}
