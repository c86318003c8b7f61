package llm

import "context"

// Purposes recorded with every logged call.
const (
	PurposeExtract = "extract"
	PurposeUnknown = "unknown"
)

type purposeKey struct{}

// WithPurpose labels calls made with ctx so the event log can group them.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return PurposeUnknown
}
