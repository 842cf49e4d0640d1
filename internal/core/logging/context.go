package logging

import "context"

type contextKey string

const (
	searchIDKey contextKey = "search_id"
	patternKey  contextKey = "pattern"
)

// WithSearchID tags ctx with the sequence number of a search run. Every event
// logged with .Ctx for the lifetime of that subprocess carries it, so the
// start, cancel and finish lines of one run can be grouped.
func WithSearchID(ctx context.Context, searchID string) context.Context {
	return context.WithValue(ctx, searchIDKey, searchID)
}

// WithPattern records the pattern a search run was started with.
func WithPattern(ctx context.Context, pattern string) context.Context {
	return context.WithValue(ctx, patternKey, pattern)
}

// GetSearchID returns the run tag set by WithSearchID, or "" outside a search.
func GetSearchID(ctx context.Context) string {
	id, _ := ctx.Value(searchIDKey).(string)
	return id
}

// GetPattern returns the pattern set by WithPattern, or "".
func GetPattern(ctx context.Context) string {
	p, _ := ctx.Value(patternKey).(string)
	return p
}
