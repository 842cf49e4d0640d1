package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts search_id and pattern from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if searchID := GetSearchID(ctx); searchID != "" {
		e.Str("search_id", searchID)
	}

	if pattern := GetPattern(ctx); pattern != "" {
		e.Str("pattern", pattern)
	}
}
