package services

import "context"

type contextKey string

const (
	checkIDKey   contextKey = "check_id"
	componentKey contextKey = "component"
	episodeKey   contextKey = "episode"
)

// WithCheckID annotates context with the monitor check identifier.
func WithCheckID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, checkIDKey, id)
}

// CheckIDFromContext extracts the monitor check identifier if present.
func CheckIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(checkIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithComponent annotates context with the component name doing the work.
func WithComponent(ctx context.Context, component string) context.Context {
	if component == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, component)
}

// ComponentFromContext returns the component name if present.
func ComponentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(componentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithEpisode annotates context with the episode number being processed.
func WithEpisode(ctx context.Context, number int) context.Context {
	if number <= 0 {
		return ctx
	}
	return context.WithValue(ctx, episodeKey, number)
}

// EpisodeFromContext extracts the episode number if present.
func EpisodeFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(episodeKey).(int); ok && v > 0 {
		return v, true
	}
	return 0, false
}
