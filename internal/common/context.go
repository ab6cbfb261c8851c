package common

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// ActorIDKey carries the acting user through the request context. The engine
// never consults ambient session state; every orchestrator call reads the actor
// from the context it was given.
const ActorIDKey contextKey = "actor_id"

// WithActorID returns a context carrying the acting user.
func WithActorID(ctx context.Context, actorID uuid.UUID) context.Context {
	return context.WithValue(ctx, ActorIDKey, actorID)
}

// ActorIDFromContext extracts the acting user from the context.
func ActorIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	actorID, ok := ctx.Value(ActorIDKey).(uuid.UUID)
	return actorID, ok
}
