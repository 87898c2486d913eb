package shared

import "context"

// Actor identifies the operator performing the current request. It is
// resolved once per request by the actor middleware and carried through
// context instead of ambient session state.
type Actor struct {
	UserID   int64
	Username string
	Role     string
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey{}).(*Actor)
	return actor
}
