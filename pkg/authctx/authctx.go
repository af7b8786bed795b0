package authctx

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logtrail/pkg/types"
)

const (
	textCodeActorMissing = "ACTOR_CONTEXT_MISSING"
	textCodeActorInvalid = "ACTOR_CONTEXT_INVALID"
)

type actorKey struct{}

// WithActor stores the actor on the context so the logging hook can attribute
// records written during the request.
func WithActor(ctx context.Context, actor types.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor previously stored with WithActor.
func ActorFromContext(ctx context.Context) (types.Actor, bool) {
	if ctx == nil {
		return types.Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(types.Actor)
	return actor, ok
}

// ResolveActor returns the stored actor or a rich error describing why none
// is available.
func ResolveActor(ctx context.Context) (*types.Actor, error) {
	if ctx == nil {
		return nil, errors.New("go-logtrail: missing request context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorMissing)
	}
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return nil, errors.New("go-logtrail: actor not found on request context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorMissing)
	}
	if actor.ID == nil && strings.TrimSpace(actor.Username) == "" {
		return nil, errors.New("go-logtrail: actor context carries neither id nor username", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}
	return &actor, nil
}

// ActorFromRequest is the default actor resolver used by the logging hook.
// Anonymous requests resolve to nil.
func ActorFromRequest(r *http.Request) *types.Actor {
	if r == nil {
		return nil
	}
	actor, err := ResolveActor(r.Context())
	if err != nil {
		return nil
	}
	return actor
}
