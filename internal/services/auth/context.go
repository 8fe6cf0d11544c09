package auth

import "context"

type identityContextKey string

const identityKey identityContextKey = "auth_identity"

// Identity is the authenticated caller. Participant ids are issued by
// the external identity provider and treated as opaque here.
type Identity struct {
	ParticipantID string
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
