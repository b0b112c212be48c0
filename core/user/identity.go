package user

import "context"

type identityKey struct{}

// Identity is the authenticated account behind a request.
type Identity struct {
	UserID   int
	Username string
	Role     string
	PersonID string // teacher, student or parent key; empty for admins created from the CLI
}

// CanMutate reports whether the identity may create, update or delete records.
func (id Identity) CanMutate() bool {
	return id.UserID != 0 && id.Role == RoleAdmin
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
