package cont

import (
	"context"

	"ClipRate/entity"
)

type contextKey string

const userKey contextKey = "auth-user"

// PutUser stores the authenticated principal in the request context.
func PutUser(ctx context.Context, user *entity.UserAuth) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser retrieves the authenticated principal from the request context.
func GetUser(ctx context.Context) *entity.UserAuth {
	user, ok := ctx.Value(userKey).(*entity.UserAuth)
	if !ok {
		return nil
	}
	return user
}
