package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

// profileKey carries the resolved profile through a request context.
const profileKey contextKey = "profile"

var ErrNoUser = errors.New("no profile in context")

// WithUser binds a profile to the context. The profile middleware is the only
// production caller; tests call it directly to scope their operations.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, profileKey, u)
}

// CurrentUser returns the profile bound to the context, or ErrNoUser when the
// request never passed the profile middleware.
func CurrentUser(ctx context.Context) (User, error) {
	u, ok := ctx.Value(profileKey).(User)
	if !ok {
		log.Trace("no profile bound to context")
		return User{}, ErrNoUser
	}
	return u, nil
}

// CurrentId is shorthand for the bound profile's id, which every repository
// call uses to scope its rows.
func CurrentId(ctx context.Context) (int, error) {
	u, err := CurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	return u.Id, nil
}
