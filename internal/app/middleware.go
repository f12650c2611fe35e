package app

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/haushalt/haushalt/pkg/user"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {

	// Propagate X-Profile-Id header into context for downstream services
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			profileHeader := req.Header.Get("X-Profile-Id")
			ctx := req.Context()

			if profileHeader != "" {
				u, err := deps.UserService.GetUserByUid(ctx, profileHeader)
				if err != nil {
					if errors.Is(err, user.ErrUserNotFound) {
						log.Debugf("profile not found: %s", profileHeader)
						http.Error(w, "profile not found", http.StatusForbidden)
						return
					}
					log.Errorf("failed to get profile: %v", err)
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				ctx = user.WithUser(ctx, u)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
