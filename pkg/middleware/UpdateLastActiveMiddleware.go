package middleware

import (
	"net/http"

	"github.com/Dias221467/Beer_Rating/internal/services"
)

// UpdateLastActiveMiddleware stamps the caller's lastActive field. It must
// run after AuthMiddleware.
func UpdateLastActiveMiddleware(userService *services.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity := GetUserFromContext(r.Context()); identity != nil {
				_ = userService.UpdateLastActive(r.Context(), identity.UserID)
			}
			next.ServeHTTP(w, r)
		})
	}
}
