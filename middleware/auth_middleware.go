package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/deckforge/deckforge-api/auth"
	"github.com/deckforge/deckforge-api/config"
	"github.com/deckforge/deckforge-api/models"
	"github.com/deckforge/deckforge-api/utils"
)

// OptionalAuth resolves a bearer token into a models.User on the request
// context. Absent or invalid tokens are not an error: the request simply
// runs in anonymous mode (public decks, "public" author attribution).
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := auth.VerifyToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		var user models.User
		if err := config.Database.First(&user, claims.UserID).Error; err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), utils.UserContextKey, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
