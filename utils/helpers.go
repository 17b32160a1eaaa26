package utils

import (
	"net/http"

	"github.com/deckforge/deckforge-api/models"
)

type contextKey string

// UserContextKey holds the authenticated *models.User, when there is one.
const UserContextKey contextKey = "user"

// CurrentUser returns the authenticated user attached by the optional auth
// middleware. ok is false for anonymous requests.
func CurrentUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// AuthorName is the attribution written onto generated cards: the user's
// name, or "public" for anonymous requests.
func AuthorName(r *http.Request) string {
	if user, ok := CurrentUser(r); ok && user.Name != "" {
		return user.Name
	}
	return "public"
}
