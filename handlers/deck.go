package handlers

import (
	"net/http"

	"github.com/deckforge/deckforge-api/models"
	"github.com/deckforge/deckforge-api/utils"
)

// GetDecks lists public decks, plus the caller's own when authenticated.
func (db *DBHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	query := db.Where("is_public = ?", true)
	if user, ok := utils.CurrentUser(r); ok {
		query = db.Where("is_public = ? OR user_id = ?", true, user.ID)
	}

	var decks []models.Deck
	if err := query.Find(&decks).Error; err != nil {
		db.Log.Error("GetDecks: failed to fetch decks", "error", err)
		http.Error(w, "Failed to fetch decks", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, decks)
}

func (db *DBHandler) GetDeckByID(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")

	deck, err := db.findDeck(deckID)
	if err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}

	if !deck.IsPublic {
		user, ok := utils.CurrentUser(r)
		if !ok || deck.UserID == nil || *deck.UserID != user.ID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	writeJSON(w, http.StatusOK, deck)
}
