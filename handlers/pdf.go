package handlers

import (
	"net/http"

	"github.com/deckforge/deckforge-api/models"
	"github.com/deckforge/deckforge-api/render"
)

func (db *DBHandler) deckForRender(deckID string) (*render.Deck, error) {
	deck, err := db.findDeck(deckID)
	if err != nil {
		return nil, err
	}

	cards, err := models.CardsInSubtree(db.DB, deck.TopicID)
	if err != nil {
		return nil, err
	}

	return &render.Deck{Name: deck.Name, Cards: cards}, nil
}

// GetDeckPDF streams the deck as a printable index-card PDF.
func (db *DBHandler) GetDeckPDF(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")

	deck, err := db.deckForRender(deckID)
	if err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}

	opts := render.OptionsFromQuery(r.URL.Query())
	pdfBytes, err := render.PDF(*deck, opts)
	if err != nil {
		db.Log.Error("GetDeckPDF: render failed", "deckId", deckID, "error", err)
		http.Error(w, "Failed to render PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="deck.pdf"`)
	if _, err := w.Write(pdfBytes); err != nil {
		db.Log.Error("GetDeckPDF: write failed", "deckId", deckID, "error", err)
	}
}

// GetCardPreview renders a single card as printable HTML, laid out like a
// one-card deck titled after its topic.
func (db *DBHandler) GetCardPreview(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("cardID")

	card, err := db.findCard(cardID)
	if err != nil {
		http.Error(w, "Card not found", http.StatusNotFound)
		return
	}

	var topic models.Topic
	if err := db.First(&topic, card.TopicID).Error; err != nil {
		db.Log.Error("GetCardPreview: failed to load topic", "cardId", cardID, "error", err)
		http.Error(w, "Failed to render preview", http.StatusInternalServerError)
		return
	}

	opts := render.OptionsFromQuery(r.URL.Query())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	deck := render.Deck{Name: topic.Name, Cards: []models.Card{*card}}
	if err := render.Preview(w, deck, opts); err != nil {
		db.Log.Error("GetCardPreview: render failed", "cardId", cardID, "error", err)
	}
}

// GetDeckPreview renders the deck as printable HTML.
func (db *DBHandler) GetDeckPreview(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")

	deck, err := db.deckForRender(deckID)
	if err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}

	opts := render.OptionsFromQuery(r.URL.Query())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Preview(w, *deck, opts); err != nil {
		db.Log.Error("GetDeckPreview: render failed", "deckId", deckID, "error", err)
	}
}
