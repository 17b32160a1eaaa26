package handlers

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/deckforge/deckforge-api/ai"
	"github.com/deckforge/deckforge-api/models"
)

type explanationBlockRequest struct {
	BlockType  string `json:"blockType"`
	BlockTitle string `json:"blockTitle"`
	Content    string `json:"content"`
	Order      int    `json:"order"`
}

func (req explanationBlockRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.BlockTitle, validation.Required),
		validation.Field(&req.Content, validation.Required),
		validation.Field(&req.Order, validation.Min(1), validation.Max(5)),
	)
}

func blockTypeOrDefault(raw string) models.BlockType {
	switch models.BlockType(raw) {
	case models.BlockTypeImage:
		return models.BlockTypeImage
	case models.BlockTypeVideo:
		return models.BlockTypeVideo
	default:
		return models.BlockTypeText
	}
}

// UpsertCardExplanation replaces a card's explanation with the supplied
// title and blocks, and marks the card's details as generated; the marker,
// not the row, is what pending-work queries consult.
func (db *DBHandler) UpsertCardExplanation(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("cardID")

	card, err := db.findCard(cardID)
	if err != nil {
		http.Error(w, "Card not found", http.StatusNotFound)
		return
	}

	var req struct {
		Title  string                    `json:"title"`
		Blocks []explanationBlockRequest `json:"blocks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}
	for _, b := range req.Blocks {
		if err := b.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	blocks := make([]models.Block, 0, len(req.Blocks))
	for _, b := range req.Blocks {
		blocks = append(blocks, models.Block{
			BlockType:  blockTypeOrDefault(b.BlockType),
			BlockTitle: b.BlockTitle,
			Content:    b.Content,
			Order:      b.Order,
		})
	}

	if err := ai.UpsertExplanation(db.DB, card.ID, req.Title, blocks); err != nil {
		db.Log.Error("UpsertCardExplanation: failed to store explanation", "cardId", cardID, "error", err)
		http.Error(w, "Failed to store explanation", http.StatusInternalServerError)
		return
	}

	if err := db.Model(&models.Card{}).Where("id = ?", card.ID).
		Update("details_status", models.GenerationDone).Error; err != nil {
		http.Error(w, "Failed to update card", http.StatusInternalServerError)
		return
	}

	updated, err := db.findCard(cardID)
	if err != nil {
		http.Error(w, "Failed to reload card", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (db *DBHandler) RemoveCardExplanation(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("cardID")

	card, err := db.findCard(cardID)
	if err != nil {
		http.Error(w, "Card not found", http.StatusNotFound)
		return
	}

	var explanation models.Explanation
	if err := db.Where("card_id = ?", card.ID).First(&explanation).Error; err != nil {
		http.Error(w, "Explanation not found", http.StatusNotFound)
		return
	}

	if err := db.Where("explanation_id = ?", explanation.ID).Delete(&models.Block{}).Error; err != nil {
		http.Error(w, "Failed to delete explanation", http.StatusInternalServerError)
		return
	}
	if err := db.Delete(&explanation).Error; err != nil {
		http.Error(w, "Failed to delete explanation", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddCardExplanationBlock appends one block to an existing explanation.
func (db *DBHandler) AddCardExplanationBlock(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("cardID")

	card, err := db.findCard(cardID)
	if err != nil {
		http.Error(w, "Card not found", http.StatusNotFound)
		return
	}

	var explanation models.Explanation
	if err := db.Where("card_id = ?", card.ID).First(&explanation).Error; err != nil {
		http.Error(w, "Explanation not found", http.StatusNotFound)
		return
	}

	var req explanationBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	block := models.Block{
		ExplanationID: explanation.ID,
		BlockType:     blockTypeOrDefault(req.BlockType),
		BlockTitle:    req.BlockTitle,
		Content:       req.Content,
		Order:         req.Order,
	}
	if err := db.Create(&block).Error; err != nil {
		db.Log.Error("AddCardExplanationBlock: failed to create block", "cardId", cardID, "error", err)
		http.Error(w, "Failed to create block", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, block)
}
