package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/deckforge/deckforge-api/utils"
)

// GenerateCards runs card generation for every pending topic, or for a
// subtree when the path or body names a topic. Per-topic failures land in
// the summary, never in the HTTP status.
func (db *DBHandler) GenerateCards(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TopicID *string `json:"topicId"`
	}
	// Empty body means "all pending topics".
	_ = json.NewDecoder(r.Body).Decode(&req)
	if topicID := r.PathValue("topicID"); topicID != "" {
		req.TopicID = &topicID
	}

	authorName := utils.AuthorName(r)

	if req.TopicID != nil {
		topic, err := db.findTopic(*req.TopicID)
		if err != nil {
			http.Error(w, "Topic not found", http.StatusNotFound)
			return
		}
		summary, err := db.Gen.GenerateForPendingInSubtree(r.Context(), topic.ID, &authorName)
		if err != nil {
			db.Log.Error("GenerateCards: subtree batch failed", "topicId", *req.TopicID, "error", err)
			http.Error(w, "Failed to generate cards", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := db.Gen.GenerateForAllPending(r.Context(), &authorName)
	if err != nil {
		db.Log.Error("GenerateCards: batch failed", "error", err)
		http.Error(w, "Failed to generate cards", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// GenerateMoreCards adds non-duplicate cards to one topic. It never touches
// the topic's generation marker.
func (db *DBHandler) GenerateMoreCards(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("topicID")

	topic, err := db.findTopic(topicID)
	if err != nil {
		http.Error(w, "Topic not found", http.StatusNotFound)
		return
	}

	var req struct {
		AdditionalCount int `json:"additionalCount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.AdditionalCount <= 0 {
		req.AdditionalCount = 5
	}

	authorName := utils.AuthorName(r)
	created, result := db.Gen.GenerateMoreCards(r.Context(), topic, req.AdditionalCount, &authorName)

	writeJSON(w, http.StatusOK, map[string]any{
		"outcome": result.Outcome,
		"cards":   created,
	})
}

// DocAllCards generates detailed explanations for every pending card, or
// for one topic's subtree when the body names a topicId.
func (db *DBHandler) DocAllCards(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TopicID *string `json:"topicId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.TopicID != nil {
		topic, err := db.findTopic(*req.TopicID)
		if err != nil {
			http.Error(w, "Topic not found", http.StatusNotFound)
			return
		}
		summary, err := db.Gen.DocPendingInSubtree(r.Context(), topic.ID)
		if err != nil {
			db.Log.Error("DocAllCards: subtree batch failed", "topicId", *req.TopicID, "error", err)
			http.Error(w, "Failed to generate explanations", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := db.Gen.DocAllPending(r.Context())
	if err != nil {
		db.Log.Error("DocAllCards: batch failed", "error", err)
		http.Error(w, "Failed to generate explanations", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// MasterGenerate chains the whole pipeline for a fresh goal: expansion,
// cards for the root, cards for all pending topics, explanations, QR codes.
func (db *DBHandler) MasterGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TopicName string `json:"topicName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TopicName == "" {
		http.Error(w, "Please provide a topicName in the request body", http.StatusBadRequest)
		return
	}

	var userID *uint
	if user, ok := utils.CurrentUser(r); ok {
		userID = &user.ID
	}
	authorName := utils.AuthorName(r)

	db.Log.Info("MasterGenerate: starting", "topicName", req.TopicName)

	expansion, err := db.Gen.CreateAndExpandDeck(r.Context(), req.TopicName, userID)
	if err != nil {
		db.Log.Error("MasterGenerate: expansion failed", "error", err)
		http.Error(w, "Error in master generation process", http.StatusInternalServerError)
		return
	}

	rootResult := db.Gen.GenerateCardsForTopic(r.Context(), &expansion.ParentTopic, &authorName)

	cardSummary, err := db.Gen.GenerateForAllPending(r.Context(), &authorName)
	if err != nil {
		db.Log.Error("MasterGenerate: card batch failed", "error", err)
		http.Error(w, "Error in master generation process", http.StatusInternalServerError)
		return
	}

	docSummary, err := db.Gen.DocAllPending(r.Context())
	if err != nil {
		db.Log.Error("MasterGenerate: explanation batch failed", "error", err)
		http.Error(w, "Error in master generation process", http.StatusInternalServerError)
		return
	}

	qrCount, err := db.generateMissingQRCodes(r.Context())
	if err != nil {
		db.Log.Error("MasterGenerate: qr batch failed", "error", err)
		http.Error(w, "Error in master generation process", http.StatusInternalServerError)
		return
	}

	db.Log.Info("MasterGenerate: complete",
		"deck", expansion.Deck.Name,
		"rootOutcome", rootResult.Outcome,
		"cards", cardSummary.CardsCreated,
		"qrCodes", qrCount,
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Master generation complete.",
		"deck":        expansion.Deck,
		"parentTopic": expansion.ParentTopic,
		"cards":       cardSummary,
		"docs":        docSummary,
		"qrCodes":     qrCount,
	})
}
