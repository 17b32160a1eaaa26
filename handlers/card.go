package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/deckforge/deckforge-api/models"
	"github.com/deckforge/deckforge-api/utils"
)

func (db *DBHandler) GetAllCards(w http.ResponseWriter, r *http.Request) {
	var cards []models.Card
	if err := db.Preload("Explanation.Blocks").Find(&cards).Error; err != nil {
		db.Log.Error("GetAllCards: failed to fetch cards", "error", err)
		http.Error(w, "Failed to fetch cards", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

func (db *DBHandler) GetCardByID(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("cardID")

	card, err := db.findCard(cardID)
	if err != nil {
		http.Error(w, "Card not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

type createCardRequest struct {
	Question    string  `json:"question"`
	Answer      string  `json:"answer"`
	AnswerType  string  `json:"answerType"`
	ExampleCode *string `json:"exampleCode"`
	TopicID     string  `json:"topicId"`
	DocumentID  *uint   `json:"documentId"`
}

func (req createCardRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Question, validation.Required, validation.Length(1, 1000)),
		validation.Field(&req.Answer, validation.Required, validation.Length(1, 4000)),
		validation.Field(&req.TopicID, validation.Required),
	)
}

func (db *DBHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	topic, err := db.findTopic(req.TopicID)
	if err != nil {
		http.Error(w, "Topic not found", http.StatusNotFound)
		return
	}

	answerType := models.AnswerType(req.AnswerType)
	if req.AnswerType == "" {
		answerType = models.AnswerTypeNone
	}
	if !answerType.Valid() {
		http.Error(w, "Invalid answerType", http.StatusBadRequest)
		return
	}

	publicID, err := gonanoid.New()
	if err != nil {
		http.Error(w, "Failed to generate ID", http.StatusInternalServerError)
		return
	}

	card := models.Card{
		PublicID:   publicID,
		Question:   req.Question,
		Answer:     req.Answer,
		AnswerType: answerType,
		TopicID:    topic.ID,
		DocumentID: req.DocumentID,
	}
	if answerType == models.AnswerTypeCodeSnippet && req.ExampleCode != nil {
		card.ExampleCode = req.ExampleCode
	}
	if user, ok := utils.CurrentUser(r); ok && user.Name != "" {
		card.AuthorName = &user.Name
	}

	if err := db.Create(&card).Error; err != nil {
		db.Log.Error("CreateCard: failed to create card", "error", err)
		http.Error(w, "Failed to create card", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, card)
}

func (db *DBHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("cardID")

	card, err := db.findCard(cardID)
	if err != nil {
		http.Error(w, "Card not found", http.StatusNotFound)
		return
	}

	type cardUpdateRequest struct {
		Question    *string `json:"question,omitempty"`
		Answer      *string `json:"answer,omitempty"`
		AnswerType  *string `json:"answerType,omitempty"`
		ExampleCode *string `json:"exampleCode,omitempty"`
	}
	var req cardUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Question != nil {
		card.Question = *req.Question
	}
	if req.Answer != nil {
		card.Answer = *req.Answer
	}
	if req.AnswerType != nil {
		answerType := models.AnswerType(*req.AnswerType)
		if !answerType.Valid() {
			http.Error(w, "Invalid answerType", http.StatusBadRequest)
			return
		}
		card.AnswerType = answerType
	}
	if req.ExampleCode != nil {
		card.ExampleCode = req.ExampleCode
	}

	if err := db.Save(card).Error; err != nil {
		db.Log.Error("UpdateCard: failed to update card", "cardId", cardID, "error", err)
		http.Error(w, "Failed to update card", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

func (db *DBHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("cardID")

	result := db.Where("public_id = ?", cardID).Delete(&models.Card{})
	if result.Error != nil {
		http.Error(w, "Failed to delete card", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Card not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (db *DBHandler) GetCardsByTopic(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("topicID")

	topic, err := db.findTopic(topicID)
	if err != nil {
		http.Error(w, "Topic not found", http.StatusNotFound)
		return
	}

	var cards []models.Card
	if err := db.Preload("Explanation.Blocks").Where("topic_id = ?", topic.ID).Find(&cards).Error; err != nil {
		db.Log.Error("GetCardsByTopic: failed to fetch cards", "topicId", topicID, "error", err)
		http.Error(w, "Failed to fetch cards", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

func (db *DBHandler) GetDescendantCards(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("topicID")

	topic, err := db.findTopic(topicID)
	if err != nil {
		http.Error(w, "Topic not found", http.StatusNotFound)
		return
	}

	cards, err := models.CardsInSubtree(db.DB, topic.ID)
	if err != nil {
		db.Log.Error("GetDescendantCards: failed to fetch cards", "topicId", topicID, "error", err)
		http.Error(w, "Failed to fetch cards", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

// GetCardsByDocument returns every card owned by a document.
func (db *DBHandler) GetCardsByDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := strconv.ParseUint(r.PathValue("documentID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	var cards []models.Card
	if err := db.Preload("Explanation.Blocks").Where("document_id = ?", uint(documentID)).Find(&cards).Error; err != nil {
		db.Log.Error("GetCardsByDocument: failed to fetch cards", "documentId", documentID, "error", err)
		http.Error(w, "Failed to fetch cards", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

// GetCardsByDeck resolves the deck's root topic and returns every card in
// that subtree; a deck's card set is derived, never stored.
func (db *DBHandler) GetCardsByDeck(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")

	deck, err := db.findDeck(deckID)
	if err != nil {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}

	cards, err := models.CardsInSubtree(db.DB, deck.TopicID)
	if err != nil {
		db.Log.Error("GetCardsByDeck: failed to fetch cards", "deckId", deckID, "error", err)
		http.Error(w, "Failed to fetch cards", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}
