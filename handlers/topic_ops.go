package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/deckforge/deckforge-api/models"
	"github.com/deckforge/deckforge-api/utils"
)

// GetTopicAncestors returns the chain of ancestor topics, closest first.
func (db *DBHandler) GetTopicAncestors(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("topicID")

	topic, err := db.findTopic(topicID)
	if err != nil {
		http.Error(w, "Topic not found", http.StatusNotFound)
		return
	}

	ancestorIDs, err := models.AncestorTopicIDs(db.DB, topic.ID)
	if err != nil {
		db.Log.Error("GetTopicAncestors: failed to trace ancestors", "topicId", topicID, "error", err)
		http.Error(w, "Failed to fetch ancestors", http.StatusInternalServerError)
		return
	}

	ancestors := make([]models.Topic, 0, len(ancestorIDs))
	for _, id := range ancestorIDs {
		var ancestor models.Topic
		if err := db.First(&ancestor, id).Error; err != nil {
			http.Error(w, "Failed to fetch ancestors", http.StatusInternalServerError)
			return
		}
		ancestors = append(ancestors, ancestor)
	}

	writeJSON(w, http.StatusOK, ancestors)
}

// GetTopicSubtreeCards returns every card under the topic and its
// subtopics.
func (db *DBHandler) GetTopicSubtreeCards(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("topicID")

	topic, err := db.findTopic(topicID)
	if err != nil {
		http.Error(w, "Topic not found", http.StatusNotFound)
		return
	}

	cards, err := models.CardsInSubtree(db.DB, topic.ID)
	if err != nil {
		db.Log.Error("GetTopicSubtreeCards: failed to fetch cards", "topicId", topicID, "error", err)
		http.Error(w, "Failed to fetch cards", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

// GenerateTopicHierarchy builds a deck plus bounded topic tree from a goal
// string, then generates flashcards for the root topic.
func (db *DBHandler) GenerateTopicHierarchy(w http.ResponseWriter, r *http.Request) {
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

	result, err := db.Gen.CreateAndExpandDeck(r.Context(), req.TopicName, userID)
	if err != nil {
		db.Log.Error("GenerateTopicHierarchy: expansion failed", "error", err)
		http.Error(w, "Error generating deck and topic hierarchy", http.StatusInternalServerError)
		return
	}

	authorName := utils.AuthorName(r)
	cardResult := db.Gen.GenerateCardsForTopic(r.Context(), &result.ParentTopic, &authorName)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Deck and topic hierarchy successfully generated.",
		"deck":        result.Deck,
		"parentTopic": result.ParentTopic,
		"rootCards":   cardResult,
	})
}

// ExpandTopicFurther runs one more expansion round over the leaf topics
// under a parent.
func (db *DBHandler) ExpandTopicFurther(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentTopicID     string   `json:"parentTopicId"`
		ExistingSubtopics []string `json:"existingSubtopics"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ParentTopicID == "" {
		http.Error(w, "Please provide a parentTopicId in the request body", http.StatusBadRequest)
		return
	}

	parent, err := db.findTopic(req.ParentTopicID)
	if err != nil {
		http.Error(w, "Parent topic not found", http.StatusNotFound)
		return
	}

	newSubtopics, err := db.Gen.ExpandTopicFurther(r.Context(), parent.ID, req.ExistingSubtopics)
	if err != nil {
		db.Log.Error("ExpandTopicFurther: expansion failed", "parentTopicId", req.ParentTopicID, "error", err)
		http.Error(w, "Error performing additional expansion round", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Additional round of subtopics generated.",
		"data":    newSubtopics,
	})
}
