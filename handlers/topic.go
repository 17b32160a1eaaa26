package handlers

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/deckforge/deckforge-api/models"
)

func (db *DBHandler) GetAllTopics(w http.ResponseWriter, r *http.Request) {
	var topics []models.Topic
	if err := db.Preload("SubTopics").Preload("Cards").Find(&topics).Error; err != nil {
		db.Log.Error("GetAllTopics: failed to fetch topics", "error", err)
		http.Error(w, "Failed to fetch topics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, topics)
}

func (db *DBHandler) GetTopicByID(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("topicID")

	var topic models.Topic
	if err := db.Preload("SubTopics").Preload("Cards").Where("public_id = ?", topicID).First(&topic).Error; err != nil {
		db.Log.Warn("GetTopicByID: topic not found", "topicId", topicID)
		http.Error(w, "Topic not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, topic)
}

type createTopicRequest struct {
	Name          string  `json:"name"`
	Overview      *string `json:"overview"`
	ParentTopicID *string `json:"parentTopicId"`
}

func (req createTopicRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 300)),
	)
}

func (db *DBHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var req createTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	topic := models.Topic{
		Name:     req.Name,
		Overview: req.Overview,
	}

	// Topics are only ever created under an existing parent, which keeps
	// the tree a forest.
	if req.ParentTopicID != nil {
		parent, err := db.findTopic(*req.ParentTopicID)
		if err != nil {
			http.Error(w, "Parent topic not found", http.StatusNotFound)
			return
		}
		topic.ParentTopicID = &parent.ID
	}

	publicID, err := gonanoid.New()
	if err != nil {
		http.Error(w, "Failed to generate ID", http.StatusInternalServerError)
		return
	}
	topic.PublicID = publicID

	if err := db.Create(&topic).Error; err != nil {
		db.Log.Error("CreateTopic: failed to create topic", "error", err)
		http.Error(w, "Failed to create topic", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, topic)
}

func (db *DBHandler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("topicID")

	topic, err := db.findTopic(topicID)
	if err != nil {
		http.Error(w, "Topic not found", http.StatusNotFound)
		return
	}

	type topicUpdateRequest struct {
		Name     *string `json:"name,omitempty"`
		Overview *string `json:"overview,omitempty"`
	}
	var req topicUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name != nil {
		topic.Name = *req.Name
	}
	if req.Overview != nil {
		topic.Overview = req.Overview
	}

	if err := db.Save(topic).Error; err != nil {
		db.Log.Error("UpdateTopic: failed to update topic", "topicId", topicID, "error", err)
		http.Error(w, "Failed to update topic", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, topic)
}

// DeleteTopic removes one topic, or the whole subtree with ?cascade=true.
func (db *DBHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("topicID")

	topic, err := db.findTopic(topicID)
	if err != nil {
		http.Error(w, "Topic not found", http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("cascade") == "true" {
		ids, err := models.DescendantTopicIDs(db.DB, topic.ID)
		if err != nil {
			db.Log.Error("DeleteTopic: failed to collect descendants", "topicId", topicID, "error", err)
			http.Error(w, "Failed to delete topic", http.StatusInternalServerError)
			return
		}
		if err := db.Where("id IN ?", ids).Delete(&models.Topic{}).Error; err != nil {
			http.Error(w, "Failed to delete topic", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deletedTopics": len(ids)})
		return
	}

	if err := db.Delete(topic).Error; err != nil {
		http.Error(w, "Failed to delete topic", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
