package handlers

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"github.com/deckforge/deckforge-api/ai"
	"github.com/deckforge/deckforge-api/logger"
	"github.com/deckforge/deckforge-api/models"
)

type DBHandler struct {
	*gorm.DB
	Gen *ai.Generator
	Log *logger.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CardActionGet and CardActionPost fan a shared /cards/{cardID}/{action}
// wildcard route out to the card sub-resource handlers. Registering the
// sub-resources behind one wildcard keeps them from clashing with the
// literal /cards/topic and /cards/generateMore routes in the mux.
func (db *DBHandler) CardActionGet(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("action") {
	case "qrCode":
		db.GetCardQRCode(w, r)
	case "preview":
		db.GetCardPreview(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (db *DBHandler) CardActionPost(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("action") {
	case "explanation":
		db.UpsertCardExplanation(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (db *DBHandler) findTopic(publicID string) (*models.Topic, error) {
	var topic models.Topic
	if err := db.Where("public_id = ?", publicID).First(&topic).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (db *DBHandler) findCard(publicID string) (*models.Card, error) {
	var card models.Card
	if err := db.Preload("Explanation.Blocks").Where("public_id = ?", publicID).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

func (db *DBHandler) findDeck(publicID string) (*models.Deck, error) {
	var deck models.Deck
	if err := db.Where("public_id = ?", publicID).First(&deck).Error; err != nil {
		return nil, err
	}
	return &deck, nil
}
