package handlers

import (
	"context"
	"net/http"

	"github.com/deckforge/deckforge-api/config"
	"github.com/deckforge/deckforge-api/fanout"
	"github.com/deckforge/deckforge-api/models"
	"github.com/deckforge/deckforge-api/qr"
)

const qrFanoutLimit = 100

// GetCardQRCode returns the card's QR code, generating and persisting it on
// first access.
func (db *DBHandler) GetCardQRCode(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("cardID")

	card, err := db.findCard(cardID)
	if err != nil {
		http.Error(w, "Card not found", http.StatusNotFound)
		return
	}

	if card.QRCodeStatus.Done() && card.QRCodeURL != nil {
		writeJSON(w, http.StatusOK, map[string]any{"qrCodeUrl": *card.QRCodeURL})
		return
	}

	dataURL, err := qr.DataURL(config.Env.BaseURL, card.PublicID)
	if err != nil {
		db.Log.Error("GetCardQRCode: failed to generate qr code", "cardId", cardID, "error", err)
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	updates := map[string]any{
		"qr_code_url":    dataURL,
		"qr_code_status": models.GenerationDone,
	}
	if err := db.Model(card).Updates(updates).Error; err != nil {
		http.Error(w, "Failed to store QR code", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"qrCodeUrl": dataURL})
}

// GenerateMissingQRCodes fills in QR codes for every card still pending one
// and returns how many were updated.
func (db *DBHandler) GenerateMissingQRCodes(w http.ResponseWriter, r *http.Request) {
	count, err := db.generateMissingQRCodes(r.Context())
	if err != nil {
		db.Log.Error("GenerateMissingQRCodes: batch failed", "error", err)
		http.Error(w, "Failed to generate QR codes", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"updated": count})
}

func (db *DBHandler) generateMissingQRCodes(ctx context.Context) (int, error) {
	var cards []models.Card
	if err := db.Scopes(models.PendingQRCode).Find(&cards).Error; err != nil {
		return 0, err
	}
	if len(cards) == 0 {
		db.Log.Info("generateMissingQRCodes: no cards missing QR codes")
		return 0, nil
	}

	db.Log.Info("generateMissingQRCodes: generating", "count", len(cards))

	updated := make([]bool, len(cards))
	tasks := make([]fanout.Task, len(cards))
	for i := range cards {
		card := cards[i]
		tasks[i] = func(ctx context.Context) error {
			dataURL, err := qr.DataURL(config.Env.BaseURL, card.PublicID)
			if err != nil {
				db.Log.Error("generateMissingQRCodes: qr encode failed", "cardId", card.ID, "error", err)
				return err
			}
			err = db.Model(&models.Card{}).Where("id = ?", card.ID).Updates(map[string]any{
				"qr_code_url":    dataURL,
				"qr_code_status": models.GenerationDone,
			}).Error
			if err != nil {
				db.Log.Error("generateMissingQRCodes: update failed", "cardId", card.ID, "error", err)
				return err
			}
			updated[i] = true
			return nil
		}
	}
	fanout.Run(ctx, qrFanoutLimit, tasks)

	count := 0
	for _, ok := range updated {
		if ok {
			count++
		}
	}
	return count, nil
}
