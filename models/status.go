package models

import "gorm.io/gorm"

// GenerationStatus records whether AI content has been produced for an
// entity. Markers are monotonic: generation paths only ever move them to
// Done, nothing resets them automatically.
type GenerationStatus string

const (
	GenerationNotStarted GenerationStatus = "NOT_STARTED"
	GenerationDone       GenerationStatus = "DONE"
)

func (s GenerationStatus) Done() bool {
	return s == GenerationDone
}

// Typed pending-work predicates. Concurrent callers of the same scope may
// both select the same row and duplicate generation work; there is no
// locking here (accepted race, single-tenant usage assumed).

// PendingCardGeneration selects topics that still need flashcards.
func PendingCardGeneration(db *gorm.DB) *gorm.DB {
	return db.Where("cards_status = ?", GenerationNotStarted)
}

// PendingExplanation selects cards that still need a detailed explanation.
func PendingExplanation(db *gorm.DB) *gorm.DB {
	return db.Where("details_status = ?", GenerationNotStarted)
}

// PendingQRCode selects cards that still need a QR code.
func PendingQRCode(db *gorm.DB) *gorm.DB {
	return db.Where("qr_code_status = ?", GenerationNotStarted)
}
