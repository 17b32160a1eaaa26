package models

import "gorm.io/gorm"

// User represents a registered account. Auth is optional on most surfaces;
// anonymous requests run in public mode.
type User struct {
	gorm.Model
	Email        string `gorm:"unique;not null;size:200"`
	Name         string `gorm:"size:200"`
	PasswordHash string `gorm:"not null" json:"-"`

	Decks []Deck `gorm:"foreignKey:UserID"`
}
