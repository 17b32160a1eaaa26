package models

import "gorm.io/gorm"

// Deck is a named view over one topic's subtree of cards. The card set is
// derived from TopicID, never stored.
type Deck struct {
	gorm.Model
	PublicID string `gorm:"size:100;uniqueIndex"`
	Name     string `gorm:"not null;size:200"`

	// True iff the deck was created without an authenticated user.
	IsPublic bool  `gorm:"default:false"`
	UserID   *uint `gorm:"index;default:null"`
	User     *User `gorm:"foreignKey:UserID" json:"-"`

	TopicID uint  `gorm:"not null;index"`
	Topic   Topic `gorm:"foreignKey:TopicID" json:"-"`
}
