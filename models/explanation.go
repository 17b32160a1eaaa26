package models

import "gorm.io/gorm"

type BlockType string

const (
	BlockTypeText  BlockType = "TEXT"
	BlockTypeImage BlockType = "IMAGE"
	BlockTypeVideo BlockType = "VIDEO"
)

// Explanation is the structured elaboration attached to a card: a title
// plus exactly five ordered blocks.
type Explanation struct {
	gorm.Model
	CardID uint   `gorm:"not null;uniqueIndex"`
	Title  string `gorm:"not null;size:300"`

	Blocks []Block `gorm:"foreignKey:ExplanationID;constraint:OnDelete:CASCADE"`
}

type Block struct {
	gorm.Model
	ExplanationID uint      `gorm:"not null;index"`
	BlockType     BlockType `gorm:"not null;size:10;default:TEXT"`
	BlockTitle    string    `gorm:"not null;size:300"`
	Content       string    `gorm:"not null"`
	Order         int       `gorm:"column:block_order;not null"`
}
