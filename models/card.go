package models

import "gorm.io/gorm"

type AnswerType string

const (
	AnswerTypeNone        AnswerType = "NONE"
	AnswerTypeCodeSnippet AnswerType = "CODE_SNIPPET"
	AnswerTypeFlowchart   AnswerType = "FLOWCHART"
	AnswerTypeDiagram     AnswerType = "DIAGRAM"
)

func (a AnswerType) Valid() bool {
	switch a {
	case AnswerTypeNone, AnswerTypeCodeSnippet, AnswerTypeFlowchart, AnswerTypeDiagram:
		return true
	}
	return false
}

// Card is one flashcard owned by a topic.
type Card struct {
	gorm.Model
	PublicID   string     `gorm:"size:100;uniqueIndex"`
	Question   string     `gorm:"not null;size:1000"`
	Answer     string     `gorm:"not null;size:4000"`
	AnswerType AnswerType `gorm:"not null;size:20;default:NONE"`

	// Populated only when AnswerType is CODE_SNIPPET and the model supplied
	// a snippet.
	ExampleCode *string `gorm:"default:null"`

	TopicID uint  `gorm:"not null;index"`
	Topic   Topic `gorm:"foreignKey:TopicID" json:"-"`

	// Optional alternate owner for cards sourced from an uploaded document
	// rather than the topic tree. No FK: documents live outside this
	// service.
	DocumentID *uint `gorm:"index;default:null"`

	AuthorName *string `gorm:"size:200;default:null"`

	Explanation *Explanation `gorm:"foreignKey:CardID"`

	DetailsStatus GenerationStatus `gorm:"not null;size:20;default:NOT_STARTED"`

	QRCodeURL    *string          `gorm:"default:null"`
	QRCodeStatus GenerationStatus `gorm:"not null;size:20;default:NOT_STARTED"`
}

func (c *Card) BeforeCreate(tx *gorm.DB) error {
	if c.AnswerType == "" {
		c.AnswerType = AnswerTypeNone
	}
	if c.DetailsStatus == "" {
		c.DetailsStatus = GenerationNotStarted
	}
	if c.QRCodeStatus == "" {
		c.QRCodeStatus = GenerationNotStarted
	}
	return nil
}

// CardsInSubtree returns every card under rootID's topic subtree,
// explanation blocks included.
func CardsInSubtree(db *gorm.DB, rootID uint) ([]Card, error) {
	ids, err := DescendantTopicIDs(db, rootID)
	if err != nil {
		return nil, err
	}

	var cards []Card
	if err := db.Preload("Explanation.Blocks").Where("topic_id IN ?", ids).Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}
