package ai

import (
	"github.com/deckforge/deckforge-api/logger"
	"gorm.io/gorm"
)

// Generator orchestrates everything the LLM gateway produces: topic trees,
// flashcards, and detailed explanations.
type Generator struct {
	DB     *gorm.DB
	Client Client
	Log    *logger.Logger
}

func NewGenerator(db *gorm.DB, client Client, log *logger.Logger) *Generator {
	return &Generator{DB: db, Client: client, Log: log.With("service", "Generator")}
}

// Outcome classifies one unit of generation work, so callers can tell
// "zero cards because the topic has nothing to teach" apart from "zero
// cards because the call failed".
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeRefused   Outcome = "refused"
	OutcomeMalformed Outcome = "malformed"
	OutcomeFailed    Outcome = "failed"
)

// TopicResult reports card generation for one topic.
type TopicResult struct {
	TopicID   uint    `json:"topicId"`
	TopicName string  `json:"topicName"`
	Outcome   Outcome `json:"outcome"`
	Cards     int     `json:"cards"`
	Err       error   `json:"-"`
}

// CardResult reports explanation (or QR) generation for one card.
type CardResult struct {
	CardID  uint    `json:"cardId"`
	Outcome Outcome `json:"outcome"`
	Err     error   `json:"-"`
}

// BatchSummary aggregates per-unit outcomes for a batch driver. Individual
// failures never abort a batch; they are counted here instead.
type BatchSummary struct {
	Total        int `json:"total"`
	OK           int `json:"ok"`
	Refused      int `json:"refused"`
	Malformed    int `json:"malformed"`
	Failed       int `json:"failed"`
	CardsCreated int `json:"cardsCreated"`
}

func (s *BatchSummary) record(outcome Outcome, cards int) {
	s.Total++
	s.CardsCreated += cards
	switch outcome {
	case OutcomeOK:
		s.OK++
	case OutcomeRefused:
		s.Refused++
	case OutcomeMalformed:
		s.Malformed++
	default:
		s.Failed++
	}
}
