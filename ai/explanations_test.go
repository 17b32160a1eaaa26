package ai

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/deckforge/deckforge-api/models"
)

func seedCard(t *testing.T, g *Generator, topicID uint, question string) *models.Card {
	t.Helper()
	card := models.Card{
		PublicID: "card-" + strings.ReplaceAll(question, " ", "-"),
		Question: question,
		Answer:   "An answer",
		TopicID:  topicID,
	}
	if err := g.DB.Create(&card).Error; err != nil {
		t.Fatalf("create card: %v", err)
	}
	return &card
}

func TestDocCard_StoresFiveBlocksAndMarksDone(t *testing.T) {
	blocks := fiveBlocks()
	blocks[2].BlockTitle = "Helpful image references"

	gen, _ := newTestGenerator(t, func(system, user, schemaName string) (json.RawMessage, error) {
		return explanationResponse(t, "Branches explained", blocks), nil
	})
	topic := seedTopic(t, gen, "Branching")
	card := seedCard(t, gen, topic.ID, "What is a branch?")

	result := gen.DocCard(context.Background(), card)
	if result.Outcome != OutcomeOK {
		t.Fatalf("expected ok, got %s (%v)", result.Outcome, result.Err)
	}

	var explanation models.Explanation
	if err := gen.DB.Preload("Blocks").Where("card_id = ?", card.ID).First(&explanation).Error; err != nil {
		t.Fatalf("load explanation: %v", err)
	}
	if explanation.Title != "Branches explained" {
		t.Fatalf("unexpected title %q", explanation.Title)
	}
	if len(explanation.Blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(explanation.Blocks))
	}

	// Block type is derived from the block title.
	foundImage := false
	for _, b := range explanation.Blocks {
		if b.BlockTitle == "Helpful image references" {
			foundImage = true
			if b.BlockType != models.BlockTypeImage {
				t.Fatalf("expected IMAGE block type, got %s", b.BlockType)
			}
		} else if b.BlockType != models.BlockTypeText {
			t.Fatalf("expected TEXT block type for %q, got %s", b.BlockTitle, b.BlockType)
		}
	}
	if !foundImage {
		t.Fatalf("image block missing")
	}

	var reloaded models.Card
	gen.DB.First(&reloaded, card.ID)
	if !reloaded.DetailsStatus.Done() {
		t.Fatalf("card details marker should be done")
	}
}

func TestDocCard_RejectsWrongBlockCount(t *testing.T) {
	gen, _ := newTestGenerator(t, func(system, user, schemaName string) (json.RawMessage, error) {
		return explanationResponse(t, "Too short", fiveBlocks()[:4]), nil
	})
	topic := seedTopic(t, gen, "Branching")
	card := seedCard(t, gen, topic.ID, "What is a branch?")

	result := gen.DocCard(context.Background(), card)
	if result.Outcome != OutcomeMalformed {
		t.Fatalf("expected malformed, got %s", result.Outcome)
	}

	var count int64
	gen.DB.Model(&models.Explanation{}).Where("card_id = ?", card.ID).Count(&count)
	if count != 0 {
		t.Fatalf("rejected explanation must not be stored")
	}
	var reloaded models.Card
	gen.DB.First(&reloaded, card.ID)
	if reloaded.DetailsStatus.Done() {
		t.Fatalf("card must stay pending after a rejected explanation")
	}
}

func TestDocCard_RejectsDuplicateBlockOrders(t *testing.T) {
	blocks := fiveBlocks()
	blocks[3].Order = 3

	gen, _ := newTestGenerator(t, func(system, user, schemaName string) (json.RawMessage, error) {
		return explanationResponse(t, "Bad orders", blocks), nil
	})
	topic := seedTopic(t, gen, "Branching")
	card := seedCard(t, gen, topic.ID, "What is a branch?")

	result := gen.DocCard(context.Background(), card)
	if result.Outcome != OutcomeMalformed {
		t.Fatalf("expected malformed, got %s", result.Outcome)
	}
}

func TestDocCard_RefusalLeavesCardPending(t *testing.T) {
	gen, _ := newTestGenerator(t, func(system, user, schemaName string) (json.RawMessage, error) {
		return nil, ErrRefused
	})
	topic := seedTopic(t, gen, "Branching")
	card := seedCard(t, gen, topic.ID, "What is a branch?")

	result := gen.DocCard(context.Background(), card)
	if result.Outcome != OutcomeRefused {
		t.Fatalf("expected refused, got %s", result.Outcome)
	}
	var reloaded models.Card
	gen.DB.First(&reloaded, card.ID)
	if reloaded.DetailsStatus.Done() {
		t.Fatalf("refused card must stay pending")
	}
}

func TestUpsertExplanation_ReplacesTitleAndBlocks(t *testing.T) {
	gen, _ := newTestGenerator(t, nil)
	topic := seedTopic(t, gen, "Branching")
	card := seedCard(t, gen, topic.ID, "What is a branch?")

	first := []models.Block{
		{BlockTitle: "Old", Content: "old content", Order: 1, BlockType: models.BlockTypeText},
		{BlockTitle: "Older", Content: "older content", Order: 2, BlockType: models.BlockTypeText},
	}
	if err := UpsertExplanation(gen.DB, card.ID, "First title", first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := []models.Block{
		{BlockTitle: "New", Content: "new content", Order: 1, BlockType: models.BlockTypeText},
	}
	if err := UpsertExplanation(gen.DB, card.ID, "Second title", second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var explanations []models.Explanation
	gen.DB.Preload("Blocks").Where("card_id = ?", card.ID).Find(&explanations)
	if len(explanations) != 1 {
		t.Fatalf("expected a single explanation row, got %d", len(explanations))
	}
	if explanations[0].Title != "Second title" {
		t.Fatalf("title not replaced: %q", explanations[0].Title)
	}
	if len(explanations[0].Blocks) != 1 || explanations[0].Blocks[0].BlockTitle != "New" {
		t.Fatalf("old blocks should be gone, got %+v", explanations[0].Blocks)
	}
}

func TestDocAllPending_CountsMixedOutcomes(t *testing.T) {
	gen, client := newTestGenerator(t, nil)
	topic := seedTopic(t, gen, "Branching")
	good := seedCard(t, gen, topic.ID, "Answer me")
	seedCard(t, gen, topic.ID, "REFUSE this one")

	done := seedCard(t, gen, topic.ID, "Already documented")
	gen.DB.Model(&models.Card{}).Where("id = ?", done.ID).Update("details_status", models.GenerationDone)

	client.respond = func(system, user, schemaName string) (json.RawMessage, error) {
		if strings.Contains(system, "REFUSE") {
			return nil, ErrRefused
		}
		return explanationResponse(t, "Fine", fiveBlocks()), nil
	}

	summary, err := gen.DocAllPending(context.Background())
	if err != nil {
		t.Fatalf("DocAllPending: %v", err)
	}

	if summary.Total != 2 || summary.OK != 1 || summary.Refused != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	var reloaded models.Card
	gen.DB.First(&reloaded, good.ID)
	if !reloaded.DetailsStatus.Done() {
		t.Fatalf("documented card should be marked done")
	}
}
