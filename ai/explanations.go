package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"github.com/deckforge/deckforge-api/fanout"
	"github.com/deckforge/deckforge-api/models"
)

// Concurrency ceiling for batch explanation generation.
const explanationFanoutLimit = 50

var explanationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title": map[string]any{"type": "string"},
		"blocks": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"blockTitle": map[string]any{"type": "string"},
					"content":    map[string]any{"type": "string"},
					"order":      map[string]any{"type": "integer"},
				},
				"required":             []string{"blockTitle", "content", "order"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"title", "blocks"},
	"additionalProperties": false,
}

type aiExplanation struct {
	Title  string    `json:"title"`
	Blocks []aiBlock `json:"blocks"`
}

type aiBlock struct {
	BlockTitle string `json:"blockTitle"`
	Content    string `json:"content"`
	Order      int    `json:"order"`
}

// validate enforces the strict shape the wire schema can't express: exactly
// 5 non-empty blocks whose orders form a permutation of 1..5.
func (e aiExplanation) validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Title, validation.Required),
		validation.Field(&e.Blocks, validation.Required, validation.Length(5, 5)),
	)
	if err != nil {
		return err
	}

	seenOrders := map[int]bool{}
	for _, b := range e.Blocks {
		if err := validation.ValidateStruct(&b,
			validation.Field(&b.BlockTitle, validation.Required),
			validation.Field(&b.Content, validation.Required),
			validation.Field(&b.Order, validation.Min(1), validation.Max(5)),
		); err != nil {
			return err
		}
		if seenOrders[b.Order] {
			return fmt.Errorf("duplicate block order %d", b.Order)
		}
		seenOrders[b.Order] = true
	}
	return nil
}

// blockTypeFor derives the block type from its title text.
func blockTypeFor(blockTitle string) models.BlockType {
	titleUpper := strings.ToUpper(blockTitle)
	switch {
	case strings.Contains(titleUpper, "IMAGE"):
		return models.BlockTypeImage
	case strings.Contains(titleUpper, "VIDEO"):
		return models.BlockTypeVideo
	default:
		return models.BlockTypeText
	}
}

// DocCard generates the 5-block explanation for one card, upserts it, and
// flips the card's details marker. The marker is the single source of truth
// for "explanation generated"; pending-work queries never look at the
// explanation row itself.
func (g *Generator) DocCard(ctx context.Context, card *models.Card) CardResult {
	result := CardResult{CardID: card.ID}

	subtopicName := ""
	parentTopicName := ""
	var topic models.Topic
	if err := g.DB.First(&topic, card.TopicID).Error; err == nil {
		subtopicName = topic.Name
		if topic.ParentTopicID != nil {
			var parent models.Topic
			if err := g.DB.First(&parent, *topic.ParentTopicID).Error; err == nil {
				parentTopicName = parent.Name
			}
		}
	}

	examplesStr := ""
	if card.ExampleCode != nil {
		examplesStr = *card.ExampleCode
	}

	system := fmt.Sprintf(`You have the following data:
- question: %q
- answer: %q
- examples: %q
- subtopic: %q
- parent topic: %q

Create a comprehensive explanation for this Q/A.
- title is a short descriptive title based on the question.
- blockTitle is a heading label, block content is plain text.
- Must have exactly 5 blocks, each with a unique order from 1 to 5.
- Do not use markdown or special formatting in the content.`,
		card.Question, card.Answer, examplesStr, subtopicName, parentTopicName)

	raw, err := g.Client.GenerateJSON(ctx, system, "Generate the explanation.", "explanationBlocks", explanationSchema)
	if err != nil {
		if err == ErrRefused {
			g.Log.Warn("DocCard: model refused", "cardId", card.ID)
			result.Outcome = OutcomeRefused
		} else {
			g.Log.Error("DocCard: call failed", "cardId", card.ID, "error", err)
			result.Outcome = OutcomeFailed
		}
		result.Err = err
		return result
	}

	var parsed aiExplanation
	if err := json.Unmarshal(raw, &parsed); err != nil {
		result.Outcome = OutcomeMalformed
		result.Err = err
		return result
	}
	if err := parsed.validate(); err != nil {
		g.Log.Warn("DocCard: explanation failed strict validation", "cardId", card.ID, "error", err)
		result.Outcome = OutcomeMalformed
		result.Err = err
		return result
	}

	blocks := make([]models.Block, 0, len(parsed.Blocks))
	for _, b := range parsed.Blocks {
		blocks = append(blocks, models.Block{
			BlockType:  blockTypeFor(b.BlockTitle),
			BlockTitle: b.BlockTitle,
			Content:    b.Content,
			Order:      b.Order,
		})
	}

	if err := UpsertExplanation(g.DB, card.ID, parsed.Title, blocks); err != nil {
		g.Log.Error("DocCard: failed to store explanation", "cardId", card.ID, "error", err)
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	if err := g.DB.Model(&models.Card{}).Where("id = ?", card.ID).
		Update("details_status", models.GenerationDone).Error; err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	g.Log.Info("DocCard: explanation stored", "cardId", card.ID)
	result.Outcome = OutcomeOK
	return result
}

// UpsertExplanation replaces a card's explanation title and blocks. Not
// transactional: a crash between the block delete and the creates can leave
// an explanation with zero blocks (accepted risk).
func UpsertExplanation(db *gorm.DB, cardID uint, title string, blocks []models.Block) error {
	var explanation models.Explanation
	err := db.Where("card_id = ?", cardID).First(&explanation).Error
	if err != nil {
		explanation = models.Explanation{CardID: cardID, Title: title}
		if err := db.Create(&explanation).Error; err != nil {
			return err
		}
	} else {
		if err := db.Model(&explanation).Update("title", title).Error; err != nil {
			return err
		}
		if err := db.Where("explanation_id = ?", explanation.ID).Delete(&models.Block{}).Error; err != nil {
			return err
		}
	}

	for i := range blocks {
		blocks[i].ExplanationID = explanation.ID
		if err := db.Create(&blocks[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// DocAllPending generates explanations for every card whose details marker
// is still pending, with bounded concurrency.
func (g *Generator) DocAllPending(ctx context.Context) (BatchSummary, error) {
	var cards []models.Card
	if err := g.DB.Scopes(models.PendingExplanation).Find(&cards).Error; err != nil {
		return BatchSummary{}, err
	}
	g.Log.Info("DocAllPending: cards needing explanations", "count", len(cards))
	return g.docBatch(ctx, cards), nil
}

// DocPendingInSubtree is DocAllPending restricted to cards under one
// topic's subtree.
func (g *Generator) DocPendingInSubtree(ctx context.Context, rootTopicID uint) (BatchSummary, error) {
	ids, err := models.DescendantTopicIDs(g.DB, rootTopicID)
	if err != nil {
		return BatchSummary{}, err
	}

	var cards []models.Card
	if err := g.DB.Scopes(models.PendingExplanation).Where("topic_id IN ?", ids).Find(&cards).Error; err != nil {
		return BatchSummary{}, err
	}
	g.Log.Info("DocPendingInSubtree: cards needing explanations", "root", rootTopicID, "count", len(cards))
	return g.docBatch(ctx, cards), nil
}

func (g *Generator) docBatch(ctx context.Context, cards []models.Card) BatchSummary {
	results := make([]CardResult, len(cards))

	tasks := make([]fanout.Task, len(cards))
	for i := range cards {
		card := cards[i]
		tasks[i] = func(ctx context.Context) error {
			results[i] = g.DocCard(ctx, &card)
			return results[i].Err
		}
	}
	fanout.Run(ctx, explanationFanoutLimit, tasks)

	var summary BatchSummary
	for _, r := range results {
		summary.record(r.Outcome, 0)
	}
	return summary
}
