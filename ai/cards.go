package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deckforge/deckforge-api/fanout"
	"github.com/deckforge/deckforge-api/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	maxCardsPerTopic = 10
	maxTopUpRounds   = 3

	// Concurrency ceiling for batch card generation.
	cardFanoutLimit = 100
)

var cardsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"cards": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{"type": "string"},
					"answer":   map[string]any{"type": "string"},
					"answerType": map[string]any{
						"type": "string",
						"enum": []string{"NONE", "CODE_SNIPPET", "FLOWCHART", "DIAGRAM"},
					},
					"codeSnippet": map[string]any{"type": "string"},
				},
				"required":             []string{"question", "answer", "answerType", "codeSnippet"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"cards"},
	"additionalProperties": false,
}

type aiCard struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	AnswerType  string `json:"answerType"`
	CodeSnippet string `json:"codeSnippet"`
}

// GenerateCardsForTopic creates 1-10 flashcards for one topic and marks the
// topic done. A topic whose valid result is an empty array is still marked
// done and will not be re-selected by batch drivers.
func (g *Generator) GenerateCardsForTopic(ctx context.Context, topic *models.Topic, authorName *string) TopicResult {
	result := TopicResult{TopicID: topic.ID, TopicName: topic.Name}

	parentTopicName := ""
	if topic.ParentTopicID != nil {
		var parent models.Topic
		if err := g.DB.First(&parent, *topic.ParentTopicID).Error; err == nil {
			parentTopicName = parent.Name
		}
	}
	if parentTopicName == "" {
		parentTopicName = "none"
	}

	system := fmt.Sprintf(`You are an AI that generates flashcards for the topic %q in the context of its parent topic %q.

Requirements:
1) Generate between 1 and 10 flashcards in total.
2) Each flashcard must have ONLY: question, answer, answerType (NONE, CODE_SNIPPET, FLOWCHART, DIAGRAM), codeSnippet.
3) If answerType is CODE_SNIPPET, put only the code snippet in 'codeSnippet'. Otherwise leave codeSnippet empty.`, topic.Name, parentTopicName)

	aiCards, outcome, err := g.requestCards(ctx, system, topic.Name)
	if outcome != OutcomeOK {
		result.Outcome = outcome
		result.Err = err
		return result
	}

	if len(aiCards) > maxCardsPerTopic {
		aiCards = aiCards[:maxCardsPerTopic]
	}

	for _, card := range aiCards {
		if _, err := g.createCard(card, topic.ID, authorName); err != nil {
			g.Log.Error("GenerateCardsForTopic: failed to persist card", "topic", topic.Name, "error", err)
			result.Outcome = OutcomeFailed
			result.Err = err
			return result
		}
		result.Cards++
	}

	if err := g.DB.Model(&models.Topic{}).Where("id = ?", topic.ID).
		Update("cards_status", models.GenerationDone).Error; err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	g.Log.Info("GenerateCardsForTopic: done", "topic", topic.Name, "cards", result.Cards)
	result.Outcome = OutcomeOK
	return result
}

// GenerateMoreCards asks for additional, non-duplicate flashcards. Returned
// candidates whose trimmed question matches an existing question for the
// topic are dropped and the shortfall is re-requested, bounded at
// maxTopUpRounds rounds. The topic's generation marker is never touched.
func (g *Generator) GenerateMoreCards(ctx context.Context, topic *models.Topic, additionalCount int, authorName *string) ([]models.Card, TopicResult) {
	result := TopicResult{TopicID: topic.ID, TopicName: topic.Name}

	var existingCards []models.Card
	if err := g.DB.Where("topic_id = ?", topic.ID).Find(&existingCards).Error; err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return nil, result
	}

	existing := make(map[string]bool, len(existingCards))
	for _, c := range existingCards {
		existing[strings.TrimSpace(c.Question)] = true
	}

	parentTopicName := "none"
	if topic.ParentTopicID != nil {
		var parent models.Topic
		if err := g.DB.First(&parent, *topic.ParentTopicID).Error; err == nil {
			parentTopicName = parent.Name
		}
	}

	created := []models.Card{}
	want := additionalCount

	for round := 0; round < maxTopUpRounds && want > 0; round++ {
		var existingList strings.Builder
		for q := range existing {
			existingList.WriteString("- " + q + "\n")
		}

		system := fmt.Sprintf(`You are an AI generating *additional* flashcards for %q (parent: %q).

Already have these questions:
%s
Generate exactly %d new flashcards with no duplicates.
Each card: question, answer, answerType (NONE, CODE_SNIPPET, FLOWCHART, DIAGRAM), codeSnippet (empty unless code).`,
			topic.Name, parentTopicName, existingList.String(), want)

		aiCards, outcome, err := g.requestCards(ctx, system, topic.Name)
		if outcome != OutcomeOK {
			if round == 0 {
				result.Outcome = outcome
				result.Err = err
				return created, result
			}
			// Later rounds: keep what we already created.
			break
		}

		for _, card := range aiCards {
			if want == 0 {
				break
			}
			question := strings.TrimSpace(card.Question)
			if question == "" || existing[question] {
				g.Log.Info("GenerateMoreCards: dropping duplicate candidate", "topic", topic.Name, "question", question)
				continue
			}
			saved, err := g.createCard(card, topic.ID, authorName)
			if err != nil {
				g.Log.Error("GenerateMoreCards: failed to persist card", "topic", topic.Name, "error", err)
				continue
			}
			existing[question] = true
			want--
			created = append(created, *saved)
		}
	}

	result.Outcome = OutcomeOK
	result.Cards = len(created)
	g.Log.Info("GenerateMoreCards: done", "topic", topic.Name, "created", len(created), "requested", additionalCount)
	return created, result
}

// requestCards runs one structured card-generation call and classifies the
// response.
func (g *Generator) requestCards(ctx context.Context, system string, topicName string) ([]aiCard, Outcome, error) {
	raw, err := g.Client.GenerateJSON(ctx, system, "Generate the flashcards.", "cards", cardsSchema)
	if err != nil {
		if err == ErrRefused {
			g.Log.Warn("requestCards: model refused", "topic", topicName)
			return nil, OutcomeRefused, err
		}
		g.Log.Error("requestCards: call failed", "topic", topicName, "error", err)
		return nil, OutcomeFailed, err
	}

	var parsed struct {
		Cards *[]aiCard `json:"cards"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Cards == nil {
		g.Log.Warn("requestCards: no valid cards array", "topic", topicName)
		return nil, OutcomeMalformed, fmt.Errorf("no valid cards array")
	}
	return *parsed.Cards, OutcomeOK, nil
}

func (g *Generator) createCard(card aiCard, topicID uint, authorName *string) (*models.Card, error) {
	answerType := models.AnswerType(card.AnswerType)
	if !answerType.Valid() {
		answerType = models.AnswerTypeNone
	}

	newCard := models.Card{
		Question:   card.Question,
		Answer:     card.Answer,
		AnswerType: answerType,
		TopicID:    topicID,
		AuthorName: authorName,
	}
	if answerType == models.AnswerTypeCodeSnippet && card.CodeSnippet != "" {
		snippet := card.CodeSnippet
		newCard.ExampleCode = &snippet
	}
	if publicID, err := gonanoid.New(); err == nil {
		newCard.PublicID = publicID
	}

	if err := g.DB.Create(&newCard).Error; err != nil {
		return nil, err
	}
	return &newCard, nil
}

// GenerateForAllPending finds every topic still needing flashcards and runs
// per-topic generation with bounded concurrency. Per-topic failures are
// counted in the summary, never raised.
func (g *Generator) GenerateForAllPending(ctx context.Context, authorName *string) (BatchSummary, error) {
	var topics []models.Topic
	if err := g.DB.Scopes(models.PendingCardGeneration).Find(&topics).Error; err != nil {
		return BatchSummary{}, err
	}
	g.Log.Info("GenerateForAllPending: topics needing flashcards", "count", len(topics))
	return g.generateBatch(ctx, topics, authorName), nil
}

// GenerateForPendingInSubtree is GenerateForAllPending restricted to one
// topic's subtree (root included).
func (g *Generator) GenerateForPendingInSubtree(ctx context.Context, rootTopicID uint, authorName *string) (BatchSummary, error) {
	ids, err := models.DescendantTopicIDs(g.DB, rootTopicID)
	if err != nil {
		return BatchSummary{}, err
	}

	var topics []models.Topic
	if err := g.DB.Scopes(models.PendingCardGeneration).Where("id IN ?", ids).Find(&topics).Error; err != nil {
		return BatchSummary{}, err
	}
	g.Log.Info("GenerateForPendingInSubtree: topics needing flashcards", "root", rootTopicID, "count", len(topics))
	return g.generateBatch(ctx, topics, authorName), nil
}

func (g *Generator) generateBatch(ctx context.Context, topics []models.Topic, authorName *string) BatchSummary {
	results := make([]TopicResult, len(topics))

	tasks := make([]fanout.Task, len(topics))
	for i := range topics {
		topic := topics[i]
		tasks[i] = func(ctx context.Context) error {
			results[i] = g.GenerateCardsForTopic(ctx, &topic, authorName)
			return results[i].Err
		}
	}
	fanout.Run(ctx, cardFanoutLimit, tasks)

	var summary BatchSummary
	for _, r := range results {
		summary.record(r.Outcome, r.Cards)
	}
	return summary
}
