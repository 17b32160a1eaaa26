package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deckforge/deckforge-api/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var subtopicsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"subtopics": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required":             []string{"subtopics"},
	"additionalProperties": false,
}

var deckTitleSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"deckTitle": map[string]any{"type": "string"},
	},
	"required":             []string{"deckTitle"},
	"additionalProperties": false,
}

// ExpansionResult is what CreateAndExpandDeck hands back to the HTTP layer.
type ExpansionResult struct {
	Deck        models.Deck  `json:"deck"`
	ParentTopic models.Topic `json:"parentTopic"`
	Budget      Budget       `json:"budget"`
}

// CreateAndExpandDeck turns a free-text learning goal into a deck plus a
// bounded topic tree. The root topic keeps the long goal text as its name;
// the condensed title is only the deck's display name.
func (g *Generator) CreateAndExpandDeck(ctx context.Context, userGoal string, userID *uint) (*ExpansionResult, error) {
	condensedTitle := g.condenseDeckName(ctx, userGoal)

	parentTopic := models.Topic{Name: userGoal}
	if publicID, err := gonanoid.New(); err == nil {
		parentTopic.PublicID = publicID
	}
	if err := g.DB.Create(&parentTopic).Error; err != nil {
		return nil, fmt.Errorf("create parent topic: %w", err)
	}

	deck := models.Deck{
		Name:     condensedTitle,
		IsPublic: userID == nil,
		UserID:   userID,
		TopicID:  parentTopic.ID,
	}
	if publicID, err := gonanoid.New(); err == nil {
		deck.PublicID = publicID
	}
	if err := g.DB.Create(&deck).Error; err != nil {
		return nil, fmt.Errorf("create deck: %w", err)
	}

	budget := NewBudget()
	g.expandSubtopics(ctx, &parentTopic, budget)

	return &ExpansionResult{Deck: deck, ParentTopic: parentTopic, Budget: *budget}, nil
}

// condenseDeckName asks the model for a short deck title. On refusal or any
// error the raw goal text is used instead; naming never fails the run.
func (g *Generator) condenseDeckName(ctx context.Context, userGoal string) string {
	system := fmt.Sprintf(`You are a specialized assistant that takes a user's lengthy or messy topic request and produces a concise, clear deck title (one short phrase).

Example input: "I want to learn the basics of Node.js + Express and testing"
Example output: "Node.js & Express Foundations"

The user's goal is: %q`, userGoal)

	raw, err := g.Client.GenerateJSON(ctx, system, "Condense the goal into a deck title.", "deckTitle", deckTitleSchema)
	if err != nil {
		g.Log.Warn("condenseDeckName: falling back to raw goal", "error", err)
		return userGoal
	}

	var parsed struct {
		DeckTitle string `json:"deckTitle"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || strings.TrimSpace(parsed.DeckTitle) == "" {
		g.Log.Warn("condenseDeckName: no usable title in response")
		return userGoal
	}
	return parsed.DeckTitle
}

// expandSubtopics grows the tree breadth-first from parentTopic: up to
// maxRounds rounds, one API call per frontier topic per round, stopping
// early when a round creates nothing or the budget runs out.
func (g *Generator) expandSubtopics(ctx context.Context, parentTopic *models.Topic, budget *Budget) {
	seen := map[string]bool{parentTopic.Name: true}
	frontier := []models.Topic{*parentTopic}

	for round := 1; round <= maxRounds; round++ {
		var newlyCreated []models.Topic

		for _, topic := range frontier {
			if budget.SubtopicsExhausted() {
				break
			}
			if !budget.SpendCall() {
				g.Log.Info("expandSubtopics: API call cap reached", "cap", budget.CallsCap)
				break
			}

			subtopics := g.generateSubtopics(ctx, topic.Name, seen)

			for _, subName := range subtopics {
				if budget.SubtopicsExhausted() {
					g.Log.Info("expandSubtopics: subtopic cap reached", "cap", budget.SubtopicsCap)
					break
				}
				if seen[subName] {
					continue
				}
				seen[subName] = true

				child := models.Topic{Name: subName, ParentTopicID: &topic.ID}
				if publicID, err := gonanoid.New(); err == nil {
					child.PublicID = publicID
				}
				if err := g.DB.Create(&child).Error; err != nil {
					g.Log.Error("expandSubtopics: failed to create subtopic", "name", subName, "error", err)
					continue
				}
				newlyCreated = append(newlyCreated, child)
				budget.RecordSubtopic()
			}
		}

		if len(newlyCreated) == 0 || budget.SubtopicsExhausted() || budget.CallsExhausted() {
			g.Log.Info("expandSubtopics: stopping early", "round", round, "created", len(newlyCreated))
			break
		}
		frontier = newlyCreated
	}
}

// generateSubtopics spends one LLM call asking for exactly 3 candidate
// subtopic names. Errors and refusals yield zero subtopics for this call
// only; expansion is best-effort growth, never all-or-nothing.
func (g *Generator) generateSubtopics(ctx context.Context, topicContext string, seen map[string]bool) []string {
	var noDupes strings.Builder
	if len(seen) > 0 {
		noDupes.WriteString("These subtopics have already been considered:\n")
		for name := range seen {
			noDupes.WriteString("- " + name + "\n")
		}
	} else {
		noDupes.WriteString("No subtopics have been considered yet.\n")
	}

	system := fmt.Sprintf(`You are an AI that creates subtopics for flashcards and learning purposes.
The user wants to create flashcards about: %q

Keep the subtopics strictly focused on the fundamental aspects of %q.
Avoid overly advanced or tangential topics.
Keep the scope small and relevant to the user's stated goal.
Only provide exactly 3 new subtopics that would be useful for building flashcards.

%s
If there are no new subtopics to add, return an empty "subtopics" array.`, topicContext, topicContext, noDupes.String())

	raw, err := g.Client.GenerateJSON(ctx, system, "Generate the subtopics.", "subtopics", subtopicsSchema)
	if err != nil {
		g.Log.Warn("generateSubtopics: call yielded nothing", "topic", topicContext, "error", err)
		return nil
	}

	var parsed struct {
		Subtopics *[]string `json:"subtopics"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Subtopics == nil {
		g.Log.Warn("generateSubtopics: no valid subtopics array", "topic", topicContext)
		return nil
	}
	return *parsed.Subtopics
}

// ExpandTopicFurther runs one more expansion round over the leaf topics of
// an existing subtree. The budget is per-call here too, so repeated
// expansions don't starve each other.
func (g *Generator) ExpandTopicFurther(ctx context.Context, parentTopicID uint, existingSubtopics []string) ([]models.Topic, error) {
	var parentTopic models.Topic
	if err := g.DB.First(&parentTopic, parentTopicID).Error; err != nil {
		return nil, fmt.Errorf("find parent topic: %w", err)
	}

	seen := map[string]bool{parentTopic.Name: true}
	for _, name := range existingSubtopics {
		seen[name] = true
	}
	treeIDs, err := models.DescendantTopicIDs(g.DB, parentTopic.ID)
	if err != nil {
		return nil, err
	}
	var treeNames []string
	if err := g.DB.Model(&models.Topic{}).Where("id IN ?", treeIDs).Pluck("name", &treeNames).Error; err != nil {
		return nil, err
	}
	for _, name := range treeNames {
		seen[name] = true
	}

	leaves, err := models.LeafTopics(g.DB, parentTopic.ID)
	if err != nil {
		return nil, err
	}
	if len(leaves) == 0 {
		g.Log.Info("ExpandTopicFurther: no leaf topics to expand", "parentTopicId", parentTopicID)
		return []models.Topic{}, nil
	}

	budget := NewBudget()
	newlyCreated := []models.Topic{}

	for _, leaf := range leaves {
		if !budget.SpendCall() {
			break
		}

		subtopics := g.generateSubtopics(ctx, leaf.Name, seen)
		for _, subName := range subtopics {
			if seen[subName] {
				continue
			}
			seen[subName] = true

			child := models.Topic{Name: subName, ParentTopicID: &leaf.ID}
			if publicID, err := gonanoid.New(); err == nil {
				child.PublicID = publicID
			}
			if err := g.DB.Create(&child).Error; err != nil {
				g.Log.Error("ExpandTopicFurther: failed to create subtopic", "name", subName, "error", err)
				continue
			}
			newlyCreated = append(newlyCreated, child)
		}
	}

	return newlyCreated, nil
}
