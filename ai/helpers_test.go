package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/deckforge/deckforge-api/logger"
	"github.com/deckforge/deckforge-api/models"
)

// testDB opens a fresh in-memory database per test. The shared-cache DSN
// keeps gorm's connection pool pointed at one database instead of one
// per connection.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Topic{},
		&models.Card{},
		&models.Explanation{},
		&models.Block{},
		&models.Deck{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// stubClient scripts GenerateJSON responses per call. The respond function
// may be called concurrently by batch drivers.
type stubClient struct {
	mu      sync.Mutex
	calls   []string
	respond func(system, user, schemaName string) (json.RawMessage, error)
}

func (c *stubClient) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (json.RawMessage, error) {
	c.mu.Lock()
	c.calls = append(c.calls, schemaName)
	c.mu.Unlock()
	return c.respond(system, user, schemaName)
}

func (c *stubClient) callCount(schemaName string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.calls {
		if s == schemaName {
			n++
		}
	}
	return n
}

func newTestGenerator(t *testing.T, respond func(system, user, schemaName string) (json.RawMessage, error)) (*Generator, *stubClient) {
	t.Helper()
	client := &stubClient{respond: respond}
	return NewGenerator(testDB(t), client, logger.NewNop()), client
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal stub response: %v", err)
	}
	return raw
}

func subtopicsResponse(t *testing.T, names ...string) json.RawMessage {
	if names == nil {
		names = []string{}
	}
	return mustJSON(t, map[string]any{"subtopics": names})
}

func deckTitleResponse(t *testing.T, title string) json.RawMessage {
	return mustJSON(t, map[string]any{"deckTitle": title})
}

func cardsResponse(t *testing.T, cards ...aiCard) json.RawMessage {
	if cards == nil {
		cards = []aiCard{}
	}
	return mustJSON(t, map[string]any{"cards": cards})
}

func explanationResponse(t *testing.T, title string, blocks []aiBlock) json.RawMessage {
	return mustJSON(t, map[string]any{"title": title, "blocks": blocks})
}

func fiveBlocks() []aiBlock {
	return []aiBlock{
		{BlockTitle: "Overview", Content: "The big picture.", Order: 1},
		{BlockTitle: "How it works", Content: "Mechanics.", Order: 2},
		{BlockTitle: "Example", Content: "A worked example.", Order: 3},
		{BlockTitle: "Common mistakes", Content: "Pitfalls.", Order: 4},
		{BlockTitle: "Summary", Content: "Recap.", Order: 5},
	}
}
