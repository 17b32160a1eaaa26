package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/deckforge/deckforge-api/ai"
	"github.com/deckforge/deckforge-api/logger"
	"github.com/deckforge/deckforge-api/models"
	"github.com/deckforge/deckforge-api/utils"
)

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

// scriptedClient satisfies ai.Client for handler tests that reach the
// generator.
type scriptedClient struct {
	respond func(system, user, schemaName string) (json.RawMessage, error)
}

func (c *scriptedClient) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (json.RawMessage, error) {
	return c.respond(system, user, schemaName)
}

func newTestHandler(t *testing.T) *DBHandler {
	t.Helper()
	return newTestHandlerWithClient(t, &scriptedClient{
		respond: func(system, user, schemaName string) (json.RawMessage, error) {
			t.Fatalf("unexpected LLM call for schema %q", schemaName)
			return nil, nil
		},
	})
}

func newTestHandlerWithClient(t *testing.T, client ai.Client) *DBHandler {
	t.Helper()
	db := testDB(t)
	log := logger.NewNop()
	return &DBHandler{DB: db, Gen: ai.NewGenerator(db, client, log), Log: log}
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), utils.UserContextKey, user)
	return r.WithContext(ctx)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func seedTopic(t *testing.T, db *DBHandler, name string, parent *models.Topic) *models.Topic {
	t.Helper()
	topic := models.Topic{Name: name, PublicID: "pid-" + name}
	if parent != nil {
		topic.ParentTopicID = &parent.ID
	}
	if err := db.Create(&topic).Error; err != nil {
		t.Fatalf("create topic %s: %v", name, err)
	}
	return &topic
}

func seedCard(t *testing.T, db *DBHandler, topicID uint, question string) *models.Card {
	t.Helper()
	card := models.Card{
		PublicID: "card-" + strings.ReplaceAll(question, " ", "-"),
		Question: question,
		Answer:   "An answer",
		TopicID:  topicID,
	}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("create card: %v", err)
	}
	return &card
}

func seedDeck(t *testing.T, db *DBHandler, name string, topicID uint, userID *uint) *models.Deck {
	t.Helper()
	deck := models.Deck{
		PublicID: "deck-" + name,
		Name:     name,
		IsPublic: userID == nil,
		UserID:   userID,
		TopicID:  topicID,
	}
	if err := db.Create(&deck).Error; err != nil {
		t.Fatalf("create deck: %v", err)
	}
	return &deck
}
