package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/deckforge/deckforge-api/auth"
	"github.com/deckforge/deckforge-api/config"
	"github.com/deckforge/deckforge-api/models"
	"github.com/deckforge/deckforge-api/utils"
)

func setupAuthTest(t *testing.T) *models.User {
	t.Helper()
	t.Setenv("JWT_SECRET", "middleware-test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.Database = db

	user := &models.User{Email: "ada@example.com", Name: "Ada", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func captureCurrentUser(got **models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := utils.CurrentUser(r); ok {
			*got = user
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestOptionalAuth_ValidTokenResolvesUser(t *testing.T) {
	user := setupAuthTest(t)

	token, err := auth.CreateToken(user)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	var got *models.User
	req := httptest.NewRequest(http.MethodGet, "/decks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	OptionalAuth(captureCurrentUser(&got)).ServeHTTP(rec, req)

	if got == nil || got.ID != user.ID {
		t.Fatalf("expected the authenticated user on the context")
	}
}

func TestOptionalAuth_MissingHeaderIsAnonymous(t *testing.T) {
	setupAuthTest(t)

	var got *models.User
	req := httptest.NewRequest(http.MethodGet, "/decks", nil)
	rec := httptest.NewRecorder()
	OptionalAuth(captureCurrentUser(&got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous requests must pass through, got %d", rec.Code)
	}
	if got != nil {
		t.Fatalf("no user expected for anonymous request")
	}
}

func TestOptionalAuth_InvalidTokenIsAnonymousNotRejected(t *testing.T) {
	setupAuthTest(t)

	var got *models.User
	req := httptest.NewRequest(http.MethodGet, "/decks", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	OptionalAuth(captureCurrentUser(&got)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("invalid tokens must degrade to anonymous, got %d", rec.Code)
	}
	if got != nil {
		t.Fatalf("no user expected for invalid token")
	}
}
