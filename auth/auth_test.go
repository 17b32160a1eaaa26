package auth

import (
	"testing"

	"github.com/deckforge/deckforge-api/models"
	"gorm.io/gorm"
)

func testUser() *models.User {
	return &models.User{
		Model: gorm.Model{ID: 42},
		Email: "ada@example.com",
		Name:  "Ada",
	}
}

func TestCreateAndVerifyToken_RoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := CreateToken(testUser())
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "ada@example.com" || claims.Name != "Ada" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyToken_RejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	token, err := CreateToken(testUser())
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-two")
	if _, err := VerifyToken(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}

func TestVerifyToken_RejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	if _, err := VerifyToken("not-a-token"); err == nil {
		t.Fatalf("garbage input must be rejected")
	}
}

func TestCreateToken_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := CreateToken(testUser()); err == nil {
		t.Fatalf("missing JWT_SECRET must be an error")
	}
}
