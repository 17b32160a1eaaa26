package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/deckforge/deckforge-api/models"
)

// Claims is the token payload minted at login.
type Claims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func secret() ([]byte, error) {
	secretKeyStr := os.Getenv("JWT_SECRET")
	if secretKeyStr == "" {
		return nil, fmt.Errorf("auth.go: JWT_SECRET not set")
	}
	return []byte(secretKeyStr), nil
}

func CreateToken(user *models.User) (string, error) {
	secretKey, err := secret()
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{
			"userId": user.ID,
			"email":  user.Email,
			"name":   user.Name,
			"exp":    time.Now().Add(2 * time.Hour).Unix(),
		})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func VerifyToken(tokenString string) (*Claims, error) {
	secretKey, err := secret()
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	claims := &Claims{}
	if v, ok := mapClaims["userId"].(float64); ok {
		claims.UserID = uint(v)
	}
	if v, ok := mapClaims["email"].(string); ok {
		claims.Email = v
	}
	if v, ok := mapClaims["name"].(string); ok {
		claims.Name = v
	}
	if claims.UserID == 0 {
		return nil, fmt.Errorf("token missing userId claim")
	}

	return claims, nil
}
