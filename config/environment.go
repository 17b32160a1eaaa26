package config

import "os"

type Environment struct {
	IsDevelopment bool
	BaseURL       string
	JWTSecret     string
}

var Env Environment

func init() {
	baseURL := os.Getenv("BASE_URL")

	// If no public base URL is set, we're in development
	isDev := baseURL == ""
	if isDev {
		baseURL = "http://127.0.0.1:5173"
	}

	Env = Environment{
		IsDevelopment: isDev,
		BaseURL:       baseURL,
		JWTSecret:     os.Getenv("JWT_SECRET"),
	}
}
