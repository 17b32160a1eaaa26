package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/deckforge/deckforge-api/ai"
	"github.com/deckforge/deckforge-api/config"
	"github.com/deckforge/deckforge-api/handlers"
	"github.com/deckforge/deckforge-api/logger"
	"github.com/deckforge/deckforge-api/middleware"
)

func init() {
	// Load .env file if not in a deployed environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func main() {
	mode := "production"
	if config.Env.IsDevelopment {
		mode = "development"
	}
	zlog, err := logger.New(mode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize database connection
	config.Connect()

	aiClient, err := ai.NewOpenAIClient(zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize AI client", "error", err)
	}
	gen := ai.NewGenerator(config.Database, aiClient, zlog)

	DBHandler := &handlers.DBHandler{DB: config.Database, Gen: gen, Log: zlog}
	mux := http.NewServeMux()

	// Topics
	mux.HandleFunc("GET /topics", DBHandler.GetAllTopics)
	mux.HandleFunc("POST /topics", DBHandler.CreateTopic)
	mux.HandleFunc("GET /topics/{topicID}", DBHandler.GetTopicByID)
	mux.HandleFunc("PUT /topics/{topicID}", DBHandler.UpdateTopic)
	mux.HandleFunc("DELETE /topics/{topicID}", DBHandler.DeleteTopic)
	mux.HandleFunc("GET /topics/{topicID}/ancestors", DBHandler.GetTopicAncestors)
	mux.HandleFunc("GET /topics/{topicID}/cards", DBHandler.GetTopicSubtreeCards)
	mux.HandleFunc("POST /topics/generateHierarchy", DBHandler.GenerateTopicHierarchy)
	mux.HandleFunc("POST /topics/expandFurther", DBHandler.ExpandTopicFurther)

	// Cards
	mux.HandleFunc("GET /cards", DBHandler.GetAllCards)
	mux.HandleFunc("POST /cards", DBHandler.CreateCard)
	mux.HandleFunc("GET /cards/{cardID}", DBHandler.GetCardByID)
	mux.HandleFunc("PUT /cards/{cardID}", DBHandler.UpdateCard)
	mux.HandleFunc("DELETE /cards/{cardID}", DBHandler.DeleteCard)
	mux.HandleFunc("GET /cards/topic/{topicID}", DBHandler.GetCardsByTopic)
	mux.HandleFunc("GET /cards/topic/{topicID}/descendants", DBHandler.GetDescendantCards)
	mux.HandleFunc("GET /cards/deck/{deckID}", DBHandler.GetCardsByDeck)
	mux.HandleFunc("GET /cards/document/{documentID}", DBHandler.GetCardsByDocument)

	// Generation
	mux.HandleFunc("POST /cards/generate", DBHandler.GenerateCards)
	mux.HandleFunc("POST /cards/generate/{topicID}", DBHandler.GenerateCards)
	mux.HandleFunc("POST /cards/generateMore/{topicID}", DBHandler.GenerateMoreCards)
	mux.HandleFunc("POST /cards/docAll", DBHandler.DocAllCards)
	mux.HandleFunc("POST /cards/masterGenerate", DBHandler.MasterGenerate)

	// Card sub-resources share a wildcard pattern so the literal routes above
	// (/cards/topic/..., /cards/generateMore/...) stay more specific and win.
	mux.HandleFunc("GET /cards/{cardID}/{action}", DBHandler.CardActionGet)
	mux.HandleFunc("POST /cards/{cardID}/{action}", DBHandler.CardActionPost)
	mux.HandleFunc("POST /cards/qrCode/missing", DBHandler.GenerateMissingQRCodes)
	mux.HandleFunc("DELETE /cards/{cardID}/explanation", DBHandler.RemoveCardExplanation)
	mux.HandleFunc("POST /cards/{cardID}/explanation/block", DBHandler.AddCardExplanationBlock)

	// Decks
	mux.HandleFunc("GET /decks", DBHandler.GetDecks)
	mux.HandleFunc("GET /decks/{deckID}", DBHandler.GetDeckByID)
	mux.HandleFunc("GET /decks/{deckID}/pdf", DBHandler.GetDeckPDF)
	mux.HandleFunc("GET /decks/{deckID}/preview", DBHandler.GetDeckPreview)

	// Users
	mux.HandleFunc("POST /users/register", DBHandler.RegisterUser)
	mux.HandleFunc("POST /users/login", DBHandler.LoginUser)
	mux.HandleFunc("GET /users/{userID}", DBHandler.GetUserProfile)

	handler := middleware.RequestLogger(zlog, middleware.OptionalAuth(mux))

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://127.0.0.1:5173", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // fallback port for local development
	}
	serverAddr := "0.0.0.0:" + port

	zlog.Info("Server listening", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		zlog.Fatal("Server stopped", "error", err)
	}
}
