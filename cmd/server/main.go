package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"clausecheck-backend/handlers"
	"clausecheck-backend/models"
	"clausecheck-backend/repository"
	"clausecheck-backend/service"
	"clausecheck-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	ctx := context.Background()

	// Database is optional; without it the server runs stateless with the
	// file catalog and no stored reports
	var db *pgxpool.Pool
	var reportRepo *repository.ReportRepository
	var requirementRepo *repository.RequirementRepository
	if os.Getenv("DATABASE_URL") != "" {
		pool, err := initPostgres(ctx)
		if err != nil {
			log.Fatal("Failed to initialize Postgres:", err)
		}
		db = pool
		defer db.Close()
		reportRepo = repository.NewReportRepository(db)
		requirementRepo = repository.NewRequirementRepository(db)
	} else {
		log.Println("DATABASE_URL not set, running without persistence")
	}

	// Initialize embedding provider
	var provider service.EmbeddingProvider
	if client, err := initGemini(ctx); err != nil {
		log.Printf("Warning: Gemini unavailable, clauses must carry embeddings: %v", err)
	} else {
		provider = service.NewGeminiEmbedder(client, os.Getenv("EMBEDDING_MODEL"))
	}

	// Load the requirement catalog: database first, file fallback
	catalog := loadCatalog(ctx, requirementRepo)
	index := service.NewRequirementIndex(catalog)
	stats := index.Statistics()
	log.Printf("Knowledge base loaded: %d requirements across %d frameworks",
		stats.TotalRequirements, len(stats.Frameworks))

	cache := service.NewVectorCache(provider)
	if provider != nil {
		if err := cache.PrecomputeRequirements(ctx, index.AllRequirements()); err != nil {
			log.Printf("Warning: failed to precompute requirement embeddings: %v", err)
		}
	}

	// Initialize report export storage
	reportStorage, err := storage.NewStorageFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Report storage initialized")

	opts := []service.ComplianceServiceOption{
		service.WithRequirementIndex(index),
		service.WithVectorCache(cache),
		service.WithClassifier(service.NewKeywordClassifier()),
		service.WithReportStorage(reportStorage),
	}
	if reportRepo != nil {
		opts = append(opts, service.WithReportRepository(reportRepo))
	}
	if notifier := service.NewSlackNotifierFromEnv(); notifier != nil {
		log.Println("Slack notifier enabled")
		opts = append(opts, service.WithNotifier(notifier))
	}
	if raw := os.Getenv("SIMILARITY_THRESHOLD"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Fatalf("Invalid SIMILARITY_THRESHOLD: %v", err)
		}
		opts = append(opts, service.WithSimilarityThreshold(threshold))
	}

	complianceService, err := service.NewComplianceService(opts...)
	if err != nil {
		log.Fatal("Failed to initialize compliance service:", err)
	}

	complianceHandler := handlers.NewComplianceHandler(complianceService, reportRepo)

	// Setup Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.POST("/documents/:id/evaluate", complianceHandler.EvaluateDocument)
		api.GET("/reports/:document_id", complianceHandler.GetLatestReport)

		api.GET("/requirements", complianceHandler.ListRequirements)
		api.GET("/requirements/search", complianceHandler.SearchRequirements)
		api.GET("/requirements/:id", complianceHandler.GetRequirement)
		api.GET("/statistics", complianceHandler.GetStatistics)
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	// Enable pgvector extension
	_, err = pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
		log.Println("This may be normal if extension is already installed or requires superuser privileges")
	}

	log.Println("Postgres connection established")
	return pool, nil
}

func initGemini(ctx context.Context) (*genai.Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	log.Println("Gemini client initialized")
	return client, nil
}

func loadCatalog(ctx context.Context, repo *repository.RequirementRepository) map[models.Framework][]*models.RegulatoryRequirement {
	if repo != nil {
		count, err := repo.Count(ctx)
		if err == nil && count > 0 {
			catalog, err := repo.LoadCatalog(ctx)
			if err == nil {
				log.Printf("Loaded %d requirements from database", count)
				return catalog
			}
			log.Printf("Warning: failed to load catalog from database: %v", err)
		}
	}

	path := os.Getenv("CATALOG_PATH")
	if path == "" {
		path = "./data/regulatory_requirements.json"
	}
	catalog, err := service.LoadCatalog(path)
	if err != nil {
		log.Fatalf("Failed to load requirement catalog from %s: %v", path, err)
	}
	return catalog
}
