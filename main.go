package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/config"
	"github.com/ladle-labs/ladle-engine/pkg/database"
	"github.com/ladle-labs/ladle-engine/pkg/handlers"
	"github.com/ladle-labs/ladle-engine/pkg/jobs"
	"github.com/ladle-labs/ladle-engine/pkg/llm"
	"github.com/ladle-labs/ladle-engine/pkg/logging"
	"github.com/ladle-labs/ladle-engine/pkg/middleware"
	"github.com/ladle-labs/ladle-engine/pkg/repositories"
	"github.com/ladle-labs/ladle-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.String("anthropic_model", cfg.Anthropic.Model),
		zap.Int("max_concurrent_ingredients", cfg.Pipeline.MaxConcurrentIngredients))

	ctx := context.Background()

	// Run migrations with a plain database/sql connection, then open the pool
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.String("error", logging.SanitizeError(err)))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.String("error", logging.SanitizeError(err)))
	}
	migrationDB.Close()

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.String("error", logging.SanitizeError(err)))
	}
	if redisClient == nil {
		logger.Info("Redis not configured, scrape cache disabled")
	}

	llmClient, err := llm.NewAnthropicClient(&llm.Config{
		APIKey:    cfg.Anthropic.APIKey,
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	// Repositories
	ingredientRepo := repositories.NewIngredientRepository(db)
	recipeRepo := repositories.NewRecipeRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	mealPlanRepo := repositories.NewMealPlanRepository(db)
	shoppingListRepo := repositories.NewShoppingListRepository(db)
	userRepo := repositories.NewUserRepository(db)

	// Ingredient normalization pipeline
	runner := jobs.NewRunner(jobRepo, logger)
	parser := services.NewIngredientParser(llmClient, logger)
	matcher := services.NewIngredientMatcher(ingredientRepo, llmClient, runner, logger)
	pool := llm.NewWorkerPool(cfg.Pipeline.MaxConcurrentIngredients, logger)
	pipeline := services.NewIngredientPipeline(parser, matcher, pool, runner, logger)

	// Recipe import
	scraper := services.NewRecipeScraper(redisClient, logger)
	extractor := services.NewRecipeExtractor(llmClient, logger)
	importService := services.NewRecipeImportService(scraper, extractor, pipeline, recipeRepo, runner, logger)

	// Domain services
	catalogService := services.NewCatalogService(ingredientRepo, logger)
	recipeService := services.NewRecipeService(recipeRepo, logger)
	mealPlanService := services.NewMealPlanService(mealPlanRepo, logger)
	shoppingListService := services.NewShoppingListService(shoppingListRepo, mealPlanRepo, logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewRecipesHandler(importService, recipeService, logger).RegisterRoutes(mux)
	handlers.NewIngredientsHandler(catalogService, logger).RegisterRoutes(mux)
	handlers.NewMealPlansHandler(mealPlanService, userRepo, logger).RegisterRoutes(mux)
	handlers.NewShoppingListsHandler(shoppingListService, mealPlanService, userRepo, logger).RegisterRoutes(mux)
	handlers.NewAuditHandler(jobRepo, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting ladle-engine", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
