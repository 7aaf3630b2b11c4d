package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"seoforge/internal/application"
	"seoforge/internal/config"
	"seoforge/internal/infrastructure/api"
	"seoforge/internal/infrastructure/encryption"
	"seoforge/internal/infrastructure/llm"
	"seoforge/internal/infrastructure/oauthstate"
	"seoforge/internal/infrastructure/repository"
	shopifyinfra "seoforge/internal/infrastructure/shopify"
	"seoforge/internal/pkg/session"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repository.EnsureIndexes(indexCtx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create MongoDB indexes")
	}

	// Connect to Redis for one-shot OAuth state nonces
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	// Initialize infrastructure (implementations)
	encryptionService, err := encryption.NewService(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}

	oauthClient := shopifyinfra.NewOAuthClient(cfg, logger)
	catalogClient := shopifyinfra.NewCatalogClient(cfg, logger)
	generator := llm.NewGenerator(cfg, logger)
	stateStore := oauthstate.NewRedisStore(redisClient, logger)
	signer := session.NewSigner(cfg.SessionSecret)

	// Initialize repositories
	accountRepo := repository.NewMongoAccountRepository(db)
	siteRepo := repository.NewMongoSiteRepository(db)
	pageRepo := repository.NewMongoPageRepository(db)
	versionRepo := repository.NewMongoContentVersionRepository(db)
	keywordRepo := repository.NewMongoKeywordRepository(db)

	// Initialize application services
	connectService := application.NewConnectService(
		accountRepo,
		siteRepo,
		oauthClient,
		stateStore,
		encryptionService,
		logger,
	)
	catalogService := application.NewCatalogService(
		accountRepo,
		siteRepo,
		pageRepo,
		catalogClient,
		encryptionService,
		logger,
	)
	keywordService := application.NewKeywordService(
		accountRepo,
		siteRepo,
		pageRepo,
		keywordRepo,
		catalogClient,
		generator,
		encryptionService,
		logger,
	)
	contentService := application.NewContentService(
		accountRepo,
		siteRepo,
		pageRepo,
		versionRepo,
		catalogClient,
		generator,
		encryptionService,
		logger,
	)
	pageService := application.NewPageService(
		accountRepo,
		siteRepo,
		pageRepo,
		versionRepo,
		logger,
	)

	handler := api.NewHandler(
		connectService,
		catalogService,
		keywordService,
		contentService,
		pageService,
		accountRepo,
		signer,
		cfg,
		logger,
	)
	router := api.NewRouter(handler, signer, cfg, logger)

	logger.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("Starting API server")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
