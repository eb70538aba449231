package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/citemeai/internal/api/handlers"
	"github.com/cloo-solutions/citemeai/internal/config"
	"github.com/cloo-solutions/citemeai/internal/openai"
	"github.com/cloo-solutions/citemeai/internal/server"
	"github.com/cloo-solutions/citemeai/internal/service"
	"github.com/cloo-solutions/citemeai/internal/telemetry"
	"github.com/cloo-solutions/citemeai/internal/vector/pgvector"
	"github.com/cloo-solutions/citemeai/internal/vector/pinecone"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the citeme API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	applyPortOverride(cmd, cfg)

	var embeddingClient *openai.Client
	if cfg.HasOpenAI() {
		embeddingClient = openai.NewClient(cfg.OpenAIAPIKey)
		log.Println("openai client configured")
	} else {
		log.Println("CITEME_OPENAI_API_KEY not set; upload, search and answering will be unavailable")
	}

	dimensions := openai.DefaultEmbeddingDimensions
	if embeddingClient != nil {
		dimensions = embeddingClient.Dimensions()
	}

	// Vector backend selection: Pinecone when configured, otherwise a
	// pgvector-backed store, otherwise no store at all (requests that need
	// one get a service unavailable response).
	var store service.VectorStore
	switch {
	case cfg.HasPinecone():
		pineconeStore, err := pinecone.Connect(ctx, pinecone.Config{
			APIKey:    cfg.PineconeAPIKey,
			IndexName: cfg.PineconeIndex,
			Region:    cfg.PineconeRegion,
			Namespace: cfg.PineconeNamespace,
			Dimension: int32(dimensions),
		})
		if err != nil {
			return fmt.Errorf("failed to connect to pinecone: %w", err)
		}
		store = pineconeStore
		log.Printf("using pinecone index %q", cfg.PineconeIndex)

	case cfg.HasDatabase():
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}
		log.Println("connected to database")

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			if err := runMigrations(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		store = pgvector.NewStore(pool)
		log.Println("using pgvector store")

	default:
		log.Println("no vector backend configured (set CITEME_PINECONE_API_KEY or CITEME_DATABASE_URL)")
	}

	var embedding service.EmbeddingClient
	var llm service.LLMClient
	if embeddingClient != nil {
		embedding = embeddingClient
		llm = embeddingClient
	}

	uploadSvc := service.NewUploadService(embedding, store)
	searchSvc := service.NewSearchService(embedding, store)
	answerSvc := service.NewAnswerService(searchSvc, llm)

	var statsProvider handlers.StatsProvider
	if store != nil {
		statsProvider = store
	}

	routerCfg := server.RouterConfig{
		UploadHandler: handlers.NewUploadHandler(uploadSvc),
		SearchHandler: handlers.NewSearchHandler(searchSvc),
		QAHandler:     handlers.NewQAHandler(answerSvc),
		StatsHandler:  handlers.NewStatsHandler(statsProvider),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// applyPortOverride lets an explicitly passed --port win over CITEME_PORT,
// even when the flag value equals the flag default.
func applyPortOverride(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetString("port")
		cfg.Port = port
	}
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	// Create postgres driver instance
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Create migrate instance with file source
	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Run migrations
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Get migration version and status
	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
