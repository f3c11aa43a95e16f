package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/davidarico/stinkbot-sub000/internal/catalog"
	"github.com/davidarico/stinkbot-sub000/internal/database"
	"github.com/davidarico/stinkbot-sub000/internal/httpapi"
	"github.com/davidarico/stinkbot-sub000/internal/rules"
)

func main() {
	_ = godotenv.Load()

	addr := getenv("STINKBOT_HTTP_ADDR", ":8080")
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	migrationsDir := getenv("MIGRATIONS_DIR", "migrations")

	// Connect to PostgreSQL.
	ctx := context.Background()
	dbPool, err := database.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer dbPool.Close()
	log.Println("connected to database")

	// Run pending migrations.
	if err := database.Migrate(ctx, dbPool, migrationsDir); err != nil {
		log.Fatalf("database migrate: %v", err)
	}
	log.Println("migrations up to date")

	roleCatalog, err := catalog.Default()
	if err != nil {
		log.Fatalf("load role catalog: %v", err)
	}
	ruleTable, err := rules.Default()
	if err != nil {
		log.Fatalf("load rule table: %v", err)
	}

	tokenSecret := []byte(os.Getenv("WS_TOKEN_SECRET"))
	if len(tokenSecret) == 0 {
		tokenSecret = []byte("dev-secret-change-in-production")
	}

	router, err := httpapi.NewRouter(dbPool, httpapi.Config{
		Catalog:          roleCatalog,
		Rules:            ruleTable,
		TokenSecret:      tokenSecret,
		ModeratorKeyHash: os.Getenv("MODERATOR_KEY_HASH"),
		RateLimiter:      httpapi.DefaultRateLimiter(),
	})
	if err != nil {
		log.Fatalf("build router: %v", err)
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("stinkbot night engine listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
