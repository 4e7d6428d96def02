package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"fairlens/adapters/postgres"
	"fairlens/adapters/source"
	"fairlens/app"
	"fairlens/domain/schema"
	"fairlens/internal/config"
	"fairlens/internal/errors"
	"fairlens/internal/migration"
	"fairlens/internal/testkit"
	"fairlens/ports"
	"fairlens/ui"
)

// initDatabase connects to PostgreSQL and brings the run store up to the
// current schema version.
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

// buildSource assembles the remote-then-fallback resolution chain. Config
// validation guarantees at least one link.
func buildSource(appConfig *config.Config) ports.TableSource {
	var sources []ports.TableSource
	if appConfig.Source.URL != "" {
		sources = append(sources, source.NewRemoteCSV(appConfig.Source.URL, appConfig.Source.FetchTimeout))
	}
	if appConfig.Source.FallbackPath != "" {
		sources = append(sources, source.NewLocalTable(appConfig.Source.FallbackPath))
	}
	return source.NewChain(sources...)
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Persistence is optional: without DATABASE_URL run history lives in
	// process memory and dies with it.
	var repo ports.RunRepository
	if appConfig.Database.URL != "" {
		db, err := initDatabase(appConfig)
		if err != nil {
			log.Fatal("Failed to initialize database:", err)
		}
		defer db.Close()
		repo = postgres.NewRunRepository(db)
		log.Println("Run persistence enabled (PostgreSQL)")
	} else {
		repo = testkit.NewInMemoryRunRepository()
		log.Println("No DATABASE_URL configured, keeping run history in memory")
	}

	service := app.NewAuditService(buildSource(appConfig), repo, schema.Adult(), appConfig.Pipeline, appConfig.Models)

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("🚀 Performance profiling server starting on :%s", appConfig.Profiling.Port)
			log.Printf("💡 View profiles: go tool pprof -http=:8081 http://localhost:%s/debug/pprof/profile?seconds=30", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("❌ pprof server failed: %v", err)
			}
		}()
	}

	// Start the server
	server := ui.NewServer(service, appConfig.Server.GinMode)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
