package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"fairlens/adapters/postgres"
	"fairlens/internal/testkit"
	"fairlens/ports"
	"fairlens/ui"
)

// The read-only UI serves persisted run history without running the
// pipeline. Without DATABASE_URL it starts against an empty in-memory
// repository, which is only useful for smoke-testing the routes.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	var repo ports.RunRepository
	if url := os.Getenv("DATABASE_URL"); url != "" {
		db, err := sqlx.Connect("postgres", url)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()
		repo = postgres.NewRunRepository(db)
	} else {
		repo = testkit.NewInMemoryRunRepository()
		log.Println("No DATABASE_URL configured, serving an empty in-memory history")
	}

	app := ui.NewApp(repo)
	log.Fatal(app.Start(":" + port))
}
