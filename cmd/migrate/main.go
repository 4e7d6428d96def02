package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"fairlens/adapters/postgres"
	"fairlens/internal/migration"
	"fairlens/ports"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [exported_runs_dir]")
	}
	databaseURL := os.Args[1]

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema migration %s complete", runner.Version())

	if len(os.Args) < 3 {
		return
	}

	// Optional backfill: import audit runs exported as JSON documents.
	runsDir := os.Args[2]
	files, err := findRunFiles(runsDir)
	if err != nil {
		log.Fatalf("Failed to scan %s: %v", runsDir, err)
	}
	log.Printf("Found %d exported runs to import", len(files))

	repo := postgres.NewRunRepository(db)
	imported := 0
	skipped := 0
	for _, file := range files {
		run, err := loadRunFromFile(file)
		if err != nil {
			log.Printf("Failed to load run from %s: %v", file, err)
			skipped++
			continue
		}
		if run.ID.IsEmpty() {
			log.Printf("Skipping %s: no run ID", file)
			skipped++
			continue
		}
		if err := repo.Save(ctx, *run); err != nil {
			log.Printf("Failed to save run %s: %v", run.ID, err)
			skipped++
			continue
		}
		imported++
		log.Printf("Imported run %s from %s", run.ID, filepath.Base(file))
	}

	log.Printf("Backfill complete: %d imported, %d skipped", imported, skipped)
}

func findRunFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

func loadRunFromFile(path string) (*ports.StoredRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var run ports.StoredRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, err
	}
	return &run, nil
}
