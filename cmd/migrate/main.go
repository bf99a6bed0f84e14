package main

import (
	"context"
	"log"
	"os"

	"evalboard/adapters/sqlstore"
	"evalboard/internal/migration"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Arguments override DATABASE_URL and DATABASE_DRIVER
	url := os.Getenv("DATABASE_URL")
	driver := os.Getenv("DATABASE_DRIVER")
	if len(os.Args) > 1 {
		url = os.Args[1]
	}
	if len(os.Args) > 2 {
		driver = os.Args[2]
	}
	if driver == "" {
		driver = "postgres"
	}
	if url == "" {
		log.Fatal("Usage: migrate <database_url> [postgres|sqlite]")
	}

	log.Printf("Starting migration of %s database", driver)

	// Open applies the schema
	db, err := sqlstore.Open(context.Background(), driver, url)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	defer db.Close()

	log.Printf("Schema version %s applied", migration.NewRunner().Version())
}
