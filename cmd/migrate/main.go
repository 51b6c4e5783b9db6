package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"gobrix/adapters/sqlstore"
)

func main() {
	_ = godotenv.Load()

	driver := os.Getenv("DATABASE_DRIVER")
	dsn := os.Getenv("DATABASE_URL")
	if len(os.Args) >= 3 {
		driver, dsn = os.Args[1], os.Args[2]
	}
	if driver == "" || dsn == "" {
		log.Fatal("Usage: migrate <postgres|sqlite> <database_url> (or set DATABASE_DRIVER and DATABASE_URL)")
	}

	log.Printf("Applying calibration schema to %s database", driver)
	db, err := sqlstore.Open(driver, dsn, 1)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := sqlstore.Migrate(context.Background(), db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Migration complete")
}
