package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/beingcrieative/mobmail-sub002/internal/auth"
	"github.com/beingcrieative/mobmail-sub002/storage"
	"github.com/beingcrieative/mobmail-sub002/storage/db"
	"github.com/oklog/ulid/v2"
)

// Issues an ingest API key for the transcription backend. The plaintext key
// is printed once and only its hash is stored.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: make-api-key <name>")
		os.Exit(1)
	}
	name := os.Args[1]

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./db/mobmail.db"
	}

	store, err := storage.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	key, hash, err := auth.GenerateAPIKey()
	if err != nil {
		log.Fatalf("Failed to generate key: %v", err)
	}

	created, err := store.Queries.CreateAPIKey(context.Background(), db.CreateAPIKeyParams{
		ID:      ulid.Make().String(),
		Name:    name,
		KeyHash: hash,
	})
	if err != nil {
		log.Fatalf("Failed to store key: %v", err)
	}

	fmt.Printf("Created API key %q (id %s)\n", created.Name, created.ID)
	fmt.Println()
	fmt.Println("Store this key now, it will not be shown again:")
	fmt.Println()
	fmt.Printf("    %s\n", key)
}
