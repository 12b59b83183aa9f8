package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/goccy/go-json"
	"wohee/vodtracker/internal/config"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/db"
	"wohee/vodtracker/internal/logging"
	"wohee/vodtracker/internal/store"
)

// migrate prepares a SQL backend and optionally loads a members export:
//
//	go run ./cmd/migrate -members members.json
func main() {
	membersFile := flag.String("members", "", "JSON array of member documents to upsert by discord_id")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	if cfg.Store.Backend != config.BackendPostgres && cfg.Store.Backend != config.BackendSQLite {
		logging.Fatal("Migrations only apply to SQL backends", "backend", cfg.Store.Backend)
	}

	// opening a SQL backend runs the migrations
	docs, closeStore, err := db.OpenDocumentStore(cfg, nil)
	if err != nil {
		logging.Fatal("Migration failed", "error", err.Error())
	}
	defer closeStore()
	logging.Info("Roster tables migrated", "backend", cfg.Store.Backend)

	if *membersFile == "" {
		return
	}

	raw, err := os.ReadFile(*membersFile)
	if err != nil {
		logging.Fatal("Failed to read members file", "path", *membersFile, "error", err.Error())
	}
	var members []map[string]any
	if err := json.Unmarshal(raw, &members); err != nil {
		logging.Fatal("Failed to parse members file", "path", *membersFile, "error", err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	created, updated, err := seedMembers(ctx, docs, members)
	if err != nil {
		logging.Fatal("Member import failed", "created", created, "updated", updated, "error", err.Error())
	}
	logging.Info("Members imported", "created", created, "updated", updated)
}

func seedMembers(ctx context.Context, docs store.DocumentStore, members []map[string]any) (created, updated int, err error) {
	for _, m := range members {
		discordID, _ := m["discord_id"].(string)
		if discordID == "" {
			logging.Warn("Skipping member without discord_id", "member", m)
			continue
		}
		delete(m, "$id")

		existing, err := docs.ListDocuments(ctx, constants.CollectionMembers, store.Equal("discord_id", discordID), store.Limit(1))
		if err != nil {
			return created, updated, err
		}
		if len(existing.Documents) > 0 {
			if _, err := docs.UpdateDocument(ctx, constants.CollectionMembers, store.DocumentID(existing.Documents[0]), m); err != nil {
				return created, updated, err
			}
			updated++
			continue
		}
		if _, err := docs.CreateDocument(ctx, constants.CollectionMembers, "", m); err != nil {
			return created, updated, err
		}
		created++
	}
	return created, updated, nil
}
