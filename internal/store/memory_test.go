package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_Filters(t *testing.T) {
	m := NewMemoryStore()
	m.Seed("members",
		Document{"discord_id": "1", "guild": "B", "ingame_name": "zed"},
		Document{"discord_id": "2", "guild": nil, "ingame_name": "amy"},
		Document{"discord_id": "3", "guild": "A", "ingame_name": "bob"},
		Document{"discord_id": "4", "guild": "B", "ingame_name": "ann"},
		Document{"discord_id": "5", "ingame_name": "no-guild-key"},
	)
	ctx := context.Background()

	list, err := m.ListDocuments(ctx, "members", IsNotNull("guild"), OrderAsc("guild"), OrderAsc("ingame_name"), Limit(100))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if list.Total != 3 {
		t.Fatalf("Expected 3 members with a guild, got %d", list.Total)
	}
	want := []string{"3", "4", "1"}
	for i, doc := range list.Documents {
		if doc["discord_id"] != want[i] {
			t.Errorf("Expected %s at %d, got %v", want[i], i, doc["discord_id"])
		}
	}

	list, err = m.ListDocuments(ctx, "members", Equal("discord_id", "2", "5"), Limit(100))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if list.Total != 2 {
		t.Errorf("Expected equal to match any value, got %d", list.Total)
	}

	list, err = m.ListDocuments(ctx, "members", IsNull("guild"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if list.Total != 2 {
		t.Errorf("Expected missing and null guilds to count as null, got %d", list.Total)
	}
}

func TestMemoryStore_RejectsBadLimits(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	for _, q := range []Query{Limit(0), Limit(101), Offset(-1)} {
		if _, err := m.ListDocuments(ctx, "members", q); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("Expected ErrInvalidQuery for %s, got %v", q, err)
		}
	}
}

func TestMemoryStore_DefaultLimit(t *testing.T) {
	m := seeded(t, 40)
	list, err := m.ListDocuments(context.Background(), "items")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if list.Total != 40 || len(list.Documents) != DefaultListLimit {
		t.Errorf("Expected total 40 and a page of %d, got %d and %d", DefaultListLimit, list.Total, len(list.Documents))
	}
}

func TestMemoryStore_CRUD(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	created, err := m.CreateDocument(ctx, "statics", "", map[string]any{"discord_id": "9", "group": 3})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	id := DocumentID(created)
	if id == "" {
		t.Fatal("Expected a generated id")
	}

	updated, err := m.UpdateDocument(ctx, "statics", id, map[string]any{"group": 7})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated["group"] != 7 || updated["discord_id"] != "9" {
		t.Errorf("Expected a partial update, got %v", updated)
	}

	// returned documents are copies
	updated["group"] = 1
	list, _ := m.ListDocuments(ctx, "statics")
	if list.Documents[0]["group"] != 7 {
		t.Errorf("Expected stored document to be unaffected, got %v", list.Documents[0]["group"])
	}

	if err := m.DeleteDocument(ctx, "statics", id); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Len("statics") != 0 {
		t.Errorf("Expected empty collection, got %d", m.Len("statics"))
	}
	if err := m.DeleteDocument(ctx, "statics", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := m.UpdateDocument(ctx, "statics", id, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
