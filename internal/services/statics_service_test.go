package services

import (
	"context"
	"testing"

	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/store"
)

func intPtr(i int) *int { return &i }

func (f *fixture) staticsFor(t *testing.T, collection, discordID string) []store.Document {
	t.Helper()
	list, err := f.store.MemoryStore.ListDocuments(context.Background(), collection, store.Equal("discord_id", discordID), store.Limit(100))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return list.Documents
}

func TestStaticsService_MoveInvariant(t *testing.T) {
	f := newFixture(t, 0)
	master := user("erin", roleMaster)
	ctx := context.Background()

	if _, err := f.statics.SetGroup(ctx, master, "", "X", intPtr(3)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	statics, err := f.statics.SetGroup(ctx, master, "", "X", intPtr(7))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	docs := f.staticsFor(t, constants.CollectionStatics, "X")
	if len(docs) != 1 || docs[0]["group"] != 7 {
		t.Fatalf("Expected a single record in group 7, got %v", docs)
	}
	if len(statics) != 1 || statics[0].Group != 7 || statics[0].DiscordID != "X" {
		t.Errorf("Expected the refetched list to show the move, got %+v", statics)
	}

	statics, err = f.statics.SetGroup(ctx, master, "", "X", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(f.staticsFor(t, constants.CollectionStatics, "X")) != 0 || len(statics) != 0 {
		t.Errorf("Expected no records after removal, got %v", statics)
	}

	// removing an unassigned member is a no-op
	if _, err := f.statics.SetGroup(ctx, master, "", "X", nil); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestStaticsService_ListOrderedByGroup(t *testing.T) {
	f := newFixture(t, 0)
	f.store.Seed(constants.CollectionStatics,
		store.Document{"discord_id": "a", "group": 9},
		store.Document{"discord_id": "b", "group": 2},
		store.Document{"discord_id": "c", "group": 5},
	)

	statics, err := f.statics.List(context.Background(), constants.StaticPreset1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(statics) != 3 || statics[0].Group != 2 || statics[1].Group != 5 || statics[2].Group != 9 {
		t.Errorf("Expected ascending groups, got %+v", statics)
	}
}

func TestStaticsService_CollapsesDuplicates(t *testing.T) {
	f := newFixture(t, 0)
	f.store.Seed(constants.CollectionStatics,
		store.Document{"discord_id": "X", "group": 1},
		store.Document{"discord_id": "X", "group": 4},
	)

	if _, err := f.statics.SetGroup(context.Background(), user("erin", roleMaster), "", "X", intPtr(6)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	docs := f.staticsFor(t, constants.CollectionStatics, "X")
	if len(docs) != 1 || docs[0]["group"] != 6 {
		t.Errorf("Expected one record in group 6, got %v", docs)
	}
}

func TestStaticsService_Rejections(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	master := user("erin", roleMaster)

	if _, err := f.statics.SetGroup(ctx, user("alice", roleSnsGs), "", "X", intPtr(1)); !common.IsKind(err, common.KindAuthorization) {
		t.Errorf("Expected weapon lead to be forbidden, got %v", err)
	}
	for _, g := range []int{0, 13, -1} {
		if _, err := f.statics.SetGroup(ctx, master, "", "X", intPtr(g)); !common.IsKind(err, common.KindValidation) {
			t.Errorf("Expected group %d to be rejected, got %v", g, err)
		}
	}
	if _, err := f.statics.SetGroup(ctx, master, "preset9", "X", intPtr(1)); !common.IsKind(err, common.KindValidation) {
		t.Errorf("Expected unknown preset to be rejected, got %v", err)
	}
	if f.store.listCalls(constants.CollectionStatics) != 0 {
		t.Error("Expected rejections before any store call")
	}
}

func TestStaticsService_PresetsAreIndependent(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	master := user("erin", roleMaster)

	if _, err := f.statics.SetGroup(ctx, master, constants.StaticPreset2, "X", intPtr(12)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(f.staticsFor(t, constants.CollectionStaticsPreset2, "X")) != 1 {
		t.Error("Expected the preset2 collection to hold the record")
	}
	if len(f.staticsFor(t, constants.CollectionStatics, "X")) != 0 {
		t.Error("Expected preset1 to be untouched")
	}

	unconfigured := NewStaticsService(store.NewFetcher(f.store, 100, 1), f.members, f.authz,
		map[string]string{constants.StaticPreset1: constants.CollectionStatics}, 0, nil)
	if _, err := unconfigured.List(ctx, constants.StaticPreset2); !common.IsKind(err, common.KindValidation) {
		t.Errorf("Expected unconfigured preset2 to be a validation error, got %v", err)
	}
}

func TestStaticsService_GroupCap(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	master := user("erin", roleMaster)

	for _, id := range []string{"1", "2", "3"} {
		f.addMember(id, "Alpha", "SNS", "GS", true)
	}
	f.addMember("4", "Beta", "SNS", "GS", true)

	for _, id := range []string{"1", "2", "4"} {
		if _, err := f.statics.SetGroup(ctx, master, "", id, intPtr(5)); err != nil {
			t.Fatalf("Expected member %s to fit, got %v", id, err)
		}
	}

	_, err := f.statics.SetGroup(ctx, master, "", "3", intPtr(5))
	if !common.IsKind(err, common.KindValidation) {
		t.Fatalf("Expected group to be full for Alpha, got %v", err)
	}

	// a member already in the group can be written again
	if _, err := f.statics.SetGroup(ctx, master, "", "2", intPtr(5)); err != nil {
		t.Errorf("Expected re-assignment to the same group, got %v", err)
	}
}
