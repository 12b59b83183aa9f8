package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// countingStore records every list call made through it.
type countingStore struct {
	DocumentStore
	mu    sync.Mutex
	calls [][]Query
	fail  func(queries []Query) error
}

func (c *countingStore) ListDocuments(ctx context.Context, collection string, queries ...Query) (*DocumentList, error) {
	c.mu.Lock()
	c.calls = append(c.calls, queries)
	c.mu.Unlock()
	if c.fail != nil {
		if err := c.fail(queries); err != nil {
			return nil, err
		}
	}
	return c.DocumentStore.ListDocuments(ctx, collection, queries...)
}

func seeded(t *testing.T, n int) *MemoryStore {
	t.Helper()
	m := NewMemoryStore()
	for i := 0; i < n; i++ {
		m.Seed("items", Document{IDField: fmt.Sprintf("doc-%04d", i), "n": i})
	}
	return m
}

func offsetOf(queries []Query) int {
	for _, q := range queries {
		if q.Method == MethodOffset {
			v, _ := q.intValue()
			return v
		}
	}
	return -1
}

func TestFetchAll_Completeness(t *testing.T) {
	for _, total := range []int{0, 1, 99, 100, 101, 250} {
		t.Run(fmt.Sprintf("total=%d", total), func(t *testing.T) {
			cs := &countingStore{DocumentStore: seeded(t, total)}
			f := NewFetcher(cs, 100, 4)

			docs, err := f.FetchAll(context.Background(), "items", nil, []Query{OrderAsc("n")})
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(docs) != total {
				t.Fatalf("Expected %d documents, got %d", total, len(docs))
			}

			seen := make(map[string]struct{}, total)
			for i, doc := range docs {
				id := DocumentID(doc)
				if _, dup := seen[id]; dup {
					t.Fatalf("Duplicate document %s", id)
				}
				seen[id] = struct{}{}
				if doc["n"] != i {
					t.Fatalf("Expected document %d at position %d, got %v", i, i, doc["n"])
				}
			}

			wantPages := (total + 99) / 100
			if len(cs.calls) != wantPages+1 {
				t.Errorf("Expected %d list calls, got %d", wantPages+1, len(cs.calls))
			}
		})
	}
}

func TestFetchAll_ProbeUsesLimitOne(t *testing.T) {
	cs := &countingStore{DocumentStore: seeded(t, 0)}
	f := NewFetcher(cs, 100, 2)

	docs, err := f.FetchAll(context.Background(), "items", []Query{IsNotNull("n")}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Fatalf("Expected an empty non-nil result, got %v", docs)
	}
	if len(cs.calls) != 1 {
		t.Fatalf("Expected only the count probe, got %d calls", len(cs.calls))
	}

	probe := cs.calls[0]
	last := probe[len(probe)-1]
	if last.Method != MethodLimit || last.Values[0] != 1 {
		t.Errorf("Expected probe to end with limit(1), got %v", probe)
	}
	if probe[0].Method != MethodIsNotNull {
		t.Errorf("Expected probe to carry the filter, got %v", probe)
	}
}

func TestFetchAll_PageFailureIsAtomic(t *testing.T) {
	boom := errors.New("upstream timeout")
	cs := &countingStore{
		DocumentStore: seeded(t, 250),
		fail: func(queries []Query) error {
			if offsetOf(queries) == 100 {
				return boom
			}
			return nil
		},
	}
	f := NewFetcher(cs, 100, 3)

	docs, err := f.FetchAll(context.Background(), "items", nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected page error, got %v", err)
	}
	if docs != nil {
		t.Errorf("Expected no documents on failure, got %d", len(docs))
	}
}

func TestFetchAll_ProbeFailure(t *testing.T) {
	cs := &countingStore{
		DocumentStore: seeded(t, 5),
		fail:          func([]Query) error { return errors.New("down") },
	}
	f := NewFetcher(cs, 100, 1)

	if _, err := f.FetchAll(context.Background(), "items", nil, nil); err == nil {
		t.Fatal("Expected error from failed count probe")
	}
	if len(cs.calls) != 1 {
		t.Errorf("Expected no page calls after a failed probe, got %d calls", len(cs.calls))
	}
}

func TestFetchAll_SmallPagesKeepOrder(t *testing.T) {
	cs := &countingStore{DocumentStore: seeded(t, 23)}
	f := NewFetcher(cs, 5, 8)

	docs, err := f.FetchAll(context.Background(), "items", nil, []Query{OrderDesc("n")})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for i, doc := range docs {
		if want := 22 - i; doc["n"] != want {
			t.Fatalf("Expected %d at position %d, got %v", want, i, doc["n"])
		}
	}
}

func TestFetchAll_Observer(t *testing.T) {
	var gotPages int
	var gotErr error
	f := NewFetcher(seeded(t, 23), 5, 2).WithObserver(func(collection string, pages int, _ time.Duration, err error) {
		gotPages, gotErr = pages, err
	})

	if _, err := f.FetchAll(context.Background(), "items", nil, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotPages != 5 || gotErr != nil {
		t.Errorf("Expected observer to see 5 pages and no error, got %d, %v", gotPages, gotErr)
	}
}
