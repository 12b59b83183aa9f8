package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps collections in process memory. It enforces the same
// limit rules as the remote API and is used for local runs and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
	observe     CallObserver
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Document)}
}

func (m *MemoryStore) WithObserver(fn CallObserver) *MemoryStore {
	m.observe = fn
	return m
}

// Seed appends documents to collection, generating ids where missing.
func (m *MemoryStore) Seed(collection string, docs ...Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		c := copyDocument(doc)
		if DocumentID(c) == "" {
			c[IDField] = uuid.NewString()
		}
		m.collections[collection] = append(m.collections[collection], c)
	}
}

// Len returns the number of documents in collection.
func (m *MemoryStore) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

func (m *MemoryStore) ListDocuments(ctx context.Context, collection string, queries ...Query) (list *DocumentList, err error) {
	defer m.track("list", collection, time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset, err := pagination(queries)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		limit = DefaultListLimit
	}

	m.mu.RLock()
	matched := make([]Document, 0)
	for _, doc := range m.collections[collection] {
		if matches(doc, queries) {
			matched = append(matched, copyDocument(doc))
		}
	}
	m.mu.RUnlock()

	sortDocuments(matched, queries)

	total := len(matched)
	if offset >= total {
		return &DocumentList{Total: total, Documents: []Document{}}, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return &DocumentList{Total: total, Documents: matched[offset:end]}, nil
}

func (m *MemoryStore) CreateDocument(ctx context.Context, collection, documentID string, data map[string]any) (doc Document, err error) {
	defer m.track("create", collection, time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if documentID == "" {
		documentID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.collections[collection] {
		if DocumentID(existing) == documentID {
			return nil, &RemoteError{Status: 409, Type: "document_already_exists", Message: documentID}
		}
	}
	doc = copyDocument(data)
	doc[IDField] = documentID
	m.collections[collection] = append(m.collections[collection], doc)
	return copyDocument(doc), nil
}

func (m *MemoryStore) UpdateDocument(ctx context.Context, collection, documentID string, data map[string]any) (doc Document, err error) {
	defer m.track("update", collection, time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.collections[collection] {
		if DocumentID(existing) != documentID {
			continue
		}
		for k, v := range data {
			if k == IDField {
				continue
			}
			existing[k] = v
		}
		return copyDocument(existing), nil
	}
	return nil, fmt.Errorf("%s/%s: %w", collection, documentID, ErrNotFound)
}

func (m *MemoryStore) DeleteDocument(ctx context.Context, collection, documentID string) (err error) {
	defer m.track("delete", collection, time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.collections[collection]
	for i, existing := range docs {
		if DocumentID(existing) == documentID {
			m.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s/%s: %w", collection, documentID, ErrNotFound)
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) track(op, collection string, start time.Time, err *error) {
	if m.observe != nil {
		m.observe("memory", op, collection, time.Since(start), *err)
	}
}

func copyDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func matches(doc Document, queries []Query) bool {
	for _, q := range queries {
		if !q.isFilter() {
			continue
		}
		v, ok := doc[q.Attribute]
		isNull := !ok || v == nil
		switch q.Method {
		case MethodIsNull:
			if !isNull {
				return false
			}
		case MethodIsNotNull:
			if isNull {
				return false
			}
		case MethodEqual:
			if isNull || !equalsAny(v, q.Values) {
				return false
			}
		}
	}
	return true
}

func equalsAny(v any, values []any) bool {
	for _, want := range values {
		if compareValues(v, want) == 0 {
			return true
		}
	}
	return false
}

// sortDocuments applies the order queries in sequence, first one wins.
func sortDocuments(docs []Document, queries []Query) {
	var order []Query
	for _, q := range queries {
		if q.isOrder() {
			order = append(order, q)
		}
	}
	if len(order) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, q := range order {
			c := compareValues(docs[i][q.Attribute], docs[j][q.Attribute])
			if c == 0 {
				continue
			}
			if q.Method == MethodOrderDesc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareValues orders nil first, then numbers, booleans and strings.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
