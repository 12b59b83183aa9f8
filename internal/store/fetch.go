package store

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"wohee/vodtracker/internal/logging"
)

// FetchObserver is told how each FetchAll ended.
type FetchObserver func(collection string, pages int, duration time.Duration, err error)

// Fetcher reads whole collections through a page-limited list API.
type Fetcher struct {
	store       DocumentStore
	pageSize    int
	concurrency int
	observe     FetchObserver
}

func NewFetcher(s DocumentStore, pageSize, concurrency int) *Fetcher {
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fetcher{store: s, pageSize: pageSize, concurrency: concurrency}
}

// WithObserver sets the observer and returns f.
func (f *Fetcher) WithObserver(fn FetchObserver) *Fetcher {
	f.observe = fn
	return f
}

func (f *Fetcher) Store() DocumentStore {
	return f.store
}

// FetchAll returns every document of collection matching filters, in the
// given order. A limit=1 probe reads the total, then all pages are fetched
// concurrently and joined by page index. Any failed page fails the whole
// call and no documents are returned.
func (f *Fetcher) FetchAll(ctx context.Context, collection string, filters []Query, order []Query) ([]Document, error) {
	start := time.Now()
	pages, docs, err := f.fetchAll(ctx, collection, filters, order)
	if f.observe != nil {
		f.observe(collection, pages, time.Since(start), err)
	}
	if err != nil {
		logging.Warn("batched fetch failed", "collection", collection, "pages", pages, "error", err.Error())
		return nil, err
	}
	logging.Debug("batched fetch done", "collection", collection, "pages", pages, "documents", len(docs))
	return docs, nil
}

func (f *Fetcher) fetchAll(ctx context.Context, collection string, filters []Query, order []Query) (int, []Document, error) {
	probe := append(append([]Query{}, filters...), Limit(1))
	head, err := f.store.ListDocuments(ctx, collection, probe...)
	if err != nil {
		return 0, nil, fmt.Errorf("count %s: %w", collection, err)
	}
	if head.Total == 0 {
		return 0, []Document{}, nil
	}

	pages := (head.Total + f.pageSize - 1) / f.pageSize
	results := make([][]Document, pages)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i := 0; i < pages; i++ {
		i := i
		queries := make([]Query, 0, len(filters)+len(order)+2)
		queries = append(queries, filters...)
		queries = append(queries, order...)
		queries = append(queries, Limit(f.pageSize), Offset(i*f.pageSize))

		g.Go(func() error {
			page, err := f.store.ListDocuments(gctx, collection, queries...)
			if err != nil {
				return fmt.Errorf("page %d of %s: %w", i, collection, err)
			}
			results[i] = page.Documents
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return pages, nil, err
	}

	docs := make([]Document, 0, head.Total)
	for _, page := range results {
		docs = append(docs, page...)
	}
	return pages, docs, nil
}
