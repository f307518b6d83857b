package testsupport

import (
	"context"
	"testing"

	"garimpeiro/internal/config"
	"garimpeiro/internal/corpus"
	"garimpeiro/internal/fiscal"
)

// MustOpenStore opens a corpus.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *corpus.Store {
	t.Helper()

	store, err := corpus.Open(cfg)
	if err != nil {
		t.Fatalf("corpus.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AppendBatch stores docs under a new finished batch and returns its id.
func AppendBatch(t testing.TB, store *corpus.Store, kind corpus.Kind, docs ...fiscal.Document) string {
	t.Helper()

	ctx := context.Background()
	id, err := store.BeginBatch(ctx, kind, TaxpayerCNPJ)
	if err != nil {
		t.Fatalf("store.BeginBatch: %v", err)
	}
	for _, doc := range docs {
		if err := store.Append(ctx, id, doc); err != nil {
			t.Fatalf("store.Append: %v", err)
		}
	}
	if err := store.FinishBatch(ctx, id, corpus.Stats{Inputs: len(docs), Accepted: len(docs)}, nil); err != nil {
		t.Fatalf("store.FinishBatch: %v", err)
	}
	return id
}
