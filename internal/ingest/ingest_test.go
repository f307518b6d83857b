package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"garimpeiro/internal/config"
	"garimpeiro/internal/corpus"
	"garimpeiro/internal/fiscal"
	"garimpeiro/internal/logging"
	"garimpeiro/internal/reconcile"
	"garimpeiro/internal/testsupport"
)

func newIngester(t *testing.T, cfg *config.Config) (*Ingester, *corpus.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	return New(cfg, store, logging.NewNop()), store
}

func TestRunScanEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ing, store := newIngester(t, cfg)
	inputs := filepath.Join(testsupport.BaseDir(cfg), "inputs")

	first := testsupport.Invoice{Number: 1, Value: "100.00"}
	second := testsupport.Invoice{Number: 2, Value: "50.00"}
	fourth := testsupport.Invoice{Number: 4, Value: "75.00"}
	inner := testsupport.Zip(t, testsupport.ZipEntry{Name: second.FileName(), Data: second.XML()})
	testsupport.WriteBytes(t, filepath.Join(inputs, "lote.zip"), testsupport.Zip(t,
		testsupport.ZipEntry{Name: "jan/" + first.FileName(), Data: first.XML()},
		testsupport.ZipEntry{Name: "jan/nested.zip", Data: inner},
		testsupport.ZipEntry{Name: "jan/readme.txt", Data: []byte("ignore")},
		testsupport.ZipEntry{Name: "__MACOSX/._" + first.FileName(), Data: []byte("resource fork")},
	))
	testsupport.WriteBytes(t, filepath.Join(inputs, "avulsas", fourth.FileName()), fourth.XML())
	testsupport.WriteBytes(t, filepath.Join(inputs, "avulsas", "notes.txt"), []byte("not an input"))
	testsupport.WriteBytes(t, filepath.Join(inputs, "avulsas", "lixo.xml"), []byte("<root>nothing fiscal</root>"))

	summary, err := ing.Run(context.Background(), Options{Inputs: []string{inputs}, Kind: corpus.KindScan})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.BatchID == "" || summary.Kind != corpus.KindScan {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Stats.Accepted != 3 {
		t.Fatalf("accepted = %d, want 3 (%+v)", summary.Stats.Accepted, summary.Stats)
	}
	if summary.Stats.Inputs != 3 {
		t.Fatalf("inputs = %d, want 3", summary.Stats.Inputs)
	}
	if summary.Stats.Rejected != 1 || summary.Reasons["no_marker"] != 1 {
		t.Fatalf("unexpected rejections: %+v %v", summary.Stats, summary.Reasons)
	}
	if summary.Stats.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1 for the resource fork", summary.Stats.Skipped)
	}

	docs, err := store.Documents(context.Background(), false)
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	result := reconcile.Reconcile(docs, nil)
	if len(result.Summary) != 1 {
		t.Fatalf("expected one bucket, got %+v", result.Summary)
	}
	row := result.Summary[0]
	if row.Family != fiscal.FamilyInvoiceFull || row.First != 1 || row.Last != 4 || row.Count != 3 || row.Value.String() != "225.00" {
		t.Fatalf("unexpected summary row: %+v", row)
	}
	if len(result.Gaps) != 1 || result.Gaps[0].Missing != 3 {
		t.Fatalf("expected gap at 3, got %+v", result.Gaps)
	}

	last, err := store.LastBatch(context.Background())
	if err != nil {
		t.Fatalf("LastBatch: %v", err)
	}
	if !last.Finished() || last.Stats != summary.Stats {
		t.Fatalf("batch not recorded: %+v", last)
	}
}

func TestRunScanRefusesNonEmptyCorpus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ing, store := newIngester(t, cfg)
	inv := testsupport.Invoice{Number: 1, Value: "10.00"}
	path := testsupport.WriteBytes(t, filepath.Join(testsupport.BaseDir(cfg), inv.FileName()), inv.XML())

	if _, err := ing.Run(context.Background(), Options{Inputs: []string{path}, Kind: corpus.KindScan}); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	_, err := ing.Run(context.Background(), Options{Inputs: []string{path}, Kind: corpus.KindScan})
	if !errors.Is(err, ErrCorpusNotEmpty) {
		t.Fatalf("expected ErrCorpusNotEmpty, got %v", err)
	}

	if _, err := ing.Run(context.Background(), Options{Inputs: []string{path}, Kind: corpus.KindAdd}); err != nil {
		t.Fatalf("add: %v", err)
	}
	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Fatalf("corpus should keep duplicates for the engine, count = %d", count)
	}
}

func TestRunAddRefusesOtherTaxpayer(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ing, store := newIngester(t, cfg)
	base := testsupport.BaseDir(cfg)

	own := testsupport.Invoice{Number: 1, Value: "10.00"}
	first := testsupport.WriteBytes(t, filepath.Join(base, "a", own.FileName()), own.XML())
	if _, err := ing.Run(context.Background(), Options{Inputs: []string{first}, Kind: corpus.KindScan}); err != nil {
		t.Fatalf("scan: %v", err)
	}

	other := testsupport.Invoice{Number: 7, Value: "20.00", IssuerCNPJ: testsupport.ThirdPartyCNPJ}
	second := testsupport.WriteBytes(t, filepath.Join(base, "b", other.FileName()), other.XML())
	otherCfg := *cfg
	otherCfg.Taxpayer.CNPJ = testsupport.ThirdPartyCNPJ
	switched := New(&otherCfg, store, logging.NewNop())

	_, err := switched.Run(context.Background(), Options{Inputs: []string{second}, Kind: corpus.KindAdd})
	if !errors.Is(err, ErrTaxpayerMismatch) {
		t.Fatalf("expected ErrTaxpayerMismatch, got %v", err)
	}
	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("refused batch must not append documents, count = %d", count)
	}
	batches, err := store.Batches(context.Background())
	if err != nil || len(batches) != 1 {
		t.Fatalf("refused batch must not be recorded, batches = %d, %v", len(batches), err)
	}

	if _, err := ing.Run(context.Background(), Options{Inputs: []string{second}, Kind: corpus.KindAdd}); err != nil {
		t.Fatalf("add under the original taxpayer: %v", err)
	}
	docs, err := store.Documents(context.Background(), false)
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	result := reconcile.Reconcile(docs, nil)
	if len(result.Gaps) != 0 {
		t.Fatalf("third-party numbering must not open gaps, got %+v", result.Gaps)
	}
}

func TestRunAddCancellationAcrossBatches(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ing, store := newIngester(t, cfg)
	base := testsupport.BaseDir(cfg)
	inv := testsupport.Invoice{Number: 7, Value: "30.00"}

	first := testsupport.WriteBytes(t, filepath.Join(base, "a", inv.FileName()), inv.XML())
	if _, err := ing.Run(context.Background(), Options{Inputs: []string{first}, Kind: corpus.KindScan}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	event := testsupport.WriteBytes(t, filepath.Join(base, "b", "cancel.xml"),
		testsupport.CancellationEvent(inv.Key(), testsupport.TaxpayerCNPJ))
	if _, err := ing.Run(context.Background(), Options{Inputs: []string{event}}); err != nil {
		t.Fatalf("add: %v", err)
	}

	docs, err := store.Documents(context.Background(), false)
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	result := reconcile.Reconcile(docs, nil)
	if len(result.Cancelled) != 1 || len(result.Authorized) != 0 {
		t.Fatalf("expected cancellation to win, got %+v", result.Counts())
	}
}

func TestRunReleasesMemory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithReleaseEvery(2))
	ing, _ := newIngester(t, cfg)
	released := 0
	ing.release = func() { released++ }

	dir := filepath.Join(testsupport.BaseDir(cfg), "in")
	for n := 1; n <= 5; n++ {
		inv := testsupport.Invoice{Number: n, Value: "1.00"}
		testsupport.WriteBytes(t, filepath.Join(dir, inv.FileName()), inv.XML())
	}
	if _, err := ing.Run(context.Background(), Options{Inputs: []string{dir}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if released != 2 {
		t.Fatalf("released = %d, want 2", released)
	}
}

func TestRunRequiresTaxpayerAndInputs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTaxpayer(""))
	ing, _ := newIngester(t, cfg)
	if _, err := ing.Run(context.Background(), Options{}); !errors.Is(err, ErrNoInputs) {
		t.Fatalf("expected ErrNoInputs, got %v", err)
	}
	if _, err := ing.Run(context.Background(), Options{Inputs: []string{"x.xml"}}); !errors.Is(err, config.ErrTaxpayerRequired) {
		t.Fatalf("expected ErrTaxpayerRequired, got %v", err)
	}
}

func TestRunMissingInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ing, store := newIngester(t, cfg)
	_, err := ing.Run(context.Background(), Options{Inputs: []string{filepath.Join(t.TempDir(), "missing.zip")}})
	if err == nil {
		t.Fatal("expected error for missing input")
	}
	batches, err := store.Batches(context.Background())
	if err != nil {
		t.Fatalf("Batches: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("no batch should be recorded for unresolvable inputs, got %d", len(batches))
	}
}

func TestRunHonorsLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ing, store := newIngester(t, cfg)
	unlock, err := store.Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer unlock()

	inv := testsupport.Invoice{Number: 1}
	path := testsupport.WriteBytes(t, filepath.Join(testsupport.BaseDir(cfg), inv.FileName()), inv.XML())
	if _, err := ing.Run(context.Background(), Options{Inputs: []string{path}}); !errors.Is(err, corpus.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ing, store := newIngester(t, cfg)
	inv := testsupport.Invoice{Number: 1}
	path := testsupport.WriteBytes(t, filepath.Join(testsupport.BaseDir(cfg), inv.FileName()), inv.XML())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ing.Run(ctx, Options{Inputs: []string{path}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("cancelled batch appended %d documents", count)
	}
}

func TestCollectInputs(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteBytes(t, filepath.Join(root, "b.xml"), []byte("x"))
	testsupport.WriteBytes(t, filepath.Join(root, "a", "c.ZIP"), []byte("x"))
	testsupport.WriteBytes(t, filepath.Join(root, "a", "skip.pdf"), []byte("x"))
	testsupport.WriteBytes(t, filepath.Join(root, ".hidden", "d.xml"), []byte("x"))
	testsupport.WriteBytes(t, filepath.Join(root, "__MACOSX", "e.xml"), []byte("x"))
	explicit := testsupport.WriteBytes(t, filepath.Join(t.TempDir(), "notes.txt"), []byte("x"))

	files, err := CollectInputs([]string{root, explicit, root}, []string{"__MACOSX"})
	if err != nil {
		t.Fatalf("CollectInputs: %v", err)
	}
	want := []string{
		filepath.Join(root, "a", "c.ZIP"),
		filepath.Join(root, "b.xml"),
		explicit,
	}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}
