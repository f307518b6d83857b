package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"garimpeiro/internal/classify"
	"garimpeiro/internal/config"
	"garimpeiro/internal/corpus"
	"garimpeiro/internal/logging"
	"garimpeiro/internal/unpack"
)

var (
	// ErrCorpusNotEmpty indicates an initial scan over an existing corpus.
	ErrCorpusNotEmpty = errors.New("corpus already holds documents; use add or reset")
	// ErrNoInputs indicates a batch was requested without inputs.
	ErrNoInputs = errors.New("no inputs given")
	// ErrTaxpayerMismatch indicates an addition under a taxpayer other than
	// the one the corpus was built for.
	ErrTaxpayerMismatch = errors.New("corpus belongs to another taxpayer; reset before switching")
)

// Options selects the inputs and kind of a batch.
type Options struct {
	Inputs []string
	Kind   corpus.Kind
}

// Summary reports the outcome of a batch.
type Summary struct {
	BatchID  string         `json:"batch_id"`
	Kind     corpus.Kind    `json:"kind"`
	Stats    corpus.Stats   `json:"stats"`
	Reasons  map[string]int `json:"reasons,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// Ingester appends classified documents to the corpus.
type Ingester struct {
	cfg        *config.Config
	store      *corpus.Store
	logger     *slog.Logger
	classifier *classify.Classifier
	release    func()
}

// New builds an Ingester from configuration.
func New(cfg *config.Config, store *corpus.Store, logger *slog.Logger) *Ingester {
	return &Ingester{
		cfg:        cfg,
		store:      store,
		logger:     logging.NewComponentLogger(logger, "ingest"),
		classifier: classify.New(classify.Options{HeadBytes: cfg.Classifier.HeadBytes}),
		release:    debug.FreeOSMemory,
	}
}

// Run executes one batch. Per-document failures never abort it; storage and
// filesystem errors do, and are recorded on the batch.
func (i *Ingester) Run(ctx context.Context, opts Options) (Summary, error) {
	if len(opts.Inputs) == 0 {
		return Summary{}, ErrNoInputs
	}
	if err := i.cfg.RequireTaxpayer(); err != nil {
		return Summary{}, err
	}
	kind := opts.Kind
	if kind == "" {
		kind = corpus.KindAdd
	}

	unlock, err := i.store.Lock()
	if err != nil {
		return Summary{}, err
	}
	defer func() {
		if err := unlock(); err != nil {
			i.logger.Debug("corpus unlock failed", logging.Error(err))
		}
	}()

	if err := i.checkCorpus(ctx, kind); err != nil {
		return Summary{}, err
	}

	files, err := CollectInputs(opts.Inputs, i.cfg.Unpacker.SkipFolders)
	if err != nil {
		return Summary{}, err
	}

	taxpayer := i.cfg.Taxpayer.CNPJ
	batchID, err := i.store.BeginBatch(ctx, kind, taxpayer)
	if err != nil {
		return Summary{}, err
	}
	ctx = logging.WithBatch(ctx, batchID, string(kind))
	logger := logging.WithContext(ctx, i.logger)

	started := time.Now()
	run := &batchRun{
		ingester: i,
		ctx:      ctx,
		logger:   logger,
		batchID:  batchID,
		summary:  Summary{BatchID: batchID, Kind: kind, Reasons: map[string]int{}},
	}
	logger.Info("batch started",
		logging.Int("inputs", len(files)),
		logging.String(logging.FieldEventType, "batch_started"),
	)

	runErr := run.process(files)
	run.summary.Duration = time.Since(started)

	if err := i.store.FinishBatch(context.WithoutCancel(ctx), batchID, run.summary.Stats, runErr); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if runErr != nil {
		logging.ErrorWithContext(logger, "batch failed", "batch_failed",
			logging.Error(runErr),
			logging.Int("accepted", run.summary.Stats.Accepted),
			logging.String(logging.FieldErrorHint, "documents accepted so far stay in the corpus; rerun with add"),
		)
		return run.summary, runErr
	}

	logger.Info("batch finished",
		logging.Int("inputs", run.summary.Stats.Inputs),
		logging.Int("accepted", run.summary.Stats.Accepted),
		logging.Int("rejected", run.summary.Stats.Rejected),
		logging.Int("skipped", run.summary.Stats.Skipped),
		logging.Any("duration", run.summary.Duration.Round(time.Millisecond)),
		logging.String(logging.FieldEventType, "batch_finished"),
	)
	return run.summary, nil
}

// checkCorpus refuses a scan over existing documents and an addition whose
// taxpayer differs from the one that classified the stored documents.
// Ownership is fixed at classification time, so mixing taxpayers would merge
// unrelated numbering into the same buckets.
func (i *Ingester) checkCorpus(ctx context.Context, kind corpus.Kind) error {
	if kind == corpus.KindScan {
		count, err := i.store.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w (%d documents)", ErrCorpusNotEmpty, count)
		}
		return nil
	}

	taxpayers, err := i.store.Taxpayers(ctx)
	if err != nil {
		return err
	}
	for _, stored := range taxpayers {
		if stored != i.cfg.Taxpayer.CNPJ {
			return fmt.Errorf("%w (corpus %s, configured %s)", ErrTaxpayerMismatch, stored, i.cfg.Taxpayer.CNPJ)
		}
	}
	return nil
}

type batchRun struct {
	ingester *Ingester
	ctx      context.Context
	logger   *slog.Logger
	batchID  string
	summary  Summary
}

func (r *batchRun) process(files []string) error {
	unpacker := unpack.New(unpack.Options{
		MaxDepth:      r.ingester.cfg.Unpacker.MaxDepth,
		MaxEntryBytes: r.ingester.cfg.Unpacker.MaxEntryBytes,
		SkipFolders:   r.ingester.cfg.Unpacker.SkipFolders,
		OnSkip: func(skip unpack.Skip) {
			r.summary.Stats.Skipped++
			r.logger.Debug("archive member skipped",
				logging.String("member", skip.Name),
				logging.String("reason", skip.Reason),
				logging.Any("cause", skip.Err),
			)
		},
	})

	for _, path := range files {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		if err := r.processInput(unpacker, path); err != nil {
			return err
		}
	}
	return nil
}

func (r *batchRun) processInput(unpacker *unpack.Unpacker, path string) error {
	name := filepath.Base(path)
	r.summary.Stats.Inputs++
	if !unpack.HasExt(name, unpack.ContainerExt) && !unpack.HasExt(name, unpack.DocumentExt) {
		r.summary.Stats.Skipped++
		r.logger.Debug("input skipped", logging.String("path", path), logging.String("reason", "extension"))
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		r.summary.Stats.Skipped++
		logging.WarnWithContext(r.logger, "input unreadable", "input_unreadable",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check file permissions"),
			logging.String(logging.FieldImpact, "input not included in the corpus"),
		)
		return nil
	}

	for entry := range unpacker.Expand(name, data) {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		if err := r.processEntry(path, entry); err != nil {
			return err
		}
	}
	return nil
}

func (r *batchRun) processEntry(input string, entry unpack.Entry) error {
	cfg := r.ingester.cfg
	doc, reason := r.ingester.classifier.Inspect(entry.Data, cfg.Taxpayer.CNPJ, entry.Name)
	if reason != "" {
		r.summary.Stats.Rejected++
		r.summary.Reasons[reason]++
		r.logger.Debug("document rejected",
			logging.String("input", input),
			logging.String("file", entry.Name),
			logging.String("reason", reason),
		)
		return nil
	}

	if err := r.ingester.store.Append(r.ctx, r.batchID, doc); err != nil {
		return fmt.Errorf("append %s: %w", entry.Name, err)
	}
	r.summary.Stats.Accepted++
	r.logger.Debug("document accepted",
		logging.String("file", entry.Name),
		logging.String("key", doc.IdentityKey),
		logging.String("status", doc.Status.String()),
	)

	if every := cfg.Ingest.ReleaseEvery; every > 0 && r.summary.Stats.Accepted%every == 0 {
		r.ingester.release()
	}
	return nil
}
