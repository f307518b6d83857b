package testsupport

import (
	"path/filepath"
	"testing"

	"garimpeiro/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults the taxpayer to TaxpayerCNPJ and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Taxpayer.CNPJ = TaxpayerCNPJ
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ExportDir = filepath.Join(base, "exports")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTaxpayer overrides the reference CNPJ on the test config.
func WithTaxpayer(cnpj string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Taxpayer.CNPJ = cnpj
	}
}

// WithReleaseEvery overrides the memory release cadence.
func WithReleaseEvery(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.ReleaseEvery = n
	}
}

// WithMaxDepth overrides the archive nesting limit.
func WithMaxDepth(depth int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Unpacker.MaxDepth = depth
	}
}

// BaseDir returns the temp directory backing the config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
