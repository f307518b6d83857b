package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"garimpeiro/internal/config"
	"garimpeiro/internal/corpus"
	"garimpeiro/internal/ledger"
	"garimpeiro/internal/logging"
)

type commandContext struct {
	configFlag *string
	cnpjFlag   *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, cnpjFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		cnpjFlag:   cnpjFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if cnpj := c.flagValue(c.cnpjFlag); cnpj != "" {
			if err := cfg.OverrideTaxpayer(cnpj); err != nil {
				c.configErr = fmt.Errorf("--cnpj: %w", err)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

// loggerFor builds the CLI logger on first use and prunes old log files.
func (c *commandContext) loggerFor(cmd *cobra.Command) *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "logging disabled: %v\n", err)
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: "*.log",
			Exclude: []string{cfg.LogFilePath()},
		})
	})
	return c.logger
}

// withStore opens the corpus for the duration of fn.
func (c *commandContext) withStore(fn func(*config.Config, *corpus.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := corpus.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func ledgerColumns(cfg *config.Config) ledger.Columns {
	return ledger.Columns{
		KeyHeader:    cfg.Ledger.KeyHeader,
		StatusHeader: cfg.Ledger.StatusHeader,
		KeyIndex:     cfg.Ledger.KeyIndex,
		StatusIndex:  cfg.Ledger.StatusIndex,
		Sheet:        cfg.Ledger.Sheet,
		CancelMarker: cfg.Ledger.CancelMarker,
	}
}

var errLedgerPathRequired = errors.New("ledger path is required")

func loadLedger(cfg *config.Config, path string) (*ledger.Ledger, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errLedgerPathRequired
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve ledger path: %w", err)
	}
	return ledger.Load(expanded, ledgerColumns(cfg))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
