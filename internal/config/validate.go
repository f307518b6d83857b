package config

import (
	"errors"
	"fmt"
)

// CNPJLength is the number of digits in a reference taxpayer identifier.
const CNPJLength = 14

// ErrTaxpayerRequired indicates that an operation needs the reference CNPJ.
var ErrTaxpayerRequired = errors.New("taxpayer.cnpj is required")

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTaxpayer(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"classifier.head_bytes": c.Classifier.HeadBytes,
		"unpacker.max_depth":    c.Unpacker.MaxDepth,
	}); err != nil {
		return err
	}
	if c.Unpacker.MaxEntryBytes <= 0 {
		return errors.New("unpacker.max_entry_bytes must be positive")
	}
	if err := c.validateLedger(); err != nil {
		return err
	}
	if c.Ingest.ReleaseEvery < 0 {
		return errors.New("ingest.release_every must be >= 0")
	}
	return nil
}

func (c *Config) validateTaxpayer() error {
	if c.Taxpayer.CNPJ == "" {
		return nil
	}
	if len(c.Taxpayer.CNPJ) != CNPJLength {
		return fmt.Errorf("taxpayer.cnpj must have %d digits, got %d", CNPJLength, len(c.Taxpayer.CNPJ))
	}
	return nil
}

func (c *Config) validateLedger() error {
	if c.Ledger.KeyIndex < 0 || c.Ledger.StatusIndex < 0 {
		return errors.New("ledger.key_index and ledger.status_index must be >= 0")
	}
	if c.Ledger.KeyIndex == c.Ledger.StatusIndex {
		return errors.New("ledger.key_index and ledger.status_index must differ")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
