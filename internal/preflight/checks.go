package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"garimpeiro/internal/config"
)

// CheckTaxpayer reports whether the reference CNPJ is configured.
func CheckTaxpayer(cfg *config.Config) Result {
	const name = "Taxpayer CNPJ"
	if err := cfg.RequireTaxpayer(); err != nil {
		return Result{Name: name, Detail: "not set (taxpayer.cnpj or GARIMPEIRO_CNPJ)"}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Taxpayer.CNPJ}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckWritableTarget passes when path is a writable directory or when it is
// missing but its nearest existing ancestor is writable, so it can be created
// on demand. The result is optional because only export needs it.
func CheckWritableTarget(name, path string) Result {
	result := CheckDirectoryAccess(name, path)
	result.Optional = true
	if result.Passed {
		return result
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return result
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		result.Detail = fmt.Sprintf("%s (error: parent %s not writable)", path, parent)
		return result
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: fmt.Sprintf("%s (created on export)", path)}
}
