package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// StoragePaths contains paths for application storage
type StoragePaths struct {
	DatabasePath     string
	BenchResultsPath string
}

// GetDefaultStoragePaths returns default storage paths using XDG base directories
func GetDefaultStoragePaths() StoragePaths {
	return StoragePaths{
		DatabasePath:     filepath.Join(xdg.StateHome, "chatledger", "ledger.db"),
		BenchResultsPath: filepath.Join(xdg.DataHome, "chatledger", "bench"),
	}
}
