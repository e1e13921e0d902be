// Package config loads application settings and resolves file paths.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Default locations, before expansion.
const (
	DefaultConfigDir   = "~/.config/diary"
	DefaultDataDir     = "~/.local/share/diary"
	DefaultSQLiteFile  = "diary.db"
	DefaultBoltFile    = "diary.bolt"
	DefaultExportFile  = "coffee-data.json"
	DefaultConfigName  = "config"
	DefaultEnvFileName = ".env"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultStoragePath returns the expanded database path for a backend.
func DefaultStoragePath(backend string) string {
	name := DefaultSQLiteFile
	if backend == "bolt" {
		name = DefaultBoltFile
	}
	return ExpandPath(filepath.Join(DefaultDataDir, name))
}
