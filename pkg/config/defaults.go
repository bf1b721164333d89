package config

import (
	"os"
	"path/filepath"
)

const appDir = "skill-tracker"

// dataDir returns ~/.config/skill-tracker, or the current directory when
// the home directory is unknown.
func dataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(homeDir, ".config", appDir)
}

// defaultLocalPath returns the default bolt document file.
//
// Returns: ~/.config/skill-tracker/data.db.
func defaultLocalPath() string {
	return filepath.Join(dataDir(), "data.db")
}

// defaultSQLPath returns the default SQLite file.
//
// Returns: ~/.config/skill-tracker/skills.sqlite.
func defaultSQLPath() string {
	return filepath.Join(dataDir(), "skills.sqlite")
}

// DefaultPath returns the default configuration file path.
//
// Returns: ~/.config/skill-tracker/config.yaml.
func DefaultPath() string {
	return filepath.Join(dataDir(), "config.yaml")
}
