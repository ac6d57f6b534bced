package model

import (
	"os"
	"path/filepath"
)

// defaultCacheDir resolves the cache directory under the user's home,
// falling back to a temp dir when the home cannot be determined.
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "mergebook-cache")
	}
	return filepath.Join(home, ".mergebook", "cache")
}
