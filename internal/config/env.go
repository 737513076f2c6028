package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// envFiles are read in order; a key set by an earlier file or the process wins.
var envFiles = []string{".env.local", ".env"}

// loadEnvFiles populates the process environment from dotenv files in the
// working directory. Missing files are skipped silently.
func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("failed to load env file", slog.String("file", name), slog.String("error", err.Error()))
			continue
		}
		slog.Debug("loaded env file", slog.String("file", name))
	}
}
