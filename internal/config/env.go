package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnv loads <projectPath>/.env into the process environment.
// Variables already set are kept and a missing file is not an error.
func LoadEnv(projectPath string) error {
	envPath := filepath.Join(projectPath, ".env")
	if err := godotenv.Load(envPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", envPath, err)
	}
	return nil
}
