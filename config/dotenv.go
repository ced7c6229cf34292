package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultDotEnv is the file LoadDotEnv reads when given no paths.
const DefaultDotEnv = ".env"

// LoadDotEnv loads environment files into the process environment without
// overriding variables that are already set. Missing files are skipped so a
// checkout without a .env still works.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{DefaultDotEnv}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}
