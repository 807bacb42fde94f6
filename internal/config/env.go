package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"regexp"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/siteconfig/internal/logfields"
)

// envReference matches the braced ${NAME} form only; a bare $ is literal text.
var envReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// DefaultEnvFiles are tried in order before a configuration file is expanded.
var DefaultEnvFiles = []string{".env", ".env.local"}

// loadEnvFiles loads every existing file from paths into the process environment.
// Variables already present in the environment are never overwritten, so the
// first file to define a key wins.
func loadEnvFiles(paths []string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return err
		}
		slog.Debug("Loaded environment variables", logfields.Path(p))
	}
	return nil
}

// expandEnv replaces ${NAME} references with environment values. Unset
// variables expand to the empty string.
func expandEnv(data []byte) []byte {
	return envReference.ReplaceAllFunc(data, func(ref []byte) []byte {
		name := envReference.FindSubmatch(ref)[1]
		return []byte(os.Getenv(string(name)))
	})
}
