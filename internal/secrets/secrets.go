// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Recognized key files: serpapi-api-key, gemini-api-key, openai-api-key.
// Each has an environment variable fallback (see Resolve).
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Key file names.
const (
	SerpAPIKey = "serpapi-api-key"
	GeminiKey  = "gemini-api-key"
	OpenAIKey  = "openai-api-key"
)

// envFallback maps key file names to the environment variable consulted when
// the file is absent.
var envFallback = map[string]string{
	SerpAPIKey: "SERPAPI_API_KEY",
	GeminiKey:  "GEMINI_API_KEY",
	OpenAIKey:  "OPENAI_API_KEY",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings and skipped.
func Load(dir string, log zerolog.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Str("secret", name).Err(err).Msg("could not read secret")
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Resolve returns the value for key, preferring the loaded file and falling
// back to the key's environment variable. An unknown key with no file yields "".
func Resolve(loaded map[string]string, key string) string {
	if v := loaded[key]; v != "" {
		return v
	}
	if env, ok := envFallback[key]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}
