// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// The provider credential is read from the serpapi-api-key file, or from the
// SERPAPI_API_KEY environment variable (which a .env file may populate).
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Credential sources for the SerpAPI key.
const (
	SerpAPIKeyFile = "serpapi-api-key"
	SerpAPIKeyEnv  = "SERPAPI_API_KEY"
)

// ErrMissingAPIKey is returned when no credential source provides a key.
var ErrMissingAPIKey = errors.New("SerpAPI key not configured")

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// APIKey resolves the provider credential. An explicitly configured value
// wins, then the environment, then the secrets map.
func APIKey(configured string, loaded map[string]string) (string, error) {
	if v := strings.TrimSpace(configured); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(os.Getenv(SerpAPIKeyEnv)); v != "" {
		return v, nil
	}
	if v := loaded[SerpAPIKeyFile]; v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: set %s, crawl.api_key, or .secrets/%s", ErrMissingAPIKey, SerpAPIKeyEnv, SerpAPIKeyFile)
}
