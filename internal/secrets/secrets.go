// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: groq-api-key, groq-api-key-2 ... groq-api-key-5,
// semantic-scholar-api-key, embedding-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

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

// Credentials returns the ordered list of generation API keys found in the
// map: "groq-api-key" first, then "groq-api-key-2" through "groq-api-key-5".
// Missing entries are skipped, preserving order among those present.
func Credentials(s map[string]string) []string {
	names := []string{
		"groq-api-key",
		"groq-api-key-2",
		"groq-api-key-3",
		"groq-api-key-4",
		"groq-api-key-5",
	}
	var keys []string
	for _, n := range names {
		if v, ok := s[n]; ok {
			keys = append(keys, v)
		}
	}
	return keys
}
