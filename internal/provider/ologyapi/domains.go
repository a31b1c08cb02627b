package ologyapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LoadDomainsFromFile reads a list of domains from a file.
// Supported formats:
//   - .txt  : one domain per line, '#' lines are treated as comments
//   - .json : JSON array of strings
func LoadDomainsFromFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read domains file %s: %w", path, err)
	}

	var domains []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(content, &domains); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	case ".txt":
		domains = parseDomainsFromText(string(content))
	default:
		return nil, fmt.Errorf("unsupported domains file extension %q (use .txt or .json)", filepath.Ext(path))
	}

	unique := normalizeDomains(domains)
	slog.Info("loaded domains from file", "count", len(unique), "path", path)
	return unique, nil
}

// normalizeDomains lowercases, strips scheme and trailing dots, drops empties and duplicates.
func normalizeDomains(domains []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		d = strings.TrimPrefix(d, "https://")
		d = strings.TrimPrefix(d, "http://")
		d = strings.TrimRight(d, "./")
		if d != "" && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// parseDomainsFromText parses a plain text list where each non-empty,
// non-comment line is a domain.
func parseDomainsFromText(s string) []string {
	var domains []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			domains = append(domains, line)
		}
	}
	return domains
}

// defaultDomainFiles are tried in order when no file is configured or it is missing.
var defaultDomainFiles = []string{
	"domains.txt",
	"domains/domains.txt",
	"domains/domains.json",
}

// LoadDomains tries the given file first, then the default locations.
func LoadDomains(path string) ([]string, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return LoadDomainsFromFile(path)
		}
		slog.Info("domains file not found, trying defaults", "path", path)
	}
	for _, p := range defaultDomainFiles {
		if _, err := os.Stat(p); err == nil {
			slog.Info("found domains file", "path", p)
			return LoadDomainsFromFile(p)
		}
	}
	return nil, fmt.Errorf("domains file not found (tried %q and %s)", path, strings.Join(defaultDomainFiles, ", "))
}
