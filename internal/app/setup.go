package app

import (
	"fmt"
	"strings"

	"ology/internal/provider"
)

// CreateProvider creates DataProvider from config (currently ology only)
func CreateProvider(cfg *Config) (provider.DataProvider, error) {
	switch strings.ToLower(cfg.DataProvider) {
	case "ology":
		if cfg.APIBaseURL == "" {
			return nil, fmt.Errorf("OLOGY_API_URL not set")
		}
		return provider.NewOlogyProvider(cfg.APIBaseURL, cfg.APITokens, cfg.RequestsPerSecond)
	default:
		return nil, fmt.Errorf("unsupported data provider: %s. Options: ology", cfg.DataProvider)
	}
}
