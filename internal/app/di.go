package app

import (
	"fmt"

	"ology/internal/metrics"
	"ology/internal/provider"
	"ology/internal/saver"
)

// ProvideConfig loads config from .env and environment (for Wire).
func ProvideConfig() (*Config, error) {
	return LoadConfig()
}

// ProvidePacketSaver creates PacketSaver from config (for Wire).
// Returns error if SaveFormat is not supported.
func ProvidePacketSaver(cfg *Config) (saver.PacketSaver, error) {
	ps := saver.NewPacketSaver(cfg.SaveFormat)
	if ps == nil {
		return nil, fmt.Errorf("unsupported SAVE_FORMAT %q (use: %s)", cfg.SaveFormat, saver.Formats)
	}
	return ps, nil
}

// ProvideMetrics creates the Prometheus registry and collectors (for Wire).
func ProvideMetrics() *metrics.Metrics {
	return metrics.New()
}

// ProvideOlogyProvider creates the API-backed provider and hooks request metrics into it (for Wire).
// Caller must call dp.Close() when shutting down.
func ProvideOlogyProvider(cfg *Config, m *metrics.Metrics) (*provider.OlogyProvider, error) {
	dp, err := CreateProvider(cfg)
	if err != nil {
		return nil, err
	}
	p, ok := dp.(*provider.OlogyProvider)
	if !ok {
		return nil, fmt.Errorf("expected *provider.OlogyProvider, got %T", dp)
	}
	p.OnResponse = m.ObserveAPI
	return p, nil
}
