//go:build wireinject
// +build wireinject

package main

import (
	"ology/internal/app"
	"ology/internal/metrics"
	"ology/internal/provider"
	"ology/internal/saver"

	"github.com/google/wire"
)

// App holds application dependencies built by Wire.
type App struct {
	Config   *app.Config
	DP       provider.DataProvider
	Provider *provider.OlogyProvider
	Saver    saver.PacketSaver
	Metrics  *metrics.Metrics
}

// InitializeApp builds App (Config, DataProvider, PacketSaver, Metrics) via Wire.
// Caller must call a.DP.Close() when done.
func InitializeApp() (*App, error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideMetrics,
		app.ProvidePacketSaver,
		app.ProvideOlogyProvider,
		wire.Bind(new(provider.DataProvider), new(*provider.OlogyProvider)),
		wire.Struct(new(App), "*"),
	)
	return nil, nil
}
