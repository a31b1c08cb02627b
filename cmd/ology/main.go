package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"ology/internal/slogx"
)

func init() {
	slog.SetDefault(slogx.NewDefault("info", "text"))
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&trendCmd{}, "analysis")
	subcommands.Register(&topDomainsCmd{}, "analysis")
	subcommands.Register(&crawlCmd{}, "batch")
	subcommands.Register(&serveCmd{}, "server")

	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := subcommands.Execute(ctx)
	stop()
	os.Exit(int(status))
}

// initApp builds the dependencies and switches the default logger to the configured level and format.
func initApp() (*App, error) {
	a, err := InitializeApp()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slogx.NewDefault(a.Config.LogLevel, a.Config.LogFormat))
	slog.Info("using data provider", "provider", a.DP.GetName())
	return a, nil
}
