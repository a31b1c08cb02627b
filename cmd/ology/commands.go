package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"ology/internal/app"
	"ology/internal/chart"
	"ology/internal/crawl"
	"ology/internal/provider/ologyapi"
	"ology/internal/server"
	"ology/internal/trend"
)

const dateLayout = "2006-01-02"

// dateWindow resolves -from/-to flags against the configured default window.
func dateWindow(cfg *app.Config, from, to string) (time.Time, time.Time, error) {
	start, end := cfg.StartDate, cfg.EndDate
	var err error
	if from != "" {
		if start, err = time.Parse(dateLayout, from); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -from %q: %w", from, err)
		}
	}
	if to != "" {
		if end, err = time.Parse(dateLayout, to); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -to %q: %w", to, err)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("-to %s is before -from %s", end.Format(dateLayout), start.Format(dateLayout))
	}
	return start, end, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

type trendCmd struct {
	domain string
	from   string
	to     string
	rollup string
	trend  bool
	save   bool
	asJSON bool
}

func (*trendCmd) Name() string     { return "trend" }
func (*trendCmd) Synopsis() string { return "fetch the history of one domain and fit its trend" }
func (*trendCmd) Usage() string {
	return `trend -domain <domain> [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-rollup none] [-trend] [-save] [-json]:
  Fetch day-bucketed counts, filter aberrations and print the chart for the dashboard.
`
}

func (c *trendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.domain, "domain", "", "domain to analyze")
	f.StringVar(&c.from, "from", "", "start date (default START_DATE)")
	f.StringVar(&c.to, "to", "", "end date (default END_DATE)")
	f.StringVar(&c.rollup, "rollup", "", "subdomain rollup (default SUBDOMAIN_ROLLUP)")
	f.BoolVar(&c.trend, "trend", false, "overlay the fitted trend line")
	f.BoolVar(&c.save, "save", false, "write the analyzed packet under DATA_DIR")
	f.BoolVar(&c.asJSON, "json", false, "print the chart payload as JSON")
}

func (c *trendCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.domain == "" {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	a, err := initApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.DP.Close()

	from, to, err := dateWindow(a.Config, c.from, c.to)
	if err != nil {
		slog.Error("bad date window", "error", err)
		return subcommands.ExitUsageError
	}
	q := ologyapi.HistoryQuery{
		Domain:          c.domain,
		From:            from,
		To:              to,
		SubdomainRollup: orDefault(c.rollup, a.Config.SubdomainRollup),
	}
	s, err := a.DP.FetchHistory(ctx, q)
	if err != nil {
		slog.Error("fetch history failed", "domain", c.domain, "error", err)
		return subcommands.ExitFailure
	}
	slog.Debug("history fetched", "domain", c.domain, "points", len(s))

	ch, an, err := chart.NewView(c.trend).RenderAnalyzed(c.domain, s)
	if c.trend {
		a.Metrics.ObserveAnalysis(err)
	}
	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ch); err != nil {
			slog.Error("encode chart failed", "error", err)
			return subcommands.ExitFailure
		}
	} else if err := newPrinter(os.Stdout).Chart(ch); err != nil {
		slog.Error("print chart failed", "error", err)
		return subcommands.ExitFailure
	}

	if !c.save {
		return subcommands.ExitSuccess
	}
	if an == nil {
		// Overlay off: analyze once for the packet. Overlay failures already carry err.
		if !c.trend {
			fresh, aerr := trend.Analyze(s)
			an, err = &fresh, aerr
		}
		if err != nil {
			slog.Error("nothing to save", "domain", c.domain, "error", err)
			return subcommands.ExitFailure
		}
	}
	job := crawl.Job{Domain: c.domain, From: from, To: to}
	p, err := crawl.SavePacket(a.Config.SaveBaseDir(), a.Saver, job, an.Rows(s))
	if err != nil {
		slog.Error("save packet failed", "domain", c.domain, "error", err)
		return subcommands.ExitFailure
	}
	slog.Info("packet saved", "domain", c.domain, "path", p, "rows", len(s))
	return subcommands.ExitSuccess
}

type topDomainsCmd struct {
	from   string
	to     string
	page   int
	rollup string
	asJSON bool
}

func (*topDomainsCmd) Name() string     { return "top-domains" }
func (*topDomainsCmd) Synopsis() string { return "list the most cited domains" }
func (*topDomainsCmd) Usage() string {
	return `top-domains [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-page 1] [-rollup none] [-json]:
  Print one page of the top-domains listing.
`
}

func (c *topDomainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "start date (default START_DATE)")
	f.StringVar(&c.to, "to", "", "end date (default END_DATE)")
	f.IntVar(&c.page, "page", 1, "page of the listing, starting at 1")
	f.StringVar(&c.rollup, "rollup", "", "subdomain rollup (default SUBDOMAIN_ROLLUP)")
	f.BoolVar(&c.asJSON, "json", false, "print the listing as JSON")
}

func (c *topDomainsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.page < 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	a, err := initApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.DP.Close()

	from, to, err := dateWindow(a.Config, c.from, c.to)
	if err != nil {
		slog.Error("bad date window", "error", err)
		return subcommands.ExitUsageError
	}
	list, err := a.DP.FetchTopDomains(ctx, ologyapi.TopDomainsQuery{
		From:            from,
		To:              to,
		Page:            c.page,
		SubdomainRollup: orDefault(c.rollup, a.Config.SubdomainRollup),
	})
	if err != nil {
		slog.Error("fetch top domains failed", "error", err)
		return subcommands.ExitFailure
	}

	if c.asJSON {
		if err := json.NewEncoder(os.Stdout).Encode(list); err != nil {
			slog.Error("encode listing failed", "error", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	if err := newPrinter(os.Stdout).TopDomains(list, c.page); err != nil {
		slog.Error("print listing failed", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type crawlCmd struct {
	once bool
}

func (*crawlCmd) Name() string     { return "crawl" }
func (*crawlCmd) Synopsis() string { return "analyze every domain of DOMAINS_FILE on a daily schedule" }
func (*crawlCmd) Usage() string {
	return `crawl [-once]:
  Fetch, analyze and save packets for all domains, then wait for RUN_HOUR:RUN_MINUTE UTC.
`
}

func (c *crawlCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.once, "once", false, "run a single crawl and exit")
}

func (c *crawlCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := initApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.DP.Close()
	cfg := a.Config

	slog.Info("reading domains from file", "file", cfg.DomainsFile)
	domains, err := ologyapi.LoadDomains(cfg.DomainsFile)
	if err != nil {
		slog.Error("failed to get domains", "error", err)
		return subcommands.ExitFailure
	}
	slog.Info("got domains", "count", len(domains))

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		slog.Error("failed to create data dir", "error", err)
		return subcommands.ExitFailure
	}
	slog.Info("save dir", "dir", cfg.SaveBaseDir(), "format", cfg.SaveFormat)

	opts := app.CrawlOptions(cfg, a.Saver, a.Metrics)
	slog.Info("parallel mode", "workers", max(cfg.Workers, len(cfg.APITokens), 1), "tokens", len(cfg.APITokens))

	if c.once {
		shutdown := make(chan struct{})
		stop := context.AfterFunc(ctx, func() { close(shutdown) })
		defer stop()
		app.RunOnce(a.Provider, opts, domains, shutdown)
		return subcommands.ExitSuccess
	}
	app.RunFlow(cfg, a.Provider, opts, domains)
	return subcommands.ExitSuccess
}

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve chart payloads and metrics over HTTP" }
func (*serveCmd) Usage() string {
	return `serve [-addr :8080]:
  Serve /api/trend, /api/top-domains, /metrics and /healthz until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "listen address (default LISTEN_ADDR)")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := initApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.DP.Close()

	srv := server.New(a.DP, a.Metrics, server.Defaults{
		From:            a.Config.StartDate,
		To:              a.Config.EndDate,
		SubdomainRollup: a.Config.SubdomainRollup,
	})
	if err := srv.Run(ctx, orDefault(c.addr, a.Config.ListenAddr)); err != nil {
		slog.Error("http server stopped", "error", err)
		return subcommands.ExitFailure
	}
	slog.Info("http server stopped")
	return subcommands.ExitSuccess
}
