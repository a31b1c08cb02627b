package app

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ology/internal/crawl"
	"ology/internal/metrics"
	"ology/internal/saver"
)

// CrawlOptions maps config onto the options of one crawl run.
func CrawlOptions(cfg *Config, ps saver.PacketSaver, m *metrics.Metrics) crawl.Options {
	return crawl.Options{
		Tokens:          cfg.APITokens,
		Workers:         cfg.Workers,
		From:            cfg.StartDate,
		To:              cfg.EndDate,
		SubdomainRollup: cfg.SubdomainRollup,
		SaveBaseDir:     cfg.SaveBaseDir(),
		ProgressPath:    cfg.ProgressPath(),
		Saver:           ps,
		Metrics:         m,
		LogLevel:        cfg.LogLevel,
	}
}

// RunFlow orchestrates crawl loop: trigger → run → done → wait → trigger
func RunFlow(cfg *Config, fetcher crawl.Fetcher, opts crawl.Options, domains []string) {
	progressUpdates := make(chan crawl.ProgressUpdate, 256)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		crawl.RunProgressWriter(opts.ProgressPath, progressUpdates)
	}()

	shutdown := make(chan struct{})
	trigger := make(chan crawl.Cmd, 1)
	done := make(chan crawl.Done, 1)

	go func() {
		for range trigger {
			crawl.RunOneCrawl(fetcher, opts, domains, progressUpdates, done, shutdown)
		}
	}()
	defer func() {
		close(trigger)
		close(progressUpdates)
		<-progressDone
	}()

	trigger <- crawl.Cmd{}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	for {
		select {
		case <-done:
			slog.Info("done, wait until next run")
			nextRun := nextCrawlRunTime(cfg, time.Now().UTC())
			waitDur := time.Until(nextRun)
			if waitDur <= 0 {
				slog.Info("next run passed, running now", "next_run", nextRun.Format("2006-01-02 15:04"))
			} else {
				slog.Info("timer waiting", "hours", waitDur.Hours(), "until", nextRun.Format("2006-01-02 15:04"))
				timer := time.NewTimer(waitDur)
				select {
				case <-timer.C:
				case sig := <-signals:
					slog.Info("received signal, stopping", "sig", sig, "restart_at", nextRun.Format("2006-01-02 15:04"))
					timer.Stop()
					return
				}
			}
			trigger <- crawl.Cmd{}
		case sig := <-signals:
			slog.Info("received signal, graceful shutdown", "sig", sig)
			close(shutdown)
			<-done
			return
		}
	}
}

// RunOnce runs a single crawl cycle with its own progress writer and returns when it is done
// or when shutdown is closed and the workers have drained.
func RunOnce(fetcher crawl.Fetcher, opts crawl.Options, domains []string, shutdown <-chan struct{}) {
	progressUpdates := make(chan crawl.ProgressUpdate, 256)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		crawl.RunProgressWriter(opts.ProgressPath, progressUpdates)
	}()

	done := make(chan crawl.Done, 1)
	crawl.RunOneCrawl(fetcher, opts, domains, progressUpdates, done, shutdown)
	<-done
	close(progressUpdates)
	<-progressDone
}

func nextCrawlRunTime(cfg *Config, now time.Time) time.Time {
	hour, minute := cfg.RunHour, cfg.RunMinute
	targetToday := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if now.Before(targetToday) {
		return targetToday
	}
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), hour, minute, 0, 0, time.UTC)
}
