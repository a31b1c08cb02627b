package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"ology/internal/metrics"
	"ology/internal/model"
	"ology/internal/provider/ologyapi"
	"ology/internal/saver"
	"ology/internal/slogx"
	"ology/internal/trend"
)

const dateLayout = "2006-01-02"

// Job represents one crawl unit (domain + date window)
type Job struct {
	Domain string
	From   time.Time
	To     time.Time
}

// DateRange formats the job window as from..to.
func (j Job) DateRange() string {
	return j.From.Format(dateLayout) + ".." + j.To.Format(dateLayout)
}

// JobResult is sent by workers for fan-in
type JobResult struct {
	Ok          bool
	Domain      string
	DateRange   string
	Reason      string
	Points      int
	Fit         model.FitResult
	TokenPrefix string
}

// Cmd triggers a crawl run
type Cmd struct{}

// Done signals crawl completion
type Done struct{}

// Fetcher is the part of the data provider the workers use.
type Fetcher interface {
	FetchHistoryWithToken(ctx context.Context, q ologyapi.HistoryQuery, token string) (model.Series, error)
}

// Options configures one crawl run.
type Options struct {
	Tokens          []string // one pool slot per token; empty means unauthenticated
	Workers         int      // minimum worker count; raised to len(Tokens)
	From            time.Time
	To              time.Time
	SubdomainRollup string
	SaveBaseDir     string
	ProgressPath    string
	Saver           saver.PacketSaver // nil disables packets
	Metrics         *metrics.Metrics  // nil disables metrics
	LogLevel        string
	Heartbeat       time.Duration
}

func (o Options) workers() int {
	return max(o.Workers, len(o.Tokens), 1)
}

// tokenPool returns a buffered channel holding one slot per worker.
func (o Options) tokenPool() chan string {
	n := o.workers()
	pool := make(chan string, n)
	for i := range n {
		if len(o.Tokens) == 0 {
			pool <- ""
			continue
		}
		pool <- o.Tokens[i%len(o.Tokens)]
	}
	return pool
}

// FilterDomainsToCrawl returns one job per domain not yet analyzed today.
func FilterDomainsToCrawl(domains []string, progressPath string, from, to, now time.Time) []Job {
	m := loadProgress(progressPath)
	today := now.UTC().Format(dateLayout)

	var jobs []Job
	for _, d := range domains {
		if last, ok := m[d]; ok && last >= today {
			continue
		}
		jobs = append(jobs, Job{Domain: d, From: from, To: to})
	}
	return jobs
}

// RunOneCrawl runs one crawl cycle in parallel mode, sends done when finished.
func RunOneCrawl(
	fetcher Fetcher,
	opts Options,
	domains []string,
	progressUpdates chan<- ProgressUpdate,
	done chan<- Done,
	shutdown <-chan struct{},
) {
	now := time.Now().UTC()
	jobs := FilterDomainsToCrawl(domains, opts.ProgressPath, opts.From, opts.To, now)
	if len(jobs) == 0 {
		slog.Info("no jobs to crawl, skip")
		done <- Done{}
		return
	}
	if skipped := len(domains) - len(jobs); skipped > 0 {
		slog.Info("domains up to date, jobs to crawl", "skipped", skipped, "jobs", len(jobs))
	} else {
		slog.Info("jobs to crawl", "jobs", len(jobs))
	}

	sum := RunParallel(fetcher, opts, jobs, progressUpdates, shutdown)
	if len(sum.SuccessList) > 0 || len(sum.FailedList) > 0 {
		if err := writeRunReport(opts.SaveBaseDir, sum.RunID, sum.SuccessList, sum.FailedList); err != nil {
			slog.Warn("could not write run report", "error", err)
		} else {
			slog.Info("run report saved", "run_id", sum.RunID, "success", len(sum.SuccessList), "failed", len(sum.FailedList))
		}
	}
	slog.Info("crawl done", "run_id", sum.RunID, "success", sum.Success, "failed", sum.Failed, "points", sum.Points)
	done <- Done{}
}

func runJobResultCollector(results <-chan JobResult, mu *sync.Mutex, sum *Summary, pointsPerDomain map[string]int) {
	for r := range results {
		mu.Lock()
		if r.Ok {
			sum.Success++
			sum.SuccessList = appendSuccess(sum.SuccessList, r.Domain)
			sum.Points += r.Points
			pointsPerDomain[r.Domain] += r.Points
		} else {
			sum.Failed++
			sum.FailedList = append(sum.FailedList, failedEntry{Domain: r.Domain, DateRange: r.DateRange, Reason: r.Reason})
		}
		mu.Unlock()
	}
}

// RunParallel runs the jobs on a pool of workers sharing the token pool.
// It returns when every job is processed or shutdown is closed.
func RunParallel(
	fetcher Fetcher,
	opts Options,
	jobs []Job,
	progressUpdates chan<- ProgressUpdate,
	shutdown <-chan struct{},
) Summary {
	sum := Summary{RunID: newRunID()}

	logs := make(chan string, 2048)
	logger := slogx.NewChanLogger(logs, opts.LogLevel).With("run_id", sum.RunID)
	errs := make(chan errorEntry, 64)
	var logWg sync.WaitGroup
	logWg.Add(1)
	go func() {
		defer logWg.Done()
		runLogWriter(logs)
	}()
	var errWg sync.WaitGroup
	errWg.Add(1)
	go func() {
		defer errWg.Done()
		runErrorHandler(errs, logger)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()

	p, fanIn := fetcher.(interface{ SetLogFunc(ologyapi.LogFunc) })
	if fanIn {
		p.SetLogFunc(func(msg string) { logger.Debug(msg) })
	}
	var hbWg sync.WaitGroup
	// Everything that logs through logs must be stopped before it is closed.
	defer func() {
		cancel()
		hbWg.Wait()
		if fanIn {
			p.SetLogFunc(nil)
		}
		close(errs)
		errWg.Wait()
		close(logs)
		logWg.Wait()
	}()

	pending := make(chan Job, len(jobs))
	for _, j := range jobs {
		pending <- j
	}
	close(pending)

	tokenPool := opts.tokenPool()
	workers := opts.workers()

	results := make(chan JobResult, len(jobs)+64)
	var mu sync.Mutex
	pointsPerDomain := make(map[string]int)
	var resWg sync.WaitGroup
	resWg.Add(1)
	go func() {
		defer resWg.Done()
		runJobResultCollector(results, &mu, &sum, pointsPerDomain)
	}()

	heartbeat := opts.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	hbWg.Add(1)
	go func() {
		defer hbWg.Done()
		runHeartbeat(ctx, heartbeat, len(jobs), &mu, &sum, logger)
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-shutdown:
					return
				case job, ok := <-pending:
					if !ok {
						return
					}
					token := <-tokenPool
					r := processJob(ctx, fetcher, opts, job, token, logger)
					tokenPool <- token

					if !r.Ok {
						select {
						case errs <- errorEntry{Domain: job.Domain, Reason: r.Reason}:
						default:
						}
					} else {
						select {
						case progressUpdates <- ProgressUpdate{Domain: job.Domain, Date: time.Now().UTC().Format(dateLayout)}:
						default:
							logger.Warn("progress channel full, skip update", "domain", job.Domain)
						}
					}
					results <- r
				}
			}
		}()
	}
	wg.Wait()
	close(results)
	resWg.Wait()
	cancel()
	hbWg.Wait()

	if opts.Metrics != nil {
		opts.Metrics.LastCrawlPoints.Set(float64(sum.Points))
	}
	logger.Info("summary", "total_points", sum.Points, "success", sum.Success, "failed", sum.Failed)
	if len(pointsPerDomain) > 0 {
		domains := make([]string, 0, len(pointsPerDomain))
		for d := range pointsPerDomain {
			domains = append(domains, d)
		}
		sort.Strings(domains)
		for _, d := range domains {
			logger.Debug("summary domain", "domain", d, "points", pointsPerDomain[d])
		}
	}
	if len(sum.FailedList) > 0 {
		logger.Info("summary failed", "count", len(sum.FailedList), "reasons", joinFailedReasons(sum.FailedList))
	}
	return sum
}

// processJob fetches, analyzes and saves one domain.
func processJob(ctx context.Context, fetcher Fetcher, opts Options, job Job, token string, logger *slog.Logger) JobResult {
	prefix := tokenPrefix(token)
	dateRange := job.DateRange()
	fail := func(reason string) JobResult {
		logger.Error("crawl fail", "domain", job.Domain, "date_range", dateRange, "reason", reason)
		opts.observeJob("failed")
		return JobResult{Ok: false, Domain: job.Domain, DateRange: dateRange, Reason: reason, TokenPrefix: prefix}
	}

	s, err := fetcher.FetchHistoryWithToken(ctx, ologyapi.HistoryQuery{
		Domain:          job.Domain,
		From:            job.From,
		To:              job.To,
		SubdomainRollup: opts.SubdomainRollup,
	}, token)
	if err != nil {
		return fail(err.Error())
	}
	if len(s) == 0 {
		return fail("no data")
	}

	a, err := trend.Analyze(s)
	if opts.Metrics != nil {
		opts.Metrics.ObserveAnalysis(err)
	}
	if err != nil {
		return fail(fmt.Sprintf("analyze: %v", err))
	}

	if opts.Saver != nil && opts.SaveBaseDir != "" {
		p, err := SavePacket(opts.SaveBaseDir, opts.Saver, job, a.Rows(s))
		if err != nil {
			return fail(fmt.Sprintf("save: %v", err))
		}
		logger.Debug("packet saved", "domain", job.Domain, "path", p, "rows", len(s))
	}

	logger.Info("crawl ok", "domain", job.Domain, "date_range", dateRange, "points", len(s),
		"kept", len(a.Filtered), "r", a.Fit.R, "m", a.Fit.M, "b", a.Fit.B)
	opts.observeJob("ok")
	return JobResult{Ok: true, Domain: job.Domain, DateRange: dateRange, Points: len(s), Fit: a.Fit, TokenPrefix: prefix}
}

func (o Options) observeJob(status string) {
	if o.Metrics != nil {
		o.Metrics.CrawlJobs.WithLabelValues(status).Inc()
	}
}

func tokenPrefix(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
