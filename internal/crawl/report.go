package crawl

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Summary is the outcome of one RunParallel call.
type Summary struct {
	RunID       string
	Success     int
	Failed      int
	Points      int
	SuccessList []string
	FailedList  []failedEntry
}

type failedEntry struct {
	Domain    string `json:"domain"`
	DateRange string `json:"date_range"`
	Reason    string `json:"reason"`
}

type successReport struct {
	RunID   string   `json:"run_id"`
	Domains []string `json:"domains"`
}

type failedReport struct {
	RunID  string        `json:"run_id"`
	Failed []failedEntry `json:"failed"`
}

func newRunID() string {
	return uuid.NewString()
}

func writeRunReport(saveBaseDir, runID string, successList []string, failedList []failedEntry) error {
	if err := os.MkdirAll(saveBaseDir, 0755); err != nil {
		return err
	}
	if len(successList) > 0 {
		p := filepath.Join(saveBaseDir, ".lastrun.success.json")
		if err := writeJSON(p, successReport{RunID: runID, Domains: successList}); err != nil {
			return err
		}
		slog.Info("report wrote success", "path", p, "domains", len(successList))
	}
	if len(failedList) > 0 {
		p := filepath.Join(saveBaseDir, ".lastrun.failed.json")
		if err := writeJSON(p, failedReport{RunID: runID, Failed: failedList}); err != nil {
			return err
		}
		slog.Info("report wrote failed", "path", p, "count", len(failedList))
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func appendSuccess(list []string, domain string) []string {
	for _, d := range list {
		if d == domain {
			return list
		}
	}
	return append(list, domain)
}

func joinFailedReasons(failedList []failedEntry) string {
	if len(failedList) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range failedList {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Domain)
		b.WriteString(": ")
		b.WriteString(f.Reason)
		if i >= 4 && len(failedList) > 6 {
			b.WriteString(fmt.Sprintf(" (+%d more)", len(failedList)-5))
			break
		}
	}
	return b.String()
}
