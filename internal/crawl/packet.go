package crawl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ology/internal/model"
	"ology/internal/saver"
)

// PacketPath returns {base}/{domain}/{domain}_{from}_to_{to}.{ext}.
func PacketPath(baseDir, ext string, job Job) string {
	name := safeName(job.Domain)
	file := fmt.Sprintf("%s_%s_to_%s.%s", name, job.From.Format(dateLayout), job.To.Format(dateLayout), ext)
	return filepath.Join(baseDir, name, file)
}

func safeName(domain string) string {
	return strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(domain)
}

// SavePacket writes the rows of one job with s and returns the file path.
func SavePacket(baseDir string, s saver.PacketSaver, job Job, rows []model.TrendRow) (string, error) {
	p := PacketPath(baseDir, s.Extension(), job)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("create folder %s: %w", filepath.Dir(p), err)
	}
	if err := s.Save(rows, p); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, nil
}
