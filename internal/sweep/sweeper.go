// Package sweep implements the scheduled safety-net pass that re-uploads
// every chunk file still present on the local volume.
package sweep

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pagelake/pagelake/internal/domain"
	"github.com/pagelake/pagelake/internal/logging"
	"github.com/pagelake/pagelake/internal/storage"
)

// Uploader ships chunk bytes to remote storage.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename string) (storage.UploadResponse, error)
}

// Config controls Sweeper behavior.
type Config struct {
	// Concurrency bounds the parallel uploads. Default 10.
	Concurrency int
	// DeleteOnSuccess removes a local chunk after it is re-uploaded. Off by
	// default: the sweep is a re-upload pass, cleanup stays manual.
	DeleteOnSuccess bool
}

// FileResult is the outcome for one swept chunk file.
type FileResult struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// Report aggregates per-file outcomes of one sweep pass.
type Report struct {
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Files     []FileResult `json:"files"`
}

// Sweeper uploads every local chunk file through a bounded worker pool. One
// file's failure is recorded, never raised, and never aborts the others.
type Sweeper struct {
	dir      string
	uploader Uploader
	cfg      Config
}

// NewSweeper creates a Sweeper over the chunk directory.
func NewSweeper(dir string, uploader Uploader, cfg Config) *Sweeper {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}
	return &Sweeper{
		dir:      dir,
		uploader: uploader,
		cfg:      cfg,
	}
}

// Run sweeps the chunk directory once and returns the aggregated report.
// It fails only when the directory itself cannot be listed.
func (s *Sweeper) Run(ctx context.Context) (*Report, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to list chunk directory", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".parquet") {
			continue
		}
		files = append(files, entry.Name())
	}

	results := make(chan FileResult, len(files))
	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup

	for _, name := range files {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results <- s.sweepOne(ctx, name)
		}(name)
	}

	wg.Wait()
	close(results)

	report := &Report{Total: len(files), Files: make([]FileResult, 0, len(files))}
	for res := range results {
		if res.Status == "success" {
			report.Succeeded++
		} else {
			report.Failed++
		}
		report.Files = append(report.Files, res)
	}

	logging.L().Info().
		Int("total", report.Total).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("sweep pass complete")
	return report, nil
}

func (s *Sweeper) sweepOne(ctx context.Context, filename string) FileResult {
	path := filepath.Join(s.dir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Filename: filename, Status: "error", Error: err.Error()}
	}

	if _, err := s.uploader.Upload(ctx, data, filename); err != nil {
		logging.L().Warn().Err(err).Str("chunk", filename).Msg("sweep upload failed")
		return FileResult{Filename: filename, Status: "error", Error: err.Error()}
	}

	if s.cfg.DeleteOnSuccess {
		if err := os.Remove(path); err != nil {
			logging.L().Warn().Err(err).Str("chunk", filename).Msg("swept chunk could not be removed")
		}
	}

	return FileResult{Filename: filename, Status: "success"}
}
