package chunk

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pagelake/pagelake/internal/domain"
	"github.com/pagelake/pagelake/internal/logging"
	"github.com/pagelake/pagelake/internal/storage"
)

// Uploader ships chunk bytes to remote storage.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename string) (storage.UploadResponse, error)
}

// FlushOutcome reports what MaybeFlush did.
type FlushOutcome struct {
	// Triggered is true when the row count exceeded the threshold.
	Triggered bool
	// Uploaded is true when the remote store acknowledged the chunk.
	Uploaded bool
	Response storage.UploadResponse
}

// FlushPolicy retires a chunk to remote storage once its row count strictly
// exceeds the threshold. The local file is deleted only after a confirmed
// successful upload; on failure it stays behind for the sweep job to retry.
type FlushPolicy struct {
	dir       string
	threshold int
	uploader  Uploader
	resolver  *Resolver
}

// NewFlushPolicy creates a FlushPolicy. resolver may be nil when no registry
// entry needs retiring (as in tests).
func NewFlushPolicy(dir string, threshold int, uploader Uploader, resolver *Resolver) *FlushPolicy {
	return &FlushPolicy{
		dir:       dir,
		threshold: threshold,
		uploader:  uploader,
		resolver:  resolver,
	}
}

// ShouldFlush reports whether a chunk with the given row count is due.
func (p *FlushPolicy) ShouldFlush(rowCount int) bool {
	return rowCount > p.threshold
}

// MaybeFlush uploads and removes the chunk when rowCount exceeds the
// threshold. A table of exactly threshold rows is left alone.
func (p *FlushPolicy) MaybeFlush(ctx context.Context, filename string, rowCount int) (FlushOutcome, error) {
	if !p.ShouldFlush(rowCount) {
		return FlushOutcome{}, nil
	}

	path := filepath.Join(p.dir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		return FlushOutcome{Triggered: true},
			domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to read chunk for flush", err)
	}

	resp, err := p.uploader.Upload(ctx, data, filename)
	if err != nil {
		logging.L().Warn().Err(err).Str("chunk", filename).Int("rows", rowCount).
			Msg("flush upload failed, leaving chunk for sweep")
		return FlushOutcome{Triggered: true}, err
	}

	if err := os.Remove(path); err != nil {
		logging.L().Warn().Err(err).Str("chunk", filename).
			Msg("flushed chunk could not be removed locally")
	}
	if p.resolver != nil {
		p.resolver.Retire(filename)
	}

	logging.L().Info().Str("chunk", filename).Int("rows", rowCount).Msg("chunk flushed to remote storage")
	return FlushOutcome{Triggered: true, Uploaded: true, Response: resp}, nil
}
