package service

import (
	"context"
	"time"

	"github.com/pagelake/pagelake/internal/chunk"
	"github.com/pagelake/pagelake/internal/domain"
	"github.com/pagelake/pagelake/internal/logging"
	"github.com/pagelake/pagelake/internal/telemetry"
)

type ChunkResolver interface {
	Resolve(ctx context.Context, org string) string
}

type TableAccumulator interface {
	Accumulate(ctx context.Context, filename string, update *domain.PageUpdate) (int, error)
}

type Flusher interface {
	ShouldFlush(rowCount int) bool
	MaybeFlush(ctx context.Context, filename string, rowCount int) (chunk.FlushOutcome, error)
}

// IngestService merges one page update into its tenant's active chunk and
// kicks off an asynchronous flush when the chunk crosses the row threshold.
type IngestService struct {
	resolver     ChunkResolver
	accumulator  TableAccumulator
	flusher      Flusher
	flushTimeout time.Duration
	now          func() time.Time
}

func NewIngestService(resolver ChunkResolver, accumulator TableAccumulator, flusher Flusher) *IngestService {
	return &IngestService{
		resolver:     resolver,
		accumulator:  accumulator,
		flusher:      flusher,
		flushTimeout: 60 * time.Second,
		now:          time.Now,
	}
}

type IngestInput struct {
	Data          string
	URL           string
	WorkspaceName string
}

type IngestResult struct {
	ChunkFile    string
	RowCount     int
	FlushPending bool
}

// Ingest resolves the tenant's active chunk, upserts the event into it and
// reports the post-merge row count. The flush itself runs in the background
// so the caller is never held up by the remote store.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	update, err := domain.NewPageUpdate(input.URL, input.WorkspaceName, input.Data, s.now())
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "service.ingest", telemetry.SpanAttributes{
		OrgName:   update.Organization,
		Operation: "ingest",
	})
	defer span.End()

	filename := s.resolver.Resolve(ctx, update.Organization)

	rowCount, err := s.accumulator.Accumulate(ctx, filename, update)
	if err != nil {
		return nil, err
	}

	pending := s.flusher.ShouldFlush(rowCount)
	if pending {
		go s.flushInBackground(filename, rowCount)
	}

	logging.L().Debug().
		Str("chunk", filename).
		Str("doc_id", update.DocumentID).
		Int("rows", rowCount).
		Bool("flush_pending", pending).
		Msg("page update accumulated")

	return &IngestResult{
		ChunkFile:    filename,
		RowCount:     rowCount,
		FlushPending: pending,
	}, nil
}

func (s *IngestService) flushInBackground(filename string, rowCount int) {
	ctx, cancel := context.WithTimeout(context.Background(), s.flushTimeout)
	defer cancel()

	if _, err := s.flusher.MaybeFlush(ctx, filename, rowCount); err != nil {
		logging.L().Error().Err(err).Str("chunk", filename).Msg("background flush failed")
		telemetry.CaptureError(ctx, err)
	}
}
