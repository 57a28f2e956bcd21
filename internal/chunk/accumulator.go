package chunk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pagelake/pagelake/internal/domain"
	"github.com/parquet-go/parquet-go"
)

// Accumulator performs idempotent upserts-by-id into local chunk files.
// A per-filename mutex serializes the read-modify-write, so concurrent
// events for the same chunk cannot lose each other's updates while
// different organizations still proceed in parallel.
type Accumulator struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAccumulator creates an Accumulator writing under dir.
func NewAccumulator(dir string) *Accumulator {
	return &Accumulator{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}
}

// Accumulate merges the update into the named chunk file and returns the
// post-merge row count. A row with a matching document id is overwritten in
// its data and updated_at columns only; otherwise a new row is appended.
func (a *Accumulator) Accumulate(ctx context.Context, filename string, update *domain.PageUpdate) (int, error) {
	lock := a.lockFor(filename)
	lock.Lock()
	defer lock.Unlock()

	path := filepath.Join(a.dir, filename)

	rows, err := readRows(path)
	if err != nil {
		return 0, err
	}

	merged := false
	for i := range rows {
		if rows[i].ID == update.DocumentID {
			rows[i].Data = update.Content
			rows[i].UpdatedAt = update.ObservedAt.Format(time.RFC3339)
			merged = true
			break
		}
	}
	if !merged {
		rows = append(rows, domain.RowFromUpdate(update))
	}

	if err := writeRows(path, rows); err != nil {
		return 0, err
	}

	return len(rows), nil
}

func (a *Accumulator) lockFor(filename string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	lock, ok := a.locks[filename]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[filename] = lock
	}
	return lock
}

func readRows(path string) ([]domain.ChunkRow, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to stat chunk file", err)
	}

	rows, err := parquet.ReadFile[domain.ChunkRow](path)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to read chunk file", err)
	}
	return rows, nil
}

// writeRows serializes the table back to the same filename. The file handle
// is synced and closed on every path so a partially written footer never
// survives a clean return.
func writeRows(path string, rows []domain.ChunkRow) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to create chunk file", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to close chunk file", cerr)
		}
	}()

	writer := parquet.NewGenericWriter[domain.ChunkRow](f)
	if _, werr := writer.Write(rows); werr != nil {
		writer.Close()
		return domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to write chunk rows", werr)
	}
	if werr := writer.Close(); werr != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to finalize chunk file", werr)
	}
	if serr := f.Sync(); serr != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to sync chunk file", serr)
	}
	return nil
}
