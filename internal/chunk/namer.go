// Package chunk implements the parquet accumulation core: resolving the
// active chunk file for a tenant, upserting page updates into it, and
// flushing it to remote storage once it crosses the row threshold.
package chunk

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pagelake/pagelake/internal/domain"
	"github.com/pagelake/pagelake/internal/logging"
)

// Lister counts previously flushed chunks under a remote key prefix.
type Lister interface {
	CountChunks(ctx context.Context, prefix string) (int, error)
}

// Resolver maps an organization to its active local chunk filename. The
// in-memory registry is the source of truth; the local directory is the
// cold-start recovery path and remote listing is only consulted when no
// local chunk exists.
type Resolver struct {
	dir      string
	basePath string
	lister   Lister
	now      func() time.Time

	mu     sync.Mutex
	active map[string]string
}

// NewResolver creates a Resolver over the given chunk directory. basePath is
// the remote key prefix chunks are flushed under.
func NewResolver(dir, basePath string, lister Lister) *Resolver {
	return &Resolver{
		dir:      dir,
		basePath: basePath,
		lister:   lister,
		now:      time.Now,
		active:   make(map[string]string),
	}
}

// Resolve returns the active chunk filename for the organization. A remote
// listing failure degrades to chunk index 1 rather than blocking ingestion.
func (r *Resolver) Resolve(ctx context.Context, org string) string {
	prefix := domain.NormalizeOrg(org)

	r.mu.Lock()
	if name, ok := r.active[prefix]; ok {
		r.mu.Unlock()
		return name
	}
	r.mu.Unlock()

	name := r.scanLocal(prefix)
	if name == "" {
		name = r.mintFromRemote(ctx, prefix)
	}

	// First resolution wins if two events race on a cold registry.
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.active[prefix]; ok {
		return existing
	}
	r.active[prefix] = name
	return name
}

// Retire drops the registry entry for a flushed chunk so the next event for
// that organization mints a fresh one.
func (r *Resolver) Retire(filename string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for prefix, active := range r.active {
		if active == filename {
			delete(r.active, prefix)
			return
		}
	}
}

func (r *Resolver) scanLocal(prefix string) string {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return ""
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, prefix+"_chunk_") && strings.HasSuffix(name, ".parquet") {
			return name
		}
	}
	return ""
}

func (r *Resolver) mintFromRemote(ctx context.Context, prefix string) string {
	remotePrefix := fmt.Sprintf("%s/%s/%s_chunk_", r.basePath, r.now().UTC().Format("2006-01"), prefix)

	count, err := r.lister.CountChunks(ctx, remotePrefix)
	if err != nil {
		logging.L().Warn().Err(err).Str("prefix", prefix).
			Msg("remote chunk listing failed, defaulting to chunk index 1")
		return prefix + "_chunk_1.parquet"
	}

	return fmt.Sprintf("%s_chunk_%d.parquet", prefix, count+1)
}
