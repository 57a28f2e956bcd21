package chunk

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/pagelake/pagelake/internal/domain"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUpdate(t *testing.T, url, org, content string) *domain.PageUpdate {
	t.Helper()
	update, err := domain.NewPageUpdate(url, org, content, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return update
}

func readChunk(t *testing.T, path string) []domain.ChunkRow {
	t.Helper()
	rows, err := parquet.ReadFile[domain.ChunkRow](path)
	require.NoError(t, err)
	return rows
}

func TestAccumulate_NewFile(t *testing.T) {
	dir := t.TempDir()
	acc := NewAccumulator(dir)

	count, err := acc.Accumulate(context.Background(), "acme_corp_chunk_1.parquet",
		mustUpdate(t, "https://x.test/my-title-42", "Acme Corp", "hello"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rows := readChunk(t, dir+"/acme_corp_chunk_1.parquet")
	require.Len(t, rows, 1)
	assert.Equal(t, "42", rows[0].ID)
	assert.Equal(t, "my", rows[0].Title)
	assert.Equal(t, "Acme Corp", rows[0].OrgName)
	assert.Equal(t, "hello", rows[0].Data)
}

func TestAccumulate_UpsertSameID(t *testing.T) {
	dir := t.TempDir()
	acc := NewAccumulator(dir)
	ctx := context.Background()

	_, err := acc.Accumulate(ctx, "acme_chunk_1.parquet",
		mustUpdate(t, "https://x.test/my-title-42", "Acme", "first"))
	require.NoError(t, err)

	second, err := domain.NewPageUpdate("https://x.test/my-title-42", "Acme", "second",
		time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	count, err := acc.Accumulate(ctx, "acme_chunk_1.parquet", second)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "re-delivery of the same id is an update, not a duplicate row")

	rows := readChunk(t, dir+"/acme_chunk_1.parquet")
	require.Len(t, rows, 1)
	assert.Equal(t, "second", rows[0].Data)
	assert.Equal(t, "2026-03-02T08:00:00Z", rows[0].UpdatedAt)
}

func TestAccumulate_DistinctIDs(t *testing.T) {
	dir := t.TempDir()
	acc := NewAccumulator(dir)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		count, err := acc.Accumulate(ctx, "acme_chunk_1.parquet",
			mustUpdate(t, fmt.Sprintf("https://x.test/page-title-%d", i), "Acme", "body"))
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	rows := readChunk(t, dir+"/acme_chunk_1.parquet")
	assert.Len(t, rows, 5)
}

func TestAccumulate_IncrementalMatchesBatch(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	ctx := context.Background()

	updates := []*domain.PageUpdate{
		mustUpdate(t, "https://x.test/alpha-doc-1", "Acme", "a"),
		mustUpdate(t, "https://x.test/beta-doc-2", "Acme", "b"),
		mustUpdate(t, "https://x.test/alpha-doc-1", "Acme", "a2"),
		mustUpdate(t, "https://x.test/gamma-doc-3", "Acme", "c"),
	}

	accA := NewAccumulator(dirA)
	for _, u := range updates {
		_, err := accA.Accumulate(ctx, "acme_chunk_1.parquet", u)
		require.NoError(t, err)
	}

	// Same events replayed against a fresh accumulator.
	accB := NewAccumulator(dirB)
	for _, u := range updates {
		_, err := accB.Accumulate(ctx, "acme_chunk_1.parquet", u)
		require.NoError(t, err)
	}

	rowsA := readChunk(t, dirA+"/acme_chunk_1.parquet")
	rowsB := readChunk(t, dirB+"/acme_chunk_1.parquet")

	sortRows := func(rows []domain.ChunkRow) {
		sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	}
	sortRows(rowsA)
	sortRows(rowsB)
	assert.Equal(t, rowsA, rowsB)
	assert.Len(t, rowsA, 3)
}

func TestAccumulate_ConcurrentSameChunk(t *testing.T) {
	dir := t.TempDir()
	acc := NewAccumulator(dir)
	ctx := context.Background()

	const n = 20
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			_, err := acc.Accumulate(ctx, "acme_chunk_1.parquet",
				mustUpdate(t, fmt.Sprintf("https://x.test/page-title-%d", i), "Acme", "body"))
			errs <- err
		}(i)
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	rows := readChunk(t, dir+"/acme_chunk_1.parquet")
	assert.Len(t, rows, n, "serialized accumulation must not lose concurrent updates")
}

func TestAccumulate_MissingDirectory(t *testing.T) {
	acc := NewAccumulator("/nonexistent/pagelake")

	_, err := acc.Accumulate(context.Background(), "acme_chunk_1.parquet",
		mustUpdate(t, "https://x.test/my-title-42", "Acme", "hello"))
	require.Error(t, err)

	var domerr *domain.DomainError
	require.ErrorAs(t, err, &domerr)
	assert.Equal(t, domain.ErrCodeStorage, domerr.Code)
}
