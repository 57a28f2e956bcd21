package domain

import "time"

// ChunkRow is one row of a chunk table, keyed by document id. Repetitive
// metadata columns are dictionary-encoded and every page is snappy-compressed
// to keep chunk files compact for the remote consumer.
type ChunkRow struct {
	ID        string `parquet:"id,dict,snappy"`
	OrgName   string `parquet:"org_name,dict,snappy"`
	Title     string `parquet:"title,dict,snappy"`
	Data      string `parquet:"data,snappy"`
	UpdatedAt string `parquet:"updated_at,snappy"`
	URL       string `parquet:"url,dict,snappy"`
}

// RowFromUpdate converts a PageUpdate into its chunk-table row.
func RowFromUpdate(u *PageUpdate) ChunkRow {
	return ChunkRow{
		ID:        u.DocumentID,
		OrgName:   u.Organization,
		Title:     u.Title,
		Data:      u.Content,
		UpdatedAt: u.ObservedAt.Format(time.RFC3339),
		URL:       u.SourceURL,
	}
}
