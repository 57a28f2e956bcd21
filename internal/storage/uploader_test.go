package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pagelake/pagelake/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upload_Success(t *testing.T) {
	var gotAuth, gotBucket, gotBasePath, gotFilename string
	var gotData []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotBucket = r.FormValue("bucket")
		gotBasePath = r.FormValue("base_path")

		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotData, err = io.ReadAll(file)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"path":"data/uploads/2026-03/acme_corp_chunk_1.parquet"}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		Endpoint: srv.URL,
		Bucket:   "pagelake-chunks",
		BasePath: "data/uploads",
		Token:    "secret-token",
	})

	resp, err := client.Upload(context.Background(), []byte("parquet-bytes"), "acme_corp_chunk_1.parquet")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "pagelake-chunks", gotBucket)
	assert.Equal(t, "data/uploads", gotBasePath)
	assert.Equal(t, "acme_corp_chunk_1.parquet", gotFilename)
	assert.Equal(t, []byte("parquet-bytes"), gotData)
	assert.Equal(t, "data/uploads/2026-03/acme_corp_chunk_1.parquet", resp["path"])
}

func TestClient_Upload_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{Endpoint: srv.URL, Bucket: "b", BasePath: "p"})

	_, err := client.Upload(context.Background(), []byte("x"), "chunk.parquet")
	require.Error(t, err)

	var domerr *domain.DomainError
	require.True(t, errors.As(err, &domerr))
	assert.Equal(t, domain.ErrCodeTransport, domerr.Code)
	assert.Contains(t, domerr.Message, "403")
	assert.Contains(t, domerr.Message, "bucket quota exceeded")
}

func TestClient_Upload_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(ClientConfig{Endpoint: srv.URL, Bucket: "b", BasePath: "p"})

	_, err := client.Upload(context.Background(), []byte("x"), "chunk.parquet")
	require.Error(t, err)

	var domerr *domain.DomainError
	require.True(t, errors.As(err, &domerr))
	assert.Equal(t, domain.ErrCodeTransport, domerr.Code)
}

func TestClient_CountChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pagelake-chunks", r.URL.Query().Get("bucket"))
		assert.Equal(t, "data/uploads/2026-03/acme_corp_chunk_", r.URL.Query().Get("prefix"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_files":3}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{Endpoint: srv.URL, Bucket: "pagelake-chunks"})

	count, err := client.CountChunks(context.Background(), "data/uploads/2026-03/acme_corp_chunk_")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestClient_CountChunks_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{Endpoint: srv.URL, Bucket: "b"})

	_, err := client.CountChunks(context.Background(), "prefix_")
	require.Error(t, err)

	var domerr *domain.DomainError
	require.True(t, errors.As(err, &domerr))
	assert.Equal(t, domain.ErrCodeTransport, domerr.Code)
}
