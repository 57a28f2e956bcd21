package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pagelake/pagelake/internal/api"
	"github.com/pagelake/pagelake/internal/service"
)

type IngestService interface {
	Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error)
}

type PageHandler struct {
	svc IngestService
}

func NewPageHandler(svc IngestService) *PageHandler {
	return &PageHandler{svc: svc}
}

type PageUpdateRequest struct {
	Data          string `json:"data"`
	URL           string `json:"url"`
	WorkspaceName string `json:"workspaceName"`
}

type PageUpdateResponse struct {
	ChunkFile    string `json:"chunk_file"`
	RowCount     int    `json:"row_count"`
	FlushPending bool   `json:"flush_pending"`
}

func (h *PageHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req PageUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		api.Error(w, http.StatusBadRequest, "url is required")
		return
	}
	if req.WorkspaceName == "" {
		api.Error(w, http.StatusBadRequest, "workspaceName is required")
		return
	}

	result, err := h.svc.Ingest(r.Context(), service.IngestInput{
		Data:          req.Data,
		URL:           req.URL,
		WorkspaceName: req.WorkspaceName,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, PageUpdateResponse{
		ChunkFile:    result.ChunkFile,
		RowCount:     result.RowCount,
		FlushPending: result.FlushPending,
	})
}
