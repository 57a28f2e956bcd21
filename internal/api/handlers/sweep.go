package handlers

import (
	"context"
	"net/http"

	"github.com/pagelake/pagelake/internal/api"
	"github.com/pagelake/pagelake/internal/sweep"
)

type SweepRunner interface {
	Run(ctx context.Context) (*sweep.Report, error)
}

type SweepHandler struct {
	runner SweepRunner
}

func NewSweepHandler(runner SweepRunner) *SweepHandler {
	return &SweepHandler{runner: runner}
}

// Trigger handles POST /sweep: one synchronous sweep pass.
func (h *SweepHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	report, err := h.runner.Run(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, report)
}
