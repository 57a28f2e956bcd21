package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pagelake/pagelake/internal/api"
	"github.com/pagelake/pagelake/internal/service"
)

type PresignService interface {
	Sign(ctx context.Context, input service.SignInput) (string, error)
}

type PresignHandler struct {
	svc PresignService
}

func NewPresignHandler(svc PresignService) *PresignHandler {
	return &PresignHandler{svc: svc}
}

type SignURLResponse struct {
	URL string `json:"url"`
}

// SignURL handles GET /sign-url?bucket_name=&object_key=&operation=&expiration=
func (h *PresignHandler) SignURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	expiry := 0
	if raw := q.Get("expiration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "expiration must be an integer")
			return
		}
		expiry = parsed
	}

	url, err := h.svc.Sign(r.Context(), service.SignInput{
		Bucket:        q.Get("bucket_name"),
		Key:           q.Get("object_key"),
		Operation:     q.Get("operation"),
		ExpirySeconds: expiry,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SignURLResponse{URL: url})
}
