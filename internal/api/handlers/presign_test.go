package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pagelake/pagelake/internal/domain"
	"github.com/pagelake/pagelake/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPresignService struct {
	mock.Mock
}

func (m *MockPresignService) Sign(ctx context.Context, input service.SignInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func TestPresignHandler_SignURL(t *testing.T) {
	svc := new(MockPresignService)
	svc.On("Sign", mock.Anything, service.SignInput{
		Bucket:        "my-bucket",
		Key:           "chunks/acme_chunk_1.parquet",
		Operation:     "put",
		ExpirySeconds: 600,
	}).Return("https://s3.example.com/signed", nil)

	handler := NewPresignHandler(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/sign-url?bucket_name=my-bucket&object_key=chunks/acme_chunk_1.parquet&operation=put&expiration=600", nil)
	rec := httptest.NewRecorder()
	handler.SignURL(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data SignURLResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://s3.example.com/signed", resp.Data.URL)
	svc.AssertExpectations(t)
}

func TestPresignHandler_SignURL_ValidationFailure(t *testing.T) {
	svc := new(MockPresignService)
	svc.On("Sign", mock.Anything, mock.Anything).Return("", domain.ErrInvalidOperation)

	handler := NewPresignHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/sign-url?bucket_name=b&object_key=k&operation=delete", nil)
	rec := httptest.NewRecorder()
	handler.SignURL(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPresignHandler_SignURL_BadExpiration(t *testing.T) {
	svc := new(MockPresignService)
	handler := NewPresignHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/sign-url?bucket_name=b&object_key=k&expiration=soon", nil)
	rec := httptest.NewRecorder()
	handler.SignURL(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Sign")
}
