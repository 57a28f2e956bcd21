package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pagelake/pagelake/internal/domain"
)

type PresignClient interface {
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
	PresignPut(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

const defaultExpirySeconds = 3600

// PresignService generates time-limited S3 upload/download URLs.
type PresignService struct {
	client PresignClient
}

func NewPresignService(client PresignClient) *PresignService {
	return &PresignService{client: client}
}

type SignInput struct {
	Bucket        string
	Key           string
	Operation     string
	ExpirySeconds int
}

// Sign validates the request and returns a presigned URL. Validation
// failures are rejected before any remote call is attempted.
func (s *PresignService) Sign(ctx context.Context, input SignInput) (string, error) {
	if input.Bucket == "" {
		return "", domain.ErrEmptyBucket
	}
	if input.Key == "" {
		return "", domain.ErrEmptyObjectKey
	}

	operation := strings.ToLower(input.Operation)
	if operation == "" {
		operation = "get"
	}
	if operation != "get" && operation != "put" {
		return "", domain.ErrInvalidOperation
	}

	expiry := time.Duration(input.ExpirySeconds) * time.Second
	if input.ExpirySeconds <= 0 {
		expiry = defaultExpirySeconds * time.Second
	}

	var (
		url string
		err error
	)
	switch operation {
	case "put":
		url, err = s.client.PresignPut(ctx, input.Bucket, input.Key, expiry)
	default:
		url, err = s.client.PresignGet(ctx, input.Bucket, input.Key, expiry)
	}
	if err != nil {
		return "", fmt.Errorf("failed to presign %s url: %w", operation, err)
	}

	return url, nil
}
