package upload

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	s3infra "github.com/event-registration-api/internal/infrastructure/s3"
	"github.com/event-registration-api/internal/pkg/id"
)

// Service issues presigned S3 capabilities so clients move file bytes
// directly, keeping large payloads off the API.
type Service interface {
	PresignUpload(ctx context.Context, userID, fileName, contentType string) (*s3infra.PresignedUpload, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

type presigner interface {
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*s3infra.PresignedUpload, error)
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type service struct {
	store presigner
	ttl   time.Duration
}

type ServiceDeps struct {
	Store      presigner
	PresignTTL time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{store: deps.Store, ttl: deps.PresignTTL}
}

// PresignUpload scopes the object key under the caller's user id with a fresh
// name, so clients can never overwrite each other's files.
func (s *service) PresignUpload(ctx context.Context, userID, fileName, contentType string) (*s3infra.PresignedUpload, error) {
	key := fmt.Sprintf("users/%s/%s%s", userID, id.New(), strings.ToLower(filepath.Ext(fileName)))
	return s.store.PresignUpload(ctx, key, contentType, s.ttl)
}

func (s *service) PresignDownload(ctx context.Context, key string) (string, error) {
	return s.store.PresignDownload(ctx, key, s.ttl)
}
