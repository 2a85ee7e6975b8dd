package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/devlabsgt/backend/internal/domain/project"
	"github.com/devlabsgt/backend/internal/platform/envutil"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

// Upload policy for evidence files.
const (
	MaxEvidenceFiles    = 10
	MaxEvidenceFileSize = 5 << 20
)

var allowedEvidenceTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"application/pdf": {},
}

// EvidenceTypeOf classifies an upload by MIME type: anything image/*
// is an image, the rest are documents.
func EvidenceTypeOf(contentType string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		return project.EvidenceTypeImage
	}
	return project.EvidenceTypeDocument
}

// ValidateEvidenceUpload enforces the file-count, size and MIME policy
// before any byte reaches the bucket.
func ValidateEvidenceUpload(count int, size int64, contentType string) error {
	if count > MaxEvidenceFiles {
		return fmt.Errorf("at most %d files per upload", MaxEvidenceFiles)
	}
	if size > MaxEvidenceFileSize {
		return fmt.Errorf("file exceeds %d bytes", MaxEvidenceFileSize)
	}
	if _, ok := allowedEvidenceTypes[strings.ToLower(strings.TrimSpace(contentType))]; !ok {
		return fmt.Errorf("unsupported content type %q", contentType)
	}
	return nil
}

type BucketService interface {
	UploadFile(ctx context.Context, key string, file io.Reader) error
	DeleteFile(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucketName    string
	cdnDomain     string
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
	serviceLog := log.With("service", "BucketService")
	bucket := envutil.Get("GCS_BUCKET_NAME", "")
	if bucket == "" {
		return nil, fmt.Errorf("missing env var GCS_BUCKET_NAME")
	}
	cdnDomain := envutil.Get("CDN_DOMAIN", "")
	saPath := envutil.Get("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")

	ctx := context.Background()
	var (
		stClient *storage.Client
		err      error
	)
	if saPath != "" {
		stClient, err = storage.NewClient(ctx, option.WithCredentialsFile(saPath), option.WithScopes(storage.ScopeReadWrite))
	} else {
		stClient, err = storage.NewClient(ctx, option.WithScopes(storage.ScopeReadWrite))
	}
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		bucketName:    bucket,
		cdnDomain:     cdnDomain,
	}, nil
}

func (bs *bucketService) UploadFile(ctx context.Context, key string, file io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	w := bs.storageClient.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer for %q: %w", key, err)
	}
	return nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := bs.storageClient.Bucket(bs.bucketName).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

func (bs *bucketService) GetPublicURL(key string) string {
	if bs.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", bs.cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucketName, key)
}
