package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	domainagg "github.com/devlabsgt/backend/internal/domain/aggregates"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

type fakeBucket struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
	failOn   string
}

func (f *fakeBucket) UploadFile(_ context.Context, key string, _ io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && strings.Contains(key, f.failOn) {
		return errors.New("upload refused")
	}
	f.uploaded = append(f.uploaded, key)
	return nil
}

func (f *fakeBucket) DeleteFile(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBucket) GetPublicURL(key string) string {
	return "https://cdn.example.org/" + key
}

func evidenceFile(name, contentType string, size int64) EvidenceFile {
	return EvidenceFile{
		Filename:    name,
		ContentType: contentType,
		Size:        size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("data")), nil
		},
	}
}

func newTestProjectService(t *testing.T, bucket BucketService) ProjectService {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewProjectService(log, nil, nil, nil, bucket)
}

func TestEvidenceOpsRejectDisabledStorage(t *testing.T) {
	svc := newTestProjectService(t, nil)

	files := []EvidenceFile{evidenceFile("a.png", "image/png", 100)}
	_, err := svc.UploadEvidences(context.Background(), uuid.New(), files)
	if err == nil {
		t.Fatalf("expected error with storage disabled")
	}
	if got := domainagg.CodeOf(err); got != domainagg.CodeRetryable {
		t.Fatalf("expected retryable code, got %q", got)
	}

	if err := svc.RemoveEvidence(context.Background(), uuid.New(), uuid.New()); err == nil {
		t.Fatalf("expected error with storage disabled")
	}
}

func TestUploadEvidencesRejectsEmptyBatch(t *testing.T) {
	bucket := &fakeBucket{}
	svc := newTestProjectService(t, bucket)
	if _, err := svc.UploadEvidences(context.Background(), uuid.New(), nil); err == nil {
		t.Fatalf("expected error for empty batch")
	}
}

func TestUploadEvidencesRejectsTooManyFiles(t *testing.T) {
	bucket := &fakeBucket{}
	svc := newTestProjectService(t, bucket)

	files := make([]EvidenceFile, MaxEvidenceFiles+1)
	for i := range files {
		files[i] = evidenceFile("a.png", "image/png", 100)
	}
	if _, err := svc.UploadEvidences(context.Background(), uuid.New(), files); err == nil {
		t.Fatalf("expected error for oversized batch")
	}
	if len(bucket.uploaded) != 0 {
		t.Fatalf("expected no uploads, got %d", len(bucket.uploaded))
	}
}

func TestUploadEvidencesRejectsUnsupportedType(t *testing.T) {
	bucket := &fakeBucket{}
	svc := newTestProjectService(t, bucket)

	files := []EvidenceFile{
		evidenceFile("a.png", "image/png", 100),
		evidenceFile("b.mp4", "video/mp4", 100),
	}
	if _, err := svc.UploadEvidences(context.Background(), uuid.New(), files); err == nil {
		t.Fatalf("expected error for unsupported content type")
	}
	if len(bucket.uploaded) != 0 {
		t.Fatalf("expected no uploads, got %d", len(bucket.uploaded))
	}
}

func TestUploadEvidencesCleansUpAfterFailedUpload(t *testing.T) {
	bucket := &fakeBucket{failOn: "bad.png"}
	svc := newTestProjectService(t, bucket)

	files := []EvidenceFile{
		evidenceFile("ok.png", "image/png", 100),
		evidenceFile("bad.png", "image/png", 100),
	}
	if _, err := svc.UploadEvidences(context.Background(), uuid.New(), files); err == nil {
		t.Fatalf("expected upload error")
	}
	if len(bucket.deleted) == 0 {
		t.Fatalf("expected orphan cleanup to delete uploaded objects")
	}
}
