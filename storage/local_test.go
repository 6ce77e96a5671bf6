package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}

	reportID := uuid.New()
	content := `{"document_id":"doc-1","overall_score":83.30}`

	path, err := store.Upload(context.Background(), reportID, "doc-1", strings.NewReader(content))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasPrefix(path, reportID.String()[:2]+"/") {
		t.Errorf("path %q not sharded by report id prefix", path)
	}
	if !strings.HasSuffix(path, ".json") {
		t.Errorf("path %q missing .json suffix", path)
	}

	reader, err := store.Download(context.Background(), path)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if string(data) != content {
		t.Errorf("artifact content = %q, want %q", data, content)
	}

	if err := store.Delete(context.Background(), path); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Download(context.Background(), path); err == nil {
		t.Error("Download() after Delete() should fail")
	}
}

func TestLocalStorageDeleteMissingArtifact(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}

	if err := store.Delete(context.Background(), "ab/nonexistent.json"); err != nil {
		t.Errorf("Delete() of a missing artifact = %v, want nil", err)
	}
}

func TestLocalStorageCreatesBaseDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "reports")
	if _, err := NewLocalStorage(base); err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}
	if _, err := os.Stat(base); err != nil {
		t.Errorf("base directory not created: %v", err)
	}
}

func TestGenerateStoragePathSanitizesDocumentID(t *testing.T) {
	reportID := uuid.New()

	path := generateStoragePath(reportID, "contracts/2026 q1\\final")
	name := filepath.Base(path)
	if strings.ContainsAny(name, "/\\ ") {
		t.Errorf("document id not sanitized: %q", path)
	}
	if !strings.Contains(name, reportID.String()) {
		t.Errorf("path %q missing report id", path)
	}
}

func TestNewStorageFromEnv(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "local")
	t.Setenv("STORAGE_LOCAL_PATH", t.TempDir())

	store, err := NewStorageFromEnv()
	if err != nil {
		t.Fatalf("NewStorageFromEnv() error = %v", err)
	}
	if _, ok := store.(*LocalStorage); !ok {
		t.Errorf("storage type = %T, want *LocalStorage", store)
	}

	t.Setenv("STORAGE_TYPE", "ftp")
	if _, err := NewStorageFromEnv(); err == nil {
		t.Error("expected error for unknown storage type")
	}

	t.Setenv("STORAGE_TYPE", "s3")
	t.Setenv("AWS_S3_BUCKET", "")
	if _, err := NewStorageFromEnv(); err == nil {
		t.Error("expected error for s3 storage without a bucket")
	}
}
