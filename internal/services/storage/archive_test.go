package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/denisAlshanov/reelgrab/internal/models"
	"github.com/denisAlshanov/reelgrab/internal/utils"
)

type uploadCall struct {
	key         string
	body        string
	size        int64
	contentType string
	metadata    map[string]string
}

type mockStorage struct {
	uploads []uploadCall
	err     error
}

func (m *mockStorage) BucketName() string { return "test-bucket" }

func (m *mockStorage) UploadWithMetadata(ctx context.Context, key string, data io.ReadSeeker, size int64, contentType string, metadata map[string]string) error {
	if m.err != nil {
		return m.err
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.uploads = append(m.uploads, uploadCall{
		key:         key,
		body:        string(body),
		size:        size,
		contentType: contentType,
		metadata:    metadata,
	})
	return nil
}

func (m *mockStorage) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}

func TestArchiveKey(t *testing.T) {
	at := time.Date(2026, 3, 7, 23, 30, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^tiktok/2026/03/07/[0-9a-f-]{36}\.mp4$`)

	key := ArchiveKey(models.PlatformTikTok, "/tmp/x/7301.MP4", at)
	if !pattern.MatchString(key) {
		t.Errorf("key = %q, does not match %s", key, pattern)
	}

	if other := ArchiveKey(models.PlatformTikTok, "/tmp/x/7301.mp4", at); other == key {
		t.Error("keys for the same file should be unique")
	}

	if key := ArchiveKey(models.PlatformUnknown, "a.webm", at); !regexp.MustCompile(`^other/`).MatchString(key) {
		t.Errorf("unknown platform key = %q", key)
	}
}

func TestArchiver_Archive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "C1abc.mp4")
	if err := os.WriteFile(path, []byte("video-bytes"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := &mockStorage{}
	archiver := NewArchiver(store)
	archiver.now = func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }

	key, err := archiver.Archive(context.Background(), models.PlatformInstagram, path, map[string]string{"chat_id": "42"})
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	if len(store.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(store.uploads))
	}
	up := store.uploads[0]
	if up.key != key {
		t.Errorf("uploaded key = %q, returned %q", up.key, key)
	}
	if up.body != "video-bytes" || up.size != int64(len("video-bytes")) {
		t.Errorf("body = %q size = %d", up.body, up.size)
	}
	if up.contentType != "video/mp4" {
		t.Errorf("content type = %q", up.contentType)
	}
	if up.metadata["platform"] != "instagram" || up.metadata["chat_id"] != "42" || up.metadata["file_name"] != "C1abc.mp4" {
		t.Errorf("metadata = %v", up.metadata)
	}
}

func TestArchiver_Errors(t *testing.T) {
	archiver := NewArchiver(&mockStorage{})
	_, err := archiver.Archive(context.Background(), models.PlatformTikTok, filepath.Join(t.TempDir(), "missing.mp4"), nil)
	if appErr, ok := utils.AsAppError(err); !ok || appErr.Code != utils.ErrorCodeArchiveFailed {
		t.Errorf("missing file: err = %v, want ARCHIVE_FAILED", err)
	}

	path := filepath.Join(t.TempDir(), "a.mp4")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	uploadErr := errors.New("access denied")
	archiver = NewArchiver(&mockStorage{err: uploadErr})
	_, err = archiver.Archive(context.Background(), models.PlatformTikTok, path, nil)
	if !errors.Is(err, uploadErr) {
		t.Errorf("upload failure: err = %v, want wrapped %v", err, uploadErr)
	}
}
