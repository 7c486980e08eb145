package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/denisAlshanov/reelgrab/internal/models"
	"github.com/denisAlshanov/reelgrab/internal/utils"
)

// Archiver copies delivered videos into a bucket.
type Archiver struct {
	storage StorageInterface
	now     func() time.Time
}

func NewArchiver(storage StorageInterface) *Archiver {
	return &Archiver{
		storage: storage,
		now:     time.Now,
	}
}

// Archive uploads the file at path and returns its object key.
func (a *Archiver) Archive(ctx context.Context, platform models.Platform, path string, metadata map[string]string) (string, error) {
	key := ArchiveKey(platform, path, a.now())

	file, err := os.Open(path)
	if err != nil {
		return "", utils.NewArchiveError(key, fmt.Errorf("failed to open file: %w", err))
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", utils.NewArchiveError(key, fmt.Errorf("failed to stat file: %w", err))
	}

	meta := map[string]string{
		"platform":  string(platform),
		"file_name": filepath.Base(path),
	}
	for k, v := range metadata {
		meta[k] = v
	}

	if err := a.storage.UploadWithMetadata(ctx, key, file, info.Size(), contentTypeFor(path), meta); err != nil {
		return "", utils.NewArchiveError(key, err)
	}

	return key, nil
}

// ArchiveKey builds "<platform>/<yyyy>/<mm>/<dd>/<uuid><ext>".
func ArchiveKey(platform models.Platform, path string, at time.Time) string {
	prefix := string(platform)
	if prefix == "" {
		prefix = "other"
	}
	ext := strings.ToLower(filepath.Ext(path))
	return fmt.Sprintf("%s/%s/%s%s", prefix, at.UTC().Format("2006/01/02"), uuid.New().String(), ext)
}

func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "video/mp4"
}
