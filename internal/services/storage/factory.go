package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/denisAlshanov/reelgrab/internal/config"
	"github.com/denisAlshanov/reelgrab/internal/utils"
)

// NewStorage creates S3 storage and probes the bucket once. An unreachable
// bucket is logged, not fatal: archiving is best-effort.
func NewStorage(cfg *config.S3Config) (StorageInterface, error) {
	storage, err := NewS3Storage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 storage: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := storage.Exists(ctx, "health-check-test"); err != nil {
		utils.LogWarn(ctx, "Archive bucket is not reachable", utils.Fields{
			"bucket":   cfg.BucketName,
			"endpoint": cfg.EndpointURL,
			"error":    err.Error(),
		})
	} else {
		utils.LogInfo(ctx, "Archive storage ready", utils.Fields{
			"bucket":   cfg.BucketName,
			"endpoint": cfg.EndpointURL,
		})
	}

	return storage, nil
}
