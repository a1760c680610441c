package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/vidhub/internal/api/upload"
	"github.com/aussiebroadwan/vidhub/pkg/slogx"
)

// discardUploads removes objects stored for an operation that then failed.
// Failures are logged and otherwise ignored; the caller's error wins.
func discardUploads(ctx context.Context, u upload.Uploader, uploaded ...upload.Result) {
	ctx = context.WithoutCancel(ctx)
	log := slogx.FromContext(ctx)

	for _, res := range uploaded {
		if res.Key == "" {
			continue
		}
		if err := u.Delete(ctx, res.Key); err != nil {
			log.Warn("failed to remove orphaned upload", slog.String("key", res.Key), slog.Any("error", err))
		}
	}
}
