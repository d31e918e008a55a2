// Package s3 archives raw monitor frames to S3-compatible object storage.
// The monitor keeps roughly a day of history online; the archive is what
// makes replays and backfills possible after that window closes.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/couchcryptid/quake-data-etl/internal/config"
	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

var jstZone = time.FixedZone("JST", 9*60*60)

// Archiver stores frame images in a bucket, one object per frame.
type Archiver struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewArchiver creates an S3 client for the configured archive bucket.
func NewArchiver(cfg *config.Config, logger *slog.Logger) (*Archiver, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}
	return &Archiver{client: client, bucket: cfg.MinioBucket, logger: logger}, nil
}

// EnsureBucket creates the archive bucket if it does not exist yet.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %q: %w", a.bucket, err)
	}
	a.logger.Info("archive bucket created", "bucket", a.bucket)
	return nil
}

// Store writes one frame's raw image bytes. Writes are idempotent: a frame
// that was already archived by an earlier run is left untouched, so the
// pipeline can retry a cycle without producing duplicates.
func (a *Archiver) Store(ctx context.Context, frame domain.Frame) error {
	key := objectKey(frame)

	_, err := a.client.StatObject(ctx, a.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		a.logger.Debug("frame already archived", "key", key)
		return nil
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("check archived frame %q: %w", key, err)
	}

	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(frame.Raw), int64(len(frame.Raw)),
		minio.PutObjectOptions{ContentType: "image/gif"})
	if err != nil {
		return fmt.Errorf("archive frame %q: %w", key, err)
	}
	a.logger.Debug("frame archived", "key", key, "bytes", len(frame.Raw))
	return nil
}

// objectKey mirrors the monitor's own naming so an archived day lists in
// publication order under its kind and depth prefix.
func objectKey(frame domain.Frame) string {
	t := frame.Time.In(jstZone)
	depth := "s"
	if frame.Borehole {
		depth = "b"
	}
	return fmt.Sprintf("frames/%s_%s/%s/%s.gif",
		frame.Kind, depth, t.Format("2006/01/02"), t.Format("20060102150405"))
}
