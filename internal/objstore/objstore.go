// Package objstore ensures the platform's object storage exposes its
// well-known bucket with the expected anonymous-download policy.
package objstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// downloadPolicyTemplate grants anonymous read on every object in the bucket.
const downloadPolicyTemplate = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"AWS": ["*"]},
      "Action": ["s3:GetObject"],
      "Resource": ["arn:aws:s3:::%s/*"]
    }
  ]
}`

// BucketAdmin is the subset of the object-store client the initializer needs.
type BucketAdmin interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	SetBucketPolicy(ctx context.Context, bucket, policy string) error
}

// NewClient builds a client for the local object-store endpoint. Plain HTTP:
// the endpoint only listens on the compose network and the host loopback.
func NewClient(endpoint, accessKey, secretKey string) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
}

// Initializer ensures the assets bucket exists and carries the download
// policy. Every failure here is reported as a warning instead of aborting:
// storage comes up degraded and an operator can repair it without re-running
// the whole provisioning flow.
type Initializer struct {
	client BucketAdmin
	bucket string
	logger *slog.Logger
}

// NewInitializer returns an Initializer for the named bucket.
func NewInitializer(client BucketAdmin, bucket string, logger *slog.Logger) *Initializer {
	return &Initializer{
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// Ensure creates the bucket when missing and applies the anonymous-download
// policy. Best effort: failures are logged and swallowed.
func (i *Initializer) Ensure(ctx context.Context) {
	if err := i.ensureBucket(ctx); err != nil {
		i.logger.Warn("object storage degraded: bucket not ensured",
			slog.String("bucket", i.bucket),
			slog.String("error", err.Error()),
		)
		return
	}

	policy := fmt.Sprintf(downloadPolicyTemplate, i.bucket)
	if err := i.client.SetBucketPolicy(ctx, i.bucket, policy); err != nil {
		i.logger.Warn("object storage degraded: download policy not applied",
			slog.String("bucket", i.bucket),
			slog.String("error", err.Error()),
		)
		return
	}
	i.logger.Info("object storage ready", slog.String("bucket", i.bucket))
}

func (i *Initializer) ensureBucket(ctx context.Context) error {
	exists, err := i.client.BucketExists(ctx, i.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		i.logger.Debug("bucket already exists", slog.String("bucket", i.bucket))
		return nil
	}

	if err := i.client.MakeBucket(ctx, i.bucket, minio.MakeBucketOptions{}); err != nil {
		// A prior partial run or concurrent creation may have won the race.
		switch minio.ToErrorResponse(err).Code {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return nil
		}
		return fmt.Errorf("create bucket: %w", err)
	}
	i.logger.Info("bucket created", slog.String("bucket", i.bucket))
	return nil
}
