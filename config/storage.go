package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	// PublicURL overrides the virtual-hosted bucket URL when images are served
	// through a CDN or a custom domain.
	PublicURL string
}

// NewS3Config initializes the S3 client for the configured media bucket.
// Credentials are resolved by the default AWS chain.
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	opts := []func(*config.LoadOptions) error{}
	if cfg.S3Region != "" {
		opts = append(opts, config.WithRegion(cfg.S3Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &S3Config{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: cfg.S3Bucket,
		PublicURL:  cfg.S3PublicURL,
	}, nil
}

// UsesS3 reports whether images should be stored in S3.
func (c *Config) UsesS3() bool {
	return c.S3Bucket != ""
}
