// Package publish syncs a repo tree to S3-compatible object storage.
package publish

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"repoman/internal/config"
)

// Publisher uploads repo files to a bucket.
type Publisher struct {
	client *minio.Client
	bucket string
	prefix string
}

// New creates a Publisher from the publish config.
func New(cfg config.PublishConfig) (*Publisher, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("publishing needs an endpoint and a bucket")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Endpoint, err)
	}
	return &Publisher{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Sync uploads every file under repoPath, keeping the repo layout as object
// names. The bucket is created when missing. Returns the uploaded object
// names.
func (p *Publisher) Sync(ctx context.Context, repoPath string) ([]string, error) {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %s: %w", p.bucket, err)
	}
	if !exists {
		if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", p.bucket, err)
		}
	}

	var uploaded []string
	err = filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(repoPath, path)
		if err != nil {
			return err
		}
		object := ObjectName(p.prefix, rel)
		_, err = p.client.FPutObject(ctx, p.bucket, object, path, minio.PutObjectOptions{})
		if err != nil {
			return fmt.Errorf("uploading %s: %w", object, err)
		}
		uploaded = append(uploaded, object)
		return nil
	})
	return uploaded, err
}

// ObjectName maps a repo-relative file path to its object name under prefix,
// always with forward slashes.
func ObjectName(prefix, rel string) string {
	name := filepath.ToSlash(rel)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
