// Package archive keeps a copy of every uploaded document in object storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archive stores uploaded documents and returns the key they were stored at.
type Archive interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Nop discards documents.
type Nop struct{}

func (Nop) Put(context.Context, string, string, []byte) (string, error) { return "", nil }

// S3Config locates the bucket.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Archive writes documents to an S3-compatible bucket.
type S3Archive struct {
	client *minio.Client
	bucket string
	now    func() time.Time
	newID  func() string
}

// NewS3Archive connects to the endpoint. It does not touch the bucket; call
// EnsureBucket once at startup.
func NewS3Archive(cfg S3Config) (*S3Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return &S3Archive{
		client: client,
		bucket: cfg.Bucket,
		now:    time.Now,
		newID:  uuid.NewString,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist.
func (a *S3Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

func (a *S3Archive) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := objectKey(a.now(), a.newID(), name)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return key, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectKey builds uploads/YYYY/MM/DD/<id>-<name>, keeping only safe
// characters of the base name.
func objectKey(at time.Time, id, name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	base = strings.Trim(unsafeKeyChars.ReplaceAllString(base, "_"), "_.")
	if base == "" {
		base = "document"
	}
	return fmt.Sprintf("uploads/%s/%s-%s", at.UTC().Format("2006/01/02"), id, base)
}
