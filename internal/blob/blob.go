// Package blob reads and publishes the FAQ document in an S3-compatible
// bucket.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"herbar/client/internal/faq"
)

// maxFAQBytes bounds the object read into memory.
const maxFAQBytes = 1 << 20

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Object    string
	UseSSL    bool
	Logger    *slog.Logger
}

// FAQStore implements faq.Loader over a single bucket object.
type FAQStore struct {
	client *minio.Client
	bucket string
	object string
	logger *slog.Logger
}

func NewFAQStore(opts Options) (*FAQStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("blob client: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FAQStore{
		client: client,
		bucket: opts.Bucket,
		object: opts.Object,
		logger: logger.With("component", "blob", "bucket", opts.Bucket),
	}, nil
}

func (s *FAQStore) Load(ctx context.Context) (faq.Content, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return faq.Content{}, fmt.Errorf("get %s: %w", s.object, err)
	}
	defer obj.Close()

	content, err := decodeFAQ(obj)
	if err != nil {
		return faq.Content{}, fmt.Errorf("read %s: %w", s.object, err)
	}
	s.logger.Debug("faq loaded", "object", s.object, "entries", len(content.Entries))
	return content, nil
}

// Publish uploads content as the FAQ object, creating the bucket if needed.
func (s *FAQStore) Publish(ctx context.Context, content faq.Content) error {
	if err := content.Validate(); err != nil {
		return err
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("make bucket: %w", err)
		}
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode faq: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.object, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", s.object, err)
	}
	return nil
}

func decodeFAQ(r io.Reader) (faq.Content, error) {
	var content faq.Content
	dec := json.NewDecoder(io.LimitReader(r, maxFAQBytes))
	if err := dec.Decode(&content); err != nil {
		return faq.Content{}, fmt.Errorf("decode faq: %w", err)
	}
	if err := content.Validate(); err != nil {
		return faq.Content{}, err
	}
	return content, nil
}
