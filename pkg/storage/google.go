package storage

import (
	"context"
	"errors"
	"io"
	"os"

	"cloud.google.com/go/storage"
)

type GoogleCloudClient struct {
	bucket *storage.BucketHandle
	ctx    context.Context
}

// NewGoogleCloudClient returns a Google Cloud Storage client of the bucket.
// The credentials are taken from the environment.
func NewGoogleCloudClient(bucket string) (*GoogleCloudClient, error) {
	if bucket == "" {
		return nil, errors.New("no bucket")
	}
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleCloudClient{bucket: client.Bucket(bucket), ctx: ctx}, nil
}

// Save saves a file to GCS.
func (c *GoogleCloudClient) Save(name string, srcFile string) (err error) {
	reader, err := os.Open(srcFile)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	wc := c.bucket.Object(name).NewWriter(c.ctx)
	if _, err = io.Copy(wc, reader); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}
