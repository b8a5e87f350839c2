package imageio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// UploadTimeout bounds a single upload
const UploadTimeout = 30 * time.Second

// S3Config holds the S3 compatible storage settings
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Enabled reports whether enough settings are present to upload
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

// Uploader stores encoded images in an S3 bucket
type Uploader struct {
	client s3iface.S3API
	bucket string
}

// NewUploader creates an uploader using static credentials and path style addressing
func NewUploader(cfg S3Config) (*Uploader, error) {
	if !cfg.Enabled() {
		return nil, errors.New("s3 upload requires a bucket and region")
	}

	awsConfig := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}
	return NewUploaderWithClient(s3.New(sess), cfg.Bucket), nil
}

// NewUploaderWithClient creates an uploader around an existing S3 client
func NewUploaderWithClient(client s3iface.S3API, bucket string) *Uploader {
	return &Uploader{client: client, bucket: bucket}
}

// Upload stores data under key with the content type of format
func (u *Uploader) Upload(ctx context.Context, key string, data []byte, format string) error {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	_, err := u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(ContentType(format)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// URL returns the s3:// location of key
func (u *Uploader) URL(key string) string {
	return fmt.Sprintf("s3://%s/%s", u.bucket, key)
}
