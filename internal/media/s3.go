// Package media stores product images in an S3-compatible bucket.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	ErrUploadTimeout = errors.New("upload timed out")
	ErrUploadFailed  = errors.New("upload failed")
)

// objectPutter is the part of *manager.Uploader we use.
type objectPutter interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type Options struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
	AccessKeyID   string
	SecretKey     string
	Timeout       time.Duration
}

type S3Uploader struct {
	putter        objectPutter
	bucket        string
	publicBaseURL string
	timeout       time.Duration
}

// NewS3Uploader builds an uploader from the default AWS credential chain, or from
// static keys when both are set. A custom endpoint switches to path-style
// addressing so MinIO and similar servers work.
func NewS3Uploader(ctx context.Context, opts Options) (*S3Uploader, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Uploader(manager.NewUploader(client), opts), nil
}

func newS3Uploader(putter objectPutter, opts Options) *S3Uploader {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &S3Uploader{
		putter:        putter,
		bucket:        opts.Bucket,
		publicBaseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
		timeout:       timeout,
	}
}

// Upload writes body under key and returns the object's URL.
func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	upCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	out, err := u.putter.Upload(upCtx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		if errors.Is(upCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %d seconds", ErrUploadTimeout, int(u.timeout.Seconds()))
		}
		return "", fmt.Errorf("%w: %s: %w", ErrUploadFailed, key, err)
	}

	if u.publicBaseURL != "" {
		return u.publicBaseURL + "/" + key, nil
	}
	return out.Location, nil
}
