package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Options configures an S3Store
type S3Options struct {
	Bucket string // Created on an S3-compatible endpoint if missing
	Region string

	// Endpoint selects an S3-compatible server (e.g. MinIO) with path-style
	// addressing. Credentials then come from AWS_ACCESS_KEY_ID and
	// AWS_SECRET_ACCESS_KEY, defaulting to minioadmin.
	Endpoint string
}

// S3Store handles s3://bucket/key references. Plain local paths are passed
// through to a LocalStore so archives can mix both.
type S3Store struct {
	client *s3.Client
	local  *LocalStore
	logger *slog.Logger
}

// NewS3Store creates an S3 client from opts
func NewS3Store(ctx context.Context, opts S3Options, logger *slog.Logger) (*S3Store, error) {
	var client *s3.Client

	if opts.Endpoint != "" {
		client = s3.New(s3.Options{
			Region: opts.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				envOr("AWS_ACCESS_KEY_ID", "minioadmin"),
				envOr("AWS_SECRET_ACCESS_KEY", "minioadmin"),
				"",
			),
			BaseEndpoint:               aws.String(opts.Endpoint),
			UsePathStyle:               true,
			ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
		})

		if opts.Bucket != "" {
			if err := createBucketIfNotExists(ctx, client, opts.Bucket); err != nil {
				return nil, err
			}
		}
	} else {
		awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(opts.Region))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Store{
		client: client,
		local:  NewLocalStore(logger),
		logger: logger,
	}, nil
}

// createBucketIfNotExists prepares a fresh local endpoint for uploads. Only
// a missing bucket is created; access or network errors are returned as is.
func createBucketIfNotExists(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}

	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ParseRef splits s3://bucket/key
func ParseRef(ref string) (bucket, key string, err error) {
	if !IsRemote(ref) {
		return "", "", fmt.Errorf("invalid object reference %q", ref)
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, S3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid object reference %q", ref)
	}
	return bucket, key, nil
}

// isNotFound reports S3's missing-object errors
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}

// Remove deletes the object behind ref. Local paths go to the local store.
func (s *S3Store) Remove(ctx context.Context, ref string) error {
	if !IsRemote(ref) {
		return s.local.Remove(ctx, ref)
	}

	bucket, key, err := ParseRef(ref)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("delete object %s: %w", ref, err)
	}

	s.logger.Debug("object removed", "bucket", bucket, "key", key)
	return nil
}

// Localize downloads the object to a temporary file
func (s *S3Store) Localize(ctx context.Context, ref string) (string, func(), error) {
	if !IsRemote(ref) {
		return s.local.Localize(ctx, ref)
	}

	bucket, key, err := ParseRef(ref)
	if err != nil {
		return "", nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", nil, fmt.Errorf("get object %s: %w", ref, fs.ErrNotExist)
		}
		return "", nil, fmt.Errorf("get object %s: %w", ref, err)
	}
	defer out.Body.Close()

	// Keep the extension so type sniffing fallbacks still work
	tmp, err := os.CreateTemp("", "archive-*"+path.Ext(key))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, out.Body); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("download %s: %w", ref, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("download %s: %w", ref, err)
	}

	return tmp.Name(), cleanup, nil
}
