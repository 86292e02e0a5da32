package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

// S3Config describes the bucket artifacts are written to. Static credentials
// are optional; without them the default AWS credential chain applies.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // S3-compatible endpoint, e.g. MinIO
	AccessKey string
	SecretKey string
	// PublicBaseURL overrides the URL prefix returned for stored objects.
	PublicBaseURL string
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads artifacts to an S3 bucket.
type S3Store struct {
	client  putObjectAPI
	bucket  string
	baseURL string
}

// NewS3Store builds an S3 client from cfg.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("s3 store: bucket and region are required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 store: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, cfg), nil
}

func newS3Store(client putObjectAPI, cfg S3Config) *S3Store {
	return &S3Store{client: client, bucket: cfg.Bucket, baseURL: publicBaseURL(cfg)}
}

// Store uploads the artifact under a random key and returns its public URL.
func (s *S3Store) Store(ctx context.Context, upload domain.Upload) (string, error) {
	key := ObjectName(upload.MimeType, upload.Filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(upload.Data),
		ContentLength: aws.Int64(int64(len(upload.Data))),
		ContentType:   aws.String(domain.NormalizeMime(upload.MimeType)),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

func publicBaseURL(cfg S3Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}
