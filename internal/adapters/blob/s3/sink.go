// Package s3 stores exports in an S3-compatible bucket (AWS S3 or MinIO).
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/exportsink"
)

type Config struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string // optional; set for MinIO and other S3-compatible stores
	// PathStyle is forced on when Endpoint is set.
	PathStyle bool
}

// Sink implements exportsink.Sink on a single bucket.
type Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// New builds a client from the default credential chain.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	return NewWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func NewWithClient(client *s3.Client, bucket, prefix string) *Sink {
	return &Sink{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *Sink) Put(ctx context.Context, key string, contentType string, body io.Reader) (exportsink.Object, error) {
	if strings.TrimSpace(key) == "" {
		return exportsink.Object{}, fmt.Errorf("empty key")
	}
	objKey := strings.TrimPrefix(key, "/")
	if s.prefix != "" {
		objKey = path.Join(s.prefix, objKey)
	}

	// Buffer so the SDK gets a seekable body with a known length.
	data, err := io.ReadAll(body)
	if err != nil {
		return exportsink.Object{}, err
	}
	input := &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &objKey,
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return exportsink.Object{}, fmt.Errorf("put s3://%s/%s: %w", s.bucket, objKey, err)
	}
	return exportsink.Object{
		Key:         objKey,
		ContentType: contentType,
		Size:        int64(len(data)),
		Location:    "s3://" + s.bucket + "/" + objKey,
	}, nil
}
