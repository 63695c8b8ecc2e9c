package source

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jdlms/fpa-forecast/internal/types"
)

// S3Options configures the S3 client. Endpoint and PathStyle allow
// S3-compatible stores such as MinIO.
type S3Options struct {
	Region    string
	Endpoint  string
	PathStyle bool
}

// s3API is the part of *s3.Client the loader needs
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Loader reads a dataset object from a bucket
type S3Loader struct {
	client      s3API
	bucket      string
	key         string
	recordsPath string
}

// NewS3Loader builds the client from the default AWS credential chain
func NewS3Loader(ctx context.Context, bucket, key string, opts Options) (*S3Loader, error) {
	region := opts.S3.Region
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := loadAWSConfig(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.S3.PathStyle {
			o.UsePathStyle = true
		}
		if opts.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.S3.Endpoint)
		}
	})
	return &S3Loader{client: client, bucket: bucket, key: key, recordsPath: opts.RecordsPath}, nil
}

func (l *S3Loader) Name() string { return "s3://" + l.bucket + "/" + l.key }

func (l *S3Loader) Load(ctx context.Context) ([]types.Item, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(l.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", l.Name(), err)
	}
	defer out.Body.Close()

	items, err := decodeContext(ctx, out.Body, l.recordsPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Name(), err)
	}
	return items, nil
}
