package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads *.lua objects stored under a key prefix.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	src := loader.S3Source{Client: s3.NewFromConfig(cfg), Bucket: "components", Prefix: "prod/"}
type S3Source struct {
	Client S3API
	Bucket string
	Prefix string

	// MaxSize limits the size of a single script. Zero means 1 MiB.
	MaxSize int64
}

// Name implements Source.
func (s S3Source) Name() string {
	return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Prefix)
}

// Scripts implements Source. Objects in nested "directories" below the
// prefix are ignored.
func (s S3Source) Scripts(ctx context.Context) ([]Script, error) {
	pages := s3.NewListObjectsV2Paginator(s.Client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.Bucket),
		Prefix:    aws.String(s.Prefix),
		Delimiter: aws.String("/"),
	})

	var scripts []Script
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", s.Bucket, s.Prefix, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			tag := TagFromName(key)
			if tag == "" {
				continue
			}

			code, err := s.read(ctx, key)
			if err != nil {
				return nil, err
			}
			scripts = append(scripts, Script{
				Tag:    tag,
				Origin: fmt.Sprintf("s3://%s/%s", s.Bucket, key),
				Code:   code,
			})
		}
	}
	return scripts, nil
}

func (s S3Source) read(ctx context.Context, key string) (string, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("get s3://%s/%s: %w", s.Bucket, key, err)
	}
	defer out.Body.Close()

	limit := s.MaxSize
	if limit <= 0 {
		limit = 1 << 20
	}
	data, err := io.ReadAll(io.LimitReader(out.Body, limit+1))
	if err != nil {
		return "", fmt.Errorf("read s3://%s/%s: %w", s.Bucket, key, err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("s3://%s/%s: script larger than %d bytes", s.Bucket, key, limit)
	}
	return string(data), nil
}
