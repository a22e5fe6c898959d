package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultRegion hosts the public OEDI data lake.
const DefaultRegion = "us-west-2"

// S3API is the subset of *s3.Client the store uses.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config selects credentials for the bucket. Public datasets need
// Anonymous; private mirrors use static keys or the default chain.
type S3Config struct {
	Region          string
	Anonymous       bool
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the S3 endpoint (path-style), e.g. for a MinIO mirror.
	Endpoint string
}

// S3Store serves a dataset from object storage. Paths are "bucket/key".
type S3Store struct {
	client S3API
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	switch {
	case cfg.Anonymous:
		opts = append(opts, awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}))
	case cfg.AccessKeyID != "":
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	log.Printf("[S3] Initialized region=%s anonymous=%v endpoint=%q", region, cfg.Anonymous, cfg.Endpoint)
	return &S3Store{client: client}, nil
}

// NewS3StoreWithClient wraps an existing client.
func NewS3StoreWithClient(client S3API) *S3Store {
	return &S3Store{client: client}
}

func splitBucketKey(p string) (bucket, key string, err error) {
	p = strings.Trim(TrimScheme(p), "/")
	if p == "" {
		return "", "", errors.New("empty object path")
	}
	bucket, key, _ = strings.Cut(p, "/")
	return bucket, key, nil
}

func dirPrefix(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSuffix(key, "/") + "/"
}

// Exists is true for an object with exactly this key or any key under it.
func (s *S3Store) Exists(ctx context.Context, p string) (bool, error) {
	bucket, key, err := splitBucketKey(p)
	if err != nil {
		return false, err
	}
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(dirPrefix(key)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("list s3://%s/%s: %w", bucket, key, err)
	}
	if len(out.Contents) > 0 || len(out.CommonPrefixes) > 0 {
		return true, nil
	}
	if key == "" {
		return false, nil
	}
	out, err = s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(key),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("list s3://%s/%s: %w", bucket, key, err)
	}
	return len(out.Contents) > 0 && aws.ToString(out.Contents[0].Key) == key, nil
}

// List returns the immediate children (sub-prefixes and objects) of p.
func (s *S3Store) List(ctx context.Context, p string) ([]string, error) {
	bucket, key, err := splitBucketKey(p)
	if err != nil {
		return nil, err
	}
	var out []string
	err = s.walk(ctx, bucket, dirPrefix(key), func(page *s3.ListObjectsV2Output) {
		for _, cp := range page.CommonPrefixes {
			out = append(out, path.Join(bucket, strings.TrimSuffix(aws.ToString(cp.Prefix), "/")))
		}
		for _, obj := range page.Contents {
			out = append(out, path.Join(bucket, aws.ToString(obj.Key)))
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func (s *S3Store) Glob(ctx context.Context, dir, pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, err
	}
	bucket, key, err := splitBucketKey(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	err = s.walk(ctx, bucket, dirPrefix(key), func(page *s3.ListObjectsV2Output) {
		for _, obj := range page.Contents {
			k := aws.ToString(obj.Key)
			if ok, _ := path.Match(pattern, path.Base(k)); ok {
				out = append(out, path.Join(bucket, k))
			}
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func (s *S3Store) walk(ctx context.Context, bucket, prefix string, fn func(*s3.ListObjectsV2Output)) error {
	pager := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err)
		}
		fn(page)
	}
	return nil
}

func (s *S3Store) ReadFile(ctx context.Context, p string) ([]byte, error) {
	bucket, key, err := splitBucketKey(p)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()
	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	log.Printf("[S3] Fetched s3://%s/%s (%d bytes)", bucket, key, len(raw))
	return raw, nil
}
