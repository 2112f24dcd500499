package objectstore

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"aedocs/internal/correrr"
)

// Config is the S3 / S3-compatible backend configuration.
type Config struct {
	Bucket                string
	Region                string
	Prefix                string
	Endpoint              string
	AccessKey             string
	SecretKey             string
	UsePathStyle          bool
	TLSInsecureSkipVerify bool
}

// S3Store implements Store against AWS S3 or an S3-compatible service
// (MinIO) using aws-sdk-go-v2.
type S3Store struct {
	client   *s3.Client
	presign  *s3.PresignClient
	bucket   string
	prefix   string
}

// NewS3Store builds an S3Store from cfg.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, correrr.InvalidInput("s3 bucket is required")
	}

	awsOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsOpts = append(awsOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	if cfg.TLSInsecureSkipVerify {
		transport := &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
		awsOpts = append(awsOpts, awsconfig.WithHTTPClient(&http.Client{Transport: transport}))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(cfg.Endpoint) })
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		prefix:  strings.TrimSuffix(cfg.Prefix, "/"),
	}, nil
}

func (s *S3Store) fullKey(path string) string {
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}

func (s *S3Store) Fetch(ctx context.Context, path string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(path)),
	})
	if err != nil {
		return nil, translateS3Err(path, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, correrr.Transient(fmt.Errorf("s3 fetch %q: %w", path, err))
	}
	return data, nil
}

func (s *S3Store) FetchRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	rng := fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(path)),
		Range:  aws.String(rng),
	})
	if err != nil {
		return nil, translateS3Err(path, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, correrr.Transient(fmt.Errorf("s3 fetch_range %q: %w", path, err))
	}
	return data, nil
}

func (s *S3Store) Put(ctx context.Context, path string, data []byte) (string, error) {
	hr := newHashingReader(bytes.NewReader(data))
	uploader := manager.NewUploader(s.client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(path)),
		Body:   hr,
	})
	if err != nil {
		return "", translateS3Err(path, err)
	}
	return hr.hexSum(), nil
}

func (s *S3Store) Presign(ctx context.Context, path string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(path)),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", translateS3Err(path, err)
	}
	return req.URL, nil
}

func (s *S3Store) Stat(ctx context.Context, path string) (Attrs, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(path)),
	})
	if err != nil {
		return Attrs{}, translateS3Err(path, err)
	}
	return Attrs{
		Size:    aws.ToInt64(out.ContentLength),
		ModTime: aws.ToTime(out.LastModified),
		ETag:    strings.Trim(aws.ToString(out.ETag), `"`),
	}, nil
}

func translateS3Err(path string, err error) error {
	var notFound *s3types.NotFound
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) || strings.Contains(err.Error(), "NotFound") {
		return correrr.NotFound(path, err)
	}
	return correrr.Transient(err)
}

var _ Store = (*S3Store)(nil)
