package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/tendant/simple-blog/pkg/simpleblog"
)

const contentType = "application/json"

// Config options for the S3 store
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	Key             string // Object key of the JSON document
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
}

// Client is the subset of the S3 API used by the store
type Client interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store is an S3-compatible implementation of the simpleblog.Store interface
// backed by a single JSON object.
type Store struct {
	client Client
	bucket string
	key    string
}

// New creates a new S3-compatible store
func New(config Config) (*Store, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if config.Key == "" {
		return nil, errors.New("object key is required")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(config.Region)}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	return NewFromClient(s3.NewFromConfig(awsCfg, s3Options...), config.Bucket, config.Key), nil
}

// NewFromClient creates a store over an already configured client
func NewFromClient(client Client, bucket, key string) *Store {
	return &Store{client: client, bucket: bucket, key: key}
}

// Load downloads and decodes the backing object
func (s *Store) Load(ctx context.Context) ([]simpleblog.Record, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, s.wrap("load", simpleblog.ErrSourceNotFound)
		}
		return nil, s.wrap("load", fmt.Errorf("failed to download from S3: %w", err))
	}
	defer out.Body.Close()

	records, err := simpleblog.DecodeRecords(out.Body)
	if err != nil {
		return nil, s.wrap("load", err)
	}
	return records, nil
}

// Save encodes records and uploads them over the backing object
func (s *Store) Save(ctx context.Context, records []simpleblog.Record) error {
	var buf bytes.Buffer
	if err := simpleblog.EncodeRecords(&buf, records); err != nil {
		return s.wrap("save", fmt.Errorf("failed to encode records: %w", err))
	}

	uploader := manager.NewUploader(s.client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return s.wrap("save", fmt.Errorf("failed to upload to S3: %w", err))
	}
	return nil
}

func (s *Store) wrap(op string, err error) error {
	return &simpleblog.SourceError{Source: fmt.Sprintf("s3://%s/%s", s.bucket, s.key), Op: op, Err: err}
}

// isNotFound matches both typed SDK errors and the generic codes some
// S3-compatible services return.
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound", "NoSuchBucket":
		return true
	}
	return false
}
