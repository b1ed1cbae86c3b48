package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/rxtech-lab/polygon-flatfiles/internal/logger"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
)

const (
	// DefaultEndpointURL is the vendor's S3 compatible flat file endpoint.
	DefaultEndpointURL = "https://files.polygon.io"
	// DefaultBucket holds every flat file.
	DefaultBucket = "flatfiles"
	// DefaultRegion is only used for request signing.
	DefaultRegion = "us-east-1"
)

// S3API is the subset of the S3 client used by S3Fetcher.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config holds the connection settings of the flat file store.
type S3Config struct {
	AccessKey   string `validate:"required"`
	SecretKey   string `validate:"required"`
	EndpointURL string
	Bucket      string
	Region      string
}

// S3Fetcher implements ObjectFetcher on top of the AWS SDK.
type S3Fetcher struct {
	client S3API
	bucket string
	logger *logger.Logger
}

// NewS3Fetcher creates a fetcher signing requests with the given credentials.
// The SDK retryer is limited to one attempt; retries are the caller's decision.
func NewS3Fetcher(config S3Config, log *logger.Logger) (*S3Fetcher, error) {
	if config.AccessKey == "" || config.SecretKey == "" {
		return nil, errors.New(errors.ErrCodeMissingCredentials, "access key and secret key are required")
	}

	if config.EndpointURL == "" {
		config.EndpointURL = DefaultEndpointURL
	}

	if config.Region == "" {
		config.Region = DefaultRegion
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	client := s3.New(s3.Options{
		Region:           config.Region,
		BaseEndpoint:     aws.String(config.EndpointURL),
		UsePathStyle:     true,
		Credentials:      credentials.NewStaticCredentialsProvider(config.AccessKey, config.SecretKey, ""),
		RetryMaxAttempts: 1,
	})

	return NewS3FetcherWithAPI(client, config.Bucket, log), nil
}

// NewS3FetcherWithAPI wraps an existing S3 client, mostly for tests.
func NewS3FetcherWithAPI(client S3API, bucket string, log *logger.Logger) *S3Fetcher {
	if bucket == "" {
		bucket = DefaultBucket
	}

	if log == nil {
		log = logger.NewNop()
	}

	return &S3Fetcher{
		client: client,
		bucket: bucket,
		logger: log,
	}
}

// Bucket returns the bucket objects are read from.
func (f *S3Fetcher) Bucket() string {
	return f.bucket
}

// Fetch implements ObjectFetcher.
func (f *S3Fetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	f.logger.Debug("Fetching flat file", zap.String("bucket", f.bucket), zap.String("key", key))

	//nolint:exhaustruct // third-party struct with many optional fields
	resp, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify(ctx, err, fmt.Sprintf("get %s/%s", f.bucket, key))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeTransient, err, "read body of %s/%s", f.bucket, key)
	}

	return data, nil
}

// List implements ObjectFetcher, following continuation tokens until the listing is exhausted.
func (f *S3Fetcher) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	f.logger.Debug("Listing flat files", zap.String("bucket", f.bucket), zap.String("prefix", prefix))

	//nolint:exhaustruct // third-party struct with many optional fields
	paginator := s3.NewListObjectsV2Paginator(f.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(f.bucket),
		Prefix: aws.String(prefix),
	})

	var objects []ObjectInfo

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			classified := classify(ctx, err, fmt.Sprintf("list %s/%s", f.bucket, prefix))
			if errors.IsTransient(classified) && !errors.HasCode(classified, errors.ErrCodeFetchCancelled) {
				return nil, errors.Wrapf(errors.ErrCodeListFailed, err, "list %s/%s", f.bucket, prefix)
			}

			return nil, classified
		}

		for _, obj := range page.Contents {
			objects = append(objects, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	return objects, nil
}

var authErrorCodes = map[string]bool{
	"AccessDenied":          true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"InvalidToken":          true,
	"ExpiredToken":          true,
	"Forbidden":             true,
	"Unauthorized":          true,
}

// classify maps an SDK error onto the download taxonomy.
func classify(ctx context.Context, err error, op string) error {
	if IsNotFoundError(err) {
		return errors.Wrapf(errors.ErrCodeNotFound, err, "%s: object not found", op)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && authErrorCodes[apiErr.ErrorCode()] {
		return errors.Wrapf(errors.ErrCodeAuthFailed, err, "%s: credentials rejected", op)
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.Wrapf(errors.ErrCodeAuthFailed, err, "%s: credentials rejected", op)
		}
	}

	if ctx.Err() != nil {
		return errors.Wrapf(errors.ErrCodeFetchCancelled, err, "%s: cancelled", op)
	}

	return errors.Wrapf(errors.ErrCodeTransient, err, "%s", op)
}

// IsNotFoundError checks if an error indicates the object was not found
func IsNotFoundError(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound") {
		return true
	}

	var respErr *awshttp.ResponseError

	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
