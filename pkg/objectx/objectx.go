// Package objectx hands out presigned S3 URLs so clients upload payment
// screenshots straight to the bucket.
package objectx

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// DefaultExpiry is how long a presigned URL stays valid.
const DefaultExpiry = 15 * time.Minute

var ErrDisabled = errors.New("objectx: object storage not configured")

// Replaced in tests.
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

type Config struct {
	Region    string
	Bucket    string
	Endpoint  string // e.g. http://127.0.0.1:9000 for MinIO; empty for AWS
	AccessKey string
	SecretKey string
	PathStyle bool
	Expiry    time.Duration
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool { return c.Bucket != "" }

// Upload is a presigned PUT the client performs itself.
type Upload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Presigner struct {
	bucket string
	expiry time.Duration
	client *s3.PresignClient
}

// NewPresigner builds the S3 client once. It does not contact the endpoint.
func NewPresigner(ctx context.Context, cfg Config) (*Presigner, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("objectx: load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = DefaultExpiry
	}

	return &Presigner{
		bucket: cfg.Bucket,
		expiry: expiry,
		client: s3.NewPresignClient(client),
	}, nil
}

// ScreenshotKey is the object key for a new payment screenshot of userID.
func ScreenshotKey(userID, contentType string, now time.Time) string {
	return path.Join("payments", userID, now.UTC().Format("2006/01"), uuid.New().String()+extFor(contentType))
}

// OwnedBy reports whether key was issued to userID by ScreenshotKey.
func OwnedBy(key, userID string) bool {
	return userID != "" && strings.HasPrefix(key, "payments/"+userID+"/") && !strings.Contains(key, "..")
}

func extFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

// PresignPut signs an upload of key with the given content type.
func (p *Presigner) PresignPut(ctx context.Context, key, contentType string, now time.Time) (Upload, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := presignPutObject(p.client, ctx, in, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return Upload{}, fmt.Errorf("objectx: presign put: %w", err)
	}

	return Upload{Key: key, URL: req.URL, Method: req.Method, ExpiresAt: now.Add(p.expiry)}, nil
}

// PresignGet signs a download of key.
func (p *Presigner) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := presignGetObject(p.client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", fmt.Errorf("objectx: presign get: %w", err)
	}
	return req.URL, nil
}
