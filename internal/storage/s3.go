package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/config"
)

// deleteBatch is the DeleteObjects per-request key limit.
const deleteBatch = 1000

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3MediaStore stores product media in an S3 compatible bucket and
// addresses objects by their public URL.
type S3MediaStore struct {
	client  s3API
	bucket  string
	prefix  string
	baseURL string
}

// NewS3MediaStore creates a media store from config. Static credentials are
// used when configured, otherwise the default AWS credential chain applies.
func NewS3MediaStore(ctx context.Context, cfg *config.S3Config) (*S3MediaStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("S3 config is nil")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		creds := aws.Credentials{
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			Source:          "catalog-config",
		}
		opts = append(opts, awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) { return creds, nil },
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3MediaStore(client, cfg), nil
}

func newS3MediaStore(client s3API, cfg *config.S3Config) *S3MediaStore {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		if cfg.Endpoint != "" {
			base = fmt.Sprintf("%s/%s", strings.TrimRight(cfg.Endpoint, "/"), cfg.Bucket)
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3MediaStore{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.KeyPrefix, "/"),
		baseURL: base,
	}
}

// Upload stores body under a fresh key and returns its public URL.
// filename only contributes its extension.
func (s *S3MediaStore) Upload(ctx context.Context, filename string, body io.Reader, contentType string) (string, error) {
	key := s.newKey(filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to upload media to S3")
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	log.Info().Str("key", key).Msg("Media uploaded")
	return s.URL(key), nil
}

// Delete removes the objects behind urls. URLs outside the bucket are
// ignored; they were never uploaded by us.
func (s *S3MediaStore) Delete(ctx context.Context, urls []string) error {
	var ids []types.ObjectIdentifier
	seen := make(map[string]bool)
	for _, u := range urls {
		key, ok := s.KeyFor(u)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		ids = append(ids, types.ObjectIdentifier{Key: aws.String(key)})
	}

	for start := 0; start < len(ids); start += deleteBatch {
		end := start + deleteBatch
		if end > len(ids) {
			end = len(ids)
		}
		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: ids[start:end], Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("delete media: %w", err)
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return fmt.Errorf("delete media: %d objects failed, first %s: %s",
				len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
		}
	}
	return nil
}

// URL returns the public URL of key.
func (s *S3MediaStore) URL(key string) string {
	return s.baseURL + "/" + key
}

// KeyFor maps a public URL back to its object key.
func (s *S3MediaStore) KeyFor(url string) (string, bool) {
	rest, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

func (s *S3MediaStore) newKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	name := fmt.Sprintf("%s/%s%s", time.Now().UTC().Format("2006/01"), uuid.NewString(), ext)
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}
