package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	rerrors "github.com/vango-dev/reactive/internal/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store stores snapshots as JSON objects under <prefix><key>.json.
//
// Example usage:
//
//	client := snapshot.NewS3Client("eu-west-1", "")
//	store := snapshot.NewS3Store(client, "my-bucket", "snapshots/")
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store creates a new S3 snapshot store.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *S3Store) key(key string) string {
	return s.prefix + key + ".json"
}

// Save uploads the snapshot.
func (s *S3Store) Save(ctx context.Context, key string, snap Snapshot) error {
	if err := validateKey(key); err != nil {
		return rerrors.New("S081").Wrap(err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return rerrors.New("S081").Wrap(err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"snapshot-version": fmt.Sprint(snap.Version),
			"taken-at":         snap.TakenAt.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return rerrors.New("S081").
			WithDetail(fmt.Sprintf("s3 upload of s3://%s/%s failed", s.bucket, s.key(key))).
			Wrap(err)
	}
	return nil
}

// Load downloads the snapshot.
func (s *S3Store) Load(ctx context.Context, key string) (Snapshot, error) {
	if err := validateKey(key); err != nil {
		return Snapshot{}, rerrors.New("S080").Wrap(err)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return Snapshot{}, rerrors.New("S080").
				WithDetail(fmt.Sprintf("no snapshot at s3://%s/%s", s.bucket, s.key(key))).
				Wrap(ErrNotFound)
		}
		return Snapshot{}, rerrors.New("S080").Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Snapshot{}, rerrors.New("S080").Wrap(err)
	}
	return decode(data)
}

// NewS3Client builds an S3 client for region using credentials from the
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN environment
// variables. A non-empty endpoint selects an S3-compatible service with
// path-style addressing.
func NewS3Client(region, endpoint string) *s3.Client {
	opts := s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(envCredentials{}),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

type envCredentials struct{}

func (envCredentials) Retrieve(context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}
