package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"refactorgen/internal/apperr"
	"refactorgen/internal/config"
)

// LinkTTL is how long presigned module links stay valid.
const LinkTTL = time.Hour

// S3Store keeps published modules in an S3-compatible bucket as
// <prefix>/<runID>/<module path>.
type S3Store struct {
	client *minio.Client
	bucket string
	region string
	prefix string

	bucketOnce sync.Once
	bucketErr  error
}

// NewS3Store connects to the bucket described by cfg. Every missing setting
// is reported at once.
func NewS3Store(cfg config.PublishConfig) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	access, secret := strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey)
	bucket := strings.TrimSpace(cfg.Bucket)

	var missing []error
	if endpoint == "" {
		missing = append(missing, errors.New("endpoint (ARTIFACT_S3_ENDPOINT) is required"))
	}
	if access == "" || secret == "" {
		missing = append(missing, errors.New("access key and secret key (ARTIFACT_S3_ACCESS_KEY, ARTIFACT_S3_SECRET_KEY) are required"))
	}
	if bucket == "" {
		missing = append(missing, errors.New("bucket (ARTIFACT_S3_BUCKET) is required"))
	}
	if len(missing) > 0 {
		return nil, apperr.Wrap(apperr.KindValidation, "s3 publish", errors.Join(missing...))
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIO, "s3 client "+endpoint, err)
	}
	return &S3Store{
		client: client,
		bucket: bucket,
		region: region,
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
	}, nil
}

// ready creates the bucket on first use.
func (s *S3Store) ready(ctx context.Context) error {
	s.bucketOnce.Do(func() {
		ok, err := s.client.BucketExists(ctx, s.bucket)
		switch {
		case err != nil:
			s.bucketErr = err
		case !ok:
			s.bucketErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
		}
	})
	if s.bucketErr != nil {
		return fmt.Errorf("bucket %s: %w", s.bucket, s.bucketErr)
	}
	return nil
}

func (s *S3Store) runPrefix(runID string) string {
	if s.prefix == "" {
		return strings.TrimSpace(runID)
	}
	return s.prefix + "/" + strings.TrimSpace(runID)
}

func (s *S3Store) key(runID, modulePath string) string {
	return objectKey(s.runPrefix(runID), modulePath)
}

// contentType labels module sources so browsers show them as text.
func contentType(modulePath string) string {
	switch path.Ext(modulePath) {
	case ".pm", ".pl":
		return "text/x-perl; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func (s *S3Store) Put(ctx context.Context, runID, modulePath string, content []byte) error {
	if err := checkKey(runID, modulePath); err != nil {
		return err
	}
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.key(runID, modulePath),
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: contentType(modulePath)})
	return err
}

func (s *S3Store) Get(ctx context.Context, runID, modulePath string) ([]byte, error) {
	if err := checkKey(runID, modulePath); err != nil {
		return nil, err
	}
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(runID, modulePath), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		if code := minio.ToErrorResponse(err).Code; code == "NoSuchKey" || code == "NoSuchBucket" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// List returns the module paths of a run, sorted.
func (s *S3Store) List(ctx context.Context, runID string) ([]string, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("run_id is required")
	}
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	prefix := s.runPrefix(runID) + "/"
	var out []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if rel := strings.TrimPrefix(obj.Key, prefix); rel != "" {
			out = append(out, rel)
		}
	}
	slices.Sort(out)
	return out, nil
}

// URL returns a presigned download link valid for LinkTTL.
func (s *S3Store) URL(ctx context.Context, runID, modulePath string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, s.key(runID, modulePath), LinkTTL, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
