package avatars

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmborges/clinicagenda/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	ErrDisabled          = errors.New("avatars: storage not configured")
	ErrUnsupportedFormat = errors.New("avatars: unsupported image format")
	ErrTooLarge          = errors.New("avatars: image exceeds size limit")
)

// MaxSize bounds uploaded avatar images.
const MaxSize = 2 << 20

var contentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Store keeps patient avatars in S3 under avatars/<userID>/<patientID>.<ext>.
type Store struct {
	bucket   string
	region   string
	s3Client S3API
	logger   *logging.Logger
}

// NewStore creates an avatar Store. If bucket is empty, all operations are
// no-ops and Upload returns ErrDisabled.
func NewStore(s3Client S3API, bucket, region string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{bucket: bucket, region: region, s3Client: s3Client, logger: logger}
}

// Enabled returns true if avatar storage is configured.
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// Upload stores the image and returns its public URL.
func (s *Store) Upload(ctx context.Context, userID string, patientID int64, contentType string, data []byte) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}
	ext, ok := contentTypes[strings.ToLower(contentType)]
	if !ok {
		return "", ErrUnsupportedFormat
	}
	if len(data) > MaxSize {
		return "", ErrTooLarge
	}

	key := fmt.Sprintf("avatars/%s/%d.%s", userID, patientID, ext)
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("avatars: s3 put %s: %w", key, err)
	}

	url := s.publicURL(key)
	s.logger.Info("uploaded avatar", "user_id", userID, "patient_id", patientID, "s3_key", key, "bytes", len(data))
	return url, nil
}

// Delete removes a patient's avatar. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, userID string, patientID int64) error {
	if !s.Enabled() {
		return nil
	}
	for _, ext := range contentTypes {
		key := fmt.Sprintf("avatars/%s/%d.%s", userID, patientID, ext)
		if _, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}); err != nil {
			return fmt.Errorf("avatars: s3 delete %s: %w", key, err)
		}
	}
	return nil
}

func (s *Store) publicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
