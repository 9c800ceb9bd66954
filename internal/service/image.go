package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/platefeed/backend/config"
)

// ImageStore persists a decoded image and returns its public URL.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// S3Store stores images in an S3 bucket with public-read objects.
type S3Store struct {
	s3Config *config.S3Config
}

func NewS3Store(s3Config *config.S3Config) *S3Store {
	return &S3Store{s3Config: s3Config}
}

func (s *S3Store) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}

// LocalStore writes images under a media directory served by the
// application itself. Used in development and tests.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return s.baseURL + "/media/" + key, nil
}

// ImageService decodes embedded base64 image payloads and hands the
// bytes to the configured store. The model keeps only the returned URL.
type ImageService struct {
	store ImageStore
}

func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

// StoreBase64 accepts a "data:image/<ext>;base64,<payload>" string,
// decodes it and stores it under the given folder with a generated
// object key. Malformed payloads fail with ErrValidation.
func (s *ImageService) StoreBase64(ctx context.Context, payload, folder string) (string, error) {
	ext, data, err := decodeBase64Image(payload)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%s.%s", folder, uuid.New().String(), ext)
	return s.store.Save(ctx, key, data, "image/"+ext)
}

func decodeBase64Image(payload string) (ext string, data []byte, err error) {
	if !strings.HasPrefix(payload, "data:image/") {
		return "", nil, fmt.Errorf("%w: image must be a base64-encoded data URI", ErrValidation)
	}
	meta, encoded, found := strings.Cut(payload, ";base64,")
	if !found {
		return "", nil, fmt.Errorf("%w: image must be a base64-encoded data URI", ErrValidation)
	}
	ext = strings.TrimPrefix(meta, "data:image/")
	if ext == "" {
		return "", nil, fmt.Errorf("%w: image format is missing", ErrValidation)
	}
	data, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("%w: image payload is not valid base64", ErrValidation)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: image payload is empty", ErrValidation)
	}
	return ext, data, nil
}
