package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
	"go.uber.org/zap"
)

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// ImageStore persists uploaded images and returns a retrievable URL.
type ImageStore interface {
	Save(ctx context.Context, folder string, img *Image) (string, error)
	Delete(ctx context.Context, url string) error
}

var imageExtensions = map[string]string{
	"png":  "png",
	"jpeg": "jpg",
	"jpg":  "jpg",
	"gif":  "gif",
	"webp": "webp",
}

// DecodeDataURL parses "data:image/<type>;base64,<payload>".
func DecodeDataURL(field, value string) (*Image, error) {
	invalid := func(msg string) error {
		return apperr.Validation(apperr.CodeInvalidImage, field, msg)
	}

	header, payload, ok := strings.Cut(value, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, invalid("expected a base64 data URL")
	}

	kind := strings.TrimSuffix(strings.TrimPrefix(header, "data:image/"), ";base64")
	ext, ok := imageExtensions[strings.ToLower(kind)]
	if !ok {
		return nil, invalid("unsupported image type")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, invalid("image payload is not valid base64")
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, invalid("payload is not an image")
	}

	return &Image{Data: data, ContentType: contentType, Ext: ext}, nil
}

func objectName(folder, ext string) string {
	return path.Join(folder, uuid.New().String()+"."+ext)
}

// S3ImageStore keeps images in an S3 bucket.
type S3ImageStore struct {
	s3 *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3: s3Config}
}

func (s *S3ImageStore) baseURL() string {
	if s.s3.PublicURL != "" {
		return s.s3.PublicURL
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com", s.s3.BucketName)
}

func (s *S3ImageStore) Save(ctx context.Context, folder string, img *Image) (string, error) {
	key := objectName(folder, img.Ext)
	_, err := s.s3.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}
	return s.baseURL() + "/" + key, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL()+"/")
	if !ok {
		return nil
	}
	_, err := s.s3.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3.BucketName),
		Key:    aws.String(key),
	})
	return err
}

// DiskImageStore keeps images under a local media directory served by the router.
type DiskImageStore struct {
	root      string
	urlPrefix string
}

func NewDiskImageStore(root, urlPrefix string) *DiskImageStore {
	return &DiskImageStore{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *DiskImageStore) Save(_ context.Context, folder string, img *Image) (string, error) {
	name := objectName(folder, img.Ext)
	full := filepath.Join(s.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(full, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.urlPrefix + "/" + name, nil
}

func (s *DiskImageStore) Delete(_ context.Context, url string) error {
	name, ok := strings.CutPrefix(url, s.urlPrefix+"/")
	if !ok || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// discardImage removes an image that is no longer referenced. Failures are logged.
func discardImage(ctx context.Context, store ImageStore, url string) {
	if url == "" {
		return
	}
	if err := store.Delete(ctx, url); err != nil {
		logging.L.Warn("failed to delete image", zap.String("url", url), zap.Error(err))
	}
}
