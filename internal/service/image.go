package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
)

const (
	maxImageDimension = 1280
	maxImageBytes     = 10 << 20
	// Decoders allocate the full pixel buffer from the header, so the
	// declared size is checked before decoding.
	maxImagePixels = 40_000_000
)

// ImageTarget names the storage folder of an upload and the request field it came from
type ImageTarget struct {
	Folder string
	Field  string
}

var (
	RecipeImages = ImageTarget{Folder: "recipes/images", Field: "image"}
	Avatars      = ImageTarget{Folder: "users/avatars", Field: "avatar"}
)

// ImageStore persists encoded images and returns their public URL
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes an object previously returned by Put, given its URL
	Delete(ctx context.Context, url string) error
}

// S3ImageStore uploads images to an S3 bucket
type S3ImageStore struct {
	s3Config *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := s.s3Config.ObjectURL(key)
	logging.Ctx(ctx).Debug().Str("url", url).Msg("uploaded image to S3")
	return url, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, url string) error {
	key, ok := s.s3Config.KeyFromURL(url)
	if !ok {
		return fmt.Errorf("image %s is not in bucket %s", url, s.s3Config.BucketName)
	}
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// FileImageStore writes images under a local media directory
type FileImageStore struct {
	dir     string
	baseURL string
}

func NewFileImageStore(dir, baseURL string) *FileImageStore {
	return &FileImageStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *FileImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *FileImageStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || strings.Contains(key, "..") {
		return fmt.Errorf("image %s is not in the media directory", url)
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key))); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// ImageService turns uploaded data URIs into stored, normalized images
type ImageService struct {
	store ImageStore
}

func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

// SaveDataURI decodes a data:image/...;base64 payload, bounds its size,
// re-encodes it and stores it under target.Folder. It returns the stored image URL.
// Payload problems are validation errors on target.Field.
func (s *ImageService) SaveDataURI(ctx context.Context, target ImageTarget, dataURI string) (string, error) {
	raw, err := decodeDataURI(dataURI)
	if err != nil {
		return "", imageError(target, err.Error())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", imageError(target, "unsupported or corrupt image")
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return "", imageError(target, fmt.Sprintf("image is %dx%d, larger than %d megapixels", cfg.Width, cfg.Height, maxImagePixels/1_000_000))
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", imageError(target, "unsupported or corrupt image")
	}

	img = boundImage(img)

	format, contentType, ext := imaging.JPEG, "image/jpeg", ".jpg"
	if strings.HasPrefix(dataURI, "data:image/png") {
		format, contentType, ext = imaging.PNG, "image/png", ".png"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	key := target.Folder + "/" + uuid.NewString() + ext
	return s.store.Put(ctx, key, buf.Bytes(), contentType)
}

// Remove deletes a stored image. Failures are logged only; a leftover
// object never fails the request that abandoned it.
func (s *ImageService) Remove(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.store.Delete(ctx, url); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("url", url).Msg("failed to remove image")
	}
}

func boundImage(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxImageDimension && b.Dy() <= maxImageDimension {
		return img
	}
	return imaging.Fit(img, maxImageDimension, maxImageDimension, imaging.Lanczos)
}

func decodeDataURI(dataURI string) ([]byte, error) {
	header, payload, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("image must be a base64 data URI")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d MB", maxImageBytes>>20)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("image is not valid base64")
	}
	return raw, nil
}

func imageError(target ImageTarget, msg string) error {
	return apperr.Validation(map[string][]string{target.Field: {msg}})
}
