package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foodies/foodies-api/internal/domain"
	"github.com/foodies/foodies-api/internal/media"
	"github.com/foodies/foodies-api/internal/repository/ports"
)

const defaultRecipeImageBytes = int64(5 * 1024 * 1024)

type ImageServiceConfig struct {
	Bucket         string
	PublicBaseURL  string
	MaxImageBytes  int64
	RegularWidth   int
	ImageProcessor media.Processor
}

// ImageService stores a recipe photo twice: the original as the large
// variant and a downscaled copy as the regular variant.
type ImageService struct {
	storage ports.ObjectStorage
	logger  *zap.Logger

	bucket        string
	publicBase    string
	maxImageBytes int64
	regularWidth  int
	processor     media.Processor
	allowedMIMEs  map[string]struct{}
	now           func() time.Time
}

func NewImageService(storage ports.ObjectStorage, logger *zap.Logger, cfg ImageServiceConfig) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBytes := cfg.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = defaultRecipeImageBytes
	}
	width := cfg.RegularWidth
	if width <= 0 {
		width = media.DefaultRegularWidth
	}
	return &ImageService{
		storage:       storage,
		logger:        logger,
		bucket:        strings.TrimSpace(cfg.Bucket),
		publicBase:    strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
		maxImageBytes: maxBytes,
		regularWidth:  width,
		processor:     cfg.ImageProcessor,
		allowedMIMEs: map[string]struct{}{
			"image/jpeg": {},
			"image/png":  {},
			"image/webp": {},
		},
		now: time.Now,
	}
}

func (s *ImageService) Enabled() bool {
	return s != nil && s.storage != nil && s.bucket != ""
}

func (s *ImageService) UploadRecipeImage(ctx context.Context, ownerID uuid.UUID, upload media.Upload) (*domain.RecipeImages, error) {
	if !s.Enabled() {
		return nil, ErrStorageDisabled
	}
	if upload.Reader == nil || upload.Size <= 0 {
		return nil, fmt.Errorf("%w: image is empty", ErrValidation)
	}
	if upload.Size > s.maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds size limit (%d bytes)", ErrValidation, s.maxImageBytes)
	}
	contentType := media.NormalizeContentType(upload.ContentType, upload.FileName)
	if _, ok := s.allowedMIMEs[contentType]; !ok {
		return nil, fmt.Errorf("%w: unsupported content type %s", ErrValidation, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(upload.Reader, s.maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read image: %v", ErrValidation, err)
	}
	if int64(len(data)) > s.maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds size limit (%d bytes)", ErrValidation, s.maxImageBytes)
	}

	stamp := s.now().UTC().Format("20060102T150405Z0700")
	base := fmt.Sprintf("recipes/%s/%s_%s", ownerID.String(), stamp, uuid.NewString()[:8])

	regular, regularType, err := s.regularVariant(ctx, data, upload.FileName, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	largeKey := base + "_large" + media.ExtensionFor(contentType)
	largeURL, err := s.put(ctx, largeKey, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	regularURL, err := s.put(ctx, base+"_regular"+media.ExtensionFor(regularType), regularType, bytes.NewReader(regular), int64(len(regular)))
	if err != nil {
		if rmErr := s.storage.Remove(ctx, s.bucket, largeKey); rmErr != nil {
			s.logger.Warn("remove orphaned recipe image", zap.String("object", largeKey), zap.Error(rmErr))
		}
		return nil, err
	}

	s.logger.Info("recipe image stored", zap.String("user_id", ownerID.String()), zap.String("object", base))
	return &domain.RecipeImages{Regular: regularURL, Large: largeURL}, nil
}

// regularVariant returns the downscaled image. Without a processor the
// original bytes are reused.
func (s *ImageService) regularVariant(ctx context.Context, data []byte, fileName, contentType string) ([]byte, string, error) {
	if s.processor == nil {
		return data, contentType, nil
	}
	result, err := s.processor.Process(ctx, media.Upload{
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
		FileName:    fileName,
		ContentType: contentType,
	}, s.regularWidth)
	if err != nil {
		return nil, "", err
	}
	return result.Bytes, result.ContentType, nil
}

func (s *ImageService) put(ctx context.Context, objectKey, contentType string, reader io.Reader, size int64) (string, error) {
	url, err := s.storage.Upload(ctx, s.bucket, objectKey, contentType, reader, size)
	if err != nil {
		return "", fmt.Errorf("%w: upload image: %v", ErrPersistence, err)
	}
	if url == "" && s.publicBase != "" {
		url = s.publicBase + "/" + strings.TrimLeft(objectKey, "/")
	}
	return url, nil
}
