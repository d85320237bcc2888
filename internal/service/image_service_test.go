package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/foodies/foodies-api/internal/media"
)

func newTestImageService(storage *fakeStorage, processor media.Processor) *ImageService {
	svc := NewImageService(storage, nil, ImageServiceConfig{
		Bucket:         "recipes",
		PublicBaseURL:  "https://cdn.test/recipes/",
		MaxImageBytes:  1024,
		ImageProcessor: processor,
	})
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC) }
	return svc
}

func TestUploadRecipeImageStoresBothVariants(t *testing.T) {
	storage := &fakeStorage{}
	processor := &stubImageProcessor{output: []byte("small"), contentType: "image/jpeg"}
	svc := newTestImageService(storage, processor)
	owner := uuid.New()

	images, err := svc.UploadRecipeImage(context.Background(), owner, newImageUpload([]byte("original-bytes"), "image/jpeg"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if len(storage.objects) != 2 {
		t.Fatalf("objects = %d, want 2", len(storage.objects))
	}
	large, regular := storage.objects[0], storage.objects[1]
	prefix := "recipes/" + owner.String() + "/20240309T083000Z_"
	if !strings.HasPrefix(large.key, prefix) || !strings.HasSuffix(large.key, "_large.jpg") {
		t.Fatalf("unexpected large key %s", large.key)
	}
	if !strings.HasSuffix(regular.key, "_regular.jpg") || string(regular.data) != "small" {
		t.Fatalf("unexpected regular object %+v", regular)
	}
	if string(large.data) != "original-bytes" || large.bucket != "recipes" {
		t.Fatalf("unexpected large object %+v", large)
	}

	if images.Large != "https://cdn.test/recipes/"+large.key || images.Regular != "https://cdn.test/recipes/"+regular.key {
		t.Fatalf("unexpected urls %+v", images)
	}
	if processor.calls != 1 || processor.lastMax != media.DefaultRegularWidth {
		t.Fatalf("processor calls=%d max=%d", processor.calls, processor.lastMax)
	}
}

func TestUploadRecipeImagePrefersStorageURL(t *testing.T) {
	storage := &fakeStorage{url: func(bucket, key string) string { return "https://minio.test/" + bucket + "/" + key }}
	svc := newTestImageService(storage, nil)

	images, err := svc.UploadRecipeImage(context.Background(), uuid.New(), newImageUpload([]byte("png"), "image/png"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(images.Large, "https://minio.test/recipes/") || !strings.HasSuffix(images.Regular, "_regular.png") {
		t.Fatalf("unexpected urls %+v", images)
	}
	if string(storage.objects[1].data) != "png" {
		t.Fatalf("without a processor the regular variant reuses the original")
	}
}

func TestUploadRecipeImageRejections(t *testing.T) {
	cases := []struct {
		name   string
		upload media.Upload
	}{
		{"empty", newImageUpload(nil, "image/jpeg")},
		{"too large", newImageUpload(make([]byte, 2048), "image/jpeg")},
		{"wrong type", newImageUpload([]byte("gif"), "image/gif")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			storage := &fakeStorage{}
			svc := newTestImageService(storage, nil)
			if _, err := svc.UploadRecipeImage(context.Background(), uuid.New(), tc.upload); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if len(storage.objects) != 0 {
				t.Fatalf("nothing should be stored")
			}
		})
	}
}

func TestUploadRecipeImageProcessorFailure(t *testing.T) {
	storage := &fakeStorage{}
	svc := newTestImageService(storage, &stubImageProcessor{err: media.ErrUnsupportedImage})

	_, err := svc.UploadRecipeImage(context.Background(), uuid.New(), newImageUpload([]byte("broken"), "image/jpeg"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if storage.uploads != 0 {
		t.Fatalf("nothing should be uploaded when processing fails, got %d uploads", storage.uploads)
	}
}

func TestUploadRecipeImageRemovesLargeWhenRegularFails(t *testing.T) {
	storage := &fakeStorage{err: errors.New("connection reset"), failOn: 2}
	svc := newTestImageService(storage, &stubImageProcessor{output: []byte("small")})

	_, err := svc.UploadRecipeImage(context.Background(), uuid.New(), newImageUpload([]byte("original"), "image/jpeg"))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if len(storage.removed) != 1 || !strings.HasSuffix(storage.removed[0], "_large.jpg") {
		t.Fatalf("large variant should be removed, removed=%v", storage.removed)
	}
	if len(storage.objects) != 0 {
		t.Fatalf("no object should remain, got %+v", storage.objects)
	}
}

func TestUploadRecipeImageStorageFailure(t *testing.T) {
	svc := newTestImageService(&fakeStorage{err: errors.New("connection refused")}, nil)

	_, err := svc.UploadRecipeImage(context.Background(), uuid.New(), newImageUpload([]byte("jpeg"), "image/jpeg"))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestUploadRecipeImageDisabled(t *testing.T) {
	svc := NewImageService(nil, nil, ImageServiceConfig{Bucket: "recipes"})
	if svc.Enabled() {
		t.Fatalf("service without storage should be disabled")
	}
	if _, err := svc.UploadRecipeImage(context.Background(), uuid.New(), newImageUpload([]byte("x"), "image/jpeg")); !errors.Is(err, ErrStorageDisabled) {
		t.Fatalf("expected ErrStorageDisabled, got %v", err)
	}
}
