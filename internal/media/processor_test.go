package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestResizerShrinksWideImage(t *testing.T) {
	p := NewResizer(100)
	data := pngFixture(t, 400, 200)

	res, err := p.Process(context.Background(), Upload{Reader: bytes.NewReader(data), FileName: "cake.png"}, 0)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !res.Resized {
		t.Fatalf("expected resize")
	}
	if res.ContentType != "image/png" {
		t.Fatalf("content type = %s", res.ContentType)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(res.Bytes))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Fatalf("dimensions = %dx%d, want 100x50", cfg.Width, cfg.Height)
	}
}

func TestResizerKeepsSmallImage(t *testing.T) {
	p := NewResizer(640)
	data := pngFixture(t, 320, 100)

	res, err := p.Process(context.Background(), Upload{Reader: bytes.NewReader(data), ContentType: "image/png"}, 0)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Resized {
		t.Fatalf("small image should not be resized")
	}
	if !bytes.Equal(res.Bytes, data) {
		t.Fatalf("original bytes should be returned untouched")
	}
}

func TestResizerRejectsGarbage(t *testing.T) {
	p := NewResizer(0)
	_, err := p.Process(context.Background(), Upload{Reader: bytes.NewReader([]byte("not an image"))}, 0)
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
}

func TestNormalizeContentType(t *testing.T) {
	cases := []struct {
		contentType, fileName, want string
	}{
		{"image/JPG", "", "image/jpeg"},
		{"", "photo.webp", "image/webp"},
		{"application/octet-stream", "pic.png", "image/png"},
		{"image/png; charset=binary", "", "image/png"},
		{"", "", "image/jpeg"},
	}
	for _, tc := range cases {
		if got := NormalizeContentType(tc.contentType, tc.fileName); got != tc.want {
			t.Fatalf("NormalizeContentType(%q, %q) = %q, want %q", tc.contentType, tc.fileName, got, tc.want)
		}
	}
}
