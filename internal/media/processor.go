package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"mime"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultRegularWidth = 640
	defaultJPEGQuality  = 82
)

var ErrUnsupportedImage = errors.New("media: unsupported image")

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type Result struct {
	Bytes       []byte
	ContentType string
	Resized     bool
}

type Processor interface {
	Process(ctx context.Context, upload Upload, maxWidth int) (*Result, error)
}

// Resizer scales images down to a maximum width in pure Go. PNG input stays
// PNG, everything else is re-encoded as JPEG since x/image only decodes WebP.
type Resizer struct {
	maxWidth    int
	jpegQuality int
	scaler      draw.Scaler
}

func NewResizer(maxWidth int) *Resizer {
	if maxWidth <= 0 {
		maxWidth = DefaultRegularWidth
	}
	return &Resizer{
		maxWidth:    maxWidth,
		jpegQuality: defaultJPEGQuality,
		scaler:      draw.CatmullRom,
	}
}

func (p *Resizer) Process(ctx context.Context, upload Upload, maxWidth int) (*Result, error) {
	if upload.Reader == nil {
		return nil, fmt.Errorf("media: empty reader")
	}
	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("media: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("media: empty image data")
	}

	contentType := NormalizeContentType(upload.ContentType, upload.FileName)

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrUnsupportedImage, bounds.Dx(), bounds.Dy())
	}

	target := maxWidth
	if target <= 0 {
		target = p.maxWidth
	}
	if bounds.Dx() <= target {
		return &Result{Bytes: data, ContentType: contentType, Resized: false}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := scaleToWidth(bounds.Dx(), bounds.Dy(), target)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	p.scaler.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var out bytes.Buffer
	outType := "image/jpeg"
	if contentType == "image/png" {
		outType = "image/png"
		err = png.Encode(&out, dst)
	} else {
		err = jpeg.Encode(&out, dst, &jpeg.Options{Quality: p.jpegQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("media: encode: %w", err)
	}

	return &Result{
		Bytes:       out.Bytes(),
		ContentType: outType,
		Resized:     true,
	}, nil
}

func scaleToWidth(width, height, maxWidth int) (int, int) {
	newH := int(math.Round(float64(height) * float64(maxWidth) / float64(width)))
	return ensureMin(maxWidth), ensureMin(newH)
}

func ensureMin(value int) int {
	if value < 2 {
		return 2
	}
	return value
}

// ExtensionFor returns the file extension matching a normalized content type.
func ExtensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

func NormalizeContentType(value, fileName string) string {
	ct := strings.ToLower(strings.TrimSpace(value))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct != "" && ct != "application/octet-stream" {
		if ct == "image/jpg" {
			return "image/jpeg"
		}
		return ct
	}
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(fileName)))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	}
	if ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return strings.ToLower(mt)
		}
	}
	return "image/jpeg"
}

var _ Processor = (*Resizer)(nil)
