// Package preview derives thumbnails, text and file metadata from archived
// files. Processing never fails as a whole: each part falls back on its own.
package preview

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/natefinch/atomic"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"docarchive/internal/config"
	models "docarchive/internal/domain/models/archive"
)

const (
	// DefaultPlaceholder is used for files that have no preview renderer
	DefaultPlaceholder = "default_preview.png"
	// ErrorPlaceholder is used when rendering a supported file failed
	ErrorPlaceholder = "error_preview.png"
)

var errUnsupported = errors.New("unsupported file type")

// Metadata describes the file behind a document
type Metadata struct {
	Size         int64
	CreatedTime  time.Time // Falls back to ModifiedTime where birth time is unavailable
	ModifiedTime time.Time
	Type         string // MIME type, e.g. "image/png"
}

// Result is everything derived from one file
type Result struct {
	PreviewPath   string
	ExtractedText string
	Metadata      Metadata
}

// Options configures a Processor
type Options struct {
	PreviewDir     string // Generated thumbnails
	PlaceholderDir string // Holds DefaultPlaceholder and ErrorPlaceholder
	Size           int    // Thumbnail bounding box in pixels
	MaxTextBytes   int
}

// Processor turns a file into a Result
type Processor struct {
	opts   Options
	logger *slog.Logger
}

// NewProcessor creates a processor. Zero options take the config defaults.
func NewProcessor(opts Options, logger *slog.Logger) *Processor {
	if opts.Size <= 0 {
		opts.Size = config.PreviewSize
	}
	if opts.MaxTextBytes <= 0 {
		opts.MaxTextBytes = config.MaxExtractedTextBytes
	}
	return &Processor{opts: opts, logger: logger}
}

// Process derives preview, text and metadata for filePath concurrently.
// Failures are logged and replaced by placeholders or zero values.
func (p *Processor) Process(ctx context.Context, filePath string) Result {
	return p.process(ctx, filePath, filePath)
}

// process reads localPath but names the preview after ref, the reference
// stored on the document. They differ when a remote file was fetched to a
// temporary copy.
func (p *Processor) process(ctx context.Context, localPath, ref string) Result {
	var result Result

	// Each goroutine writes its own field and returns nil, so Wait cannot fail
	var g errgroup.Group
	g.Go(func() error {
		result.Metadata = p.metadata(localPath, ref)
		return nil
	})
	g.Go(func() error {
		result.PreviewPath = p.preview(ctx, localPath, ref)
		return nil
	})
	g.Go(func() error {
		result.ExtractedText = p.text(localPath)
		return nil
	})
	_ = g.Wait()

	return result
}

func (p *Processor) placeholder(name string) string {
	return filepath.Join(p.opts.PlaceholderDir, name)
}

func (p *Processor) metadata(localPath, ref string) Metadata {
	info, err := os.Stat(localPath)
	if err != nil {
		p.logger.Warn("stat failed", "file", ref, "error", err)
		return Metadata{Type: extensionType(ref)}
	}

	meta := Metadata{
		Size:         info.Size(),
		ModifiedTime: info.ModTime(),
		CreatedTime:  info.ModTime(),
		Type:         extensionType(ref),
	}
	if mtype, err := mimetype.DetectFile(localPath); err == nil {
		meta.Type = mtype.String()
	}
	return meta
}

// extensionType is the fallback type label when content sniffing fails
func extensionType(filePath string) string {
	return strings.ToLower(filepath.Ext(filePath))
}

// previewName is stable per source path, so re-processing overwrites the
// same file and two sources with the same base name don't collide.
func previewName(ref string) string {
	sum := sha1.Sum([]byte(ref))
	stem := strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
	return fmt.Sprintf("%s-%s_preview.png", stem, hex.EncodeToString(sum[:4]))
}

func (p *Processor) preview(ctx context.Context, localPath, ref string) string {
	target := filepath.Join(p.opts.PreviewDir, previewName(ref))
	if upToDate(target, localPath) {
		return target
	}

	err := p.renderThumbnail(ctx, localPath, target)
	switch {
	case err == nil:
		return target
	case errors.Is(err, errUnsupported):
		return p.placeholder(DefaultPlaceholder)
	default:
		p.logger.Warn("preview failed", "file", ref, "error", err)
		return p.placeholder(ErrorPlaceholder)
	}
}

// upToDate reports whether target exists and was written after source last
// changed. A replaced source file gets a fresh thumbnail.
func upToDate(target, source string) bool {
	t, err := os.Stat(target)
	if err != nil {
		return false
	}
	s, err := os.Stat(source)
	if err != nil {
		return false
	}
	return t.ModTime().After(s.ModTime())
}

func (p *Processor) renderThumbnail(ctx context.Context, source, target string) error {
	mtype, err := mimetype.DetectFile(source)
	if err != nil {
		return fmt.Errorf("detect type: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return errUnsupported
	}

	f, err := os.Open(source)
	if err != nil {
		return err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return errUnsupported
		}
		return fmt.Errorf("decode image: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumbnail(src, p.opts.Size)); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}

	if err := os.MkdirAll(p.opts.PreviewDir, 0755); err != nil {
		return fmt.Errorf("create preview directory: %w", err)
	}
	return atomic.WriteFile(target, &buf)
}

// thumbnail scales src down to fit a size×size box, keeping the aspect
// ratio. Images already inside the box are returned unchanged.
func thumbnail(src image.Image, size int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return src
	}

	if w >= h {
		h = max(1, h*size/w)
		w = size
	} else {
		w = max(1, w*size/h)
		h = size
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// text returns the content of plain-text files, capped at MaxTextBytes.
// Other types yield "".
func (p *Processor) text(filePath string) string {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil || !strings.HasPrefix(mtype.String(), "text/") {
		return ""
	}

	f, err := os.Open(filePath)
	if err != nil {
		p.logger.Warn("text extraction failed", "file", filePath, "error", err)
		return ""
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(p.opts.MaxTextBytes)))
	if err != nil {
		p.logger.Warn("text extraction failed", "file", filePath, "error", err)
		return ""
	}

	return trimPartialRune(data)
}

// trimPartialRune drops a UTF-8 sequence cut off by the read limit
func trimPartialRune(data []byte) string {
	for i := 0; i < utf8.UTFMax && len(data) > 0; i++ {
		if utf8.Valid(data) {
			break
		}
		data = data[:len(data)-1]
	}
	return strings.ToValidUTF8(string(data), "")
}

// DerivedFields converts r into the columns stored on a document. Empty
// text and unknown metadata are stored as NULL.
func (r Result) DerivedFields() *models.DerivedFields {
	derived := &models.DerivedFields{}
	if r.PreviewPath != "" {
		derived.PreviewPath = &r.PreviewPath
	}
	if r.ExtractedText != "" {
		derived.ExtractedText = &r.ExtractedText
	}
	if r.Metadata.Type != "" {
		derived.FileType = &r.Metadata.Type
	}
	if !r.Metadata.ModifiedTime.IsZero() {
		size := r.Metadata.Size
		created, modified := r.Metadata.CreatedTime, r.Metadata.ModifiedTime
		derived.FileSize = &size
		derived.FileCreatedAt = &created
		derived.FileModifiedAt = &modified
	}
	return derived
}
