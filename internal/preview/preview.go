// Package preview rasterizes the first page of an uploaded PDF into an
// image the client can show as a thumbnail alongside the feedback.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/unidoc/unipdf/v3/model"
	"github.com/unidoc/unipdf/v3/render"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// Options controls rasterization. The zero value is not valid; start from
// DefaultOptions.
type Options struct {
	// Page is the 1-based page number to render.
	Page int
	// Scale multiplies the page's natural size in points.
	Scale float64
	// Format is FormatPNG or FormatJPEG.
	Format string
	// Quality applies to JPEG output, in (0, 1].
	Quality float64
}

// DefaultOptions matches what the web client shows: first page at 1.5x
// in PNG.
func DefaultOptions() Options {
	return Options{
		Page:    1,
		Scale:   1.5,
		Format:  FormatPNG,
		Quality: 0.95,
	}
}

func (o Options) validate() error {
	if o.Page < 1 {
		return fmt.Errorf("preview: page must be >= 1, got %d", o.Page)
	}
	if o.Scale <= 0 || o.Scale > 5 {
		return fmt.Errorf("preview: scale must be in (0, 5], got %g", o.Scale)
	}
	if o.Format != FormatPNG && o.Format != FormatJPEG {
		return fmt.Errorf("preview: unsupported format %q", o.Format)
	}
	if o.Quality <= 0 || o.Quality > 1 {
		return fmt.Errorf("preview: quality must be in (0, 1], got %g", o.Quality)
	}
	return nil
}

// ContentType returns the MIME type for the configured format.
func (o Options) ContentType() string {
	if o.Format == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Renderer turns a PDF stream into an encoded image.
type Renderer interface {
	Render(ctx context.Context, pdf io.Reader, opts Options) ([]byte, error)
}

// PDFRenderer implements Renderer with unipdf's raster device.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(ctx context.Context, pdf io.Reader, opts Options) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(pdf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	if numPages == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}
	if opts.Page > numPages {
		return nil, fmt.Errorf("page %d out of range, pdf has %d pages", opts.Page, numPages)
	}

	page, err := reader.GetPage(opts.Page)
	if err != nil {
		return nil, fmt.Errorf("get page %d: %w", opts.Page, err)
	}

	mediaBox, err := page.GetMediaBox()
	if err != nil {
		return nil, fmt.Errorf("media box: %w", err)
	}

	device := render.NewImageDevice()
	device.OutputWidth = int(mediaBox.Width() * opts.Scale)

	img, err := device.Render(page)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", opts.Page, err)
	}

	var buf bytes.Buffer
	switch opts.Format {
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: int(opts.Quality * 100)})
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", opts.Format, err)
	}
	return buf.Bytes(), nil
}

var _ Renderer = (*PDFRenderer)(nil)
