// Package render turns PDF pages into raster images for OCR.
package render

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// RenderError marks a document that cannot be opened or rasterized at all.
// The batch skips the document and continues.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Renderer rasterizes a PDF one page at a time. fn receives the 1-based page
// number and the page image; the image is only valid for the duration of the
// call so callers must not retain it. A non-nil error from fn stops the
// document and is returned as-is. The returned count is the number of pages
// delivered to fn.
type Renderer interface {
	RenderPages(path string, dpi int, firstPage int, fn func(page int, img image.Image) error) (int, error)
}

// FitzRenderer renders pages with MuPDF via go-fitz. Rendering happens fully
// in memory; there are no temporary files to clean up.
type FitzRenderer struct {
	logger *zap.Logger
}

func NewFitzRenderer(logger *zap.Logger) *FitzRenderer {
	return &FitzRenderer{logger: logger}
}

func (r *FitzRenderer) RenderPages(path string, dpi int, firstPage int, fn func(page int, img image.Image) error) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, &RenderError{Path: path, Err: err}
	}
	defer doc.Close()

	if firstPage < 1 {
		firstPage = 1
	}

	total := doc.NumPage()
	rendered := 0
	for i := firstPage - 1; i < total; i++ {
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			r.logger.Error("failed to rasterize page",
				zap.String("file", path),
				zap.Int("page", i+1),
				zap.Error(err))
			continue
		}

		if err := fn(i+1, img); err != nil {
			return rendered, err
		}
		rendered++
	}

	return rendered, nil
}
