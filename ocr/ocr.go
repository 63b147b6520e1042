// Package ocr abstracts the OCR engine behind a small capability interface so
// the pipeline can run against a fake engine in tests and the real Tesseract
// backend in production.
package ocr

import (
	"context"
	"fmt"
)

// Input is one page image submitted for recognition.
type Input struct {
	// ID identifies the input in logs and fakes, e.g. "report.pdf#3".
	ID string
	// Image is the PNG-encoded page image.
	Image []byte
	// PageIndex is the 1-based page number the image came from.
	PageIndex int
	// DPI is the resolution the page was rendered at; zero means unknown.
	DPI int
	// Language selects the engine's recognition model. It is passed through
	// verbatim from configuration.
	Language string
	// Variables carries engine-specific knobs (e.g. tessedit_pageseg_mode).
	Variables map[string]string
}

// Result is the recognized text for one input.
type Result struct {
	Text string
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Result, error)
}

// EngineError marks the engine itself as unusable (missing installation,
// unknown language model). It is fatal for the whole run, unlike a per-page
// recognition failure which degrades to empty text.
type EngineError struct {
	Engine string
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("ocr engine %s unavailable: %v", e.Engine, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
