package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements Engine with the gosseract client. A fresh client
// is created per call; tesseract clients are not safe for concurrent use, so
// this keeps the engine usable from multiple workers.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Ping verifies that tesseract is installed and that the configured language
// model can be loaded, by recognizing a small blank image. Any failure here
// means no page could ever be recognized, so the caller should abort the run.
func (e *TesseractEngine) Ping(language string) error {
	c := e.clientFactory()
	defer c.Close()

	if language != "" {
		if err := c.SetLanguage(language); err != nil {
			return &EngineError{Engine: e.Name(), Err: fmt.Errorf("set language %q: %w", language, err)}
		}
	}
	if err := c.SetImageFromBytes(blankPNG()); err != nil {
		return &EngineError{Engine: e.Name(), Err: fmt.Errorf("set probe image: %w", err)}
	}
	if _, err := c.Text(); err != nil {
		return &EngineError{Engine: e.Name(), Err: err}
	}
	return nil
}

func (e *TesseractEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if in.Language != "" {
		if err := c.SetLanguage(in.Language); err != nil {
			return Result{}, fmt.Errorf("set language %q: %w", in.Language, err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return Result{}, fmt.Errorf("set image %s: %w", in.ID, err)
	}

	text, err := c.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize %s: %w", in.ID, err)
	}
	return Result{Text: text}, nil
}

func blankPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}
