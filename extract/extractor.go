// Package extract drives the PDF → image → OCR → marker-match pipeline and
// aggregates results across a batch of documents.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"regexp"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pdfsift/ocr"
	"pdfsift/render"
)

// Options is the immutable configuration the orchestrator is constructed
// with.
type Options struct {
	Marker           string
	MarkerIgnoreCase bool
	Language         string
	DPI              int
	Workers          int
	EnhanceImages    bool
	UseTextLayer     bool
	TesseractVars    map[string]string
}

// Journal records which documents a previous run already completed so they
// can be skipped on re-run. A nil Journal disables skipping.
type Journal interface {
	IsDone(path string) (bool, error)
	MarkDone(path string) error
}

// Extractor iterates input PDFs, rasterizes and recognizes each page, and
// collects marker-matching lines. Per-document failures never abort the
// batch; an unusable OCR engine does.
type Extractor struct {
	renderer render.Renderer
	engine   ocr.Engine
	journal  Journal
	opts     Options
	logger   *zap.Logger
}

func New(renderer render.Renderer, engine ocr.Engine, jrnl Journal, opts Options, logger *zap.Logger) *Extractor {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.DPI <= 0 {
		opts.DPI = 300
	}
	return &Extractor{
		renderer: renderer,
		engine:   engine,
		journal:  jrnl,
		opts:     opts,
		logger:   logger,
	}
}

// Run processes docs in input order and returns the aggregated result.
// AllMatches is ordered by document input order, then page order, then line
// order, regardless of worker count.
func (e *Extractor) Run(ctx context.Context, docs []string) (*Result, error) {
	log := e.logger.With(zap.String("run_id", uuid.NewString()))
	res := &Result{PerDocument: make(map[string][]Match)}

	pending := make([]string, 0, len(docs))
	for _, d := range docs {
		if e.journal != nil {
			done, err := e.journal.IsDone(d)
			if err != nil {
				log.Warn("journal lookup failed", zap.String("file", d), zap.Error(err))
			} else if done {
				log.Info("skipping document recorded as done", zap.String("file", d))
				res.Skipped = append(res.Skipped, d)
				continue
			}
		}
		pending = append(pending, d)
	}

	type docResult struct {
		matches []Match
		err     error
	}
	results := make([]docResult, len(pending))

	if e.opts.Workers <= 1 || len(pending) <= 1 {
		for i, d := range pending {
			m, err := e.processDocument(ctx, log, d)
			results[i] = docResult{matches: m, err: err}
			if err != nil && !isDocumentError(err) {
				return nil, err
			}
		}
	} else {
		poolCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < e.opts.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					m, err := e.processDocument(poolCtx, log, pending[i])
					results[i] = docResult{matches: m, err: err}
					if err != nil && !isDocumentError(err) {
						cancel()
					}
				}
			}()
		}
		for i := range pending {
			select {
			case jobs <- i:
			case <-poolCtx.Done():
			}
		}
		close(jobs)
		wg.Wait()

		for _, r := range results {
			if r.err != nil && !isDocumentError(r.err) {
				return nil, r.err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	// Merge in input order so the combined result is deterministic.
	for i, d := range pending {
		r := results[i]
		if r.err != nil {
			log.Error("document failed", zap.String("file", d), zap.Error(r.err))
			res.Failed = append(res.Failed, d)
			continue
		}
		res.Documents = append(res.Documents, d)
		res.PerDocument[d] = r.matches
		res.AllMatches = append(res.AllMatches, r.matches...)
		if e.journal != nil {
			if err := e.journal.MarkDone(d); err != nil {
				log.Warn("failed to journal document", zap.String("file", d), zap.Error(err))
			}
		}
	}

	log.Info("extraction run completed",
		zap.Int("processed", len(res.Documents)),
		zap.Int("matches", len(res.AllMatches)),
		zap.Int("failed", len(res.Failed)),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

// ExtractRegex recognizes a single document starting at startPage and returns
// the regex-extracted content per line. Used by the filename verification
// utility.
func (e *Extractor) ExtractRegex(ctx context.Context, path string, re *regexp.Regexp, startPage int) ([]Match, error) {
	var matches []Match
	err := e.ocrPages(ctx, e.logger, path, startPage, func(page int, text string) {
		for _, m := range FilterRegex(text, re) {
			matches = append(matches, Match{Source: path, Page: page, Text: m})
		}
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (e *Extractor) processDocument(ctx context.Context, log *zap.Logger, path string) ([]Match, error) {
	if e.opts.UseTextLayer {
		if m, ok := e.textLayerMatches(path); ok {
			log.Info("used embedded text layer",
				zap.String("file", path),
				zap.Int("matches", len(m)))
			return m, nil
		}
	}

	var matches []Match
	err := e.ocrPages(ctx, log, path, 1, func(page int, text string) {
		for _, line := range FilterLines(text, e.opts.Marker, e.opts.MarkerIgnoreCase) {
			log.Info("marker line found",
				zap.String("file", path),
				zap.Int("page", page),
				zap.String("text", line))
			matches = append(matches, Match{Source: path, Page: page, Text: line})
		}
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// ocrPages rasterizes and recognizes each page of path, calling onText with
// the recognized text. A page that fails recognition is reported as empty
// text; only renderer and engine-level failures propagate. Each page image is
// discarded as soon as its OCR call returns.
func (e *Extractor) ocrPages(ctx context.Context, log *zap.Logger, path string, firstPage int, onText func(page int, text string)) error {
	pages, err := e.renderer.RenderPages(path, e.opts.DPI, firstPage, func(page int, img image.Image) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if e.opts.EnhanceImages {
			img = ocr.Enhance(img)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			log.Error("failed to encode page image",
				zap.String("file", path),
				zap.Int("page", page),
				zap.Error(err))
			return nil
		}

		res, err := e.engine.Recognize(ctx, ocr.Input{
			ID:        fmt.Sprintf("%s#%d", path, page),
			Image:     buf.Bytes(),
			PageIndex: page,
			DPI:       e.opts.DPI,
			Language:  e.opts.Language,
			Variables: e.opts.TesseractVars,
		})
		if err != nil {
			var eerr *ocr.EngineError
			if errors.As(err, &eerr) {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("page recognition failed, treating page as empty",
				zap.String("file", path),
				zap.Int("page", page),
				zap.Error(err))
			res = ocr.Result{}
		}

		onText(page, res.Text)
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("document processed", zap.String("file", path), zap.Int("pages", pages))
	return nil
}

// isDocumentError reports whether err only fails a single document. Anything
// else (engine unavailable, cancellation) is fatal for the batch.
func isDocumentError(err error) bool {
	var rerr *render.RenderError
	return errors.As(err, &rerr)
}
