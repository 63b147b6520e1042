// Package export writes extraction results to CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"pdfsift/extract"
)

// ExportError marks the output location as unusable. No results can be
// persisted, so the run should abort.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export to %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

var header = []string{"pdf_path", "page", "text"}

// Writer exports a Result as one CSV per matched document plus a combined
// CSV. Files are truncated on write, so exporting the same result twice
// produces byte-identical output.
type Writer struct {
	logger *zap.Logger
	// combinedPath overrides the combined CSV location; empty means
	// <outputDir>/matches.csv.
	combinedPath string
}

func NewWriter(logger *zap.Logger, combinedPath string) *Writer {
	return &Writer{logger: logger, combinedPath: combinedPath}
}

// Export writes the per-document CSVs for every document with at least one
// match, then the combined CSV with all matches. It returns the paths of the
// written files.
func (w *Writer) Export(res *extract.Result, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, &ExportError{Path: outputDir, Err: err}
	}

	var written []string
	for _, doc := range res.Documents {
		matches := res.PerDocument[doc]
		if len(matches) == 0 {
			continue
		}

		base := strings.TrimSuffix(filepath.Base(doc), filepath.Ext(doc))
		path := filepath.Join(outputDir, base+"_matches.csv")
		if err := writeCSV(path, matches); err != nil {
			return written, &ExportError{Path: path, Err: err}
		}
		w.logger.Info("wrote per-document matches",
			zap.String("file", path),
			zap.Int("matches", len(matches)))
		written = append(written, path)
	}

	combined := w.combinedPath
	if combined == "" {
		combined = filepath.Join(outputDir, "matches.csv")
	}
	if dir := filepath.Dir(combined); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return written, &ExportError{Path: combined, Err: err}
		}
	}
	if err := writeCSV(combined, res.AllMatches); err != nil {
		return written, &ExportError{Path: combined, Err: err}
	}
	w.logger.Info("wrote combined matches",
		zap.String("file", combined),
		zap.Int("matches", len(res.AllMatches)))
	written = append(written, combined)

	return written, nil
}

func writeCSV(path string, matches []extract.Match) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, m := range matches {
		if err := cw.Write([]string{m.Source, strconv.Itoa(m.Page), m.Text}); err != nil {
			f.Close()
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
