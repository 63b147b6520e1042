package fileops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"pdfsift/extract"
)

// RegexExtractor recognizes a document and returns regex-extracted content
// per line. Implemented by extract.Extractor.
type RegexExtractor interface {
	ExtractRegex(ctx context.Context, path string, re *regexp.Regexp, startPage int) ([]extract.Match, error)
}

// VerifyReport summarizes one VerifyFilenames invocation.
type VerifyReport struct {
	Checked    int
	Mismatched int
	// Mismatches lists file names whose OCR-extracted content is absent from
	// the name.
	Mismatches []string
}

// VerifyFilenames runs OCR on every PDF in pdfDir starting at startPage,
// extracts content with re, and reports files whose extracted content does
// not appear in the file name. Files that fail OCR or yield no extracted
// content are logged and skipped.
func VerifyFilenames(ctx context.Context, ex RegexExtractor, pdfDir string, re *regexp.Regexp, startPage int, logger *zap.Logger) (*VerifyReport, error) {
	entries, err := os.ReadDir(pdfDir)
	if err != nil {
		return nil, fmt.Errorf("read pdf directory %s: %w", pdfDir, err)
	}

	report := &VerifyReport{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		name := entry.Name()
		path := filepath.Join(pdfDir, name)
		matches, err := ex.ExtractRegex(ctx, path, re, startPage)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			logger.Error("failed to extract content", zap.String("file", name), zap.Error(err))
			continue
		}
		if len(matches) == 0 {
			logger.Warn("no content extracted", zap.String("file", name))
			continue
		}

		report.Checked++
		content := matches[0].Text
		if !strings.Contains(name, content) {
			logger.Warn("file name does not contain extracted content",
				zap.String("file", name),
				zap.String("content", content))
			report.Mismatched++
			report.Mismatches = append(report.Mismatches, name)
		}
	}

	logger.Info("verification completed",
		zap.Int("checked", report.Checked),
		zap.Int("mismatched", report.Mismatched))
	return report, nil
}
