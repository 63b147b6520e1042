// Package fileops implements the filesystem utilities that accompany the OCR
// pipeline: copying PDFs by filename keyword, renaming PDFs from exported
// match CSVs, and verifying file names against OCR content.
package fileops

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"go.uber.org/zap"
)

// CopyReport summarizes one CopyByName invocation.
type CopyReport struct {
	Copied int
	// Unmatched lists keywords for which no PDF was found, sorted.
	Unmatched []string
}

// LoadKeywords reads one keyword per line, skipping blank lines.
func LoadKeywords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyword file %s: %w", path, err)
	}
	defer f.Close()

	var keywords []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			keywords = append(keywords, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read keyword file %s: %w", path, err)
	}
	return keywords, nil
}

// CopyByName walks targetDirs recursively and copies every PDF whose file
// name contains at least one keyword into outputDir. Name collisions get a
// numeric suffix. The report lists keywords that never matched any file.
func CopyByName(targetDirs []string, keywords []string, outputDir string, logger *zap.Logger) (*CopyReport, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", outputDir, err)
	}

	matcher := ahocorasick.NewStringMatcher(keywords)
	matched := make(map[int]bool)
	report := &CopyReport{}

	for _, dir := range targetDirs {
		if _, err := os.Stat(dir); err != nil {
			logger.Warn("target directory does not exist", zap.String("dir", dir))
			continue
		}
		logger.Info("scanning directory", zap.String("dir", dir))

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
				return nil
			}

			name := d.Name()
			hits := matcher.Match([]byte(name))
			if len(hits) == 0 {
				return nil
			}
			for _, h := range hits {
				matched[h] = true
			}

			dst, err := copyFile(path, outputDir)
			if err != nil {
				logger.Error("failed to copy file",
					zap.String("file", name),
					zap.Error(err))
				return nil
			}
			logger.Info("copied file",
				zap.String("src", name),
				zap.String("dst", filepath.Base(dst)))
			report.Copied++
			return nil
		})
		if err != nil {
			return report, fmt.Errorf("walk %s: %w", dir, err)
		}
	}

	for i, kw := range keywords {
		if !matched[i] {
			report.Unmatched = append(report.Unmatched, kw)
		}
	}
	sort.Strings(report.Unmatched)
	return report, nil
}

// copyFile copies src into dir, appending _1, _2, ... when the name is
// taken, and preserves the source modification time. It returns the
// destination path.
func copyFile(src, dir string) (string, error) {
	name := filepath.Base(src)
	dst := filepath.Join(dir, name)

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			break
		}
		dst = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	if info, err := os.Stat(src); err == nil {
		os.Chtimes(dst, info.ModTime(), info.ModTime())
	}
	return dst, nil
}
