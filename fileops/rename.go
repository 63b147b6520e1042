package fileops

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// RenameReport summarizes one RenameByCSV invocation.
type RenameReport struct {
	Renamed int
	Failed  int
	Skipped int
}

var invalidNameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// RenameByCSV renames PDFs in pdfDir using the per-document match CSVs in
// outputDir. For each <name>_matches.csv the first matched line is run
// through patterns (first match wins) and the extracted content becomes the
// new file name. Files whose CSV yields no match, or whose PDF is missing,
// are skipped; an existing target name counts as a failure.
func RenameByCSV(pdfDir, outputDir string, patterns []string, logger *zap.Logger) (*RenameReport, error) {
	csvFiles, err := filepath.Glob(filepath.Join(outputDir, "*_matches.csv"))
	if err != nil {
		return nil, fmt.Errorf("glob match CSVs: %w", err)
	}
	if len(csvFiles) == 0 {
		logger.Warn("no match CSVs found", zap.String("dir", outputDir))
		return &RenameReport{}, nil
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile content regex %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}

	logger.Info("found match CSVs", zap.Int("count", len(csvFiles)))
	report := &RenameReport{}

	for _, csvPath := range csvFiles {
		oldName := strings.TrimSuffix(filepath.Base(csvPath), "_matches.csv")
		oldPDF := filepath.Join(pdfDir, oldName+".pdf")

		if _, err := os.Stat(oldPDF); err != nil {
			logger.Warn("no PDF for match CSV, skipping",
				zap.String("csv", filepath.Base(csvPath)),
				zap.String("pdf", oldPDF))
			report.Skipped++
			continue
		}

		text, err := firstMatchedText(csvPath)
		if err != nil {
			logger.Error("failed to read match CSV",
				zap.String("csv", filepath.Base(csvPath)),
				zap.Error(err))
			report.Failed++
			continue
		}

		newName := ""
		for _, re := range compiled {
			if m := re.FindString(text); m != "" {
				newName = m
				break
			}
		}
		if newName == "" {
			logger.Warn("no regex match in CSV content, skipping",
				zap.String("csv", filepath.Base(csvPath)),
				zap.String("text", text))
			report.Skipped++
			continue
		}

		newName = invalidNameChars.ReplaceAllString(newName, "_")
		newPDF := filepath.Join(pdfDir, newName+".pdf")
		if newPDF == oldPDF {
			report.Skipped++
			continue
		}
		if _, err := os.Stat(newPDF); err == nil {
			logger.Error("target name already exists",
				zap.String("old", oldName+".pdf"),
				zap.String("new", newName+".pdf"))
			report.Failed++
			continue
		}

		if err := os.Rename(oldPDF, newPDF); err != nil {
			logger.Error("rename failed",
				zap.String("old", oldName+".pdf"),
				zap.String("new", newName+".pdf"),
				zap.Error(err))
			report.Failed++
			continue
		}

		logger.Info("renamed",
			zap.String("old", oldName+".pdf"),
			zap.String("new", newName+".pdf"))
		report.Renamed++
	}

	logger.Info("rename task completed",
		zap.Int("renamed", report.Renamed),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

// firstMatchedText returns the text column of the first data row.
func firstMatchedText(csvPath string) (string, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return "", err
	}

	textCol := len(header) - 1
	for i, col := range header {
		if col == "text" {
			textCol = i
			break
		}
	}

	row, err := r.Read()
	if err != nil {
		return "", fmt.Errorf("no data rows: %w", err)
	}
	if textCol >= len(row) {
		return "", fmt.Errorf("row has no text column")
	}
	return strings.TrimSpace(row[textCol]), nil
}
