package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "pdf_directory: ./src\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.PDFDirectory != "./src" {
		t.Errorf("expected pdf_directory ./src, got %s", cfg.PDFDirectory)
	}
	if cfg.OutputDirectory != "./output" {
		t.Errorf("expected default output directory, got %s", cfg.OutputDirectory)
	}
	if cfg.OCRLanguage != "chi_sim" {
		t.Errorf("expected default language chi_sim, got %s", cfg.OCRLanguage)
	}
	if cfg.Marker != "设计变更通知单" {
		t.Errorf("expected default marker, got %s", cfg.Marker)
	}
	if cfg.DPI != 300 {
		t.Errorf("expected default dpi 300, got %d", cfg.DPI)
	}
	if cfg.Workers != 1 {
		t.Errorf("expected default workers 1, got %d", cfg.Workers)
	}
	if cfg.VerifyStartPage != 2 {
		t.Errorf("expected default verify start page 2, got %d", cfg.VerifyStartPage)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
pdf_directory: /data/src
output_directory: /data/out
matches_csv: /data/out/all.csv
ocr_language: eng
marker: CHANGE NOTICE
marker_ignore_case: true
dpi: 600
workers: 4
enhance_images: true
use_text_layer: true
tesseract_variables:
  tessedit_pageseg_mode: "3"
target_directories:
  - /archive/a
  - /archive/b
file_txt: /data/names.txt
content_regex:
  - "CN-[0-9]+"
filename_regex: "CN-[0-9]+"
verify_start_page: 1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OCRLanguage != "eng" || cfg.Marker != "CHANGE NOTICE" || !cfg.MarkerIgnoreCase {
		t.Errorf("marker options not loaded: %+v", cfg)
	}
	if cfg.DPI != 600 || cfg.Workers != 4 {
		t.Errorf("dpi/workers not loaded: %+v", cfg)
	}
	if !cfg.EnhanceImages || !cfg.UseTextLayer {
		t.Errorf("pipeline toggles not loaded: %+v", cfg)
	}
	if cfg.TesseractVars["tessedit_pageseg_mode"] != "3" {
		t.Errorf("tesseract variables not loaded: %+v", cfg.TesseractVars)
	}
	if len(cfg.TargetDirectories) != 2 || cfg.TargetDirectories[1] != "/archive/b" {
		t.Errorf("target directories not loaded: %+v", cfg.TargetDirectories)
	}
	if len(cfg.ContentRegex) != 1 || cfg.FilenameRegex != "CN-[0-9]+" {
		t.Errorf("regex options not loaded: %+v", cfg)
	}
	if cfg.VerifyStartPage != 1 {
		t.Errorf("expected verify start page 1, got %d", cfg.VerifyStartPage)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("PDFSIFT_TEST_ROOT", "/mnt/scans")
	path := writeConfig(t, "pdf_directory: ${PDFSIFT_TEST_ROOT}/src\ntarget_directories:\n  - ${PDFSIFT_TEST_ROOT}/archive\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PDFDirectory != "/mnt/scans/src" {
		t.Errorf("env not expanded: %s", cfg.PDFDirectory)
	}
	if cfg.TargetDirectories[0] != "/mnt/scans/archive" {
		t.Errorf("env not expanded in target dirs: %s", cfg.TargetDirectories[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
