package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every option recognized by the pdfsift commands. The value
// returned by Load is treated as immutable; components receive it by value or
// read individual fields at construction time.
type Config struct {
	// Extraction pipeline
	PDFDirectory    string `yaml:"pdf_directory"`
	OutputDirectory string `yaml:"output_directory"`
	MatchesCSV      string `yaml:"matches_csv"`
	LogFile         string `yaml:"log_file"`

	OCRLanguage      string            `yaml:"ocr_language"`
	Marker           string            `yaml:"marker"`
	MarkerIgnoreCase bool              `yaml:"marker_ignore_case"`
	DPI              int               `yaml:"dpi"`
	Workers          int               `yaml:"workers"`
	EnhanceImages    bool              `yaml:"enhance_images"`
	UseTextLayer     bool              `yaml:"use_text_layer"`
	JournalPath      string            `yaml:"journal_path"`
	TesseractVars    map[string]string `yaml:"tesseract_variables"`

	// Copy utility
	TargetDirectories []string `yaml:"target_directories"`
	FileTxt           string   `yaml:"file_txt"`

	// Rename / verify utilities
	ContentRegex    []string `yaml:"content_regex"`
	FilenameRegex   string   `yaml:"filename_regex"`
	VerifyStartPage int      `yaml:"verify_start_page"`
}

// Load reads a YAML config file, expands environment variables in path
// fields and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.PDFDirectory = os.ExpandEnv(cfg.PDFDirectory)
	cfg.OutputDirectory = os.ExpandEnv(cfg.OutputDirectory)
	cfg.MatchesCSV = os.ExpandEnv(cfg.MatchesCSV)
	cfg.LogFile = os.ExpandEnv(cfg.LogFile)
	cfg.JournalPath = os.ExpandEnv(cfg.JournalPath)
	cfg.FileTxt = os.ExpandEnv(cfg.FileTxt)
	for i, dir := range cfg.TargetDirectories {
		cfg.TargetDirectories[i] = os.ExpandEnv(dir)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.OutputDirectory == "" {
		c.OutputDirectory = "./output"
	}
	if c.OCRLanguage == "" {
		c.OCRLanguage = "chi_sim"
	}
	if c.Marker == "" {
		c.Marker = "设计变更通知单"
	}
	if c.DPI <= 0 {
		c.DPI = 300
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.VerifyStartPage <= 0 {
		c.VerifyStartPage = 2
	}
}
