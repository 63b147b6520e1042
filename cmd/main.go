package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pdfsift/config"
	"pdfsift/export"
	"pdfsift/extract"
	"pdfsift/fileops"
	"pdfsift/journal"
	"pdfsift/logging"
	"pdfsift/ocr"
	"pdfsift/render"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: pdfsift <command> [flags]

commands:
  extract   run the OCR pipeline over pdf_directory and export match CSVs
  copy      copy PDFs whose names contain keywords from file_txt
  rename    rename PDFs from the per-document match CSVs
  verify    check that file names contain OCR-extracted content

flags:
  --config     path to the YAML config file (default ./config.yaml)
  --log-level  zap log level (default info)
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd := os.Args[1]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	configPath := fs.String("config", "./config.yaml", "path to the YAML config file")
	logLevel := fs.String("log-level", "info", "zap log level")
	fs.Parse(os.Args[2:])

	// Optional .env overlay; config path fields may reference ${VAR}.
	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(*logLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var runErr error
	switch cmd {
	case "extract":
		runErr = runExtract(ctx, cfg, logger)
	case "copy":
		runErr = runCopy(cfg, logger)
	case "rename":
		runErr = runRename(cfg, logger)
	case "verify":
		runErr = runVerify(ctx, cfg, logger)
	default:
		usage()
		os.Exit(2)
	}

	if runErr != nil {
		logger.Error("command failed", zap.String("command", cmd), zap.Error(runErr))
		logger.Sync()
		os.Exit(1)
	}
}

func runExtract(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.PDFDirectory == "" {
		return fmt.Errorf("pdf_directory is not configured")
	}
	docs, err := listPDFs(cfg.PDFDirectory)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		logger.Info("no PDF files found", zap.String("dir", cfg.PDFDirectory))
		return nil
	}
	logger.Info("starting extraction",
		zap.String("dir", cfg.PDFDirectory),
		zap.Int("documents", len(docs)))

	engine := ocr.NewTesseractEngine()
	if err := engine.Ping(cfg.OCRLanguage); err != nil {
		return err
	}

	var jrnl extract.Journal
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer j.Close()
		jrnl = j
	}

	ex := extract.New(render.NewFitzRenderer(logger), engine, jrnl, extract.Options{
		Marker:           cfg.Marker,
		MarkerIgnoreCase: cfg.MarkerIgnoreCase,
		Language:         cfg.OCRLanguage,
		DPI:              cfg.DPI,
		Workers:          cfg.Workers,
		EnhanceImages:    cfg.EnhanceImages,
		UseTextLayer:     cfg.UseTextLayer,
		TesseractVars:    cfg.TesseractVars,
	}, logger)

	res, err := ex.Run(ctx, docs)
	if err != nil {
		return err
	}

	written, err := export.NewWriter(logger, cfg.MatchesCSV).Export(res, cfg.OutputDirectory)
	if err != nil {
		return err
	}

	var zeroMatch []string
	for _, d := range res.Documents {
		if len(res.PerDocument[d]) == 0 {
			zeroMatch = append(zeroMatch, d)
		}
	}
	logger.Info("final report",
		zap.Int("processed", len(res.Documents)),
		zap.Strings("zero_match", zeroMatch),
		zap.Strings("failed", res.Failed),
		zap.Strings("skipped", res.Skipped),
		zap.Strings("csv_files", written))
	return nil
}

func runCopy(cfg *config.Config, logger *zap.Logger) error {
	if cfg.FileTxt == "" {
		return fmt.Errorf("file_txt is not configured")
	}
	keywords, err := fileops.LoadKeywords(cfg.FileTxt)
	if err != nil {
		return err
	}
	logger.Info("loaded keywords", zap.Int("count", len(keywords)))

	report, err := fileops.CopyByName(cfg.TargetDirectories, keywords, cfg.OutputDirectory, logger)
	if err != nil {
		return err
	}

	logger.Info("copy completed", zap.Int("copied", report.Copied))
	if len(report.Unmatched) > 0 {
		logger.Warn("keywords without matching PDFs", zap.Strings("keywords", report.Unmatched))
	}
	return nil
}

func runRename(cfg *config.Config, logger *zap.Logger) error {
	if len(cfg.ContentRegex) == 0 {
		return fmt.Errorf("content_regex is not configured")
	}
	_, err := fileops.RenameByCSV(cfg.PDFDirectory, cfg.OutputDirectory, cfg.ContentRegex, logger)
	return err
}

func runVerify(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.FilenameRegex == "" {
		return fmt.Errorf("filename_regex is not configured")
	}
	re, err := regexp.Compile(cfg.FilenameRegex)
	if err != nil {
		return fmt.Errorf("compile filename_regex: %w", err)
	}

	engine := ocr.NewTesseractEngine()
	if err := engine.Ping(cfg.OCRLanguage); err != nil {
		return err
	}

	ex := extract.New(render.NewFitzRenderer(logger), engine, nil, extract.Options{
		Language:      cfg.OCRLanguage,
		DPI:           cfg.DPI,
		EnhanceImages: cfg.EnhanceImages,
		TesseractVars: cfg.TesseractVars,
	}, logger)

	_, err = fileops.VerifyFilenames(ctx, ex, cfg.PDFDirectory, re, cfg.VerifyStartPage, logger)
	return err
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pdf directory %s: %w", dir, err)
	}

	var docs []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		docs = append(docs, filepath.Join(dir, e.Name()))
	}
	return docs, nil
}
