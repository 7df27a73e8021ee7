package ocr

import (
	"fmt"
	"log/slog"

	"syndicateiq/internal/config"
)

// NewFromConfig builds the renderer and OCR runner described by cfg.
func NewFromConfig(cfg config.OCRConfig, runner CommandRunner, logger *slog.Logger) (*PopplerRenderer, *Runner, error) {
	renderer := NewPopplerRenderer(runner, logger)
	if cfg.Pdftoppm != "" {
		renderer.Binary = cfg.Pdftoppm
	}
	renderer.DPI = cfg.DPI
	renderer.Format = cfg.ImageFormat
	renderer.MaxPages = cfg.MaxPages
	renderer.TempDir = cfg.TempDir

	var engine Engine
	switch cfg.Engine {
	case "", "cli":
		te := NewTesseractEngine(runner, cfg.Language)
		if cfg.Tesseract != "" {
			te.Binary = cfg.Tesseract
		}
		te.TessdataDir = cfg.TessdataDir
		engine = te
	case "client":
		var err error
		if engine, err = NewClientEngine(cfg.Language, cfg.TessdataDir); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
	}

	ocrRunner := NewRunner(engine, logger)
	ocrRunner.PageTimeout = cfg.PageTimeout
	return renderer, ocrRunner, nil
}
