package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"

	"syndicateiq/internal/events"
	"syndicateiq/internal/models"
	"syndicateiq/internal/ocr"
)

// DefaultMinTextLength is the trimmed character count below which the text
// layer is considered missing and OCR output is considered unusable.
const DefaultMinTextLength = 100

var (
	// ErrNoPages means the renderer produced no page images.
	ErrNoPages = ocr.ErrNoPages
	// ErrInsufficientText means OCR ran but yielded too little text.
	ErrInsufficientText = errors.New("insufficient text extracted")
	// ErrOCRFailed wraps any failure reported by the OCR engine.
	ErrOCRFailed = errors.New("ocr failed")
)

// ExtractionError is the single failure type returned by ExtractionService.
type ExtractionError struct {
	Stage string // "render" | "ocr" | "validate"
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("pdf extraction failed during %s: %v", e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// PageRecognizer runs OCR over rendered pages in order.
type PageRecognizer interface {
	Run(ctx context.Context, pages []models.PageImage) (ocr.Result, error)
}

// ExtractionService reads the PDF text layer and falls back to rendering
// and OCR when the layer is missing or too short.
type ExtractionService struct {
	text          TextExtractor
	renderer      ocr.Renderer
	recognizer    PageRecognizer
	bus           *events.Bus
	logger        *slog.Logger
	minTextLength int
}

// NewExtractionService creates a new ExtractionService. bus may be nil.
func NewExtractionService(text TextExtractor, renderer ocr.Renderer, recognizer PageRecognizer, bus *events.Bus, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{
		text:          text,
		renderer:      renderer,
		recognizer:    recognizer,
		bus:           bus,
		logger:        logger,
		minTextLength: DefaultMinTextLength,
	}
}

// WithMinTextLength overrides the sufficiency threshold.
func (s *ExtractionService) WithMinTextLength(n int) *ExtractionService {
	s.minTextLength = n
	return s
}

// Extract returns the document text. Failures are always *ExtractionError.
func (s *ExtractionService) Extract(ctx context.Context, data []byte) (*models.ExtractionResult, error) {
	start := time.Now()
	fp := Fingerprint(data)
	log := s.logger.With("fingerprint", fp, "bytes", len(data))
	s.publish(events.LevelInfo, "extraction.started", "PDF received for extraction", map[string]string{"fingerprint": fp})

	text, pages, err := s.text.Extract(ctx, data)
	trimmed := strings.TrimSpace(text)
	if err == nil && charCount(trimmed) >= s.minTextLength {
		if pages < 1 {
			pages = 1
		}
		log.Info("text layer extracted", "source", models.SourceDigital, "pages", pages, "chars", charCount(trimmed),
			"duration_ms", time.Since(start).Milliseconds())
		s.publish(events.LevelSuccess, "extraction.completed", "Text extracted from PDF text layer",
			map[string]string{"fingerprint": fp, "source": string(models.SourceDigital), "pages": strconv.Itoa(pages)})
		return &models.ExtractionResult{Text: trimmed, Source: models.SourceDigital, PageCount: pages}, nil
	}

	if err != nil {
		log.Warn("text layer unreadable, falling back to OCR", "error", err)
	} else {
		log.Info("text layer too short, falling back to OCR", "chars", charCount(trimmed), "min", s.minTextLength)
	}
	s.publish(events.LevelWarning, "extraction.ocr_fallback", "Scanned document detected, running OCR",
		map[string]string{"fingerprint": fp})

	res, err := s.extractOCR(ctx, log, data)
	if err != nil {
		log.Error("extraction failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		s.publish(events.LevelError, "extraction.failed", err.Error(), map[string]string{"fingerprint": fp})
		return nil, err
	}

	log.Info("text extracted with OCR", "source", models.SourceOCR, "pages", res.PageCount, "chars", charCount(res.Text),
		"duration_ms", time.Since(start).Milliseconds())
	s.publish(events.LevelSuccess, "extraction.completed", "Text extracted with OCR",
		map[string]string{"fingerprint": fp, "source": string(models.SourceOCR), "pages": strconv.Itoa(res.PageCount)})
	return res, nil
}

func (s *ExtractionService) extractOCR(ctx context.Context, log *slog.Logger, data []byte) (*models.ExtractionResult, error) {
	pages, cleanup, err := s.renderer.Render(ctx, data)
	if cleanup != nil {
		defer func() {
			if cerr := cleanup(); cerr != nil {
				log.Warn("failed to remove page images", "error", cerr)
			}
		}()
	}
	if err != nil {
		return nil, &ExtractionError{Stage: "render", Err: err}
	}
	if len(pages) == 0 {
		return nil, &ExtractionError{Stage: "render", Err: ErrNoPages}
	}
	log.Debug("pages rendered", "pages", len(pages))

	out, err := s.recognizer.Run(ctx, pages)
	if err != nil {
		log.Warn("ocr pass aborted", "recognised_pages", len(out.Pages), "pages", len(pages))
		return nil, &ExtractionError{Stage: "ocr", Err: fmt.Errorf("%w: %w", ErrOCRFailed, err)}
	}

	trimmed := strings.TrimSpace(out.Text)
	if n := charCount(trimmed); n < s.minTextLength {
		return nil, &ExtractionError{
			Stage: "validate",
			Err:   fmt.Errorf("%w: OCR produced %d characters, need at least %d", ErrInsufficientText, n, s.minTextLength),
		}
	}

	log.Debug("ocr confidence", "confidence", out.MeanConfidence())
	// The threshold applies to the raw OCR output; folding only shapes the returned text.
	return &models.ExtractionResult{Text: ocr.Normalize(trimmed), Source: models.SourceOCR, PageCount: len(pages)}, nil
}

func (s *ExtractionService) publish(level events.Level, topic, msg string, fields map[string]string) {
	s.bus.Publish(events.Event{Level: level, Topic: topic, Message: msg, Fields: fields})
}

// Fingerprint returns a short BLAKE2b-256 digest identifying a document.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

func charCount(s string) int {
	return utf8.RuneCountInString(s)
}
