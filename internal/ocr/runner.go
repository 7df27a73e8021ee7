package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"syndicateiq/internal/models"
)

// PageSeparator joins recognised page texts.
const PageSeparator = "\n\n"

// Result is the output of one OCR pass.
type Result struct {
	Pages []models.PageText
	Text  string
}

// MeanConfidence averages the per-page confidence over pages that report one.
func (r Result) MeanConfidence() float64 {
	var sum float64
	var n int
	for _, p := range r.Pages {
		if p.Confidence > 0 {
			sum += p.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Runner recognises pages one at a time, in order. Cancelling ctx stops the
// pass before the next page; pages already recognised are returned with the
// error.
type Runner struct {
	Engine      Engine
	PageTimeout time.Duration // 0 = no per-page limit
	Logger      *slog.Logger

	// OnPage, when set, is called after each page is recognised.
	OnPage func(done, total int)
}

// NewRunner returns a Runner using engine.
func NewRunner(engine Engine, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Engine: engine, Logger: logger}
}

// Run recognises pages in slice order and joins their text with
// PageSeparator.
func (r *Runner) Run(ctx context.Context, pages []models.PageImage) (Result, error) {
	res := Result{Pages: make([]models.PageText, 0, len(pages))}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			res.Text = joinPages(res.Pages)
			return res, fmt.Errorf("ocr stopped before page %d: %w", page.PageIndex+1, err)
		}

		start := time.Now()
		pt, err := r.recognize(ctx, page)
		if err != nil {
			res.Text = joinPages(res.Pages)
			return res, fmt.Errorf("%s page %d: %w", r.Engine.Name(), page.PageIndex+1, err)
		}
		pt.PageIndex = page.PageIndex
		res.Pages = append(res.Pages, pt)

		r.Logger.Debug("page recognised",
			"page", page.PageIndex+1,
			"chars", utf8.RuneCountInString(pt.Text),
			"confidence", pt.Confidence,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		if r.OnPage != nil {
			r.OnPage(len(res.Pages), len(pages))
		}
	}

	res.Text = joinPages(res.Pages)
	return res, nil
}

func (r *Runner) recognize(ctx context.Context, page models.PageImage) (models.PageText, error) {
	if r.PageTimeout <= 0 {
		return r.Engine.Recognize(ctx, page)
	}
	pctx, cancel := context.WithTimeout(ctx, r.PageTimeout)
	defer cancel()
	return r.Engine.Recognize(pctx, page)
}

func joinPages(pages []models.PageText) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, PageSeparator)
}
