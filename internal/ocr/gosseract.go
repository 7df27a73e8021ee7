//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"syndicateiq/internal/models"
)

// ClientEngine recognises pages in-process through libtesseract.
type ClientEngine struct {
	Languages   []string
	TessdataDir string

	clientFactory func() *gosseract.Client
}

// NewClientEngine returns a gosseract-backed engine.
func NewClientEngine(lang, tessdataDir string) (Engine, error) {
	langs := strings.Split(lang, "+")
	return &ClientEngine{Languages: langs, TessdataDir: tessdataDir, clientFactory: gosseract.NewClient}, nil
}

func (e *ClientEngine) Name() string { return "gosseract" }

func (e *ClientEngine) Recognize(ctx context.Context, page models.PageImage) (models.PageText, error) {
	if err := ctx.Err(); err != nil {
		return models.PageText{}, err
	}
	c := e.clientFactory()
	defer c.Close()

	if e.TessdataDir != "" {
		if err := c.SetTessdataPrefix(e.TessdataDir); err != nil {
			return models.PageText{}, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if len(e.Languages) > 0 {
		if err := c.SetLanguage(e.Languages...); err != nil {
			return models.PageText{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetImage(page.Path); err != nil {
		return models.PageText{}, fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return models.PageText{}, fmt.Errorf("recognize text: %w", err)
	}

	// libtesseract cannot be interrupted mid-page; honour cancellation once it returns.
	if err := ctx.Err(); err != nil {
		return models.PageText{}, err
	}
	return models.PageText{
		PageIndex:  page.PageIndex,
		Text:       text,
		Confidence: wordConfidence(c),
	}, nil
}

func wordConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes)) / 100
}
