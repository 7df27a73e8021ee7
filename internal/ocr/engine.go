package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"syndicateiq/internal/models"
)

// Engine recognises the text of a single rendered page.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, page models.PageImage) (models.PageText, error)
}

// TesseractEngine shells out to the tesseract CLI in TSV mode so text and
// word confidence come from a single invocation.
type TesseractEngine struct {
	Binary      string
	Language    string
	TessdataDir string
	Runner      CommandRunner
}

// NewTesseractEngine returns an engine for lang using runner.
func NewTesseractEngine(runner CommandRunner, lang string) *TesseractEngine {
	return &TesseractEngine{Binary: "tesseract", Language: lang, Runner: runner}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) Recognize(ctx context.Context, page models.PageImage) (models.PageText, error) {
	bin := e.Binary
	if bin == "" {
		bin = "tesseract"
	}
	// tesseract <file> stdout -l <lang> [--tessdata-dir d] tsv
	args := []string{page.Path, "stdout"}
	if e.Language != "" {
		args = append(args, "-l", e.Language)
	}
	if e.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.Runner.Run(ctx, bin, args...)
	if err != nil {
		return models.PageText{PageIndex: page.PageIndex}, fmt.Errorf("tesseract page %d: %w: %s",
			page.PageIndex+1, err, strings.TrimSpace(string(errb)))
	}

	text, conf := parseTSV(string(out))
	return models.PageText{
		PageIndex:  page.PageIndex,
		Text:       text,
		Confidence: conf,
	}, nil
}

const (
	tsvLevel = iota
	tsvPage
	tsvBlock
	tsvPar
	tsvLine
	tsvWord
	tsvLeft
	tsvTop
	tsvWidth
	tsvHeight
	tsvConf
	tsvText
	tsvColumns
)

// parseTSV rebuilds page text from tesseract word rows and returns the mean
// word confidence in 0..1. Lines are joined with newlines and paragraphs
// with a blank line.
func parseTSV(tsv string) (string, float64) {
	var (
		b        strings.Builder
		line     []string
		lastLine = ""
		lastPar  = ""
		sum, n   float64
	)
	flush := func() {
		if len(line) == 0 {
			return
		}
		b.WriteString(strings.Join(line, " "))
		line = line[:0]
	}

	for i, row := range strings.Split(tsv, "\n") {
		if i == 0 || row == "" {
			continue // header
		}
		cols := strings.Split(strings.TrimRight(row, "\r"), "\t")
		if len(cols) < tsvColumns || cols[tsvLevel] != "5" {
			continue
		}
		word := strings.TrimSpace(cols[tsvText])
		if word == "" {
			continue
		}

		par := cols[tsvPage] + "." + cols[tsvBlock] + "." + cols[tsvPar]
		key := par + "." + cols[tsvLine]
		if key != lastLine {
			flush()
			if b.Len() > 0 {
				if par != lastPar {
					b.WriteString("\n\n")
				} else {
					b.WriteString("\n")
				}
			}
			lastLine, lastPar = key, par
		}
		line = append(line, word)

		if c, err := strconv.ParseFloat(cols[tsvConf], 64); err == nil && c >= 0 {
			sum += c
			n++
		}
	}
	flush()

	if n == 0 {
		return b.String(), 0
	}
	return b.String(), sum / n / 100
}
