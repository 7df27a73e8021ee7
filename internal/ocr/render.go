package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/disk"
	_ "golang.org/x/image/tiff"

	"syndicateiq/internal/models"
)

// ErrNoPages is returned when rendering produced no page images.
var ErrNoPages = errors.New("no pages rendered")

// Renderer converts a PDF into one image per page. The caller owns the
// returned images and must call cleanup once OCR is done with them.
type Renderer interface {
	Render(ctx context.Context, pdf []byte) (pages []models.PageImage, cleanup func() error, err error)
}

// lowDiskThreshold is the free space below which a render pass logs a warning.
const lowDiskThreshold = 512 << 20

// PopplerRenderer renders pages with pdftoppm into a private temp directory.
type PopplerRenderer struct {
	Binary   string
	DPI      int
	Format   string // "png" | "tiff"
	MaxPages int    // 0 = all
	TempDir  string // "" = os.TempDir()
	Runner   CommandRunner
	Logger   *slog.Logger

	diskFree func(path string) (uint64, error)
}

// NewPopplerRenderer returns a renderer with pdftoppm defaults filled in.
func NewPopplerRenderer(runner CommandRunner, logger *slog.Logger) *PopplerRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PopplerRenderer{
		Binary:   "pdftoppm",
		DPI:      300,
		Format:   "png",
		Runner:   runner,
		Logger:   logger,
		diskFree: freeBytes,
	}
}

// Render writes pdf into a fresh directory, rasterises every page and returns
// the images in page order.
func (r *PopplerRenderer) Render(ctx context.Context, pdf []byte) ([]models.PageImage, func() error, error) {
	base := r.TempDir
	if base == "" {
		base = os.TempDir()
	}
	r.warnIfLowDisk(base)

	dir := filepath.Join(base, "syndicateiq-render-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create render dir: %w", err)
	}
	cleanup := func() error { return os.RemoveAll(dir) }

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, pdf, 0o600); err != nil {
		return nil, cleanup, fmt.Errorf("write render input: %w", err)
	}

	ext := "png"
	formatFlag := "-png"
	if r.Format == "tiff" {
		ext, formatFlag = "tif", "-tiff"
	}
	dpi := r.DPI
	if dpi <= 0 {
		dpi = 300
	}

	prefix := filepath.Join(dir, "page")
	args := []string{"-r", strconv.Itoa(dpi), formatFlag}
	if r.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(r.MaxPages))
	}
	args = append(args, input, prefix)

	if _, errb, err := r.Runner.Run(ctx, r.binary(), args...); err != nil {
		return nil, cleanup, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(errb)))
	}

	matches, err := filepath.Glob(prefix + "-*." + ext)
	if err != nil {
		return nil, cleanup, fmt.Errorf("list rendered pages: %w", err)
	}
	sortPagePaths(matches)
	if r.MaxPages > 0 && len(matches) > r.MaxPages {
		matches = matches[:r.MaxPages]
	}
	if len(matches) == 0 {
		return nil, cleanup, ErrNoPages
	}

	pages := make([]models.PageImage, 0, len(matches))
	for i, path := range matches {
		if _, err := inspectImage(path); err != nil {
			return nil, cleanup, fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, models.PageImage{Path: path, PageIndex: i})
	}

	r.Logger.Debug("pages rendered", "pages", len(pages), "dir", dir, "dpi", dpi, "format", ext)
	return pages, cleanup, nil
}

func (r *PopplerRenderer) binary() string {
	if r.Binary == "" {
		return "pdftoppm"
	}
	return r.Binary
}

func (r *PopplerRenderer) warnIfLowDisk(dir string) {
	if r.diskFree == nil {
		return
	}
	free, err := r.diskFree(dir)
	if err != nil {
		r.Logger.Debug("disk usage unavailable", "dir", dir, "error", err)
		return
	}
	if free < lowDiskThreshold {
		r.Logger.Warn("low free space for page rendering", "dir", dir, "free_bytes", free)
	}
}

func freeBytes(path string) (uint64, error) {
	u, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return u.Free, nil
}

// inspectImage decodes only the header of a rendered page and rejects
// empty or undecodable output.
func inspectImage(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, fmt.Errorf("open page image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, fmt.Errorf("decode page image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return image.Config{}, fmt.Errorf("empty %s page image", format)
	}
	return cfg, nil
}

var rePageNumber = regexp.MustCompile(`-(\d+)\.[a-z]+$`)

// sortPagePaths orders pdftoppm output by page number; the tool zero-pads
// numbers only for documents past nine pages.
func sortPagePaths(paths []string) {
	slices.SortStableFunc(paths, func(a, b string) int {
		return pageNumber(a) - pageNumber(b)
	})
}

func pageNumber(path string) int {
	m := rePageNumber.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
