// Package report renders due-diligence reports as printable HTML and XLSX.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"syndicateiq/internal/models"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

// Defaults substituted for missing report fields.
const (
	DefaultTitle        = "Due Diligence Report"
	DefaultBorrowerName = "Unknown Borrower"
	NotAvailable        = "N/A"
)

// Options controls how a report document is produced.
type Options struct {
	// AutoPrint embeds a script that opens the browser print dialog on load.
	AutoPrint bool
}

// Renderer fills the report template.
type Renderer struct {
	tmpl *template.Template
	md   goldmark.Markdown
	now  func() time.Time
}

// NewRenderer parses the embedded template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("report.html.tmpl").
		Funcs(template.FuncMap{"fmtTime": fmtTime}).
		ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing report template: %w", err)
	}
	return &Renderer{
		tmpl: tmpl,
		md:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		now:  time.Now,
	}, nil
}

type view struct {
	ID          string
	GeneratedAt string
	Data        models.ReportData
	Notes       template.HTML
	AutoPrint   bool
}

// HTML writes a standalone HTML document for data.
func (r *Renderer) HTML(w io.Writer, data models.ReportData, opts Options) error {
	data = WithDefaults(data)

	var notes bytes.Buffer
	if strings.TrimSpace(data.Notes) != "" {
		// goldmark drops raw HTML unless html.WithUnsafe is set.
		if err := r.md.Convert([]byte(data.Notes), &notes); err != nil {
			return fmt.Errorf("rendering notes: %w", err)
		}
	}

	v := view{
		ID:          uuid.NewString(),
		GeneratedAt: r.now().UTC().Format("2006-01-02 15:04 MST"),
		Data:        data,
		Notes:       template.HTML(notes.String()),
		AutoPrint:   opts.AutoPrint,
	}
	if err := r.tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("executing report template: %w", err)
	}
	return nil
}

// WithDefaults fills missing title, borrower fields and approval status.
func WithDefaults(d models.ReportData) models.ReportData {
	if strings.TrimSpace(d.Title) == "" {
		d.Title = DefaultTitle
	}
	b := &d.Borrower
	b.Name = orDefault(b.Name, DefaultBorrowerName)
	b.Industry = orDefault(b.Industry, NotAvailable)
	b.Jurisdiction = orDefault(b.Jurisdiction, NotAvailable)
	b.FacilityType = orDefault(b.FacilityType, NotAvailable)
	b.FacilityValue = orDefault(b.FacilityValue, NotAvailable)
	b.CreditRating = orDefault(b.CreditRating, NotAvailable)
	if d.ApprovalStatus == "" {
		d.ApprovalStatus = models.ApprovalPending
	}
	return d
}

var reNonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Filename returns a download name such as "acme-term-loan-2026-10-17.html".
func Filename(d models.ReportData, ext string, at time.Time) string {
	title := d.Title
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	slug := strings.Trim(reNonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		slug = "report"
	}
	return fmt.Sprintf("%s-%s.%s", slug, at.Format("2006-01-02"), ext)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.UTC().Format("2006-01-02 15:04")
}
