// Command syndicatectl runs the extraction, scoring and report pipeline
// locally without the HTTP server.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"syndicateiq/internal/config"
	"syndicateiq/internal/esg"
	"syndicateiq/internal/middleware"
	"syndicateiq/internal/models"
	"syndicateiq/internal/ocr"
	"syndicateiq/internal/report"
	"syndicateiq/internal/service"
)

var (
	verbose    bool
	jsonOutput bool

	tokenUser string
	tokenRole string
	tokenTTL  time.Duration

	reportFormat string
	reportOut    string
	reportPrint  bool

	colorRed    = color.New(color.FgRed, color.Bold)
	colorGreen  = color.New(color.FgGreen, color.Bold)
	colorYellow = color.New(color.FgYellow)
	colorCyan   = color.New(color.FgCyan)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		colorRed.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "syndicatectl",
	Short:         "Operator tool for the syndicateiq due-diligence pipeline",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var extractCmd = &cobra.Command{
	Use:   "extract FILE.pdf",
	Short: "Extract text from a PDF (text layer first, OCR fallback)",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var scoreCmd = &cobra.Command{
	Use:   "score FILE",
	Short: "Score a PDF or text file against the ESG keyword tables",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token signed with JWT_SECRET",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

var reportCmd = &cobra.Command{
	Use:   "report DATA.json",
	Short: "Render report data as HTML or XLSX",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline steps to stderr")
	extractCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	scoreCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")

	tokenCmd.Flags().StringVar(&tokenUser, "user", "operator", "user id claim")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "analyst", "role claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default JWT_EXPIRATION)")

	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "html", "output format: html | xlsx")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output file (default derived from the title)")
	reportCmd.Flags().BoolVar(&reportPrint, "print", false, "embed the auto-print script in HTML output")

	rootCmd.AddCommand(extractCmd, scoreCmd, tokenCmd, reportCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newExtractionService(cfg *config.Config, logger *slog.Logger) (*service.ExtractionService, error) {
	renderer, ocrRunner, err := ocr.NewFromConfig(cfg.OCR, ocr.NewExecRunner(logger), logger)
	if err != nil {
		return nil, err
	}
	ocrRunner.OnPage = func(done, total int) {
		if verbose {
			colorCyan.Fprintf(os.Stderr, "  OCR page %d/%d\n", done, total)
		}
	}
	return service.NewExtractionService(service.NewPDFExtractor(), renderer, ocrRunner, nil, logger).
		WithMinTextLength(cfg.Extraction.MinTextLength), nil
}

func extractFile(cmd *cobra.Command, path string) (*models.ExtractionResult, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	svc, err := newExtractionService(cfg, newLogger())
	if err != nil {
		return nil, err
	}
	return svc.Extract(cmd.Context(), data)
}

func runExtract(cmd *cobra.Command, args []string) error {
	res, err := extractFile(cmd, args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(res)
	}
	colorGreen.Printf("✔ %s: %d page(s), source=%s, %d characters\n", filepath.Base(args[0]), res.PageCount, res.Source, len(res.Text))
	fmt.Println(res.Text)
	return nil
}

func runScore(cmd *cobra.Command, args []string) error {
	var text string
	if strings.EqualFold(filepath.Ext(args[0]), ".pdf") {
		res, err := extractFile(cmd, args[0])
		if err != nil {
			return err
		}
		text = res.Text
	} else {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		text = string(raw)
	}

	scorer := esg.NewScorer()
	if cfg, err := config.Load(); err == nil && cfg.ESG.KeywordsFile != "" {
		tables, err := esg.LoadTablesFile(cfg.ESG.KeywordsFile)
		if err != nil {
			return err
		}
		scorer = esg.NewScorer(tables...)
	}
	res := scorer.Score(text)
	if jsonOutput {
		return printJSON(res)
	}

	fmt.Printf("%-15s %3d/100  %s\n", "Environmental", res.Environmental, strings.Join(res.DetectedSignals[models.CategoryEnvironmental], ", "))
	fmt.Printf("%-15s %3d/100  %s\n", "Social", res.Social, strings.Join(res.DetectedSignals[models.CategorySocial], ", "))
	fmt.Printf("%-15s %3d/100  %s\n", "Governance", res.Governance, strings.Join(res.DetectedSignals[models.CategoryGovernance], ", "))
	fmt.Println(strings.Repeat("─", 40))

	c := colorGreen
	switch res.RiskLevel {
	case models.RiskMedium:
		c = colorYellow
	case models.RiskHigh:
		c = colorRed
	}
	c.Printf("Total %d/%d  risk %s\n", res.TotalScore, esg.MaxTotal, res.RiskLevel)
	for _, in := range res.Insights {
		fmt.Println("  •", in)
	}
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ttl := tokenTTL
	if ttl <= 0 {
		ttl = cfg.JWT.Expiration
	}
	token, err := middleware.IssueToken(cfg.JWT.Secret, tokenUser, tokenRole, ttl)
	if err != nil {
		return fmt.Errorf("%w (set JWT_SECRET)", err)
	}
	fmt.Println(token)
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var data models.ReportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	var out []byte
	switch reportFormat {
	case "html":
		renderer, err := report.NewRenderer()
		if err != nil {
			return err
		}
		var b strings.Builder
		if err := renderer.HTML(&b, data, report.Options{AutoPrint: reportPrint}); err != nil {
			return err
		}
		out = []byte(b.String())
	case "xlsx":
		if out, err = report.XLSX(data); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (allowed: html, xlsx)", reportFormat)
	}

	path := reportOut
	if path == "" {
		path = report.Filename(data, reportFormat, time.Now())
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return err
	}
	colorGreen.Printf("✔ wrote %s (%d bytes)\n", path, len(out))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
