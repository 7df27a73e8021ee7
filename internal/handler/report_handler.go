package handler

import (
	"bytes"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"syndicateiq/internal/events"
	"syndicateiq/internal/middleware"
	"syndicateiq/internal/models"
	"syndicateiq/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler renders report documents.
type ReportHandler struct {
	renderer *report.Renderer
	bus      *events.Bus
	logger   *slog.Logger
	now      func() time.Time
}

// NewReportHandler creates a new ReportHandler. bus may be nil.
func NewReportHandler(renderer *report.Renderer, bus *events.Bus, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{renderer: renderer, bus: bus, logger: logger, now: time.Now}
}

// RegisterRoutes registers report routes.
func (h *ReportHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /api/reports/html", authMw(http.HandlerFunc(h.HTML)))
	mux.Handle("POST /api/reports/xlsx", authMw(http.HandlerFunc(h.XLSX)))
}

// HTML handles POST /api/reports/html?mode=print|download
//
// print (default) returns a page that opens the print dialog on load;
// download returns the same document as an attachment.
func (h *ReportHandler) HTML(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "print"
	}
	if mode != "print" && mode != "download" {
		Error(w, http.StatusBadRequest, "mode must be print or download")
		return
	}

	var data models.ReportData
	if err := DecodeValid(w, r, reportSchema, &data); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.HTML(&buf, data, report.Options{AutoPrint: mode == "print"}); err != nil {
		h.logger.Error("report rendering failed", "request_id", middleware.RequestID(r.Context()), "error", err)
		Error(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if mode == "download" {
		setAttachment(w, report.Filename(data, "html", h.now()))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())

	h.publish("report.generated", "HTML report generated", data, mode)
}

// XLSX handles POST /api/reports/xlsx
func (h *ReportHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	var data models.ReportData
	if err := DecodeValid(w, r, reportSchema, &data); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := report.XLSX(data)
	if err != nil {
		h.logger.Error("xlsx export failed", "request_id", middleware.RequestID(r.Context()), "error", err)
		Error(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(raw)))
	setAttachment(w, report.Filename(data, "xlsx", h.now()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)

	h.publish("report.exported", "XLSX report exported", data, "xlsx")
}

func (h *ReportHandler) publish(topic, msg string, data models.ReportData, format string) {
	h.bus.Publish(events.Event{
		Level:   events.LevelSuccess,
		Topic:   topic,
		Message: msg,
		Fields:  map[string]string{"title": report.WithDefaults(data).Title, "format": format},
	})
}

func setAttachment(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
}
