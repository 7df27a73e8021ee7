package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/h2non/filetype"

	"syndicateiq/internal/middleware"
	"syndicateiq/internal/models"
)

// DefaultMaxUploadBytes is the upload cap for PDF extraction.
const DefaultMaxUploadBytes = 50 << 20

// multipartOverhead is the body allowance for multipart framing on top of
// the file cap.
const multipartOverhead = 1 << 20

// Extractor turns PDF bytes into text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (*models.ExtractionResult, error)
}

// ExtractHandler handles PDF text extraction.
type ExtractHandler struct {
	extractor Extractor
	maxBytes  int64
	logger    *slog.Logger
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(extractor Extractor, maxBytes int64, logger *slog.Logger) *ExtractHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractHandler{extractor: extractor, maxBytes: maxBytes, logger: logger}
}

// RegisterRoutes registers extraction routes.
func (h *ExtractHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /api/pdf/extract", authMw(http.HandlerFunc(h.Extract)))
}

// extractResponse is the success envelope of POST /api/pdf/extract.
type extractResponse struct {
	Success   bool                    `json:"success"`
	Text      string                  `json:"text"`
	Source    models.ExtractionSource `json:"source"`
	PageCount int                     `json:"pageCount"`
}

// Extract handles POST /api/pdf/extract (multipart: pdf)
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.tooLarge(w)
			return
		}
		Error(w, http.StatusBadRequest, "No PDF file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("pdf")
	if err != nil {
		Error(w, http.StatusBadRequest, "No PDF file uploaded")
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		h.tooLarge(w)
		return
	}

	if mediaType, _, err := mime.ParseMediaType(header.Header.Get("Content-Type")); err != nil || mediaType != "application/pdf" {
		Error(w, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		Error(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	if !filetype.Is(data, "pdf") {
		Error(w, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	res, err := h.extractor.Extract(r.Context(), data)
	if err != nil {
		h.logger.Error("pdf extraction failed",
			"request_id", middleware.RequestID(r.Context()),
			"filename", header.Filename,
			"error", err,
		)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, extractResponse{
		Success:   true,
		Text:      res.Text,
		Source:    res.Source,
		PageCount: res.PageCount,
	})
}

func (h *ExtractHandler) tooLarge(w http.ResponseWriter) {
	Error(w, http.StatusRequestEntityTooLarge, "file exceeds the "+formatSize(h.maxBytes)+" limit")
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return strconv.FormatInt(n>>20, 10) + "MB"
	case n >= 1<<10 && n%(1<<10) == 0:
		return strconv.FormatInt(n>>10, 10) + "KB"
	default:
		return strconv.FormatInt(n, 10) + " bytes"
	}
}
