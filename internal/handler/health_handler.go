package handler

import "net/http"

// ServiceName is reported by the health endpoint.
const ServiceName = "syndicateiq-backend"

// RegisterHealth registers GET /health. It reports "ok" whenever the process
// can serve HTTP; the OCR toolchain is not probed here.
func RegisterHealth(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "ok", "service": ServiceName})
	})
}
