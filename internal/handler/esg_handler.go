package handler

import (
	"net/http"

	"syndicateiq/internal/esg"
)

// ESGHandler scores text against the ESG keyword tables.
type ESGHandler struct {
	scorer *esg.Scorer
}

// NewESGHandler creates a new ESGHandler.
func NewESGHandler(scorer *esg.Scorer) *ESGHandler {
	if scorer == nil {
		scorer = esg.NewScorer()
	}
	return &ESGHandler{scorer: scorer}
}

// RegisterRoutes registers ESG routes.
func (h *ESGHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /api/esg/score", authMw(http.HandlerFunc(h.Score)))
}

type scoreRequest struct {
	Text string `json:"text"`
}

// Score handles POST /api/esg/score
func (h *ESGHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := DecodeValid(w, r, esgSchema, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	JSON(w, http.StatusOK, h.scorer.Score(req.Text))
}
