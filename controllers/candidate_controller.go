package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"roomly_server/services"

	"github.com/gorilla/mux"
)

// CandidateController serves the ranked roommate candidate feed
type CandidateController struct {
	CandidateService *services.CandidateService
}

// NewCandidateController creates a new instance of CandidateController
func NewCandidateController(candidateService *services.CandidateService) *CandidateController {
	return &CandidateController{CandidateService: candidateService}
}

// GetCandidates handles fetching the ranked candidate list for a user.
// Optional query parameters: minScore, maxDistanceKm, limit.
func (c *CandidateController) GetCandidates(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	opts := services.CandidateOptions{}
	if v := r.URL.Query().Get("minScore"); v != "" {
		if minScore, err := strconv.Atoi(v); err == nil {
			opts.MinScore = minScore
		}
	}
	if v := r.URL.Query().Get("maxDistanceKm"); v != "" {
		if maxDistance, err := strconv.ParseFloat(v, 64); err == nil {
			opts.MaxDistanceKm = maxDistance
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			opts.Limit = limit
		}
	}

	log.Printf("🔍 Fetching candidates for %s (minScore=%d, maxDistanceKm=%.1f, limit=%d)",
		userID, opts.MinScore, opts.MaxDistanceKm, opts.Limit)

	candidates, err := c.CandidateService.FindCandidates(context.TODO(), userID, opts)
	if err != nil {
		writeError(w, err, "Failed to fetch candidates")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"count":      len(candidates),
	})
}
