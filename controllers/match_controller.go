package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"roomly_server/services"

	"github.com/gorilla/mux"
)

// MatchController handles the match lifecycle endpoints
type MatchController struct {
	MatchService *services.MatchService
}

// NewMatchController creates a new instance of MatchController
func NewMatchController(matchService *services.MatchService) *MatchController {
	return &MatchController{MatchService: matchService}
}

// Like handles a like toward another user; a mutual like creates the match.
func (c *MatchController) Like(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID   string  `json:"userId"`
		TargetID string  `json:"targetId"`
		Message  *string `json:"message,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.UserID == "" || request.TargetID == "" {
		http.Error(w, `{"error": "Missing required fields: userId, targetId"}`, http.StatusBadRequest)
		return
	}

	log.Printf("💖 %s likes %s", request.UserID, request.TargetID)

	result, err := c.MatchService.Like(context.TODO(), request.UserID, request.TargetID, request.Message)
	if err != nil {
		writeError(w, err, "Failed to process like")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Dislike handles a dislike toward another user
func (c *MatchController) Dislike(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID   string `json:"userId"`
		TargetID string `json:"targetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.UserID == "" || request.TargetID == "" {
		http.Error(w, `{"error": "Missing required fields: userId, targetId"}`, http.StatusBadRequest)
		return
	}

	if err := c.MatchService.Dislike(context.TODO(), request.UserID, request.TargetID); err != nil {
		writeError(w, err, "Failed to process dislike")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Request handles an initiator-driven pending match request
func (c *MatchController) Request(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID   string  `json:"userId"`
		TargetID string  `json:"targetId"`
		Message  *string `json:"message,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.UserID == "" || request.TargetID == "" {
		http.Error(w, `{"error": "Missing required fields: userId, targetId"}`, http.StatusBadRequest)
		return
	}

	match, err := c.MatchService.CreatePendingMatch(context.TODO(), request.UserID, request.TargetID, request.Message)
	if err != nil {
		writeError(w, err, "Failed to create match request")
		return
	}
	writeJSON(w, http.StatusCreated, match)
}

// Accept handles accepting a pending match
func (c *MatchController) Accept(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]
	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, `{"error": "Missing required field: userId"}`, http.StatusBadRequest)
		return
	}

	match, err := c.MatchService.Accept(context.TODO(), matchID, request.UserID)
	if err != nil {
		writeError(w, err, "Failed to accept match")
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// Reject handles rejecting a pending match
func (c *MatchController) Reject(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]
	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, `{"error": "Missing required field: userId"}`, http.StatusBadRequest)
		return
	}

	match, err := c.MatchService.Reject(context.TODO(), matchID, request.UserID)
	if err != nil {
		writeError(w, err, "Failed to reject match")
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// Unmatch handles ending an accepted match
func (c *MatchController) Unmatch(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]
	var request struct {
		UserID string  `json:"userId"`
		Reason *string `json:"reason,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, `{"error": "Missing required field: userId"}`, http.StatusBadRequest)
		return
	}

	log.Printf("💔 %s unmatches %s", request.UserID, matchID)

	match, err := c.MatchService.Unmatch(context.TODO(), matchID, request.UserID, request.Reason)
	if err != nil {
		writeError(w, err, "Failed to unmatch")
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// Expire moves a pending match past its deadline to expired. Called by the
// external match scheduler, not by clients.
func (c *MatchController) Expire(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]

	match, err := c.MatchService.ExpireMatch(context.TODO(), matchID)
	if err != nil {
		writeError(w, err, "Failed to expire match")
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// Report handles flagging a match for review
func (c *MatchController) Report(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]
	var request struct {
		UserID string `json:"userId"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, `{"error": "Missing required fields: userId, reason"}`, http.StatusBadRequest)
		return
	}

	match, err := c.MatchService.ReportMatch(context.TODO(), matchID, request.UserID, request.Reason)
	if err != nil {
		writeError(w, err, "Failed to report match")
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// ScheduleMeeting handles scheduling a meeting on an accepted match
func (c *MatchController) ScheduleMeeting(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]
	var request struct {
		UserID   string `json:"userId"`
		Date     string `json:"date"` // RFC3339
		Location string `json:"location"`
		Type     string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, `{"error": "Missing required fields: userId, date"}`, http.StatusBadRequest)
		return
	}

	date, err := time.Parse(time.RFC3339, request.Date)
	if err != nil {
		http.Error(w, `{"error": "date must be RFC3339"}`, http.StatusBadRequest)
		return
	}

	match, err := c.MatchService.ScheduleMeeting(context.TODO(), matchID, request.UserID, date, request.Location, request.Type)
	if err != nil {
		writeError(w, err, "Failed to schedule meeting")
		return
	}
	writeJSON(w, http.StatusOK, match)
}

// GetMatches handles listing all matches of a user
func (c *MatchController) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	matches, err := c.MatchService.GetMatchesForUser(context.TODO(), userID)
	if err != nil {
		writeError(w, err, "Failed to fetch matches")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}
