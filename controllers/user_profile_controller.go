package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"roomly_server/models"
	"roomly_server/services"

	"github.com/gorilla/mux"
)

// UserProfileController handles requests related to roommate profiles
type UserProfileController struct {
	ProfileService *services.UserProfileService
}

// NewUserProfileController creates a new instance of UserProfileController
func NewUserProfileController(profileService *services.UserProfileService) *UserProfileController {
	return &UserProfileController{ProfileService: profileService}
}

// CreateProfile handles adding a new roommate profile
func (c *UserProfileController) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.RoommateProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	created, err := c.ProfileService.CreateProfile(context.TODO(), &profile)
	if err != nil {
		writeError(w, err, "Failed to create profile")
		return
	}

	log.Printf("✅ Profile created: %s", created.UserID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Profile created successfully",
		"profile": created,
	})
}

// GetProfile handles fetching a roommate profile by user id
func (c *UserProfileController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	profile, err := c.ProfileService.GetProfile(context.TODO(), userID)
	if err != nil {
		writeError(w, err, "Failed to fetch profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles patching an existing roommate profile
func (c *UserProfileController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var patch models.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	updated, err := c.ProfileService.UpdateProfile(context.TODO(), userID, patch)
	if err != nil {
		writeError(w, err, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"profile": updated,
	})
}

// DeleteProfile handles deleting a roommate profile
func (c *UserProfileController) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	if err := c.ProfileService.DeleteProfile(context.TODO(), userID); err != nil {
		writeError(w, err, "Failed to delete profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Profile deleted successfully",
		"userId":  userID,
	})
}
