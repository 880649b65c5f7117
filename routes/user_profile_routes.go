package routes

import (
	"roomly_server/controllers"
	"roomly_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserProfileRoutes sets up routes for roommate profiles under /api/profiles
func RegisterUserProfileRoutes(r *mux.Router, profileService *services.UserProfileService, candidateService *services.CandidateService) {
	controller := controllers.NewUserProfileController(profileService)
	candidates := controllers.NewCandidateController(candidateService)

	profileRouter := r.PathPrefix("/api/profiles").Subrouter()

	profileRouter.HandleFunc("", controller.CreateProfile).Methods("POST")
	profileRouter.HandleFunc("/{userId}", controller.GetProfile).Methods("GET")
	profileRouter.HandleFunc("/{userId}", controller.UpdateProfile).Methods("PATCH")
	profileRouter.HandleFunc("/{userId}", controller.DeleteProfile).Methods("DELETE")
	profileRouter.HandleFunc("/{userId}/candidates", candidates.GetCandidates).Methods("GET")
}
