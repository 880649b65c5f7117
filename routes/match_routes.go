package routes

import (
	"roomly_server/controllers"
	"roomly_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes for the match lifecycle under /api/matches
func RegisterMatchRoutes(r *mux.Router, matchService *services.MatchService) {
	controller := controllers.NewMatchController(matchService)

	matchRouter := r.PathPrefix("/api/matches").Subrouter()

	matchRouter.HandleFunc("/like", controller.Like).Methods("POST")
	matchRouter.HandleFunc("/dislike", controller.Dislike).Methods("POST")
	matchRouter.HandleFunc("/request", controller.Request).Methods("POST")
	matchRouter.HandleFunc("/user/{userId}", controller.GetMatches).Methods("GET")
	matchRouter.HandleFunc("/{matchId}/accept", controller.Accept).Methods("POST")
	matchRouter.HandleFunc("/{matchId}/reject", controller.Reject).Methods("POST")
	matchRouter.HandleFunc("/{matchId}/unmatch", controller.Unmatch).Methods("POST")
	matchRouter.HandleFunc("/{matchId}/expire", controller.Expire).Methods("POST")
	matchRouter.HandleFunc("/{matchId}/report", controller.Report).Methods("POST")
	matchRouter.HandleFunc("/{matchId}/meeting", controller.ScheduleMeeting).Methods("POST")
}
