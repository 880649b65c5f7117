package routes

import (
	"roomly_server/controllers"
	"roomly_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat-related operations under /api/chat
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService) {
	controller := controllers.NewChatController(chatService)

	chatRouter := r.PathPrefix("/api/chat").Subrouter()

	chatRouter.HandleFunc("/message", controller.SendMessage).Methods("POST")
	chatRouter.HandleFunc("/rooms/{chatRoomId}", controller.GetRoom).Methods("GET")
	chatRouter.HandleFunc("/rooms/{chatRoomId}/messages", controller.GetMessages).Methods("GET")
	chatRouter.HandleFunc("/rooms/{chatRoomId}/messages/search", controller.SearchMessages).Methods("GET")
	chatRouter.HandleFunc("/rooms/{chatRoomId}/mark-as-read", controller.MarkRead).Methods("POST")
	chatRouter.HandleFunc("/rooms/{chatRoomId}/pin", controller.TogglePin).Methods("PATCH")
	chatRouter.HandleFunc("/rooms/{chatRoomId}/mute", controller.ToggleMute).Methods("PATCH")
	chatRouter.HandleFunc("/rooms/{chatRoomId}/archive", controller.ToggleArchive).Methods("PATCH")
	chatRouter.HandleFunc("/messages/{messageId}", controller.EditMessage).Methods("PATCH")
	chatRouter.HandleFunc("/messages/{messageId}/delete", controller.DeleteMessage).Methods("POST")
	chatRouter.HandleFunc("/messages/{messageId}/reaction", controller.ToggleReaction).Methods("PATCH")
}
