package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"roomly_server/services"

	"github.com/gorilla/mux"
)

// ChatController handles chat room and message endpoints
type ChatController struct {
	ChatService *services.ChatService
}

// NewChatController creates a new instance of ChatController
func NewChatController(chatService *services.ChatService) *ChatController {
	return &ChatController{ChatService: chatService}
}

// SendMessage handles sending a new message into a room
func (c *ChatController) SendMessage(w http.ResponseWriter, r *http.Request) {
	var input services.SendMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if input.RoomID == "" || input.SenderID == "" {
		http.Error(w, `{"error": "Missing required fields: chatRoomId, senderId"}`, http.StatusBadRequest)
		return
	}

	message, err := c.ChatService.SendMessage(context.TODO(), input)
	if err != nil {
		writeError(w, err, "Failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, message)
}

// GetMessages handles paging through a room's history.
// Query parameters: userId (required), limit, before.
func (c *ChatController) GetMessages(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["chatRoomId"]
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, `{"error": "userId is required"}`, http.StatusBadRequest)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = services.DefaultMessagePageSize
	}
	before := r.URL.Query().Get("before")

	log.Printf("🔍 Fetching messages for room %s (user %s, limit %d)", roomID, userID, limit)

	messages, err := c.ChatService.GetMessages(context.TODO(), roomID, userID, limit, before)
	if err != nil {
		writeError(w, err, "Failed to fetch messages")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

// MarkRead handles marking messages as read and resetting the unread count
func (c *ChatController) MarkRead(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["chatRoomId"]
	var request struct {
		UserID     string   `json:"userId"`
		MessageIDs []string `json:"messageIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, `{"error": "Missing required field: userId"}`, http.StatusBadRequest)
		return
	}

	if err := c.ChatService.MarkRead(context.TODO(), roomID, request.UserID, request.MessageIDs); err != nil {
		writeError(w, err, "Failed to mark messages as read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// EditMessage handles editing a message within the edit window
func (c *ChatController) EditMessage(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["messageId"]
	var request struct {
		UserID  string `json:"userId"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, `{"error": "Missing required fields: userId, content"}`, http.StatusBadRequest)
		return
	}

	message, err := c.ChatService.EditMessage(context.TODO(), messageID, request.UserID, request.Content)
	if err != nil {
		writeError(w, err, "Failed to edit message")
		return
	}
	writeJSON(w, http.StatusOK, message)
}

// DeleteMessage handles soft-deleting a message for everyone or for the
// requester only
func (c *ChatController) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["messageId"]
	var request struct {
		UserID string `json:"userId"`
		Scope  string `json:"scope"` // everyone, me
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, `{"error": "Missing required fields: userId, scope"}`, http.StatusBadRequest)
		return
	}

	message, err := c.ChatService.DeleteMessage(context.TODO(), messageID, request.UserID, request.Scope)
	if err != nil {
		writeError(w, err, "Failed to delete message")
		return
	}
	writeJSON(w, http.StatusOK, message)
}

// ToggleReaction handles flipping an emoji reaction on a message
func (c *ChatController) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["messageId"]
	var request struct {
		UserID string `json:"userId"`
		Emoji  string `json:"emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, `{"error": "Missing required fields: userId, emoji"}`, http.StatusBadRequest)
		return
	}

	action, err := c.ChatService.ToggleReaction(context.TODO(), messageID, request.UserID, request.Emoji)
	if err != nil {
		writeError(w, err, "Failed to toggle reaction")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"action": action})
}

// GetRoom handles fetching a room's metadata for a participant
func (c *ChatController) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["chatRoomId"]
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, `{"error": "userId is required"}`, http.StatusBadRequest)
		return
	}

	room, err := c.ChatService.GetRoomForUser(context.TODO(), roomID, userID)
	if err != nil {
		writeError(w, err, "Failed to fetch room")
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// TogglePin handles flipping the requester's pin flag on a room
func (c *ChatController) TogglePin(w http.ResponseWriter, r *http.Request) {
	c.toggleRoomFlag(w, r, "pinned", c.ChatService.TogglePin)
}

// ToggleMute handles flipping the requester's mute flag on a room
func (c *ChatController) ToggleMute(w http.ResponseWriter, r *http.Request) {
	c.toggleRoomFlag(w, r, "muted", c.ChatService.ToggleMute)
}

// ToggleArchive handles flipping the room-wide archive flag
func (c *ChatController) ToggleArchive(w http.ResponseWriter, r *http.Request) {
	c.toggleRoomFlag(w, r, "archived", c.ChatService.ToggleArchive)
}

func (c *ChatController) toggleRoomFlag(w http.ResponseWriter, r *http.Request, name string, toggle func(context.Context, string, string) (bool, error)) {
	roomID := mux.Vars(r)["chatRoomId"]
	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, `{"error": "Missing required field: userId"}`, http.StatusBadRequest)
		return
	}

	value, err := toggle(context.TODO(), roomID, request.UserID)
	if err != nil {
		writeError(w, err, "Failed to toggle "+name)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{name: value})
}

// SearchMessages handles searching a room's history.
// Query parameters: userId, q, limit.
func (c *ChatController) SearchMessages(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["chatRoomId"]
	userID := r.URL.Query().Get("userId")
	query := r.URL.Query().Get("q")
	if userID == "" || query == "" {
		http.Error(w, `{"error": "userId and q are required"}`, http.StatusBadRequest)
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = services.DefaultMessagePageSize
	}

	messages, err := c.ChatService.SearchMessages(context.TODO(), roomID, userID, query, limit)
	if err != nil {
		writeError(w, err, "Failed to search messages")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}
