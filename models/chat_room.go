package models

// LastMessage is the denormalized summary kept on a room, refreshed on every
// send.
type LastMessage struct {
	Content   string `dynamodbav:"content" json:"content"`
	SenderID  string `dynamodbav:"senderId" json:"senderId"`
	Type      string `dynamodbav:"type" json:"type"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// ChatRoom is a direct messaging channel bound to a match. The participant
// set is fixed at creation and never mutated. Per-participant state lives in
// maps keyed by user id; an absent key means 0/false.
type ChatRoom struct {
	RoomID       string          `dynamodbav:"chatRoomId" json:"chatRoomId"` // ✅ Partition Key
	PairKey      string          `dynamodbav:"pairKey" json:"pairKey"`       // sorted "a#b", uniqueness guard
	Type         string          `dynamodbav:"type" json:"type"`             // "direct"
	Participants []string        `dynamodbav:"participants" json:"participants"`
	MatchID      string          `dynamodbav:"matchId" json:"matchId"`
	UnreadCount  map[string]int  `dynamodbav:"unreadCount" json:"unreadCount"`
	IsPinned     map[string]bool `dynamodbav:"isPinned" json:"isPinned"`
	IsMuted      map[string]bool `dynamodbav:"isMuted" json:"isMuted"`
	IsArchived   bool            `dynamodbav:"isArchived" json:"isArchived"` // room-wide, not per-user
	LastMessage  *LastMessage    `dynamodbav:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	CreatedAt    string          `dynamodbav:"createdAt" json:"createdAt"`
}

// HasParticipant reports whether the user belongs to the room.
func (r *ChatRoom) HasParticipant(userID string) bool {
	for _, id := range r.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// UnreadFor returns the unread count for a participant, defaulting to 0.
func (r *ChatRoom) UnreadFor(userID string) int {
	if r.UnreadCount == nil {
		return 0
	}
	return r.UnreadCount[userID]
}

// PinnedFor returns the pin flag for a participant, defaulting to false.
func (r *ChatRoom) PinnedFor(userID string) bool {
	if r.IsPinned == nil {
		return false
	}
	return r.IsPinned[userID]
}

// MutedFor returns the mute flag for a participant, defaulting to false.
func (r *ChatRoom) MutedFor(userID string) bool {
	if r.IsMuted == nil {
		return false
	}
	return r.IsMuted[userID]
}

// SetUnread records an unread count, allocating the map on first use.
func (r *ChatRoom) SetUnread(userID string, count int) {
	if r.UnreadCount == nil {
		r.UnreadCount = make(map[string]int)
	}
	r.UnreadCount[userID] = count
}

// TogglePin flips the pin flag for a participant and returns the new value.
func (r *ChatRoom) TogglePin(userID string) bool {
	if r.IsPinned == nil {
		r.IsPinned = make(map[string]bool)
	}
	r.IsPinned[userID] = !r.IsPinned[userID]
	return r.IsPinned[userID]
}

// ToggleMute flips the mute flag for a participant and returns the new value.
func (r *ChatRoom) ToggleMute(userID string) bool {
	if r.IsMuted == nil {
		r.IsMuted = make(map[string]bool)
	}
	r.IsMuted[userID] = !r.IsMuted[userID]
	return r.IsMuted[userID]
}

// RoomPair is the uniqueness guard for direct rooms: one item per unordered
// participant pair.
type RoomPair struct {
	PairKey string `dynamodbav:"pairKey" json:"pairKey"` // ✅ Partition Key
	RoomID  string `dynamodbav:"chatRoomId" json:"chatRoomId"`
}

// Table names for DynamoDB
const (
	ChatRoomsTable = "ChatRooms"
	RoomPairsTable = "ChatRoomPairs"
)
