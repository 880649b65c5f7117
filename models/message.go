package models

// Attachment describes a media attachment carried by a message. Upload and
// transcoding happen elsewhere; only the reference is stored here.
type Attachment struct {
	URL      string `dynamodbav:"url" json:"url"`
	MimeType string `dynamodbav:"mimeType,omitempty" json:"mimeType,omitempty"`
	Name     string `dynamodbav:"name,omitempty" json:"name,omitempty"`
	Size     int64  `dynamodbav:"size,omitempty" json:"size,omitempty"`
}

// Receipt records a per-user delivery or read acknowledgment. At most one
// entry per user; ordered by append.
type Receipt struct {
	UserID string `dynamodbav:"userId" json:"userId"`
	At     string `dynamodbav:"at" json:"at"`
}

// RedactedContent replaces the content of a message deleted for everyone.
const RedactedContent = "This message was deleted"

// Message belongs to exactly one chat room. Messages are never hard-deleted;
// "delete for everyone" redacts the content, "delete for me" appends the
// requester to deletedFor.
type Message struct {
	RoomID      string              `dynamodbav:"chatRoomId" json:"chatRoomId"` // ✅ Partition Key
	CreatedAt   string              `dynamodbav:"createdAt" json:"createdAt"`   // ✅ Sort Key
	MessageID   string              `dynamodbav:"messageId" json:"messageId"`   // indexed via messageId-index
	SenderID    string              `dynamodbav:"senderId" json:"senderId"`
	Content     string              `dynamodbav:"content" json:"content"`
	Type        string              `dynamodbav:"type" json:"type"` // text, image, video, audio, file, location, game-invite
	Attachments []Attachment        `dynamodbav:"attachments,omitempty" json:"attachments,omitempty"`
	ReplyTo     *string             `dynamodbav:"replyTo,omitempty" json:"replyTo,omitempty"`
	ReadBy      []Receipt           `dynamodbav:"readBy,omitempty" json:"readBy,omitempty"`
	DeliveredTo []Receipt           `dynamodbav:"deliveredTo,omitempty" json:"deliveredTo,omitempty"`
	Reactions   map[string][]string `dynamodbav:"reactions,omitempty" json:"reactions,omitempty"` // emoji -> user ids
	IsEdited    bool                `dynamodbav:"isEdited" json:"isEdited"`
	EditedAt    *string             `dynamodbav:"editedAt,omitempty" json:"editedAt,omitempty"`
	IsDeleted   bool                `dynamodbav:"isDeleted" json:"isDeleted"`
	DeletedFor  []string            `dynamodbav:"deletedFor,omitempty" json:"deletedFor,omitempty"`
	// Version increments on every save; conditional writes use it so
	// concurrent receipt/reaction/edit updates never silently overwrite
	// each other.
	Version int64 `dynamodbav:"version" json:"version"`
}

func hasReceipt(receipts []Receipt, userID string) bool {
	for _, r := range receipts {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// HasReadReceipt reports whether the user already acknowledged the message.
func (m *Message) HasReadReceipt(userID string) bool {
	return hasReceipt(m.ReadBy, userID)
}

// HasDeliveredReceipt reports whether delivery to the user was recorded.
func (m *Message) HasDeliveredReceipt(userID string) bool {
	return hasReceipt(m.DeliveredTo, userID)
}

// AddReadReceipt appends a read receipt once per user. Returns false when the
// receipt already existed.
func (m *Message) AddReadReceipt(userID, at string) bool {
	if hasReceipt(m.ReadBy, userID) {
		return false
	}
	m.ReadBy = append(m.ReadBy, Receipt{UserID: userID, At: at})
	return true
}

// AddDeliveredReceipt appends a delivery receipt once per user. Returns false
// when the receipt already existed.
func (m *Message) AddDeliveredReceipt(userID, at string) bool {
	if hasReceipt(m.DeliveredTo, userID) {
		return false
	}
	m.DeliveredTo = append(m.DeliveredTo, Receipt{UserID: userID, At: at})
	return true
}

// ToggleReaction flips the user's membership in the reaction set for the
// emoji and returns the resulting action ("added" or "removed").
func (m *Message) ToggleReaction(emoji, userID string) string {
	if m.Reactions == nil {
		m.Reactions = make(map[string][]string)
	}
	users := m.Reactions[emoji]
	for i, id := range users {
		if id == userID {
			users = append(users[:i], users[i+1:]...)
			if len(users) == 0 {
				delete(m.Reactions, emoji)
			} else {
				m.Reactions[emoji] = users
			}
			return ReactionRemoved
		}
	}
	m.Reactions[emoji] = append(users, userID)
	return ReactionAdded
}

// DeletedForUser reports whether the user soft-deleted the message for
// themselves.
func (m *Message) DeletedForUser(userID string) bool {
	for _, id := range m.DeletedFor {
		if id == userID {
			return true
		}
	}
	return false
}

// AddDeletedFor appends the user to the soft-delete list once. Returns false
// when already present.
func (m *Message) AddDeletedFor(userID string) bool {
	if m.DeletedForUser(userID) {
		return false
	}
	m.DeletedFor = append(m.DeletedFor, userID)
	return true
}

// ChatMessagesTable is the DynamoDB table name for chat messages
const ChatMessagesTable = "ChatMessages"

// MessageIDIndex is the GSI used to look a message up by its id
const MessageIDIndex = "messageId-index"
