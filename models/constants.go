package models

// Timestamp format used for sort keys and receipts. Fixed-width so that
// lexicographic order in DynamoDB equals chronological order.
const TimestampFormat = "2006-01-02T15:04:05.000000000Z"

// Match statuses
const (
	MatchStatusPending  = "pending"
	MatchStatusAccepted = "accepted"
	MatchStatusRejected = "rejected"
	MatchStatusExpired  = "expired"
)

// Chat room types
const (
	RoomTypeDirect = "direct"
)

// Message types
const (
	MessageTypeText       = "text"
	MessageTypeImage      = "image"
	MessageTypeVideo      = "video"
	MessageTypeAudio      = "audio"
	MessageTypeFile       = "file"
	MessageTypeLocation   = "location"
	MessageTypeGameInvite = "game-invite"
)

// Delete scopes for messages
const (
	DeleteScopeEveryone = "everyone"
	DeleteScopeMe       = "me"
)

// Reaction toggle results
const (
	ReactionAdded   = "added"
	ReactionRemoved = "removed"
)

// Sleep schedule values
const (
	SleepEarlyBird = "early_bird"
	SleepNightOwl  = "night_owl"
	SleepFlexible  = "flexible"
)

// Drinking habit values (ordinal)
const (
	DrinkingNever     = "never"
	DrinkingSocially  = "socially"
	DrinkingRegularly = "regularly"
)

// Guest frequency values (ordinal)
const (
	GuestsRarely    = "rarely"
	GuestsSometimes = "sometimes"
	GuestsOften     = "often"
)

// Room type preferences
const (
	RoomTypePrivate = "private"
	RoomTypeShared  = "shared"
	RoomTypeStudio  = "studio"
	RoomTypeEntire  = "entire"
)

// Notification types
const (
	NotificationTypeLike     = "like"
	NotificationTypeNewMatch = "new_match"
	NotificationTypeMatchReq = "match_request"
	NotificationTypeMessage  = "message"
	NotificationTypeMeeting  = "meeting_scheduled"
	NotificationTypeUnmatch  = "unmatch"
)

// Notification priorities
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)
