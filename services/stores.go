package services

import (
	"context"

	"roomly_server/models"
)

// Collaborator interfaces consumed by the core services. DynamoDB-backed
// implementations live next to them in this package; tests swap in in-memory
// fakes.

// ProfileStore owns roommate profile documents.
type ProfileStore interface {
	// CreateProfile inserts a new profile; ErrConflict when the userId is
	// already taken.
	CreateProfile(ctx context.Context, profile *models.RoommateProfile) error
	PutProfile(ctx context.Context, profile *models.RoommateProfile) error
	// GetProfile returns ErrNotFound when the profile is absent.
	GetProfile(ctx context.Context, userID string) (*models.RoommateProfile, error)
	UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.RoommateProfile, error)
	DeleteProfile(ctx context.Context, userID string) error
	// AddLiked appends targetID to the liked set. Likes are monotonic per
	// pair: a duplicate returns ErrConflict.
	AddLiked(ctx context.Context, userID, targetID string) error
	// AddDisliked appends targetID to the disliked set; idempotent.
	AddDisliked(ctx context.Context, userID, targetID string) error
	AddMatchRef(ctx context.Context, userID, matchID string) error
	RemoveMatchRef(ctx context.Context, userID, matchID string) error
	ListProfiles(ctx context.Context, userIDs []string) ([]models.RoommateProfile, error)
}

// MatchStore owns match documents plus the active-pair uniqueness guard.
type MatchStore interface {
	// CreateActiveMatch creates the match and claims the pair guard in one
	// atomic unit. Returns ErrConflict when the pair already has an active
	// match; the caller falls back to the existing one.
	CreateActiveMatch(ctx context.Context, match *models.Match) error
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)
	// GetActiveMatchByPair returns ErrNotFound when the pair has no active
	// match.
	GetActiveMatchByPair(ctx context.Context, pairKey string) (*models.Match, error)
	SaveMatch(ctx context.Context, match *models.Match) error
	// ReleasePair frees the uniqueness guard after a terminal transition.
	ReleasePair(ctx context.Context, pairKey string) error
	GetMatchesByUser(ctx context.Context, userID string) ([]models.Match, error)
}

// ChatStore owns chat rooms and messages.
type ChatStore interface {
	// CreateDirectRoom claims the pair guard and stores the room. When the
	// pair already has a room the existing one is returned with created=false.
	CreateDirectRoom(ctx context.Context, room *models.ChatRoom) (*models.ChatRoom, bool, error)
	GetRoom(ctx context.Context, roomID string) (*models.ChatRoom, error)
	SaveRoom(ctx context.Context, room *models.ChatRoom) error
	// AppendMessage inserts the message and applies the room's lastMessage
	// and unread-count updates as a single atomic unit; concurrent sends
	// must never lose an increment.
	AppendMessage(ctx context.Context, room *models.ChatRoom, message *models.Message) error
	// GetMessages returns up to limit messages newest-first; before, when
	// non-empty, restricts to messages created strictly earlier.
	GetMessages(ctx context.Context, roomID string, limit int, before string) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID string) (*models.Message, error)
	// SaveMessage stores the full message document guarded by its version:
	// ErrConflict when a concurrent writer saved first, so callers re-read
	// and re-apply instead of clobbering receipts or reactions.
	SaveMessage(ctx context.Context, message *models.Message) error
	ResetUnread(ctx context.Context, roomID, userID string) error
}

// GeoQuery is the location pre-filter used by the candidate finder.
type GeoQuery interface {
	// ProfilesNear returns ids of profiles within radiusKm of the point.
	ProfilesNear(ctx context.Context, lat, lng, radiusKm float64) ([]string, error)
}

// RealtimeNotifier is the producer contract toward the realtime transport.
// Topics: "room:{roomId}" and "user:{userId}". Delivery is best-effort toward
// currently subscribed listeners; implementations must not block.
type RealtimeNotifier interface {
	Publish(topic, event string, payload interface{})
}

// NotificationSink receives fire-and-forget notifications. Failures are
// logged by callers, never propagated.
type NotificationSink interface {
	Create(ctx context.Context, notification models.Notification) error
}

// AuditReporter records match reports for later review.
type AuditReporter interface {
	Create(ctx context.Context, report models.MatchReportRecord) error
}
