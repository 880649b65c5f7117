package services

import (
	"context"
	"log"
	"time"

	"roomly_server/models"

	"github.com/google/uuid"
)

// RoomService provisions direct chat rooms for matched pairs. Provisioning is
// idempotent: concurrent calls for the same unordered pair converge on one
// room through the store's pair guard, never a check-then-create race.
type RoomService struct {
	Chat ChatStore
}

// GetOrCreateDirectRoom returns the direct room for the pair, creating it on
// first use. The participant set is fixed here and never mutated afterwards.
func (rs *RoomService) GetOrCreateDirectRoom(ctx context.Context, userA, userB, matchID string) (*models.ChatRoom, error) {
	room := &models.ChatRoom{
		RoomID:       uuid.NewString(),
		PairKey:      models.PairKey(userA, userB),
		Type:         models.RoomTypeDirect,
		Participants: []string{userA, userB},
		MatchID:      matchID,
		UnreadCount:  make(map[string]int),
		IsPinned:     make(map[string]bool),
		IsMuted:      make(map[string]bool),
		CreatedAt:    time.Now().UTC().Format(models.TimestampFormat),
	}

	stored, created, err := rs.Chat.CreateDirectRoom(ctx, room)
	if err != nil {
		return nil, err
	}
	if !created {
		log.Printf("ℹ️ Reusing existing room %s for pair %s", stored.RoomID, stored.PairKey)
	}
	return stored, nil
}
