package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"roomly_server/models"

	"github.com/google/uuid"
)

// EditWindow is how long after sending a message may still be edited.
const EditWindow = 15 * time.Minute

// DeleteForEveryoneWindow is how long after sending a message may still be
// deleted for everyone. Delete-for-me has no window.
const DeleteForEveryoneWindow = time.Hour

// DefaultMessagePageSize applies when the caller gives no limit.
const DefaultMessagePageSize = 50

// SendMessageInput carries the caller-supplied fields of a send.
type SendMessageInput struct {
	RoomID      string              `json:"chatRoomId"`
	SenderID    string              `json:"senderId"`
	Content     string              `json:"content"`
	Type        string              `json:"type"`
	Attachments []models.Attachment `json:"attachments,omitempty"`
	ReplyTo     *string             `json:"replyTo,omitempty"`
}

// ChatService owns per-room messaging state: sends, receipts, edits, soft
// deletes, reactions and the per-user room flags.
type ChatService struct {
	Chat          ChatStore
	Realtime      RealtimeNotifier
	Notifications NotificationSink
}

// loadRoomForParticipant fetches the room and enforces participant access.
func (cs *ChatService) loadRoomForParticipant(ctx context.Context, roomID, userID string) (*models.ChatRoom, error) {
	room, err := cs.Chat.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, fmt.Errorf("user %s is not part of room %s: %w", userID, roomID, ErrForbidden)
	}
	return room, nil
}

// loadMessageForParticipant fetches a message and checks that the user
// belongs to its room. Returns the room alongside the message.
func (cs *ChatService) loadMessageForParticipant(ctx context.Context, messageID, userID string) (*models.Message, *models.ChatRoom, error) {
	message, err := cs.Chat.GetMessage(ctx, messageID)
	if err != nil {
		return nil, nil, err
	}
	room, err := cs.loadRoomForParticipant(ctx, message.RoomID, userID)
	if err != nil {
		return nil, nil, err
	}
	return message, room, nil
}

// messageSaveAttempts bounds the re-read/re-apply loop on version conflicts.
const messageSaveAttempts = 5

// mutateMessage loads a message, applies mutate to the fresh copy, and saves
// it under the store's version guard. When a concurrent writer saved first
// the mutation is re-applied on a re-read, so receipts, reactions and edit
// state from different participants never overwrite each other. mutate
// returns false to skip the save.
func (cs *ChatService) mutateMessage(ctx context.Context, messageID string, mutate func(*models.Message) (bool, error)) (*models.Message, error) {
	for attempt := 0; attempt < messageSaveAttempts; attempt++ {
		message, err := cs.Chat.GetMessage(ctx, messageID)
		if err != nil {
			return nil, err
		}
		changed, err := mutate(message)
		if err != nil {
			return nil, err
		}
		if !changed {
			return message, nil
		}
		if err := cs.Chat.SaveMessage(ctx, message); err != nil {
			if isConflict(err) {
				continue
			}
			return nil, err
		}
		message.Version++
		return message, nil
	}
	return nil, fmt.Errorf("message %s kept changing under concurrent writers: %w", messageID, ErrConflict)
}

// SendMessage appends a message to the room. The insert, the room's
// lastMessage refresh and the unread increments for every non-sender land
// atomically, then the newMessage event fans out on the room topic.
func (cs *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*models.Message, error) {
	if input.Content == "" && len(input.Attachments) == 0 {
		return nil, fmt.Errorf("message needs content or attachments: %w", ErrValidation)
	}

	room, err := cs.loadRoomForParticipant(ctx, input.RoomID, input.SenderID)
	if err != nil {
		return nil, err
	}
	if room.IsArchived {
		return nil, fmt.Errorf("room %s is archived: %w", room.RoomID, ErrInvalidState)
	}

	messageType := input.Type
	if messageType == "" {
		messageType = models.MessageTypeText
	}
	if input.ReplyTo != nil {
		parent, err := cs.Chat.GetMessage(ctx, *input.ReplyTo)
		if err != nil {
			return nil, fmt.Errorf("replyTo target not found: %w", ErrValidation)
		}
		if parent.RoomID != room.RoomID {
			return nil, fmt.Errorf("replyTo target belongs to another room: %w", ErrValidation)
		}
	}

	message := &models.Message{
		RoomID:      room.RoomID,
		CreatedAt:   now(),
		MessageID:   uuid.NewString(),
		SenderID:    input.SenderID,
		Content:     input.Content,
		Type:        messageType,
		Attachments: input.Attachments,
		ReplyTo:     input.ReplyTo,
	}

	if err := cs.Chat.AppendMessage(ctx, room, message); err != nil {
		return nil, fmt.Errorf("failed to append message to room %s: %w", room.RoomID, err)
	}

	log.Printf("📩 Message %s sent in room %s by %s", message.MessageID, room.RoomID, input.SenderID)
	cs.Realtime.Publish("room:"+room.RoomID, "newMessage", message)

	// Offline-style notifications for everyone who has not muted the room.
	preview := message.Content
	if preview == "" {
		preview = "Sent an attachment"
	}
	for _, participant := range room.Participants {
		if participant == input.SenderID || room.MutedFor(participant) {
			continue
		}
		cs.notify(ctx, models.Notification{
			Recipient: participant,
			Sender:    input.SenderID,
			Type:      models.NotificationTypeMessage,
			Title:     "New message",
			Message:   preview,
			Data:      map[string]string{"chatRoomId": room.RoomID, "messageId": message.MessageID},
		})
	}

	return message, nil
}

// GetMessages pages through a room's history. The page is fetched
// newest-first from the store, delivery receipts are recorded for messages
// the requester had not seen, per-user soft deletes are filtered out, and
// the page is returned oldest-first for rendering.
func (cs *ChatService) GetMessages(ctx context.Context, roomID, userID string, limit int, before string) ([]models.Message, error) {
	room, err := cs.loadRoomForParticipant(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultMessagePageSize
	}

	page, err := cs.Chat.GetMessages(ctx, room.RoomID, limit, before)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages for room %s: %w", room.RoomID, err)
	}

	at := now()
	visible := make([]models.Message, 0, len(page))
	for i := range page {
		message := page[i]
		if message.DeletedForUser(userID) {
			continue
		}
		if message.SenderID != userID && !message.HasDeliveredReceipt(userID) {
			updated, err := cs.mutateMessage(ctx, message.MessageID, func(m *models.Message) (bool, error) {
				return m.AddDeliveredReceipt(userID, at), nil
			})
			if err != nil {
				log.Printf("⚠️ Warning: failed to persist delivery receipt on %s: %v", message.MessageID, err)
			} else {
				message = *updated
			}
		}
		visible = append(visible, message)
	}

	// Store order is newest-first; clients render oldest-first.
	for i, j := 0, len(visible)-1; i < j; i, j = i+1, j-1 {
		visible[i], visible[j] = visible[j], visible[i]
	}
	return visible, nil
}

// MarkRead records read receipts for the given messages and resets the
// requester's unread counter. Idempotent: re-reading already-read messages
// changes nothing.
func (cs *ChatService) MarkRead(ctx context.Context, roomID, userID string, messageIDs []string) error {
	room, err := cs.loadRoomForParticipant(ctx, roomID, userID)
	if err != nil {
		return err
	}

	at := now()
	acknowledged := []string{}
	for _, messageID := range messageIDs {
		var recorded bool
		_, err := cs.mutateMessage(ctx, messageID, func(m *models.Message) (bool, error) {
			recorded = false
			if m.RoomID != room.RoomID || m.SenderID == userID {
				return false, nil
			}
			if !m.AddReadReceipt(userID, at) {
				return false, nil
			}
			m.AddDeliveredReceipt(userID, at)
			recorded = true
			return true, nil
		})
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return fmt.Errorf("failed to persist read receipt on %s: %w", messageID, err)
		}
		if recorded {
			acknowledged = append(acknowledged, messageID)
		}
	}

	if err := cs.Chat.ResetUnread(ctx, room.RoomID, userID); err != nil {
		return fmt.Errorf("failed to reset unread count in room %s: %w", room.RoomID, err)
	}

	// Always announce the read state, even when every receipt already
	// existed; listeners treat the event as idempotent.
	cs.Realtime.Publish("room:"+room.RoomID, "messagesRead", map[string]interface{}{
		"chatRoomId": room.RoomID,
		"userId":     userID,
		"messageIds": acknowledged,
	})
	return nil
}

// EditMessage replaces the content of the requester's own message within the
// edit window. Deleted messages cannot be edited.
func (cs *ChatService) EditMessage(ctx context.Context, messageID, userID, content string) (*models.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("edited content must not be empty: %w", ErrValidation)
	}
	message, room, err := cs.loadMessageForParticipant(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != userID {
		return nil, fmt.Errorf("only the sender may edit message %s: %w", messageID, ErrForbidden)
	}
	if message.IsDeleted {
		return nil, fmt.Errorf("message %s was deleted: %w", messageID, ErrInvalidState)
	}
	if age, err := messageAge(message); err != nil || age > EditWindow {
		return nil, fmt.Errorf("edit window of %s has passed for message %s: %w", EditWindow, messageID, ErrInvalidState)
	}

	editedAt := now()
	edited, err := cs.mutateMessage(ctx, messageID, func(m *models.Message) (bool, error) {
		if m.IsDeleted {
			return false, fmt.Errorf("message %s was deleted: %w", messageID, ErrInvalidState)
		}
		m.Content = content
		m.IsEdited = true
		m.EditedAt = &editedAt
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save edited message %s: %w", messageID, err)
	}

	cs.Realtime.Publish("room:"+room.RoomID, "messageEdited", edited)
	return edited, nil
}

// DeleteMessage soft-deletes a message. Scope "everyone" is sender-only
// within the delete window and redacts the content for all participants;
// scope "me" hides the message for the requester alone, with no window.
func (cs *ChatService) DeleteMessage(ctx context.Context, messageID, userID, scope string) (*models.Message, error) {
	message, room, err := cs.loadMessageForParticipant(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}

	switch scope {
	case models.DeleteScopeEveryone:
		if message.SenderID != userID {
			return nil, fmt.Errorf("only the sender may delete message %s for everyone: %w", messageID, ErrForbidden)
		}
		if age, err := messageAge(message); err != nil || age > DeleteForEveryoneWindow {
			return nil, fmt.Errorf("delete window of %s has passed for message %s: %w", DeleteForEveryoneWindow, messageID, ErrInvalidState)
		}
		var redacted bool
		deleted, err := cs.mutateMessage(ctx, messageID, func(m *models.Message) (bool, error) {
			redacted = false
			if m.IsDeleted {
				return false, nil
			}
			m.IsDeleted = true
			m.Content = models.RedactedContent
			m.Attachments = nil
			m.Reactions = nil
			redacted = true
			return true, nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save deleted message %s: %w", messageID, err)
		}
		if redacted {
			cs.Realtime.Publish("room:"+room.RoomID, "messageDeleted", map[string]string{
				"chatRoomId": room.RoomID,
				"messageId":  message.MessageID,
			})
		}
		return deleted, nil

	case models.DeleteScopeMe:
		hidden, err := cs.mutateMessage(ctx, messageID, func(m *models.Message) (bool, error) {
			return m.AddDeletedFor(userID), nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save message %s: %w", messageID, err)
		}
		return hidden, nil

	default:
		return nil, fmt.Errorf("unknown delete scope %q: %w", scope, ErrValidation)
	}
}

// ToggleReaction flips the requester's reaction on a message and fans the
// result out on the room topic.
func (cs *ChatService) ToggleReaction(ctx context.Context, messageID, userID, emoji string) (string, error) {
	if emoji == "" {
		return "", fmt.Errorf("emoji is required: %w", ErrValidation)
	}
	message, room, err := cs.loadMessageForParticipant(ctx, messageID, userID)
	if err != nil {
		return "", err
	}
	if message.IsDeleted {
		return "", fmt.Errorf("cannot react to deleted message %s: %w", messageID, ErrInvalidState)
	}

	var action string
	message, err = cs.mutateMessage(ctx, messageID, func(m *models.Message) (bool, error) {
		if m.IsDeleted {
			return false, fmt.Errorf("cannot react to deleted message %s: %w", messageID, ErrInvalidState)
		}
		action = m.ToggleReaction(emoji, userID)
		return true, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to save reaction on %s: %w", messageID, err)
	}

	cs.Realtime.Publish("room:"+room.RoomID, "reactionToggled", map[string]string{
		"chatRoomId": room.RoomID,
		"messageId":  message.MessageID,
		"userId":     userID,
		"emoji":      emoji,
		"action":     action,
	})
	return action, nil
}

// TogglePin flips the requester's pin flag on the room.
func (cs *ChatService) TogglePin(ctx context.Context, roomID, userID string) (bool, error) {
	room, err := cs.loadRoomForParticipant(ctx, roomID, userID)
	if err != nil {
		return false, err
	}
	pinned := room.TogglePin(userID)
	if err := cs.Chat.SaveRoom(ctx, room); err != nil {
		return false, fmt.Errorf("failed to save pin flag on room %s: %w", roomID, err)
	}
	return pinned, nil
}

// ToggleMute flips the requester's mute flag on the room. Muting only
// suppresses notifications; realtime events still flow.
func (cs *ChatService) ToggleMute(ctx context.Context, roomID, userID string) (bool, error) {
	room, err := cs.loadRoomForParticipant(ctx, roomID, userID)
	if err != nil {
		return false, err
	}
	muted := room.ToggleMute(userID)
	if err := cs.Chat.SaveRoom(ctx, room); err != nil {
		return false, fmt.Errorf("failed to save mute flag on room %s: %w", roomID, err)
	}
	return muted, nil
}

// ToggleArchive flips the room-wide archive flag. Archived rooms keep their
// history but reject new sends.
func (cs *ChatService) ToggleArchive(ctx context.Context, roomID, userID string) (bool, error) {
	room, err := cs.loadRoomForParticipant(ctx, roomID, userID)
	if err != nil {
		return false, err
	}
	room.IsArchived = !room.IsArchived
	if err := cs.Chat.SaveRoom(ctx, room); err != nil {
		return false, fmt.Errorf("failed to save archive flag on room %s: %w", roomID, err)
	}
	cs.Realtime.Publish("room:"+room.RoomID, "roomArchived", map[string]interface{}{
		"chatRoomId": room.RoomID,
		"isArchived": room.IsArchived,
	})
	return room.IsArchived, nil
}

// GetRoomForUser returns the room after the participant check.
func (cs *ChatService) GetRoomForUser(ctx context.Context, roomID, userID string) (*models.ChatRoom, error) {
	return cs.loadRoomForParticipant(ctx, roomID, userID)
}

// SearchMessages scans the room's history for a case-insensitive substring of
// the query. Redacted and per-user-deleted messages never match.
func (cs *ChatService) SearchMessages(ctx context.Context, roomID, userID, query string, limit int) ([]models.Message, error) {
	if query == "" {
		return nil, fmt.Errorf("search query is required: %w", ErrValidation)
	}
	room, err := cs.loadRoomForParticipant(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultMessagePageSize
	}

	needle := strings.ToLower(query)
	var hits []models.Message
	before := ""
	for len(hits) < limit {
		page, err := cs.Chat.GetMessages(ctx, room.RoomID, DefaultMessagePageSize, before)
		if err != nil {
			return nil, fmt.Errorf("failed to search room %s: %w", room.RoomID, err)
		}
		if len(page) == 0 {
			break
		}
		for _, message := range page {
			if message.IsDeleted || message.DeletedForUser(userID) {
				continue
			}
			if strings.Contains(strings.ToLower(message.Content), needle) {
				hits = append(hits, message)
				if len(hits) == limit {
					break
				}
			}
		}
		before = page[len(page)-1].CreatedAt
	}
	return hits, nil
}

// messageAge computes how long ago the message was created.
func messageAge(message *models.Message) (time.Duration, error) {
	createdAt, err := time.Parse(models.TimestampFormat, message.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("unparseable message timestamp %q: %w", message.CreatedAt, err)
	}
	return time.Since(createdAt), nil
}

func (cs *ChatService) notify(ctx context.Context, notification models.Notification) {
	if err := cs.Notifications.Create(ctx, notification); err != nil {
		log.Printf("⚠️ Warning: failed to create notification for %s: %v", notification.Recipient, err)
	}
}
