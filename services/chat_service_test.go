package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"roomly_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatEnv struct {
	chat          *fakeChatStore
	realtime      *fakeRealtime
	notifications *fakeNotifications
	service       *ChatService
	room          *models.ChatRoom
}

func newChatEnv(t *testing.T) *chatEnv {
	t.Helper()
	env := &chatEnv{
		chat:          newFakeChatStore(),
		realtime:      &fakeRealtime{},
		notifications: &fakeNotifications{},
	}
	env.service = &ChatService{
		Chat:          env.chat,
		Realtime:      env.realtime,
		Notifications: env.notifications,
	}

	rooms := &RoomService{Chat: env.chat}
	room, err := rooms.GetOrCreateDirectRoom(context.Background(), "alice", "bob", "match-1")
	require.NoError(t, err)
	env.room = room
	return env
}

func (env *chatEnv) send(t *testing.T, sender, content string) *models.Message {
	t.Helper()
	message, err := env.service.SendMessage(context.Background(), SendMessageInput{
		RoomID:   env.room.RoomID,
		SenderID: sender,
		Content:  content,
	})
	require.NoError(t, err)
	return message
}

// backdate rewrites a message's creation time, for window tests.
func (env *chatEnv) backdate(t *testing.T, messageID string, age time.Duration) {
	t.Helper()
	message, err := env.chat.GetMessage(context.Background(), messageID)
	require.NoError(t, err)
	message.CreatedAt = time.Now().Add(-age).UTC().Format(models.TimestampFormat)
	require.NoError(t, env.chat.SaveMessage(context.Background(), message))
}

func TestSendMessageUpdatesRoomState(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	message := env.send(t, "alice", "hey, is the room still free?")
	assert.Equal(t, models.MessageTypeText, message.Type)
	assert.NotEmpty(t, message.MessageID)

	room, err := env.chat.GetRoom(ctx, env.room.RoomID)
	require.NoError(t, err)
	require.NotNil(t, room.LastMessage)
	assert.Equal(t, message.Content, room.LastMessage.Content)
	assert.Equal(t, "alice", room.LastMessage.SenderID)
	assert.Equal(t, 1, room.UnreadFor("bob"))
	assert.Zero(t, room.UnreadFor("alice"))

	assert.Len(t, env.realtime.eventsFor("room:"+room.RoomID, "newMessage"), 1)

	notifications := env.notifications.forRecipient("bob")
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeMessage, notifications[0].Type)
	assert.Empty(t, env.notifications.forRecipient("alice"))
}

func TestSendMessageMutedSkipsNotification(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	_, err := env.service.ToggleMute(ctx, env.room.RoomID, "bob")
	require.NoError(t, err)

	env.send(t, "alice", "ping")

	// Muting suppresses the notification but not the realtime event or the
	// unread count.
	assert.Empty(t, env.notifications.forRecipient("bob"))
	assert.Len(t, env.realtime.eventsFor("room:"+env.room.RoomID, "newMessage"), 1)
	room, err := env.chat.GetRoom(ctx, env.room.RoomID)
	require.NoError(t, err)
	assert.Equal(t, 1, room.UnreadFor("bob"))
}

func TestSendMessageAccessAndValidation(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	_, err := env.service.SendMessage(ctx, SendMessageInput{
		RoomID: env.room.RoomID, SenderID: "mallory", Content: "hi",
	})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.service.SendMessage(ctx, SendMessageInput{
		RoomID: env.room.RoomID, SenderID: "alice",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.service.ToggleArchive(ctx, env.room.RoomID, "alice")
	require.NoError(t, err)
	_, err = env.service.SendMessage(ctx, SendMessageInput{
		RoomID: env.room.RoomID, SenderID: "alice", Content: "hi",
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestConcurrentSendsLoseNoIncrement(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	const perSender = 10
	var wg sync.WaitGroup
	for _, sender := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(sender string) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				_, err := env.service.SendMessage(ctx, SendMessageInput{
					RoomID:   env.room.RoomID,
					SenderID: sender,
					Content:  fmt.Sprintf("%s #%d", sender, i),
				})
				assert.NoError(t, err)
			}
		}(sender)
	}
	wg.Wait()

	room, err := env.chat.GetRoom(ctx, env.room.RoomID)
	require.NoError(t, err)
	assert.Equal(t, perSender, room.UnreadFor("alice"))
	assert.Equal(t, perSender, room.UnreadFor("bob"))
	assert.Len(t, env.realtime.eventsFor("room:"+room.RoomID, "newMessage"), 2*perSender)
}

func TestGetMessagesOrderingAndReceipts(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	first := env.send(t, "alice", "first")
	time.Sleep(time.Millisecond)
	second := env.send(t, "alice", "second")
	time.Sleep(time.Millisecond)
	third := env.send(t, "bob", "third")

	messages, err := env.service.GetMessages(ctx, env.room.RoomID, "bob", 50, "")
	require.NoError(t, err)
	require.Len(t, messages, 3)

	// Oldest first for rendering.
	assert.Equal(t, first.MessageID, messages[0].MessageID)
	assert.Equal(t, second.MessageID, messages[1].MessageID)
	assert.Equal(t, third.MessageID, messages[2].MessageID)

	// Delivery recorded for the messages bob received, not his own.
	stored, err := env.chat.GetMessage(ctx, first.MessageID)
	require.NoError(t, err)
	assert.True(t, stored.HasDeliveredReceipt("bob"))
	stored, err = env.chat.GetMessage(ctx, third.MessageID)
	require.NoError(t, err)
	assert.False(t, stored.HasDeliveredReceipt("bob"))

	// Paging: before the third message only the first two remain.
	page, err := env.service.GetMessages(ctx, env.room.RoomID, "bob", 50, third.CreatedAt)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, second.MessageID, page[1].MessageID)

	// Non-participants get nothing.
	_, err = env.service.GetMessages(ctx, env.room.RoomID, "mallory", 50, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	first := env.send(t, "alice", "one")
	second := env.send(t, "alice", "two")

	ids := []string{first.MessageID, second.MessageID}
	require.NoError(t, env.service.MarkRead(ctx, env.room.RoomID, "bob", ids))

	room, err := env.chat.GetRoom(ctx, env.room.RoomID)
	require.NoError(t, err)
	assert.Zero(t, room.UnreadFor("bob"))

	stored, err := env.chat.GetMessage(ctx, first.MessageID)
	require.NoError(t, err)
	assert.True(t, stored.HasReadReceipt("bob"))
	require.Len(t, stored.ReadBy, 1)

	// Second pass adds no receipt; the read state is still announced, with
	// nothing newly acknowledged.
	require.NoError(t, env.service.MarkRead(ctx, env.room.RoomID, "bob", ids))
	stored, err = env.chat.GetMessage(ctx, first.MessageID)
	require.NoError(t, err)
	require.Len(t, stored.ReadBy, 1)

	events := env.realtime.eventsFor("room:"+env.room.RoomID, "messagesRead")
	require.Len(t, events, 2)
	firstPayload := events[0].Payload.(map[string]interface{})
	assert.ElementsMatch(t, ids, firstPayload["messageIds"])
	secondPayload := events[1].Payload.(map[string]interface{})
	assert.Empty(t, secondPayload["messageIds"])
}

func TestEditMessageWindow(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	message := env.send(t, "alice", "typo-ridden mesage")

	// Non-sender may not edit.
	_, err := env.service.EditMessage(ctx, message.MessageID, "bob", "fixed")
	assert.ErrorIs(t, err, ErrForbidden)

	// Inside the window the sender may edit.
	env.backdate(t, message.MessageID, 14*time.Minute)
	edited, err := env.service.EditMessage(ctx, message.MessageID, "alice", "typo-free message")
	require.NoError(t, err)
	assert.True(t, edited.IsEdited)
	require.NotNil(t, edited.EditedAt)
	assert.Equal(t, "typo-free message", edited.Content)
	assert.Len(t, env.realtime.eventsFor("room:"+env.room.RoomID, "messageEdited"), 1)

	// Past the window the edit is refused.
	env.backdate(t, message.MessageID, 16*time.Minute)
	_, err = env.service.EditMessage(ctx, message.MessageID, "alice", "too late")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDeleteMessageForEveryone(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	message := env.send(t, "alice", "please delete me")

	// Only the sender may delete for everyone, regardless of age.
	_, err := env.service.DeleteMessage(ctx, message.MessageID, "bob", models.DeleteScopeEveryone)
	assert.ErrorIs(t, err, ErrForbidden)

	deleted, err := env.service.DeleteMessage(ctx, message.MessageID, "alice", models.DeleteScopeEveryone)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	assert.Equal(t, models.RedactedContent, deleted.Content)
	assert.Len(t, env.realtime.eventsFor("room:"+env.room.RoomID, "messageDeleted"), 1)

	// Deleted messages cannot be edited or reacted to.
	_, err = env.service.EditMessage(ctx, message.MessageID, "alice", "resurrect")
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = env.service.ToggleReaction(ctx, message.MessageID, "bob", "👍")
	assert.ErrorIs(t, err, ErrInvalidState)

	// The window applies to delete-for-everyone.
	stale := env.send(t, "alice", "ancient history")
	env.backdate(t, stale.MessageID, 61*time.Minute)
	_, err = env.service.DeleteMessage(ctx, stale.MessageID, "alice", models.DeleteScopeEveryone)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDeleteMessageForMe(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	message := env.send(t, "alice", "only bob hides this")
	env.backdate(t, message.MessageID, 48*time.Hour) // no window for delete-for-me

	_, err := env.service.DeleteMessage(ctx, message.MessageID, "bob", models.DeleteScopeMe)
	require.NoError(t, err)

	// Hidden for bob, still visible for alice.
	bobView, err := env.service.GetMessages(ctx, env.room.RoomID, "bob", 50, "")
	require.NoError(t, err)
	assert.Empty(t, bobView)

	aliceView, err := env.service.GetMessages(ctx, env.room.RoomID, "alice", 50, "")
	require.NoError(t, err)
	require.Len(t, aliceView, 1)
	assert.Equal(t, "only bob hides this", aliceView[0].Content)

	// Unknown scope is a validation error.
	_, err = env.service.DeleteMessage(ctx, message.MessageID, "bob", "both")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestToggleReaction(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	message := env.send(t, "alice", "we got the flat! 🎉")

	action, err := env.service.ToggleReaction(ctx, message.MessageID, "bob", "🎉")
	require.NoError(t, err)
	assert.Equal(t, models.ReactionAdded, action)

	stored, err := env.chat.GetMessage(ctx, message.MessageID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, stored.Reactions["🎉"])

	action, err = env.service.ToggleReaction(ctx, message.MessageID, "bob", "🎉")
	require.NoError(t, err)
	assert.Equal(t, models.ReactionRemoved, action)

	stored, err = env.chat.GetMessage(ctx, message.MessageID)
	require.NoError(t, err)
	assert.Empty(t, stored.Reactions)

	assert.Len(t, env.realtime.eventsFor("room:"+env.room.RoomID, "reactionToggled"), 2)
}

func TestConcurrentReactionAndReceiptBothLand(t *testing.T) {
	// A reaction and a read receipt racing on the same message must both
	// survive; the version guard forces the loser to re-read and re-apply
	// instead of overwriting.
	env := newChatEnv(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		message := env.send(t, "alice", fmt.Sprintf("note %d", i))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := env.service.ToggleReaction(ctx, message.MessageID, "bob", "👍")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, env.service.MarkRead(ctx, env.room.RoomID, "bob", []string{message.MessageID}))
		}()
		wg.Wait()

		stored, err := env.chat.GetMessage(ctx, message.MessageID)
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, stored.Reactions["👍"], "iteration %d", i)
		assert.True(t, stored.HasReadReceipt("bob"), "iteration %d", i)
		assert.True(t, stored.HasDeliveredReceipt("bob"), "iteration %d", i)
	}
}

func TestRoomFlagsPerUser(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	// Defaults are false for everyone.
	room, err := env.service.GetRoomForUser(ctx, env.room.RoomID, "alice")
	require.NoError(t, err)
	assert.False(t, room.PinnedFor("alice"))
	assert.False(t, room.MutedFor("bob"))

	pinned, err := env.service.TogglePin(ctx, env.room.RoomID, "alice")
	require.NoError(t, err)
	assert.True(t, pinned)

	// Alice's pin does not leak to bob.
	room, err = env.service.GetRoomForUser(ctx, env.room.RoomID, "bob")
	require.NoError(t, err)
	assert.True(t, room.PinnedFor("alice"))
	assert.False(t, room.PinnedFor("bob"))

	pinned, err = env.service.TogglePin(ctx, env.room.RoomID, "alice")
	require.NoError(t, err)
	assert.False(t, pinned)

	_, err = env.service.TogglePin(ctx, env.room.RoomID, "mallory")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSearchMessages(t *testing.T) {
	env := newChatEnv(t)
	ctx := context.Background()

	env.send(t, "alice", "The LEASE starts in October")
	time.Sleep(time.Millisecond)
	secret := env.send(t, "bob", "lease question: utilities included?")
	time.Sleep(time.Millisecond)
	env.send(t, "alice", "unrelated chatter")

	hits, err := env.service.SearchMessages(ctx, env.room.RoomID, "alice", "lease", 50)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	// Redacted messages drop out of search.
	_, err = env.service.DeleteMessage(ctx, secret.MessageID, "bob", models.DeleteScopeEveryone)
	require.NoError(t, err)
	hits, err = env.service.SearchMessages(ctx, env.room.RoomID, "alice", "lease", 50)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	_, err = env.service.SearchMessages(ctx, env.room.RoomID, "alice", "", 50)
	assert.ErrorIs(t, err, ErrValidation)
}
