package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"roomly_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoChatStore is the DynamoDB-backed ChatStore. Messages live under
// (chatRoomId, createdAt); the fixed-width timestamp keeps DynamoDB's sort
// order chronological. The ChatRoomPairs guard makes direct-room provisioning
// idempotent under concurrency.
type DynamoChatStore struct {
	Dynamo *DynamoService
}

func roomKey(roomID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"chatRoomId": &types.AttributeValueMemberS{Value: roomID},
	}
}

// CreateDirectRoom claims the pair guard and stores the room in one
// transaction. The race loser fetches and returns the winner's room.
func (cs *DynamoChatStore) CreateDirectRoom(ctx context.Context, room *models.ChatRoom) (*models.ChatRoom, bool, error) {
	roomItem, err := attributevalue.MarshalMap(room)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal room: %w", err)
	}
	guardItem, err := attributevalue.MarshalMap(models.RoomPair{
		PairKey: room.PairKey,
		RoomID:  room.RoomID,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal room pair guard: %w", err)
	}

	guardCondition := "attribute_not_exists(pairKey)"
	err = cs.Dynamo.TransactWriteItems(ctx, []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           strPtr(models.RoomPairsTable),
				Item:                guardItem,
				ConditionExpression: &guardCondition,
			},
		},
		{
			Put: &types.Put{
				TableName: strPtr(models.ChatRoomsTable),
				Item:      roomItem,
			},
		},
	})
	if err == nil {
		log.Printf("✅ Chat room %s created for pair %s", room.RoomID, room.PairKey)
		return room, true, nil
	}
	if !isConflict(err) {
		return nil, false, err
	}

	// Lost the race: resolve the guard to the existing room.
	existing, err := cs.getRoomByPair(ctx, room.PairKey)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (cs *DynamoChatStore) getRoomByPair(ctx context.Context, pairKey string) (*models.ChatRoom, error) {
	item, err := cs.Dynamo.GetItem(ctx, models.RoomPairsTable, map[string]types.AttributeValue{
		"pairKey": &types.AttributeValueMemberS{Value: pairKey},
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("no room for pair %s: %w", pairKey, ErrNotFound)
	}

	var guard models.RoomPair
	if err := attributevalue.UnmarshalMap(item, &guard); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room pair guard: %w", err)
	}
	return cs.GetRoom(ctx, guard.RoomID)
}

// GetRoom retrieves a chat room by id.
func (cs *DynamoChatStore) GetRoom(ctx context.Context, roomID string) (*models.ChatRoom, error) {
	item, err := cs.Dynamo.GetItem(ctx, models.ChatRoomsTable, roomKey(roomID))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("chat room %s: %w", roomID, ErrNotFound)
	}

	var room models.ChatRoom
	if err := attributevalue.UnmarshalMap(item, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat room %s: %w", roomID, err)
	}
	return &room, nil
}

// SaveRoom stores the full room document.
func (cs *DynamoChatStore) SaveRoom(ctx context.Context, room *models.ChatRoom) error {
	if err := cs.Dynamo.PutItem(ctx, models.ChatRoomsTable, room); err != nil {
		return fmt.Errorf("failed to save chat room %s: %w", room.RoomID, err)
	}
	return nil
}

// AppendMessage inserts the message and updates the room's lastMessage and
// per-participant unread counters as a single transaction. Either everything
// lands or nothing does.
func (cs *DynamoChatStore) AppendMessage(ctx context.Context, room *models.ChatRoom, message *models.Message) error {
	messageItem, err := attributevalue.MarshalMap(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	lastMessage, err := attributevalue.MarshalMap(models.LastMessage{
		Content:   message.Content,
		SenderID:  message.SenderID,
		Type:      message.Type,
		CreatedAt: message.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal last message: %w", err)
	}

	updateExpression := "SET lastMessage = :lastMessage"
	expressionValues := map[string]types.AttributeValue{
		":lastMessage": &types.AttributeValueMemberM{Value: lastMessage},
		":zero":        &types.AttributeValueMemberN{Value: "0"},
		":one":         &types.AttributeValueMemberN{Value: "1"},
	}
	expressionNames := map[string]string{}
	i := 0
	for _, participant := range room.Participants {
		if participant == message.SenderID {
			continue
		}
		name := fmt.Sprintf("#u%d", i)
		expressionNames[name] = participant
		updateExpression += fmt.Sprintf(", unreadCount.%s = if_not_exists(unreadCount.%s, :zero) + :one", name, name)
		i++
	}
	if len(expressionNames) == 0 {
		expressionNames = nil
		delete(expressionValues, ":zero")
		delete(expressionValues, ":one")
	}

	updateKey, err := attributevalue.MarshalMap(map[string]string{"chatRoomId": room.RoomID})
	if err != nil {
		return fmt.Errorf("failed to marshal room key: %w", err)
	}

	err = cs.Dynamo.TransactWriteItems(ctx, []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName: strPtr(models.ChatMessagesTable),
				Item:      messageItem,
			},
		},
		{
			Update: &types.Update{
				TableName:                 strPtr(models.ChatRoomsTable),
				Key:                       updateKey,
				UpdateExpression:          &updateExpression,
				ExpressionAttributeValues: expressionValues,
				ExpressionAttributeNames:  expressionNames,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to append message to room %s: %w", room.RoomID, err)
	}
	return nil
}

// GetMessages fetches up to limit messages newest-first, optionally starting
// strictly before the given sort key.
func (cs *DynamoChatStore) GetMessages(ctx context.Context, roomID string, limit int, before string) ([]models.Message, error) {
	keyCondition := "#chatRoomId = :chatRoomId"
	expressionValues := map[string]types.AttributeValue{
		":chatRoomId": &types.AttributeValueMemberS{Value: roomID},
	}
	expressionNames := map[string]string{
		"#chatRoomId": "chatRoomId",
	}
	if before != "" {
		keyCondition += " AND #createdAt < :before"
		expressionNames["#createdAt"] = "createdAt"
		expressionValues[":before"] = &types.AttributeValueMemberS{Value: before}
	}

	items, err := cs.Dynamo.QueryItemsWithOptions(ctx, models.ChatMessagesTable, keyCondition, expressionValues, expressionNames, int32(limit), true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages for room %s: %w", roomID, err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	return messages, nil
}

// GetMessage looks a message up by id through the messageId GSI.
func (cs *DynamoChatStore) GetMessage(ctx context.Context, messageID string) (*models.Message, error) {
	keyCondition := "messageId = :messageId"
	expressionValues := map[string]types.AttributeValue{
		":messageId": &types.AttributeValueMemberS{Value: messageID},
	}

	items, err := cs.Dynamo.QueryItemsWithIndex(ctx, models.ChatMessagesTable, models.MessageIDIndex, keyCondition, expressionValues, nil, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to query message %s: %w", messageID, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("message %s: %w", messageID, ErrNotFound)
	}

	var message models.Message
	if err := attributevalue.UnmarshalMap(items[0], &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", messageID, err)
	}
	return &message, nil
}

// SaveMessage stores the full message document (receipts, reactions, edit and
// delete state ride along). The write is conditioned on the version the
// caller read, so a concurrent writer surfaces as ErrConflict instead of
// being overwritten.
func (cs *DynamoChatStore) SaveMessage(ctx context.Context, message *models.Message) error {
	bumped := *message
	bumped.Version = message.Version + 1

	condition := "attribute_not_exists(chatRoomId) OR version = :expected"
	err := cs.Dynamo.PutItemConditional(ctx, models.ChatMessagesTable, &bumped, condition,
		map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(message.Version, 10)},
		}, nil)
	if err != nil {
		if isConflict(err) {
			return fmt.Errorf("message %s changed concurrently: %w", message.MessageID, ErrConflict)
		}
		return fmt.Errorf("failed to save message %s: %w", message.MessageID, err)
	}
	return nil
}

// ResetUnread zeroes the requester's unread counter on the room.
func (cs *DynamoChatStore) ResetUnread(ctx context.Context, roomID, userID string) error {
	updateExpression := "SET unreadCount.#user = :zero"
	_, err := cs.Dynamo.UpdateItem(ctx, models.ChatRoomsTable, updateExpression, roomKey(roomID),
		map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
		},
		map[string]string{
			"#user": userID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to reset unread count for %s in room %s: %w", userID, roomID, err)
	}
	return nil
}
