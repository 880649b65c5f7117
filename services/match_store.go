package services

import (
	"context"
	"fmt"
	"log"

	"roomly_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoMatchStore is the DynamoDB-backed MatchStore. The ActiveMatchPairs
// table carries the at-most-one-active-match-per-pair invariant; claiming it
// and writing the match happen inside one transaction so two reciprocal likes
// can never both win.
type DynamoMatchStore struct {
	Dynamo *DynamoService
}

func matchKey(matchID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
}

// CreateActiveMatch stores the match and claims the pair guard atomically.
// Returns ErrConflict when the pair already has an active match.
func (ms *DynamoMatchStore) CreateActiveMatch(ctx context.Context, match *models.Match) error {
	matchItem, err := attributevalue.MarshalMap(match)
	if err != nil {
		return fmt.Errorf("failed to marshal match: %w", err)
	}
	guardItem, err := attributevalue.MarshalMap(models.ActivePair{
		PairKey: match.PairKey,
		MatchID: match.MatchID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal pair guard: %w", err)
	}

	guardCondition := "attribute_not_exists(pairKey)"
	err = ms.Dynamo.TransactWriteItems(ctx, []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           strPtr(models.ActivePairsTable),
				Item:                guardItem,
				ConditionExpression: &guardCondition,
			},
		},
		{
			Put: &types.Put{
				TableName: strPtr(models.MatchesTable),
				Item:      matchItem,
			},
		},
	})
	if err != nil {
		if isConflict(err) {
			return fmt.Errorf("pair %s already has an active match: %w", match.PairKey, ErrConflict)
		}
		return err
	}

	log.Printf("✅ Match %s created for pair %s (%s)", match.MatchID, match.PairKey, match.Status)
	return nil
}

// GetMatch retrieves a match by id.
func (ms *DynamoMatchStore) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	item, err := ms.Dynamo.GetItem(ctx, models.MatchesTable, matchKey(matchID))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match %s: %w", matchID, err)
	}
	return &match, nil
}

// GetActiveMatchByPair resolves the pair guard to its match.
func (ms *DynamoMatchStore) GetActiveMatchByPair(ctx context.Context, pairKey string) (*models.Match, error) {
	item, err := ms.Dynamo.GetItem(ctx, models.ActivePairsTable, map[string]types.AttributeValue{
		"pairKey": &types.AttributeValueMemberS{Value: pairKey},
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("no active match for pair %s: %w", pairKey, ErrNotFound)
	}

	var guard models.ActivePair
	if err := attributevalue.UnmarshalMap(item, &guard); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pair guard: %w", err)
	}
	return ms.GetMatch(ctx, guard.MatchID)
}

// SaveMatch stores the full match document.
func (ms *DynamoMatchStore) SaveMatch(ctx context.Context, match *models.Match) error {
	if err := ms.Dynamo.PutItem(ctx, models.MatchesTable, match); err != nil {
		return fmt.Errorf("failed to save match %s: %w", match.MatchID, err)
	}
	return nil
}

// ReleasePair frees the uniqueness guard after a terminal transition.
func (ms *DynamoMatchStore) ReleasePair(ctx context.Context, pairKey string) error {
	return ms.Dynamo.DeleteItem(ctx, models.ActivePairsTable, map[string]types.AttributeValue{
		"pairKey": &types.AttributeValueMemberS{Value: pairKey},
	})
}

// GetMatchesByUser fetches matches where the user is either participant,
// querying both GSIs.
func (ms *DynamoMatchStore) GetMatchesByUser(ctx context.Context, userID string) ([]models.Match, error) {
	var matches []models.Match

	for _, index := range []struct{ name, attr string }{
		{models.MatchUser1Index, "user1Id"},
		{models.MatchUser2Index, "user2Id"},
	} {
		keyCondition := fmt.Sprintf("%s = :userId", index.attr)
		expressionValues := map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		}

		items, err := ms.Dynamo.QueryItemsWithIndex(ctx, models.MatchesTable, index.name, keyCondition, expressionValues, nil, 100)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", index.name, err)
		}

		for _, item := range items {
			var match models.Match
			if err := attributevalue.UnmarshalMap(item, &match); err != nil {
				log.Printf("⚠️ Warning: failed to unmarshal match from %s: %v", index.name, err)
				continue
			}
			matches = append(matches, match)
		}
	}

	return matches, nil
}

func strPtr(s string) *string { return &s }
