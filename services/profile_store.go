package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"roomly_server/models"
	"roomly_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoProfileStore is the DynamoDB-backed ProfileStore.
type DynamoProfileStore struct {
	Dynamo *DynamoService
}

func profileKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
}

// CreateProfile inserts the profile only while the user id is unclaimed, so
// two concurrent creates cannot both win.
func (ps *DynamoProfileStore) CreateProfile(ctx context.Context, profile *models.RoommateProfile) error {
	if err := ps.Dynamo.PutItemIfAbsent(ctx, models.RoommateProfilesTable, profile, "userId"); err != nil {
		if isConflict(err) {
			return fmt.Errorf("profile %s already exists: %w", profile.UserID, ErrConflict)
		}
		return fmt.Errorf("failed to create profile for %s: %w", profile.UserID, err)
	}
	return nil
}

// PutProfile stores the full profile document.
func (ps *DynamoProfileStore) PutProfile(ctx context.Context, profile *models.RoommateProfile) error {
	if err := ps.Dynamo.PutItem(ctx, models.RoommateProfilesTable, profile); err != nil {
		return fmt.Errorf("failed to store profile for %s: %w", profile.UserID, err)
	}
	return nil
}

// GetProfile retrieves a profile by user id.
func (ps *DynamoProfileStore) GetProfile(ctx context.Context, userID string) (*models.RoommateProfile, error) {
	item, err := ps.Dynamo.GetItem(ctx, models.RoommateProfilesTable, profileKey(userID))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}

	var profile models.RoommateProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile %s: %w", userID, err)
	}
	return &profile, nil
}

// UpdateProfile applies an explicit patch, recomputes the derived completion
// percentage, and stores the result.
func (ps *DynamoProfileStore) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.RoommateProfile, error) {
	profile, err := ps.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	patch.Apply(profile)
	profile.CompletionPercent = profile.ComputeCompletion()
	profile.UpdatedAt = time.Now().UTC().Format(models.TimestampFormat)

	if err := ps.PutProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// DeleteProfile removes a profile document.
func (ps *DynamoProfileStore) DeleteProfile(ctx context.Context, userID string) error {
	return ps.Dynamo.DeleteItem(ctx, models.RoommateProfilesTable, profileKey(userID))
}

// appendToSet appends a value to a list attribute, guarded so the same value
// is never added twice.
func (ps *DynamoProfileStore) appendToSet(ctx context.Context, userID, attribute, value string) error {
	updateExpression := fmt.Sprintf("SET %s = list_append(if_not_exists(%s, :empty), :newItem)", attribute, attribute)
	conditionExpression := fmt.Sprintf("attribute_exists(userId) AND (attribute_not_exists(%s) OR NOT contains(%s, :value))", attribute, attribute)

	_, err := ps.Dynamo.UpdateItemConditional(ctx, models.RoommateProfilesTable, updateExpression,
		profileKey(userID),
		map[string]types.AttributeValue{
			":empty":   &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":newItem": &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: value}}},
			":value":   &types.AttributeValueMemberS{Value: value},
		}, nil, conditionExpression,
	)
	if err != nil {
		return fmt.Errorf("failed to add %s to %s list of %s: %w", value, attribute, userID, err)
	}
	return nil
}

// AddLiked appends targetID to the liked set. Duplicate likes surface as
// ErrConflict via the conditional write.
func (ps *DynamoProfileStore) AddLiked(ctx context.Context, userID, targetID string) error {
	return ps.appendToSet(ctx, userID, "liked", targetID)
}

// AddDisliked appends targetID to the disliked set. The conditional write
// makes the operation idempotent; a repeat is not an error.
func (ps *DynamoProfileStore) AddDisliked(ctx context.Context, userID, targetID string) error {
	err := ps.appendToSet(ctx, userID, "disliked", targetID)
	if err != nil && isConflict(err) {
		return nil
	}
	return err
}

// AddMatchRef registers a match id on the profile's match list.
func (ps *DynamoProfileStore) AddMatchRef(ctx context.Context, userID, matchID string) error {
	err := ps.appendToSet(ctx, userID, "matches", matchID)
	if err != nil && isConflict(err) {
		return nil
	}
	return err
}

// RemoveMatchRef removes a match id from the profile's match list.
func (ps *DynamoProfileStore) RemoveMatchRef(ctx context.Context, userID, matchID string) error {
	profile, err := ps.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	index := -1
	for i, id := range profile.Matches {
		if id == matchID {
			index = i
			break
		}
	}
	if index == -1 {
		return nil // already gone
	}

	updateExpression := fmt.Sprintf("REMOVE matches[%d]", index)
	_, err = ps.Dynamo.UpdateItem(ctx, models.RoommateProfilesTable, updateExpression, profileKey(userID), nil, nil)
	if err != nil {
		return fmt.Errorf("failed to remove match %s from profile %s: %w", matchID, userID, err)
	}
	return nil
}

// ListProfiles fetches profiles by id, skipping missing ones.
func (ps *DynamoProfileStore) ListProfiles(ctx context.Context, userIDs []string) ([]models.RoommateProfile, error) {
	profiles := make([]models.RoommateProfile, 0, len(userIDs))
	for _, id := range userIDs {
		profile, err := ps.GetProfile(ctx, id)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

// DynamoGeoQuery answers radius queries by scanning profile coordinates.
// Works at small-to-medium scale; a geohash GSI can replace the scan without
// touching callers.
type DynamoGeoQuery struct {
	Dynamo *DynamoService
}

// ProfilesNear returns ids of profiles whose coordinates fall within radiusKm.
func (gq *DynamoGeoQuery) ProfilesNear(ctx context.Context, lat, lng, radiusKm float64) ([]string, error) {
	var profiles []models.RoommateProfile
	err := gq.Dynamo.ScanWithFilter(ctx, models.RoommateProfilesTable, nil, &profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to scan profiles for geo query: %w", err)
	}

	var ids []string
	for _, p := range profiles {
		if p.Latitude == 0 && p.Longitude == 0 {
			continue
		}
		if utils.CalculateDistance(lat, lng, p.Latitude, p.Longitude) <= radiusKm {
			ids = append(ids, p.UserID)
		}
	}
	log.Printf("🔍 Geo query found %d profiles within %.1f km", len(ids), radiusKm)
	return ids, nil
}
