package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"roomly_server/models"
)

// UserProfileService owns roommate listing documents: creation, lookup,
// patch updates and deletion.
type UserProfileService struct {
	Profiles ProfileStore
}

// CreateProfile validates and stores a new roommate listing. The completion
// percentage is derived here, never accepted from the caller.
func (ups *UserProfileService) CreateProfile(ctx context.Context, profile *models.RoommateProfile) (*models.RoommateProfile, error) {
	if profile.UserID == "" {
		return nil, fmt.Errorf("userId is required: %w", ErrValidation)
	}
	if profile.BudgetMin < 0 || (profile.BudgetMax > 0 && profile.BudgetMax < profile.BudgetMin) {
		return nil, fmt.Errorf("invalid budget range [%d, %d]: %w", profile.BudgetMin, profile.BudgetMax, ErrValidation)
	}
	if profile.MoveInDate != "" {
		if _, err := time.Parse("2006-01-02", profile.MoveInDate); err != nil {
			return nil, fmt.Errorf("moveInDate must be YYYY-MM-DD: %w", ErrValidation)
		}
	}

	// Server-owned fields.
	profile.Liked = nil
	profile.Disliked = nil
	profile.Viewed = nil
	profile.Matches = nil
	profile.CompletionPercent = profile.ComputeCompletion()
	profile.CreatedAt = now()
	profile.UpdatedAt = profile.CreatedAt

	// The store's conditional insert arbitrates concurrent creates; no
	// read-then-write gap.
	if err := ups.Profiles.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}
	log.Printf("✅ Profile created for %s (%d%% complete)", profile.UserID, profile.CompletionPercent)
	return profile, nil
}

// GetProfile fetches a listing by user id.
func (ups *UserProfileService) GetProfile(ctx context.Context, userID string) (*models.RoommateProfile, error) {
	return ups.Profiles.GetProfile(ctx, userID)
}

// UpdateProfile applies a patch to the stored listing and recomputes the
// completion percentage.
func (ups *UserProfileService) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.RoommateProfile, error) {
	if patch.BudgetMin != nil && patch.BudgetMax != nil && *patch.BudgetMax < *patch.BudgetMin {
		return nil, fmt.Errorf("invalid budget range [%d, %d]: %w", *patch.BudgetMin, *patch.BudgetMax, ErrValidation)
	}
	if patch.MoveInDate != nil {
		if _, err := time.Parse("2006-01-02", *patch.MoveInDate); err != nil {
			return nil, fmt.Errorf("moveInDate must be YYYY-MM-DD: %w", ErrValidation)
		}
	}
	return ups.Profiles.UpdateProfile(ctx, userID, patch)
}

// DeleteProfile removes the listing.
func (ups *UserProfileService) DeleteProfile(ctx context.Context, userID string) error {
	if _, err := ups.Profiles.GetProfile(ctx, userID); err != nil {
		return err
	}
	return ups.Profiles.DeleteProfile(ctx, userID)
}
