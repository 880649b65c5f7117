package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"roomly_server/models"
	"roomly_server/utils"
)

// DefaultCandidateLimit caps the ranked list when the caller gives no limit.
const DefaultCandidateLimit = 20

// CandidateOptions tune a candidate search. Zero values fall back to
// preference-derived defaults.
type CandidateOptions struct {
	MinScore      int     `json:"minScore"`
	MaxDistanceKm float64 `json:"maxDistanceKm"`
	Limit         int     `json:"limit"`
}

// RankedCandidate is one scored entry of the result list.
type RankedCandidate struct {
	Profile    models.RoommateProfile `json:"profile"`
	Score      int                    `json:"score"`
	Breakdown  models.ScoreBreakdown  `json:"breakdown"`
	DistanceKm float64                `json:"distanceKm"`
}

// CandidateService finds and ranks eligible roommate candidates. Read-only:
// it never writes.
type CandidateService struct {
	Profiles ProfileStore
	Matches  MatchStore
	Geo      GeoQuery
	Scorer   *CompatibilityService
}

// FindCandidates loads the requester's profile, pre-filters by location,
// drops already-seen users (self, liked, disliked, active-match partners),
// scores the rest and returns the ranked list.
func (cs *CandidateService) FindCandidates(ctx context.Context, userID string, opts CandidateOptions) ([]RankedCandidate, error) {
	requester, err := cs.Profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	maxDistance := opts.MaxDistanceKm
	if maxDistance <= 0 {
		maxDistance = maxDistanceOrDefault(requester)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}

	// Geo pre-filter before any scoring work.
	nearby, err := cs.Geo.ProfilesNear(ctx, requester.Latitude, requester.Longitude, maxDistance)
	if err != nil {
		return nil, fmt.Errorf("failed to run geo pre-filter: %w", err)
	}

	exclude := cs.excludedUsers(ctx, requester)
	var candidateIDs []string
	for _, id := range nearby {
		if _, skip := exclude[id]; skip {
			continue
		}
		candidateIDs = append(candidateIDs, id)
	}

	profiles, err := cs.Profiles.ListProfiles(ctx, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate profiles: %w", err)
	}

	ranked := make([]RankedCandidate, 0, len(profiles))
	for i := range profiles {
		candidate := profiles[i]
		result := cs.Scorer.Score(requester, &candidate)
		if result.Reason != "" {
			continue // unscorable profiles never rank
		}
		if result.Total < opts.MinScore {
			continue
		}
		distance := utils.CalculateDistance(requester.Latitude, requester.Longitude, candidate.Latitude, candidate.Longitude)
		if distance > maxDistance {
			continue
		}
		ranked = append(ranked, RankedCandidate{
			Profile:    candidate,
			Score:      result.Total,
			Breakdown:  result.Breakdown,
			DistanceKm: distance,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	log.Printf("✅ Found %d candidates for %s (limit %d)", len(ranked), userID, limit)
	return ranked, nil
}

// excludedUsers collects everyone the requester has already seen: themselves,
// liked, disliked, and partners of active matches.
func (cs *CandidateService) excludedUsers(ctx context.Context, requester *models.RoommateProfile) map[string]struct{} {
	exclude := map[string]struct{}{requester.UserID: {}}
	for _, id := range requester.Liked {
		exclude[id] = struct{}{}
	}
	for _, id := range requester.Disliked {
		exclude[id] = struct{}{}
	}

	matches, err := cs.Matches.GetMatchesByUser(ctx, requester.UserID)
	if err != nil {
		log.Printf("⚠️ Warning: failed to load matches for exclusion: %v", err)
		return exclude
	}
	for _, match := range matches {
		if match.IsActive() {
			exclude[match.OtherParticipant(requester.UserID)] = struct{}{}
		}
	}
	return exclude
}
