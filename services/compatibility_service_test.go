package services

import (
	"fmt"
	"testing"

	"roomly_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseProfile(userID string) *models.RoommateProfile {
	return &models.RoommateProfile{
		UserID:              userID,
		Name:                "User " + userID,
		Latitude:            52.5200,
		Longitude:           13.4050,
		MaxDistanceKm:       10,
		BudgetMin:           800,
		BudgetMax:           1200,
		MoveInDate:          "2026-10-01",
		LeaseDurationMonths: 12,
		Lifestyle: models.Lifestyle{
			SleepSchedule:  models.SleepEarlyBird,
			Cleanliness:    4,
			SocialLevel:    3,
			Smoking:        false,
			Drinking:       models.DrinkingSocially,
			Pets:           false,
			GuestFrequency: models.GuestsSometimes,
		},
		Interests: []string{"gym", "music"},
	}
}

func TestScoreKnownPair(t *testing.T) {
	scorer := NewCompatibilityService()

	a := baseProfile("alice")
	b := baseProfile("bob")
	b.BudgetMin = 1000
	b.BudgetMax = 1400
	b.Interests = []string{"music", "reading"}
	// ~3 km north of a.
	b.Latitude = 52.5470
	b.Longitude = 13.4050

	result := scorer.Score(a, b)
	require.Empty(t, result.Reason)

	// Budget: overlap 200 over the smaller span 400.
	assert.InDelta(t, 50, result.Breakdown.Budget, 0.01)
	// Location: ~3 km against the shared 10 km preference.
	assert.InDelta(t, 70, result.Breakdown.Location, 0.5)
	// Identical lifestyle, move-in date and lease duration.
	assert.InDelta(t, 100, result.Breakdown.Lifestyle, 0.01)
	assert.InDelta(t, 100, result.Breakdown.MoveInDate, 0.01)
	assert.InDelta(t, 100, result.Breakdown.LeaseDuration, 0.01)
	// Interests: one shared of three distinct.
	assert.InDelta(t, 100.0/3, result.Breakdown.Interests, 0.01)

	assert.Equal(t, 75, result.Total)
}

func TestScoreSymmetry(t *testing.T) {
	scorer := NewCompatibilityService()

	a := baseProfile("alice")
	b := baseProfile("bob")
	b.BudgetMin = 600
	b.BudgetMax = 900
	b.Latitude = 52.60
	b.MoveInDate = "2026-10-15"
	b.LeaseDurationMonths = 6
	b.Interests = []string{"music", "cooking", "hiking"}
	b.Lifestyle.SleepSchedule = models.SleepFlexible
	b.Lifestyle.Cleanliness = 2

	forward := scorer.Score(a, b)
	backward := scorer.Score(b, a)
	assert.Equal(t, forward.Total, backward.Total)
	assert.Equal(t, forward.Breakdown, backward.Breakdown)
}

func TestScoreRange(t *testing.T) {
	scorer := NewCompatibilityService()

	cases := []struct {
		name   string
		mutate func(*models.RoommateProfile)
	}{
		{"identical", func(p *models.RoommateProfile) {}},
		{"opposite lifestyle", func(p *models.RoommateProfile) {
			p.Lifestyle = models.Lifestyle{
				SleepSchedule:  models.SleepNightOwl,
				Cleanliness:    1,
				SocialLevel:    5,
				Smoking:        true,
				Drinking:       models.DrinkingRegularly,
				Pets:           true,
				GuestFrequency: models.GuestsOften,
			}
		}},
		{"far apart", func(p *models.RoommateProfile) {
			p.Latitude = 48.1351 // Munich vs Berlin
			p.Longitude = 11.5820
		}},
		{"disjoint budgets", func(p *models.RoommateProfile) {
			p.BudgetMin = 3000
			p.BudgetMax = 4000
		}},
		{"distant move-in", func(p *models.RoommateProfile) {
			p.MoveInDate = "2027-06-01"
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := baseProfile("alice")
			b := baseProfile("bob")
			tc.mutate(b)

			result := scorer.Score(a, b)
			require.Empty(t, result.Reason)
			assert.GreaterOrEqual(t, result.Total, 0)
			assert.LessOrEqual(t, result.Total, 100)
			for i, sub := range []float64{
				result.Breakdown.Budget,
				result.Breakdown.Location,
				result.Breakdown.Lifestyle,
				result.Breakdown.Interests,
				result.Breakdown.MoveInDate,
				result.Breakdown.LeaseDuration,
			} {
				assert.GreaterOrEqual(t, sub, 0.0, fmt.Sprintf("sub-score %d", i))
				assert.LessOrEqual(t, sub, 100.0, fmt.Sprintf("sub-score %d", i))
			}
		})
	}
}

func TestScoreIdenticalProfiles(t *testing.T) {
	scorer := NewCompatibilityService()
	a := baseProfile("alice")
	b := baseProfile("bob")

	result := scorer.Score(a, b)
	assert.Equal(t, 100, result.Total)
}

func TestScoreMissingEssentials(t *testing.T) {
	scorer := NewCompatibilityService()

	t.Run("missing budget", func(t *testing.T) {
		a := baseProfile("alice")
		a.BudgetMin = 0
		a.BudgetMax = 0
		result := scorer.Score(a, baseProfile("bob"))
		assert.Zero(t, result.Total)
		assert.Contains(t, result.Reason, "budget")
	})

	t.Run("inverted budget", func(t *testing.T) {
		b := baseProfile("bob")
		b.BudgetMin = 1500
		b.BudgetMax = 900
		result := scorer.Score(baseProfile("alice"), b)
		assert.Zero(t, result.Total)
		assert.Contains(t, result.Reason, "budget")
	})

	t.Run("missing coordinates", func(t *testing.T) {
		b := baseProfile("bob")
		b.Latitude = 0
		b.Longitude = 0
		result := scorer.Score(baseProfile("alice"), b)
		assert.Zero(t, result.Total)
		assert.Contains(t, result.Reason, "coordinates")
	})
}

func TestBudgetScoreDisjointDecay(t *testing.T) {
	scorer := NewCompatibilityService()

	a := baseProfile("alice") // 800-1200
	b := baseProfile("bob")

	// Gap of 100 against the 300 tolerance: 50 * (1 - 100/300).
	b.BudgetMin = 1300
	b.BudgetMax = 1700
	assert.InDelta(t, 33.33, scorer.budgetScore(a, b), 0.01)

	// Gap at the tolerance scores zero.
	b.BudgetMin = 1500
	b.BudgetMax = 1900
	assert.Zero(t, scorer.budgetScore(a, b))
}

func TestInterestsScoreEmptySets(t *testing.T) {
	assert.Zero(t, interestsScore(nil, []string{"music"}))
	assert.Zero(t, interestsScore([]string{"music"}, nil))
	assert.Zero(t, interestsScore(nil, nil))
}
