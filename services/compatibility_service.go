package services

import (
	"math"
	"time"

	"roomly_server/models"
	"roomly_server/utils"
)

// ScoreWeights is the documented fixed-weight table for the total score.
// Weights must sum to 1.0.
type ScoreWeights struct {
	Budget        float64
	Location      float64
	Lifestyle     float64
	Interests     float64
	MoveInDate    float64
	LeaseDuration float64
}

// DefaultScoreWeights returns the production weight table:
//
//	budget 0.25, location 0.20, lifestyle 0.25,
//	interests 0.10, moveInDate 0.10, leaseDuration 0.10
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Budget:        0.25,
		Location:      0.20,
		Lifestyle:     0.25,
		Interests:     0.10,
		MoveInDate:    0.10,
		LeaseDuration: 0.10,
	}
}

// BudgetGapToleranceDefault is the gap (in currency units) beyond which
// disjoint budget ranges score zero.
const BudgetGapToleranceDefault = 300

// DefaultMaxDistanceKm applies when a profile declares no distance preference.
const DefaultMaxDistanceKm = 50

// CompatibilityService scores two roommate profiles against each other.
// Pure and deterministic: no I/O, no clock beyond date parsing.
type CompatibilityService struct {
	Weights            ScoreWeights
	BudgetGapTolerance float64
}

// NewCompatibilityService builds a scorer with the default weight table.
func NewCompatibilityService() *CompatibilityService {
	return &CompatibilityService{
		Weights:            DefaultScoreWeights(),
		BudgetGapTolerance: BudgetGapToleranceDefault,
	}
}

// Score computes the weighted compatibility of two profiles with a
// per-factor breakdown. Profiles missing the scoring essentials (budget
// range, coordinates) score 0 with a reason.
func (cs *CompatibilityService) Score(a, b *models.RoommateProfile) models.CompatibilityResult {
	if reason := scoringEssentialsMissing(a); reason != "" {
		return models.CompatibilityResult{Reason: "profile " + a.UserID + ": " + reason}
	}
	if reason := scoringEssentialsMissing(b); reason != "" {
		return models.CompatibilityResult{Reason: "profile " + b.UserID + ": " + reason}
	}

	breakdown := models.ScoreBreakdown{
		Budget:        cs.budgetScore(a, b),
		Location:      cs.locationScore(a, b),
		Lifestyle:     lifestyleScore(a.Lifestyle, b.Lifestyle),
		Interests:     interestsScore(a.Interests, b.Interests),
		MoveInDate:    moveInScore(a.MoveInDate, b.MoveInDate),
		LeaseDuration: leaseScore(a.LeaseDurationMonths, b.LeaseDurationMonths),
	}

	w := cs.Weights
	total := w.Budget*breakdown.Budget +
		w.Location*breakdown.Location +
		w.Lifestyle*breakdown.Lifestyle +
		w.Interests*breakdown.Interests +
		w.MoveInDate*breakdown.MoveInDate +
		w.LeaseDuration*breakdown.LeaseDuration

	return models.CompatibilityResult{
		Total:     clampScore(int(math.Round(total))),
		Breakdown: breakdown,
	}
}

func scoringEssentialsMissing(p *models.RoommateProfile) string {
	if p.BudgetMax <= 0 || p.BudgetMax < p.BudgetMin {
		return "missing or invalid budget range"
	}
	if p.Latitude == 0 && p.Longitude == 0 {
		return "missing coordinates"
	}
	return ""
}

// budgetScore rates the overlap of the two [min,max] ranges. Overlapping
// ranges score 100·overlap/minSpan (full containment scores 100); disjoint
// ranges decay linearly from 50 at gap 0 down to 0 at the gap tolerance.
func (cs *CompatibilityService) budgetScore(a, b *models.RoommateProfile) float64 {
	low := math.Max(float64(a.BudgetMin), float64(b.BudgetMin))
	high := math.Min(float64(a.BudgetMax), float64(b.BudgetMax))
	overlap := high - low

	if overlap >= 0 {
		minSpan := math.Min(float64(a.BudgetMax-a.BudgetMin), float64(b.BudgetMax-b.BudgetMin))
		if minSpan <= 0 {
			return 100 // point budgets inside the other range
		}
		return 100 * overlap / minSpan
	}

	gap := -overlap
	tolerance := cs.BudgetGapTolerance
	if tolerance <= 0 || gap >= tolerance {
		return 0
	}
	return 50 * (1 - gap/tolerance)
}

// locationScore decays linearly from 100 at 0 km to 0 at the stricter of the
// two declared max-distance preferences. Computed once, applied symmetrically.
func (cs *CompatibilityService) locationScore(a, b *models.RoommateProfile) float64 {
	distance := utils.CalculateDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)

	threshold := math.Min(maxDistanceOrDefault(a), maxDistanceOrDefault(b))
	if distance >= threshold {
		return 0
	}
	return 100 * (1 - distance/threshold)
}

func maxDistanceOrDefault(p *models.RoommateProfile) float64 {
	if p.MaxDistanceKm > 0 {
		return p.MaxDistanceKm
	}
	return DefaultMaxDistanceKm
}

var drinkingOrdinal = map[string]int{
	models.DrinkingNever:     0,
	models.DrinkingSocially:  1,
	models.DrinkingRegularly: 2,
}

var guestOrdinal = map[string]int{
	models.GuestsRarely:    0,
	models.GuestsSometimes: 1,
	models.GuestsOften:     2,
}

// lifestyleScore averages seven per-attribute contributions, each 0-100.
func lifestyleScore(a, b models.Lifestyle) float64 {
	var sum float64

	// Sleep schedule: equal is a full match, "flexible" on either side is a
	// half match.
	switch {
	case a.SleepSchedule == b.SleepSchedule:
		sum += 100
	case a.SleepSchedule == models.SleepFlexible || b.SleepSchedule == models.SleepFlexible:
		sum += 50
	}

	// Cleanliness and social level: numeric closeness on the 1-5 scale.
	sum += 100 - math.Abs(float64(a.Cleanliness-b.Cleanliness))*25
	sum += 100 - math.Abs(float64(a.SocialLevel-b.SocialLevel))*25

	// Smoking and pets: binary match.
	if a.Smoking == b.Smoking {
		sum += 100
	}
	if a.Pets == b.Pets {
		sum += 100
	}

	// Drinking and guest frequency: ordinal closeness.
	sum += 100 - math.Abs(float64(drinkingOrdinal[a.Drinking]-drinkingOrdinal[b.Drinking]))*50
	sum += 100 - math.Abs(float64(guestOrdinal[a.GuestFrequency]-guestOrdinal[b.GuestFrequency]))*50

	return sum / 7
}

// interestsScore is the Jaccard overlap of the interest sets, scaled to
// 0-100. Either side empty scores 0.
func interestsScore(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, interest := range a {
		set[interest] = struct{}{}
	}

	intersection := 0
	union := len(set)
	seen := make(map[string]struct{}, len(b))
	for _, interest := range b {
		if _, dup := seen[interest]; dup {
			continue
		}
		seen[interest] = struct{}{}
		if _, ok := set[interest]; ok {
			intersection++
		} else {
			union++
		}
	}

	return 100 * float64(intersection) / float64(union)
}

// moveInScore decays by 2 points per day of difference between the declared
// move-in dates; identical dates score 100.
func moveInScore(a, b string) float64 {
	dateA, errA := time.Parse("2006-01-02", a)
	dateB, errB := time.Parse("2006-01-02", b)
	if errA != nil || errB != nil {
		return 0
	}
	days := math.Abs(dateA.Sub(dateB).Hours()) / 24
	return math.Max(0, 100-days*2)
}

// leaseScore decays by 20 points per month of difference between the declared
// lease durations.
func leaseScore(a, b int) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	return math.Max(0, 100-math.Abs(float64(a-b))*20)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
