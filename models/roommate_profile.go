package models

import "sort"

// Lifestyle captures the habits used by the compatibility scorer.
type Lifestyle struct {
	SleepSchedule  string `dynamodbav:"sleepSchedule,omitempty" json:"sleepSchedule,omitempty"`   // early_bird, night_owl, flexible
	Cleanliness    int    `dynamodbav:"cleanliness,omitempty" json:"cleanliness,omitempty"`       // 1-5
	SocialLevel    int    `dynamodbav:"socialLevel,omitempty" json:"socialLevel,omitempty"`       // 1-5
	Smoking        bool   `dynamodbav:"smoking" json:"smoking"`                                   // smoker or not
	Drinking       string `dynamodbav:"drinking,omitempty" json:"drinking,omitempty"`             // never, socially, regularly
	Pets           bool   `dynamodbav:"pets" json:"pets"`                                         // has/accepts pets
	GuestFrequency string `dynamodbav:"guestFrequency,omitempty" json:"guestFrequency,omitempty"` // rarely, sometimes, often
}

// RoommateProfile defines the structure for a user's roommate-search listing
type RoommateProfile struct {
	UserID              string    `dynamodbav:"userId" json:"userId"` // ✅ Partition Key
	Name                string    `dynamodbav:"name,omitempty" json:"name,omitempty"`
	Bio                 string    `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	City                string    `dynamodbav:"city,omitempty" json:"city,omitempty"`
	Address             string    `dynamodbav:"address,omitempty" json:"address,omitempty"`
	Latitude            float64   `dynamodbav:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude           float64   `dynamodbav:"longitude,omitempty" json:"longitude,omitempty"`
	MaxDistanceKm       float64   `dynamodbav:"maxDistanceKm,omitempty" json:"maxDistanceKm,omitempty"` // search radius preference
	BudgetMin           int       `dynamodbav:"budgetMin,omitempty" json:"budgetMin,omitempty"`
	BudgetMax           int       `dynamodbav:"budgetMax,omitempty" json:"budgetMax,omitempty"`
	MoveInDate          string    `dynamodbav:"moveInDate,omitempty" json:"moveInDate,omitempty"` // YYYY-MM-DD
	LeaseDurationMonths int       `dynamodbav:"leaseDurationMonths,omitempty" json:"leaseDurationMonths,omitempty"`
	RoomType            string    `dynamodbav:"roomType,omitempty" json:"roomType,omitempty"` // private, shared, studio, entire
	Amenities           []string  `dynamodbav:"amenities,omitempty" json:"amenities,omitempty"`
	Lifestyle           Lifestyle `dynamodbav:"lifestyle" json:"lifestyle"`
	Interests           []string  `dynamodbav:"interests,omitempty" json:"interests,omitempty"`
	Liked               []string  `dynamodbav:"liked,omitempty" json:"liked,omitempty"`       // monotonic per pair
	Disliked            []string  `dynamodbav:"disliked,omitempty" json:"disliked,omitempty"` // monotonic per pair
	Viewed              []string  `dynamodbav:"viewed,omitempty" json:"viewed,omitempty"`
	Matches             []string  `dynamodbav:"matches,omitempty" json:"matches,omitempty"` // match ids
	CompletionPercent   int       `dynamodbav:"completionPercent" json:"completionPercent"` // derived, 0-100
	CreatedAt           string    `dynamodbav:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt           string    `dynamodbav:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// ProfilePatch is the explicit set of updatable profile fields. Nil pointers
// leave the stored value untouched.
type ProfilePatch struct {
	Name                *string    `json:"name,omitempty"`
	Bio                 *string    `json:"bio,omitempty"`
	City                *string    `json:"city,omitempty"`
	Address             *string    `json:"address,omitempty"`
	Latitude            *float64   `json:"latitude,omitempty"`
	Longitude           *float64   `json:"longitude,omitempty"`
	MaxDistanceKm       *float64   `json:"maxDistanceKm,omitempty"`
	BudgetMin           *int       `json:"budgetMin,omitempty"`
	BudgetMax           *int       `json:"budgetMax,omitempty"`
	MoveInDate          *string    `json:"moveInDate,omitempty"`
	LeaseDurationMonths *int       `json:"leaseDurationMonths,omitempty"`
	RoomType            *string    `json:"roomType,omitempty"`
	Amenities           *[]string  `json:"amenities,omitempty"`
	Lifestyle           *Lifestyle `json:"lifestyle,omitempty"`
	Interests           *[]string  `json:"interests,omitempty"`
}

// Apply copies the non-nil patch fields onto the profile.
func (p ProfilePatch) Apply(profile *RoommateProfile) {
	if p.Name != nil {
		profile.Name = *p.Name
	}
	if p.Bio != nil {
		profile.Bio = *p.Bio
	}
	if p.City != nil {
		profile.City = *p.City
	}
	if p.Address != nil {
		profile.Address = *p.Address
	}
	if p.Latitude != nil {
		profile.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		profile.Longitude = *p.Longitude
	}
	if p.MaxDistanceKm != nil {
		profile.MaxDistanceKm = *p.MaxDistanceKm
	}
	if p.BudgetMin != nil {
		profile.BudgetMin = *p.BudgetMin
	}
	if p.BudgetMax != nil {
		profile.BudgetMax = *p.BudgetMax
	}
	if p.MoveInDate != nil {
		profile.MoveInDate = *p.MoveInDate
	}
	if p.LeaseDurationMonths != nil {
		profile.LeaseDurationMonths = *p.LeaseDurationMonths
	}
	if p.RoomType != nil {
		profile.RoomType = *p.RoomType
	}
	if p.Amenities != nil {
		profile.Amenities = *p.Amenities
	}
	if p.Lifestyle != nil {
		profile.Lifestyle = *p.Lifestyle
	}
	if p.Interests != nil {
		profile.Interests = *p.Interests
	}
}

// HasLiked reports whether the profile owner has liked the target user.
func (p *RoommateProfile) HasLiked(userID string) bool {
	for _, id := range p.Liked {
		if id == userID {
			return true
		}
	}
	return false
}

// HasDisliked reports whether the profile owner has disliked the target user.
func (p *RoommateProfile) HasDisliked(userID string) bool {
	for _, id := range p.Disliked {
		if id == userID {
			return true
		}
	}
	return false
}

// ComputeCompletion derives the completion percentage from the filled fields.
func (p *RoommateProfile) ComputeCompletion() int {
	total := 10
	filled := 0
	if p.Name != "" {
		filled++
	}
	if p.Bio != "" {
		filled++
	}
	if p.Latitude != 0 || p.Longitude != 0 {
		filled++
	}
	if p.BudgetMin > 0 && p.BudgetMax >= p.BudgetMin {
		filled++
	}
	if p.MoveInDate != "" {
		filled++
	}
	if p.LeaseDurationMonths > 0 {
		filled++
	}
	if p.RoomType != "" {
		filled++
	}
	if len(p.Amenities) > 0 {
		filled++
	}
	if p.Lifestyle != (Lifestyle{}) {
		filled++
	}
	if len(p.Interests) > 0 {
		filled++
	}
	return filled * 100 / total
}

// PairKey builds the canonical unordered key for a user pair.
func PairKey(userA, userB string) string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return ids[0] + "#" + ids[1]
}

// RoommateProfilesTable is the DynamoDB table name for roommate profiles
const RoommateProfilesTable = "RoommateProfiles"
