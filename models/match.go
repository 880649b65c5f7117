package models

// ScoreBreakdown holds the per-factor compatibility sub-scores (each 0-100).
type ScoreBreakdown struct {
	Budget        float64 `dynamodbav:"budget" json:"budget"`
	Location      float64 `dynamodbav:"location" json:"location"`
	Lifestyle     float64 `dynamodbav:"lifestyle" json:"lifestyle"`
	Interests     float64 `dynamodbav:"interests" json:"interests"`
	MoveInDate    float64 `dynamodbav:"moveInDate" json:"moveInDate"`
	LeaseDuration float64 `dynamodbav:"leaseDuration" json:"leaseDuration"`
}

// CompatibilityResult is the output of the compatibility scorer.
type CompatibilityResult struct {
	Total     int            `json:"total"` // 0-100
	Breakdown ScoreBreakdown `json:"breakdown"`
	Reason    string         `json:"reason,omitempty"` // set when a profile could not be scored
}

// Meeting is the meeting-scheduling sub-object on a match.
type Meeting struct {
	Date        string `dynamodbav:"date" json:"date"` // RFC3339
	Location    string `dynamodbav:"location" json:"location"`
	Type        string `dynamodbav:"type" json:"type"` // coffee, video-call, apartment-visit, ...
	ScheduledBy string `dynamodbav:"scheduledBy" json:"scheduledBy"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
}

// MatchReport is the report/flag sub-object on a match.
type MatchReport struct {
	ReportedBy string `dynamodbav:"reportedBy" json:"reportedBy"`
	Reason     string `dynamodbav:"reason" json:"reason"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
}

// Match represents a directional-or-mutual relationship between two users.
// Terminal matches are kept for audit; "unmatch" becomes a rejected match
// annotated with unmatchedAt/unmatchReason, never a deletion.
type Match struct {
	MatchID            string         `dynamodbav:"matchId" json:"matchId"` // ✅ Partition Key
	User1ID            string         `dynamodbav:"user1Id" json:"user1Id"` // indexed via user1Id-index
	User2ID            string         `dynamodbav:"user2Id" json:"user2Id"` // indexed via user2Id-index
	PairKey            string         `dynamodbav:"pairKey" json:"pairKey"` // sorted "a#b"
	Status             string         `dynamodbav:"status" json:"status"`   // pending, accepted, rejected, expired
	InitiatorID        string         `dynamodbav:"initiatorId" json:"initiatorId"`
	Message            *string        `dynamodbav:"message,omitempty" json:"message,omitempty"`
	CompatibilityScore int            `dynamodbav:"compatibilityScore" json:"compatibilityScore"` // immutable after creation
	ScoreBreakdown     ScoreBreakdown `dynamodbav:"scoreBreakdown" json:"scoreBreakdown"`
	ChatRoomID         *string        `dynamodbav:"chatRoomId,omitempty" json:"chatRoomId,omitempty"`
	Meeting            *Meeting       `dynamodbav:"meeting,omitempty" json:"meeting,omitempty"`
	Report             *MatchReport   `dynamodbav:"report,omitempty" json:"report,omitempty"`
	CreatedAt          string         `dynamodbav:"createdAt" json:"createdAt"`
	AcceptedAt         *string        `dynamodbav:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	ExpiresAt          *string        `dynamodbav:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	UnmatchedAt        *string        `dynamodbav:"unmatchedAt,omitempty" json:"unmatchedAt,omitempty"`
	UnmatchReason      *string        `dynamodbav:"unmatchReason,omitempty" json:"unmatchReason,omitempty"`
}

// HasParticipant reports whether the user is one of the match's two users.
func (m *Match) HasParticipant(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// OtherParticipant returns the counterpart of the given user in the match.
func (m *Match) OtherParticipant(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// IsActive reports whether the match still blocks new matches for the pair.
func (m *Match) IsActive() bool {
	return m.Status == MatchStatusPending || m.Status == MatchStatusAccepted
}

// ActivePair is the uniqueness guard for active matches: at most one item per
// unordered user pair.
type ActivePair struct {
	PairKey string `dynamodbav:"pairKey" json:"pairKey"` // ✅ Partition Key
	MatchID string `dynamodbav:"matchId" json:"matchId"`
}

// MatchReportRecord is the audit record written when a match is reported.
type MatchReportRecord struct {
	ReportID   string `dynamodbav:"reportId" json:"reportId"` // ✅ Partition Key
	MatchID    string `dynamodbav:"matchId" json:"matchId"`
	ReportedBy string `dynamodbav:"reportedBy" json:"reportedBy"`
	Reported   string `dynamodbav:"reported" json:"reported"` // the other participant
	Reason     string `dynamodbav:"reason" json:"reason"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
}

// Table names for DynamoDB
const (
	MatchesTable     = "Matches"
	ActivePairsTable = "ActiveMatchPairs"
	ReportsTable     = "Reports"
)

// GSI index names on the Matches table
const (
	MatchUser1Index = "user1Id-index"
	MatchUser2Index = "user2Id-index"
)
