package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"roomly_server/models"

	"github.com/google/uuid"
)

// PendingMatchTTL is how long an initiator-created pending match stays open
// before the external scheduler may expire it.
const PendingMatchTTL = 72 * time.Hour

// LikeResult is the outcome of a like operation.
type LikeResult struct {
	IsMatch bool             `json:"isMatch"`
	Match   *models.Match    `json:"match,omitempty"`
	Room    *models.ChatRoom `json:"room,omitempty"`
}

// MatchService owns the match lifecycle state machine:
//
//	pending → accepted | rejected | expired
//	accepted → rejected (unmatch, annotated)
//
// rejected and expired are terminal. A mutual like creates the match directly
// in accepted and provisions the chat room in the same flow.
type MatchService struct {
	Profiles      ProfileStore
	Matches       MatchStore
	Rooms         *RoomService
	Scorer        *CompatibilityService
	Realtime      RealtimeNotifier
	Notifications NotificationSink
	Reports       AuditReporter
}

func now() string {
	return time.Now().UTC().Format(models.TimestampFormat)
}

// Like records a like from userID toward targetID. A duplicate like returns
// ErrConflict. When the target already liked the user back, exactly one
// accepted match plus one chat room is produced, no matter how the two
// reciprocal likes interleave: the pair guard arbitrates and the losing
// writer falls back to the winner's match.
func (ms *MatchService) Like(ctx context.Context, userID, targetID string, message *string) (*LikeResult, error) {
	if userID == targetID {
		return nil, fmt.Errorf("cannot like own profile: %w", ErrValidation)
	}

	liker, err := ms.Profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := ms.Profiles.GetProfile(ctx, targetID); err != nil {
		return nil, err
	}

	if err := ms.Profiles.AddLiked(ctx, userID, targetID); err != nil {
		if isConflict(err) {
			return nil, fmt.Errorf("already liked %s: %w", targetID, ErrConflict)
		}
		return nil, err
	}

	// Check mutuality on a read taken after our like is durable. A snapshot
	// from before the write can miss a reciprocal like racing in, and two
	// stale snapshots would drop the match entirely.
	target, err := ms.Profiles.GetProfile(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if !target.HasLiked(userID) {
		// One-sided like: tell the target, nothing else changes.
		ms.notify(ctx, models.Notification{
			Recipient: targetID,
			Sender:    userID,
			Type:      models.NotificationTypeLike,
			Title:     "Someone liked your listing",
			Message:   fmt.Sprintf("%s liked your roommate listing", liker.Name),
			Data:      map[string]string{"userId": userID},
		})
		return &LikeResult{IsMatch: false}, nil
	}

	// Mutual like: create the accepted match atomically against the pair
	// guard.
	score := ms.Scorer.Score(liker, target)
	acceptedAt := now()
	match := &models.Match{
		MatchID:            uuid.NewString(),
		User1ID:            userID,
		User2ID:            targetID,
		PairKey:            models.PairKey(userID, targetID),
		Status:             models.MatchStatusAccepted,
		InitiatorID:        userID,
		Message:            message,
		CompatibilityScore: score.Total,
		ScoreBreakdown:     score.Breakdown,
		CreatedAt:          acceptedAt,
		AcceptedAt:         &acceptedAt,
	}

	err = ms.Matches.CreateActiveMatch(ctx, match)
	if err != nil {
		if !isConflict(err) {
			return nil, err
		}
		// Lost the reciprocal-like race (or the pair was already matched):
		// converge on the existing match instead of erroring the user.
		existing, lookupErr := ms.Matches.GetActiveMatchByPair(ctx, match.PairKey)
		if lookupErr != nil {
			return nil, fmt.Errorf("pair already matched but lookup failed: %w", lookupErr)
		}
		room, roomErr := ms.Rooms.GetOrCreateDirectRoom(ctx, existing.User1ID, existing.User2ID, existing.MatchID)
		if roomErr != nil {
			return nil, roomErr
		}
		return &LikeResult{IsMatch: true, Match: existing, Room: room}, nil
	}

	if err := ms.Profiles.AddMatchRef(ctx, userID, match.MatchID); err != nil {
		log.Printf("⚠️ Warning: failed to register match on profile %s: %v", userID, err)
	}
	if err := ms.Profiles.AddMatchRef(ctx, targetID, match.MatchID); err != nil {
		log.Printf("⚠️ Warning: failed to register match on profile %s: %v", targetID, err)
	}

	room, err := ms.Rooms.GetOrCreateDirectRoom(ctx, userID, targetID, match.MatchID)
	if err != nil {
		return nil, err
	}
	match.ChatRoomID = &room.RoomID
	if err := ms.Matches.SaveMatch(ctx, match); err != nil {
		return nil, err
	}

	log.Printf("🎉 Mutual match %s between %s and %s (score %d)", match.MatchID, userID, targetID, match.CompatibilityScore)
	ms.publishNewMatch(match, room)
	for _, recipient := range []string{userID, targetID} {
		ms.notify(ctx, models.Notification{
			Recipient: recipient,
			Sender:    match.OtherParticipant(recipient),
			Type:      models.NotificationTypeNewMatch,
			Title:     "It's a match!",
			Message:   "You have a new roommate match. Say hi!",
			Data:      map[string]string{"matchId": match.MatchID, "chatRoomId": room.RoomID},
			Priority:  models.PriorityHigh,
		})
	}

	return &LikeResult{IsMatch: true, Match: match, Room: room}, nil
}

// Dislike records a dislike; idempotent, no match side effects.
func (ms *MatchService) Dislike(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return fmt.Errorf("cannot dislike own profile: %w", ErrValidation)
	}
	if _, err := ms.Profiles.GetProfile(ctx, userID); err != nil {
		return err
	}
	return ms.Profiles.AddDisliked(ctx, userID, targetID)
}

// CreatePendingMatch opens an initiator-driven pending match toward the
// target, the flow Accept and Reject act on. The pair guard applies the same
// way as for mutual likes.
func (ms *MatchService) CreatePendingMatch(ctx context.Context, initiatorID, targetID string, message *string) (*models.Match, error) {
	if initiatorID == targetID {
		return nil, fmt.Errorf("cannot request a match with yourself: %w", ErrValidation)
	}

	initiator, err := ms.Profiles.GetProfile(ctx, initiatorID)
	if err != nil {
		return nil, err
	}
	target, err := ms.Profiles.GetProfile(ctx, targetID)
	if err != nil {
		return nil, err
	}

	score := ms.Scorer.Score(initiator, target)
	expiresAt := time.Now().UTC().Add(PendingMatchTTL).Format(models.TimestampFormat)
	match := &models.Match{
		MatchID:            uuid.NewString(),
		User1ID:            initiatorID,
		User2ID:            targetID,
		PairKey:            models.PairKey(initiatorID, targetID),
		Status:             models.MatchStatusPending,
		InitiatorID:        initiatorID,
		Message:            message,
		CompatibilityScore: score.Total,
		ScoreBreakdown:     score.Breakdown,
		CreatedAt:          now(),
		ExpiresAt:          &expiresAt,
	}

	if err := ms.Matches.CreateActiveMatch(ctx, match); err != nil {
		if isConflict(err) {
			return nil, fmt.Errorf("pair already has an active match: %w", ErrConflict)
		}
		return nil, err
	}

	ms.Realtime.Publish("user:"+targetID, "matchRequest", match)
	ms.notify(ctx, models.Notification{
		Recipient: targetID,
		Sender:    initiatorID,
		Type:      models.NotificationTypeMatchReq,
		Title:     "New match request",
		Message:   fmt.Sprintf("%s wants to match with you", initiator.Name),
		Data:      map[string]string{"matchId": match.MatchID},
	})
	return match, nil
}

// loadForParticipant fetches the match and enforces participant access.
func (ms *MatchService) loadForParticipant(ctx context.Context, matchID, userID string) (*models.Match, error) {
	match, err := ms.Matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(userID) {
		return nil, fmt.Errorf("user %s is not part of match %s: %w", userID, matchID, ErrForbidden)
	}
	return match, nil
}

// Accept moves a pending match to accepted and provisions its chat room.
func (ms *MatchService) Accept(ctx context.Context, matchID, userID string) (*models.Match, error) {
	match, err := ms.loadForParticipant(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusPending {
		return nil, fmt.Errorf("cannot accept a %s match: %w", match.Status, ErrInvalidState)
	}

	acceptedAt := now()
	match.Status = models.MatchStatusAccepted
	match.AcceptedAt = &acceptedAt
	match.ExpiresAt = nil

	if match.ChatRoomID == nil {
		room, err := ms.Rooms.GetOrCreateDirectRoom(ctx, match.User1ID, match.User2ID, match.MatchID)
		if err != nil {
			return nil, err
		}
		match.ChatRoomID = &room.RoomID
		ms.publishNewMatch(match, room)
	}
	if err := ms.Matches.SaveMatch(ctx, match); err != nil {
		return nil, err
	}

	for _, participant := range []string{match.User1ID, match.User2ID} {
		if err := ms.Profiles.AddMatchRef(ctx, participant, match.MatchID); err != nil {
			log.Printf("⚠️ Warning: failed to register match on profile %s: %v", participant, err)
		}
	}
	return match, nil
}

// Reject moves a pending match to its terminal rejected state.
func (ms *MatchService) Reject(ctx context.Context, matchID, userID string) (*models.Match, error) {
	match, err := ms.loadForParticipant(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusPending {
		return nil, fmt.Errorf("cannot reject a %s match: %w", match.Status, ErrInvalidState)
	}

	match.Status = models.MatchStatusRejected
	if err := ms.Matches.SaveMatch(ctx, match); err != nil {
		return nil, err
	}
	if err := ms.Matches.ReleasePair(ctx, match.PairKey); err != nil {
		log.Printf("⚠️ Warning: failed to release pair %s: %v", match.PairKey, err)
	}
	return match, nil
}

// Unmatch ends an accepted match: terminal rejected with unmatch annotations,
// match references removed from both profiles, chat room archived (never
// deleted).
func (ms *MatchService) Unmatch(ctx context.Context, matchID, userID string, reason *string) (*models.Match, error) {
	match, err := ms.loadForParticipant(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusAccepted {
		return nil, fmt.Errorf("cannot unmatch a %s match: %w", match.Status, ErrInvalidState)
	}

	unmatchedAt := now()
	match.Status = models.MatchStatusRejected
	match.UnmatchedAt = &unmatchedAt
	match.UnmatchReason = reason
	if err := ms.Matches.SaveMatch(ctx, match); err != nil {
		return nil, err
	}
	if err := ms.Matches.ReleasePair(ctx, match.PairKey); err != nil {
		log.Printf("⚠️ Warning: failed to release pair %s: %v", match.PairKey, err)
	}

	for _, participant := range []string{match.User1ID, match.User2ID} {
		if err := ms.Profiles.RemoveMatchRef(ctx, participant, match.MatchID); err != nil {
			log.Printf("⚠️ Warning: failed to remove match ref from %s: %v", participant, err)
		}
	}

	if match.ChatRoomID != nil {
		room, err := ms.Rooms.Chat.GetRoom(ctx, *match.ChatRoomID)
		if err != nil {
			log.Printf("⚠️ Warning: failed to load room for archiving: %v", err)
		} else if !room.IsArchived {
			room.IsArchived = true
			if err := ms.Rooms.Chat.SaveRoom(ctx, room); err != nil {
				log.Printf("⚠️ Warning: failed to archive room %s: %v", room.RoomID, err)
			}
		}
	}

	other := match.OtherParticipant(userID)
	ms.Realtime.Publish("user:"+other, "unmatched", map[string]string{"matchId": match.MatchID})
	ms.notify(ctx, models.Notification{
		Recipient: other,
		Type:      models.NotificationTypeUnmatch,
		Title:     "Match ended",
		Message:   "One of your matches has ended",
		Data:      map[string]string{"matchId": match.MatchID},
	})
	return match, nil
}

// ExpireMatch moves a pending match past its deadline to the terminal
// expired state. Invoked by the external scheduler.
func (ms *MatchService) ExpireMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match, err := ms.Matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusPending {
		return nil, fmt.Errorf("cannot expire a %s match: %w", match.Status, ErrInvalidState)
	}

	match.Status = models.MatchStatusExpired
	if err := ms.Matches.SaveMatch(ctx, match); err != nil {
		return nil, err
	}
	if err := ms.Matches.ReleasePair(ctx, match.PairKey); err != nil {
		log.Printf("⚠️ Warning: failed to release pair %s: %v", match.PairKey, err)
	}
	return match, nil
}

// ReportMatch flags a match. The status is untouched; an audit record goes to
// the reporting collaborator.
func (ms *MatchService) ReportMatch(ctx context.Context, matchID, userID, reason string) (*models.Match, error) {
	if reason == "" {
		return nil, fmt.Errorf("report reason is required: %w", ErrValidation)
	}
	match, err := ms.loadForParticipant(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}

	match.Report = &models.MatchReport{
		ReportedBy: userID,
		Reason:     reason,
		CreatedAt:  now(),
	}
	if err := ms.Matches.SaveMatch(ctx, match); err != nil {
		return nil, err
	}

	if err := ms.Reports.Create(ctx, models.MatchReportRecord{
		MatchID:    matchID,
		ReportedBy: userID,
		Reported:   match.OtherParticipant(userID),
		Reason:     reason,
	}); err != nil {
		log.Printf("⚠️ Warning: failed to write audit report for match %s: %v", matchID, err)
	}
	return match, nil
}

// ScheduleMeeting stores the meeting sub-object on an accepted match. The
// date must lie in the future.
func (ms *MatchService) ScheduleMeeting(ctx context.Context, matchID, userID string, date time.Time, location, meetingType string) (*models.Match, error) {
	match, err := ms.loadForParticipant(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusAccepted {
		return nil, fmt.Errorf("cannot schedule a meeting on a %s match: %w", match.Status, ErrInvalidState)
	}
	if !date.After(time.Now()) {
		return nil, fmt.Errorf("meeting date must be in the future: %w", ErrValidation)
	}

	match.Meeting = &models.Meeting{
		Date:        date.UTC().Format(models.TimestampFormat),
		Location:    location,
		Type:        meetingType,
		ScheduledBy: userID,
		CreatedAt:   now(),
	}
	if err := ms.Matches.SaveMatch(ctx, match); err != nil {
		return nil, err
	}

	other := match.OtherParticipant(userID)
	ms.notify(ctx, models.Notification{
		Recipient: other,
		Sender:    userID,
		Type:      models.NotificationTypeMeeting,
		Title:     "Meeting scheduled",
		Message:   fmt.Sprintf("A %s meeting was proposed at %s", meetingType, location),
		Data:      map[string]string{"matchId": match.MatchID},
	})
	return match, nil
}

// GetMatchesForUser lists all matches the user participates in.
func (ms *MatchService) GetMatchesForUser(ctx context.Context, userID string) ([]models.Match, error) {
	return ms.Matches.GetMatchesByUser(ctx, userID)
}

// publishNewMatch emits the new-match event on both user topics.
func (ms *MatchService) publishNewMatch(match *models.Match, room *models.ChatRoom) {
	payload := map[string]interface{}{
		"matchId":    match.MatchID,
		"chatRoomId": room.RoomID,
		"score":      match.CompatibilityScore,
	}
	ms.Realtime.Publish("user:"+match.User1ID, "newMatch", payload)
	ms.Realtime.Publish("user:"+match.User2ID, "newMatch", payload)
}

// notify hands a notification to the sink. Best-effort: failures are logged,
// never propagated to the primary operation.
func (ms *MatchService) notify(ctx context.Context, notification models.Notification) {
	if err := ms.Notifications.Create(ctx, notification); err != nil {
		log.Printf("⚠️ Warning: failed to create notification for %s: %v", notification.Recipient, err)
	}
}
