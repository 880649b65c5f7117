package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"roomly_server/models"
)

// In-memory fakes implementing the store interfaces. They mirror the
// conditional-write semantics of the DynamoDB implementations (pair guards,
// duplicate-like conflicts, atomic message appends) so the concurrency tests
// exercise real arbitration, not mocks that cannot race.

type fakeProfileStore struct {
	mu       sync.Mutex
	profiles map[string]models.RoommateProfile
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: make(map[string]models.RoommateProfile)}
}

func (s *fakeProfileStore) CreateProfile(ctx context.Context, profile *models.RoommateProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[profile.UserID]; exists {
		return fmt.Errorf("profile %s already exists: %w", profile.UserID, ErrConflict)
	}
	s.profiles[profile.UserID] = *profile
	return nil
}

func (s *fakeProfileStore) PutProfile(ctx context.Context, profile *models.RoommateProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = *profile
	return nil
}

func (s *fakeProfileStore) GetProfile(ctx context.Context, userID string) (*models.RoommateProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	copied := profile
	return &copied, nil
}

func (s *fakeProfileStore) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.RoommateProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	patch.Apply(&profile)
	profile.CompletionPercent = profile.ComputeCompletion()
	s.profiles[userID] = profile
	copied := profile
	return &copied, nil
}

func (s *fakeProfileStore) DeleteProfile(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, userID)
	return nil
}

func (s *fakeProfileStore) AddLiked(ctx context.Context, userID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if profile.HasLiked(targetID) {
		return fmt.Errorf("already liked: %w", ErrConflict)
	}
	profile.Liked = append(profile.Liked, targetID)
	s.profiles[userID] = profile
	return nil
}

func (s *fakeProfileStore) AddDisliked(ctx context.Context, userID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if !profile.HasDisliked(targetID) {
		profile.Disliked = append(profile.Disliked, targetID)
		s.profiles[userID] = profile
	}
	return nil
}

func (s *fakeProfileStore) AddMatchRef(ctx context.Context, userID, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	for _, id := range profile.Matches {
		if id == matchID {
			return nil
		}
	}
	profile.Matches = append(profile.Matches, matchID)
	s.profiles[userID] = profile
	return nil
}

func (s *fakeProfileStore) RemoveMatchRef(ctx context.Context, userID, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	for i, id := range profile.Matches {
		if id == matchID {
			profile.Matches = append(profile.Matches[:i], profile.Matches[i+1:]...)
			break
		}
	}
	s.profiles[userID] = profile
	return nil
}

func (s *fakeProfileStore) ListProfiles(ctx context.Context, userIDs []string) ([]models.RoommateProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RoommateProfile
	for _, id := range userIDs {
		if profile, ok := s.profiles[id]; ok {
			out = append(out, profile)
		}
	}
	return out, nil
}

// allNear implements GeoQuery by returning every stored profile id; distance
// filtering still happens in the candidate service.
type allNear struct {
	store *fakeProfileStore
}

func (g *allNear) ProfilesNear(ctx context.Context, lat, lng, radiusKm float64) ([]string, error) {
	g.store.mu.Lock()
	defer g.store.mu.Unlock()
	var ids []string
	for id := range g.store.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type fakeMatchStore struct {
	mu      sync.Mutex
	matches map[string]models.Match
	pairs   map[string]string // pairKey -> matchId
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{
		matches: make(map[string]models.Match),
		pairs:   make(map[string]string),
	}
}

func (s *fakeMatchStore) CreateActiveMatch(ctx context.Context, match *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.pairs[match.PairKey]; taken {
		return fmt.Errorf("pair %s already claimed: %w", match.PairKey, ErrConflict)
	}
	s.pairs[match.PairKey] = match.MatchID
	s.matches[match.MatchID] = *match
	return nil
}

func (s *fakeMatchStore) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match, ok := s.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	copied := match
	return &copied, nil
}

func (s *fakeMatchStore) GetActiveMatchByPair(ctx context.Context, pairKey string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matchID, ok := s.pairs[pairKey]
	if !ok {
		return nil, fmt.Errorf("pair %s: %w", pairKey, ErrNotFound)
	}
	match := s.matches[matchID]
	copied := match
	return &copied, nil
}

func (s *fakeMatchStore) SaveMatch(ctx context.Context, match *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[match.MatchID] = *match
	return nil
}

func (s *fakeMatchStore) ReleasePair(ctx context.Context, pairKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pairs, pairKey)
	return nil
}

func (s *fakeMatchStore) GetMatchesByUser(ctx context.Context, userID string) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Match
	for _, match := range s.matches {
		if match.HasParticipant(userID) {
			out = append(out, match)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (s *fakeMatchStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

type fakeChatStore struct {
	mu        sync.Mutex
	rooms     map[string]models.ChatRoom
	roomPairs map[string]string          // pairKey -> roomId
	messages  map[string]*models.Message // messageId -> message
	roomIndex map[string][]string        // roomId -> messageIds
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{
		rooms:     make(map[string]models.ChatRoom),
		roomPairs: make(map[string]string),
		messages:  make(map[string]*models.Message),
		roomIndex: make(map[string][]string),
	}
}

func (s *fakeChatStore) CreateDirectRoom(ctx context.Context, room *models.ChatRoom) (*models.ChatRoom, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existingID, taken := s.roomPairs[room.PairKey]; taken {
		existing := s.rooms[existingID]
		copied := existing
		return &copied, false, nil
	}
	s.roomPairs[room.PairKey] = room.RoomID
	s.rooms[room.RoomID] = *room
	copied := *room
	return &copied, true, nil
}

func (s *fakeChatStore) GetRoom(ctx context.Context, roomID string) (*models.ChatRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	copied := room
	return &copied, nil
}

func (s *fakeChatStore) SaveRoom(ctx context.Context, room *models.ChatRoom) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.RoomID] = *room
	return nil
}

func (s *fakeChatStore) AppendMessage(ctx context.Context, room *models.ChatRoom, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.rooms[room.RoomID]
	if !ok {
		return fmt.Errorf("room %s: %w", room.RoomID, ErrNotFound)
	}

	copied := *message
	s.messages[message.MessageID] = &copied
	s.roomIndex[room.RoomID] = append(s.roomIndex[room.RoomID], message.MessageID)

	stored.LastMessage = &models.LastMessage{
		Content:   message.Content,
		SenderID:  message.SenderID,
		Type:      message.Type,
		CreatedAt: message.CreatedAt,
	}
	for _, participant := range stored.Participants {
		if participant != message.SenderID {
			stored.SetUnread(participant, stored.UnreadFor(participant)+1)
		}
	}
	s.rooms[room.RoomID] = stored
	return nil
}

func (s *fakeChatStore) GetMessages(ctx context.Context, roomID string, limit int, before string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var page []models.Message
	for _, id := range s.roomIndex[roomID] {
		message := s.messages[id]
		if before != "" && message.CreatedAt >= before {
			continue
		}
		page = append(page, *message)
	}
	sort.Slice(page, func(i, j int) bool { return page[i].CreatedAt > page[j].CreatedAt })
	if len(page) > limit {
		page = page[:limit]
	}
	return page, nil
}

func (s *fakeChatStore) GetMessage(ctx context.Context, messageID string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, ok := s.messages[messageID]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", messageID, ErrNotFound)
	}
	copied := *message
	return &copied, nil
}

func (s *fakeChatStore) SaveMessage(ctx context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.messages[message.MessageID]; ok && stored.Version != message.Version {
		return fmt.Errorf("message %s changed concurrently: %w", message.MessageID, ErrConflict)
	}
	copied := *message
	copied.Version++
	s.messages[message.MessageID] = &copied
	return nil
}

func (s *fakeChatStore) ResetUnread(ctx context.Context, roomID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	room.SetUnread(userID, 0)
	s.rooms[roomID] = room
	return nil
}

func (s *fakeChatStore) roomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

type publishedEvent struct {
	Topic   string
	Event   string
	Payload interface{}
}

type fakeRealtime struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *fakeRealtime) Publish(topic, event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{Topic: topic, Event: event, Payload: payload})
}

func (r *fakeRealtime) eventsFor(topic, event string) []publishedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []publishedEvent
	for _, e := range r.events {
		if e.Topic == topic && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type fakeNotifications struct {
	mu      sync.Mutex
	created []models.Notification
}

func (n *fakeNotifications) Create(ctx context.Context, notification models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, notification)
	return nil
}

func (n *fakeNotifications) forRecipient(userID string) []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.Notification
	for _, notification := range n.created {
		if notification.Recipient == userID {
			out = append(out, notification)
		}
	}
	return out
}

type fakeReports struct {
	mu      sync.Mutex
	created []models.MatchReportRecord
}

func (r *fakeReports) Create(ctx context.Context, report models.MatchReportRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, report)
	return nil
}
