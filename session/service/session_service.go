// Package service implements the session store: CRUD over conversation
// sessions, message append with one-time smart titling, import/export and
// storage accounting. All mutations persist the full session set as one
// blob, mirroring the single-key layout of the browser client.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ai-roleplay-chat/backend/analyzer"
	"ai-roleplay-chat/backend/persona"
	"ai-roleplay-chat/backend/pkg/cache"
	"ai-roleplay-chat/backend/pkg/errors"
	"ai-roleplay-chat/backend/pkg/logger"
	"ai-roleplay-chat/backend/pkg/metrics"
	"ai-roleplay-chat/backend/session/models"
	"ai-roleplay-chat/backend/session/repository"

	"github.com/google/uuid"
)

const summariesCacheKey = "session-summaries"

// Options bounds the session store.
type Options struct {
	StorageKey       string
	MaxRetained      int
	MaxMessages      int
	StorageBudget    int64
	StorageWarnRatio float64
	// MaxAnalyzedMessages caps how many user messages feed the title
	// generator.
	MaxAnalyzedMessages int
}

// DefaultOptions returns the limits used by the browser client.
func DefaultOptions() Options {
	return Options{
		StorageKey:          "ai-roleplay-sessions",
		MaxRetained:         50,
		MaxMessages:         1000,
		StorageBudget:       5 << 20,
		StorageWarnRatio:    0.8,
		MaxAnalyzedMessages: 5,
	}
}

// SessionService owns the session collection. A single mutex serializes
// writers so that append, title generation and persist run as one logical
// unit per session.
type SessionService struct {
	mu        sync.Mutex
	store     repository.Store
	registry  *persona.Registry
	generator *analyzer.Generator
	cache     *cache.Cache
	log       *logger.Logger
	opts      Options
	sessions  []models.Session
}

// NewSessionService creates the service and loads the persisted session
// set. Malformed persisted data is logged and treated as an empty store.
func NewSessionService(store repository.Store, registry *persona.Registry, generator *analyzer.Generator, summaryCache *cache.Cache, log *logger.Logger, opts Options) *SessionService {
	if opts.StorageKey == "" {
		opts = DefaultOptions()
	}

	s := &SessionService{
		store:     store,
		registry:  registry,
		generator: generator,
		cache:     summaryCache,
		log:       log,
		opts:      opts,
	}
	s.load()
	return s
}

func (s *SessionService) load() {
	ctx := context.Background()

	data, found, err := s.store.Get(ctx, s.opts.StorageKey)
	if err != nil {
		s.log.LogError(err, "failed to load sessions, starting empty")
		s.sessions = []models.Session{}
		return
	}
	if !found {
		s.sessions = []models.Session{}
		return
	}

	sessions, err := models.NormalizeSessions(data)
	if err != nil {
		s.log.LogError(err, "stored session data is malformed, starting empty")
		s.sessions = []models.Session{}
		return
	}
	s.sessions = sessions
	s.log.Info("sessions loaded", "count", len(sessions))
}

// persist writes the current session set. Caller must hold the lock.
func (s *SessionService) persist(ctx context.Context) error {
	data, err := json.Marshal(s.sessions)
	if err != nil {
		return errors.NewInternalServerError("SESSION_ENCODE_FAILED", err.Error())
	}
	if err := s.store.Set(ctx, s.opts.StorageKey, data); err != nil {
		return errors.NewInternalServerError("SESSION_PERSIST_FAILED", err.Error())
	}
	if s.cache != nil {
		s.cache.Delete(summariesCacheKey)
	}
	return nil
}

// Create starts a new session for a persona. An empty title gets the
// timestamp placeholder; the smart title replaces it once the conversation
// has enough turns.
func (s *SessionService) Create(ctx context.Context, personaID, title string) (models.Session, error) {
	if personaID == "" {
		return models.Session{}, errors.NewBadRequestError("PERSONA_REQUIRED", "personaId is required")
	}

	now := time.Now()
	if title == "" {
		title = placeholderTitle(s.registry.Name(personaID), now)
	}

	session := models.Session{
		ID:           uuid.New().String(),
		PersonaID:    personaID,
		Title:        title,
		Messages:     []models.Message{},
		CreatedAt:    now,
		LastActiveAt: now,
		IsActive:     true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = append(s.sessions, session)
	s.enforceCap()
	if err := s.persist(ctx); err != nil {
		return models.Session{}, err
	}

	metrics.SessionsCreated.Inc()
	return session, nil
}

// Get returns a session by id.
func (s *SessionService) Get(ctx context.Context, id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(id); idx >= 0 {
		return s.sessions[idx], nil
	}
	return models.Session{}, errors.NewNotFoundError("SESSION_NOT_FOUND", "session does not exist")
}

// Append adds a message to a session. The first user message seeds the
// interim title; once the session has at least one user and one character
// turn the smart title is generated exactly once.
func (s *SessionService) Append(ctx context.Context, id string, msg models.Message) (models.Session, error) {
	if msg.Role != models.RoleUser && msg.Role != models.RoleCharacter {
		return models.Session{}, errors.NewBadRequestError("ROLE_INVALID", "message type must be user or character")
	}
	if strings.TrimSpace(msg.Content) == "" && msg.AttachedImage == "" {
		return models.Session{}, errors.NewBadRequestError("CONTENT_REQUIRED", "message content is required")
	}

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Session{}, errors.NewNotFoundError("SESSION_NOT_FOUND", "session does not exist")
	}

	session := &s.sessions[idx]
	if len(session.Messages) >= s.opts.MaxMessages {
		return models.Session{}, errors.NewUnprocessableError("SESSION_FULL", "session message limit reached")
	}

	session.Messages = append(session.Messages, msg)
	session.LastActiveAt = time.Now()

	// First user message: seed the interim title from its content.
	if len(session.Messages) == 1 && msg.Role == models.RoleUser {
		session.Title = interimTitle(s.registry.Name(session.PersonaID), msg.Content)
	}

	s.maybeGenerateTitle(session)

	if err := s.persist(ctx); err != nil {
		return models.Session{}, err
	}

	metrics.MessagesAppended.Inc()
	return *session, nil
}

// maybeGenerateTitle runs the smart title generator when the session has
// enough turns and still carries a default title. The default-title check
// makes titling idempotent: a session is titled at most once.
func (s *SessionService) maybeGenerateTitle(session *models.Session) {
	if len(session.Messages) < 2 {
		return
	}
	users, characters := session.CountRoles()
	if users < 1 || characters < 1 {
		return
	}
	if !isDefaultTitle(session.Title) {
		return
	}

	userMessages := session.UserMessages(s.opts.MaxAnalyzedMessages)
	result, ok := s.generator.Generate(userMessages, session.PersonaID, s.registry.Name(session.PersonaID))
	if !ok {
		return
	}

	session.Title = result.Title
	metrics.TitlesGenerated.WithLabelValues(result.Path).Inc()
	s.log.Debug("smart title generated",
		"session_id", session.ID,
		"path", result.Path,
		"title", result.Title,
	)
}

// UpdateMessage replaces a message's content in place, for edit and
// continue-generation flows.
func (s *SessionService) UpdateMessage(ctx context.Context, sessionID, messageID, content string, isComplete bool) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(sessionID)
	if idx < 0 {
		return models.Session{}, errors.NewNotFoundError("SESSION_NOT_FOUND", "session does not exist")
	}

	session := &s.sessions[idx]
	for i := range session.Messages {
		if session.Messages[i].ID != messageID {
			continue
		}
		session.Messages[i].Content = content
		session.Messages[i].IsComplete = isComplete
		session.Messages[i].CanContinue = !isComplete
		session.LastActiveAt = time.Now()

		if err := s.persist(ctx); err != nil {
			return models.Session{}, err
		}
		return *session, nil
	}

	return models.Session{}, errors.NewNotFoundError("MESSAGE_NOT_FOUND", "message does not exist")
}

// Rename sets a session title explicitly. A user-chosen title never matches
// the default pattern, so it is final.
func (s *SessionService) Rename(ctx context.Context, id, title string) (models.Session, error) {
	if strings.TrimSpace(title) == "" {
		return models.Session{}, errors.NewBadRequestError("TITLE_REQUIRED", "title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Session{}, errors.NewNotFoundError("SESSION_NOT_FOUND", "session does not exist")
	}

	s.sessions[idx].Title = title
	s.sessions[idx].LastActiveAt = time.Now()
	if err := s.persist(ctx); err != nil {
		return models.Session{}, err
	}
	return s.sessions[idx], nil
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	return s.persist(ctx)
}

// ListByPersona returns a persona's sessions, most recently active first.
func (s *SessionService) ListByPersona(ctx context.Context, personaID string) []models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []models.Session
	for _, session := range s.sessions {
		if session.PersonaID == personaID {
			list = append(list, session)
		}
	}
	sortByActivity(list)
	return list
}

// Summaries returns the sidebar view of all sessions, most recently active
// first. The result is cached until the next mutation.
func (s *SessionService) Summaries(ctx context.Context) []models.SessionSummary {
	if s.cache != nil {
		if cached, ok := s.cache.Get(summariesCacheKey); ok {
			if summaries, ok := cached.([]models.SessionSummary); ok {
				return summaries
			}
		}
	}

	s.mu.Lock()
	sessions := make([]models.Session, len(s.sessions))
	copy(sessions, s.sessions)
	s.mu.Unlock()

	sortByActivity(sessions)

	summaries := make([]models.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summary := models.SessionSummary{
			ID:           session.ID,
			PersonaID:    session.PersonaID,
			PersonaName:  s.registry.Name(session.PersonaID),
			Title:        session.Title,
			MessageCount: len(session.Messages),
			CreatedAt:    session.CreatedAt,
			LastActiveAt: session.LastActiveAt,
		}
		if n := len(session.Messages); n > 0 {
			summary.LastMessage = session.Messages[n-1].Content
		}
		summaries = append(summaries, summary)
	}

	if s.cache != nil {
		s.cache.Set(summariesCacheKey, summaries)
	}
	return summaries
}

// ExportAll serializes the full session set as indented JSON.
func (s *SessionService) ExportAll(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		return nil, errors.NewInternalServerError("SESSION_ENCODE_FAILED", err.Error())
	}
	return data, nil
}

// ImportAll merges serialized session data into the store. The operation is
// atomic: malformed input leaves the store untouched. Sessions sharing an id
// resolve by the later lastActiveAt; the merged set is re-sorted and trimmed
// to the retention cap.
func (s *SessionService) ImportAll(ctx context.Context, data []byte) (int, error) {
	incoming, err := models.NormalizeSessions(data)
	if err != nil {
		metrics.ImportFailures.Inc()
		return 0, errors.NewBadRequestError("IMPORT_INVALID", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(map[string]models.Session, len(s.sessions)+len(incoming))
	for _, session := range s.sessions {
		merged[session.ID] = session
	}
	for _, session := range incoming {
		if existing, ok := merged[session.ID]; ok && existing.LastActiveAt.After(session.LastActiveAt) {
			continue
		}
		merged[session.ID] = session
	}

	sessions := make([]models.Session, 0, len(merged))
	for _, session := range merged {
		sessions = append(sessions, session)
	}
	sortByActivity(sessions)

	previous := s.sessions
	s.sessions = sessions
	s.enforceCap()
	if err := s.persist(ctx); err != nil {
		s.sessions = previous
		return 0, err
	}
	return len(incoming), nil
}

// StorageInfo reports the advisory byte-size estimate of the serialized
// store against the capacity budget. Crossing the warn ratio sets Warning;
// it never blocks writes.
func (s *SessionService) StorageInfo(ctx context.Context) models.StorageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := models.StorageInfo{
		CapacityBytes: s.opts.StorageBudget,
		SessionCount:  len(s.sessions),
	}
	if data, err := json.Marshal(s.sessions); err == nil {
		info.UsedBytes = int64(len(data))
	}
	info.Warning = float64(info.UsedBytes) >= s.opts.StorageWarnRatio*float64(info.CapacityBytes)
	return info
}

// CheckStore exposes the backing store's health for the health endpoint.
func (s *SessionService) CheckStore(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// indexOf finds a session position. Caller must hold the lock.
func (s *SessionService) indexOf(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// enforceCap drops the least recently active sessions beyond the retention
// cap. Caller must hold the lock.
func (s *SessionService) enforceCap() {
	if len(s.sessions) <= s.opts.MaxRetained {
		return
	}
	sortByActivity(s.sessions)
	evicted := len(s.sessions) - s.opts.MaxRetained
	s.sessions = s.sessions[:s.opts.MaxRetained]
	metrics.SessionsEvicted.Add(float64(evicted))
	s.log.Info("sessions evicted by retention cap", "count", evicted)
}

func sortByActivity(sessions []models.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].LastActiveAt.Equal(sessions[j].LastActiveAt) {
			return sessions[i].LastActiveAt.After(sessions[j].LastActiveAt)
		}
		return sessions[i].ID < sessions[j].ID
	})
}

// placeholderTitle is the timestamp-based default assigned at creation.
func placeholderTitle(personaName string, now time.Time) string {
	return fmt.Sprintf("与%s的对话 - %d月%d日 %02d:%02d",
		personaName, int(now.Month()), now.Day(), now.Hour(), now.Minute())
}

// interimTitle is the first-user-message default, replaced later by the
// smart title.
func interimTitle(personaName, content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) > 20 {
		return personaName + ": " + string(runes[:20]) + "..."
	}
	return personaName + ": " + string(runes)
}

// isDefaultTitle recognizes both default title shapes: the creation
// placeholder and the interim persona-prefixed message. Smart titles and
// user renames never match.
func isDefaultTitle(title string) bool {
	return strings.Contains(title, "的对话 - ") || strings.Contains(title, ": ")
}
