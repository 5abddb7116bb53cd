package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"ai-roleplay-chat/backend/analyzer"
	"ai-roleplay-chat/backend/persona"
	"ai-roleplay-chat/backend/pkg/logger"
	"ai-roleplay-chat/backend/session/models"
	"ai-roleplay-chat/backend/session/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

func newTestService(opts Options) (*SessionService, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	registry := persona.NewRegistry()
	generator := analyzer.NewGenerator(analyzer.NewHeuristic(analyzer.DefaultConfig()), opts.MaxAnalyzedMessages)
	svc := NewSessionService(store, registry, generator, nil, testLogger(), opts)
	return svc, store
}

func userMsg(content string) models.Message {
	return models.Message{Role: models.RoleUser, Content: content}
}

func characterMsg(content string) models.Message {
	return models.Message{Role: models.RoleCharacter, Content: content, IsComplete: true}
}

func TestCreateAssignsPlaceholderTitle(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	session, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Contains(t, session.Title, "与苏格拉底的对话 - ")
	assert.True(t, session.IsActive)
	assert.Empty(t, session.Messages)
}

func TestCreateUnknownPersonaUsesFallbackName(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())

	session, err := svc.Create(context.Background(), "no-such-persona", "")
	require.NoError(t, err)
	assert.Contains(t, session.Title, persona.UnknownName)
}

func TestCreateRequiresPersona(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())

	_, err := svc.Create(context.Background(), "", "")
	assert.Error(t, err)
}

func TestAppendValidation(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	session, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)

	_, err = svc.Append(ctx, session.ID, models.Message{Role: "narrator", Content: "x"})
	assert.Error(t, err)

	_, err = svc.Append(ctx, session.ID, userMsg("   "))
	assert.Error(t, err)

	_, err = svc.Append(ctx, "missing", userMsg("你好"))
	assert.Error(t, err)
}

func TestAppendInterimTitleFromFirstUserMessage(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	session, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)

	updated, err := svc.Append(ctx, session.ID, userMsg("什么是真正的智慧？"))
	require.NoError(t, err)
	assert.Equal(t, "苏格拉底: 什么是真正的智慧？", updated.Title)
}

func TestAppendInterimTitleTruncatesLongMessage(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	session, err := svc.Create(ctx, "confucius", "")
	require.NoError(t, err)

	long := strings.Repeat("学", 30)
	updated, err := svc.Append(ctx, session.ID, userMsg(long))
	require.NoError(t, err)
	assert.Equal(t, "孔子: "+strings.Repeat("学", 20)+"...", updated.Title)
}

func TestSmartTitleGeneratedOnce(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	session, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)

	_, err = svc.Append(ctx, session.ID, userMsg("什么是真正的智慧？"))
	require.NoError(t, err)

	updated, err := svc.Append(ctx, session.ID, characterMsg("智慧始于承认自己的无知。"))
	require.NoError(t, err)
	assert.Equal(t, "哲思：智慧", updated.Title)

	// Later turns never re-title the session.
	_, err = svc.Append(ctx, session.ID, userMsg("如何学习编程？"))
	require.NoError(t, err)
	final, err := svc.Append(ctx, session.ID, characterMsg("先从提问开始。"))
	require.NoError(t, err)
	assert.Equal(t, "哲思：智慧", final.Title)
}

func TestSmartTitleNeedsBothRoles(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	session, err := svc.Create(ctx, "einstein", "")
	require.NoError(t, err)
	placeholder := session.Title

	// Character-only sessions keep the placeholder title.
	_, err = svc.Append(ctx, session.ID, characterMsg("你好，想聊点什么？"))
	require.NoError(t, err)
	updated, err := svc.Append(ctx, session.ID, characterMsg("我最近在思考时间的本质。"))
	require.NoError(t, err)
	assert.Equal(t, placeholder, updated.Title)
}

func TestRenameIsFinal(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	session, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)

	_, err = svc.Append(ctx, session.ID, userMsg("什么是真正的智慧？"))
	require.NoError(t, err)

	_, err = svc.Rename(ctx, session.ID, "我的珍藏对话")
	require.NoError(t, err)

	// The rename survives the turn that would otherwise trigger titling.
	updated, err := svc.Append(ctx, session.ID, characterMsg("智慧始于承认无知。"))
	require.NoError(t, err)
	assert.Equal(t, "我的珍藏对话", updated.Title)
}

func TestRenameValidation(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	_, err := svc.Rename(ctx, "missing", "标题")
	assert.Error(t, err)

	session, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)
	_, err = svc.Rename(ctx, session.ID, "   ")
	assert.Error(t, err)
}

func TestUpdateMessage(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	session, err := svc.Create(ctx, "einstein", "")
	require.NoError(t, err)
	updated, err := svc.Append(ctx, session.ID, userMsg("相对论是什么？"))
	require.NoError(t, err)
	msgID := updated.Messages[0].ID

	edited, err := svc.UpdateMessage(ctx, session.ID, msgID, "狭义相对论是什么？", false)
	require.NoError(t, err)
	assert.Equal(t, "狭义相对论是什么？", edited.Messages[0].Content)
	assert.False(t, edited.Messages[0].IsComplete)
	assert.True(t, edited.Messages[0].CanContinue)

	_, err = svc.UpdateMessage(ctx, session.ID, "missing-msg", "x", true)
	assert.Error(t, err)
}

func TestAppendRejectsFullSession(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxMessages = 2
	svc, _ := newTestService(opts)
	ctx := context.Background()

	session, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)

	_, err = svc.Append(ctx, session.ID, userMsg("一"))
	require.NoError(t, err)
	_, err = svc.Append(ctx, session.ID, characterMsg("二"))
	require.NoError(t, err)

	_, err = svc.Append(ctx, session.ID, userMsg("三"))
	assert.Error(t, err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	session, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, session.ID))
	_, err = svc.Get(ctx, session.ID)
	assert.Error(t, err)

	// Unknown id is a no-op, not an error.
	assert.NoError(t, svc.Delete(ctx, "missing"))
}

func TestRetentionCap(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxRetained = 3
	svc, _ := newTestService(opts)
	ctx := context.Background()

	var last models.Session
	for i := 0; i < 5; i++ {
		s, err := svc.Create(ctx, "socrates", "")
		require.NoError(t, err)
		last = s
	}

	summaries := svc.Summaries(ctx)
	assert.Len(t, summaries, 3)

	// The most recently created session always survives the cap.
	_, err := svc.Get(ctx, last.ID)
	assert.NoError(t, err)
}

func TestListByPersona(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	s1, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "einstein", "")
	require.NoError(t, err)

	list := svc.ListByPersona(ctx, "socrates")
	require.Len(t, list, 1)
	assert.Equal(t, s1.ID, list[0].ID)

	assert.Empty(t, svc.ListByPersona(ctx, "confucius"))
}

func TestSummaries(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	session, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)
	_, err = svc.Append(ctx, session.ID, userMsg("什么是真正的智慧？"))
	require.NoError(t, err)

	summaries := svc.Summaries(ctx)
	require.Len(t, summaries, 1)
	assert.Equal(t, session.ID, summaries[0].ID)
	assert.Equal(t, "苏格拉底", summaries[0].PersonaName)
	assert.Equal(t, 1, summaries[0].MessageCount)
	assert.Equal(t, "什么是真正的智慧？", summaries[0].LastMessage)
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	session, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)
	_, err = svc.Append(ctx, session.ID, userMsg("什么是真正的智慧？"))
	require.NoError(t, err)
	_, err = svc.Append(ctx, session.ID, characterMsg("智慧始于承认无知。"))
	require.NoError(t, err)
	exported, err := svc.ExportAll(ctx)
	require.NoError(t, err)

	fresh, _ := newTestService(DefaultOptions())
	count, err := fresh.ImportAll(ctx, exported)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	restored, err := fresh.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "哲思：智慧", restored.Title)
	assert.Len(t, restored.Messages, 2)
}

func TestImportAcceptsLegacyShapes(t *testing.T) {
	ctx := context.Background()

	bare := []byte(`[{"id": "s1", "personaId": "socrates", "title": "早期对话"}]`)
	wrapped := []byte(`{"sessions": [{"id": "s1", "personaId": "socrates", "title": "早期对话"}]}`)

	for _, data := range [][]byte{bare, wrapped} {
		svc, _ := newTestService(DefaultOptions())
		count, err := svc.ImportAll(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		restored, err := svc.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "早期对话", restored.Title)
	}
}

func TestImportMalformedLeavesStoreUntouched(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	session, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)

	_, err = svc.ImportAll(ctx, []byte("not json"))
	assert.Error(t, err)

	_, err = svc.Get(ctx, session.ID)
	assert.NoError(t, err)
	assert.Len(t, svc.Summaries(ctx), 1)
}

func TestImportMergeLastWriteWins(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	older := []byte(`[{"id": "s1", "personaId": "socrates", "title": "旧标题",
		"createdAt": "2026-01-01T00:00:00Z", "lastActiveAt": "2026-01-01T00:00:00Z"}]`)
	newer := []byte(`[{"id": "s1", "personaId": "socrates", "title": "新标题",
		"createdAt": "2026-01-01T00:00:00Z", "lastActiveAt": "2026-06-01T00:00:00Z"}]`)

	_, err := svc.ImportAll(ctx, newer)
	require.NoError(t, err)
	_, err = svc.ImportAll(ctx, older)
	require.NoError(t, err)

	restored, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "新标题", restored.Title)
}

func TestImportTrimsToRetentionCap(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxRetained = 2
	svc, _ := newTestService(opts)
	ctx := context.Background()

	data := []byte(`[
		{"id": "s1", "personaId": "socrates", "createdAt": "2025-12-01T00:00:00Z", "lastActiveAt": "2026-01-01T00:00:00Z"},
		{"id": "s2", "personaId": "socrates", "createdAt": "2025-12-01T00:00:00Z", "lastActiveAt": "2026-03-01T00:00:00Z"},
		{"id": "s3", "personaId": "socrates", "createdAt": "2025-12-01T00:00:00Z", "lastActiveAt": "2026-02-01T00:00:00Z"}
	]`)
	count, err := svc.ImportAll(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// The two most recently active sessions survive.
	assert.Len(t, svc.Summaries(ctx), 2)
	_, err = svc.Get(ctx, "s2")
	assert.NoError(t, err)
	_, err = svc.Get(ctx, "s3")
	assert.NoError(t, err)
	_, err = svc.Get(ctx, "s1")
	assert.Error(t, err)
}

func TestStorageInfo(t *testing.T) {
	svc, _ := newTestService(DefaultOptions())
	ctx := context.Background()

	_, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)

	info := svc.StorageInfo(ctx)
	assert.Equal(t, 1, info.SessionCount)
	assert.Greater(t, info.UsedBytes, int64(0))
	assert.Equal(t, DefaultOptions().StorageBudget, info.CapacityBytes)
	assert.False(t, info.Warning)
}

func TestStorageInfoWarning(t *testing.T) {
	opts := DefaultOptions()
	opts.StorageBudget = 64
	svc, _ := newTestService(opts)
	ctx := context.Background()

	_, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)

	info := svc.StorageInfo(ctx)
	assert.True(t, info.Warning)
}

func TestPersistenceAcrossRestart(t *testing.T) {
	opts := DefaultOptions()
	store := repository.NewMemoryStore()
	registry := persona.NewRegistry()
	generator := analyzer.NewGenerator(analyzer.NewHeuristic(analyzer.DefaultConfig()), opts.MaxAnalyzedMessages)

	svc := NewSessionService(store, registry, generator, nil, testLogger(), opts)
	ctx := context.Background()
	session, err := svc.Create(ctx, "confucius", "")
	require.NoError(t, err)

	// A second service over the same store sees the persisted set.
	reloaded := NewSessionService(store, registry, generator, nil, testLogger(), opts)
	restored, err := reloaded.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.PersonaID, restored.PersonaID)
}

func TestPersistedBlobIsCanonicalJSON(t *testing.T) {
	svc, store := newTestService(DefaultOptions())
	ctx := context.Background()

	session, err := svc.Create(ctx, "socrates", "")
	require.NoError(t, err)

	data, found, err := store.Get(ctx, DefaultOptions().StorageKey)
	require.NoError(t, err)
	require.True(t, found)

	var sessions []models.Session
	require.NoError(t, json.Unmarshal(data, &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, session.ID, sessions[0].ID)
}
