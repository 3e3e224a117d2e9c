package services

import (
	"context"
	"fmt"
	"genbot-ai/internal/constants"
	"genbot-ai/internal/models"
	"genbot-ai/internal/repositories"
	"genbot-ai/internal/utils"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionDefaults(t *testing.T) {
	storage, _ := newTestStorage(t)
	bot := seedBot(t, storage, nil)

	session := &models.ChatSession{BotID: bot.ID}
	require.NoError(t, storage.CreateSession(context.Background(), session))

	assert.Equal(t, constants.DefaultSessionTitle, session.Title)
	assert.Equal(t, 1, session.Version)
	assert.Equal(t, "tester@example.com", session.CreatedBy)
	assert.False(t, session.UtcCreatedOn.IsZero())
}

func TestCreateSessionRequiresBot(t *testing.T) {
	storage, _ := newTestStorage(t)

	err := storage.CreateSession(context.Background(), &models.ChatSession{})
	assert.ErrorIs(t, err, ErrMissingBotReference)

	err = storage.CreateSession(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilSession)
}

func TestAddMessageValidation(t *testing.T) {
	storage, _ := newTestStorage(t)

	_, err := storage.AddMessage(context.Background(), 1, nil, nil)
	assert.ErrorIs(t, err, ErrNilMessage)

	_, err = storage.AddMessage(context.Background(), 0, &models.ChatMessage{UserMessage: "hi"}, nil)
	assert.ErrorIs(t, err, ErrInvalidSessionID)

	_, err = storage.AddMessage(context.Background(), 999, &models.ChatMessage{UserMessage: "hi"}, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAddMessagePersistsTurnAtomically(t *testing.T) {
	storage, _ := newTestStorage(t)
	bot := seedBot(t, storage, nil)
	session := seedSession(t, storage, bot.ID)

	message := &models.ChatMessage{
		UserMessage:   "what is in the picture?",
		AgentResponse: "A lighthouse.",
		Model:         "gpt-4o",
		ProviderName:  "openai",
		InputTokens:   10,
		OutputTokens:  20,
	}
	mediaRows := []*models.MessageMedia{
		{FileName: "a.png", ProviderName: "gemini", MediaURL: "uri://a.png"},
		{FileName: "b.png", ProviderName: "gemini", MediaURL: "uri://b.png"},
	}

	stored, err := storage.AddMessage(context.Background(), session.ID, message, mediaRows)
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
	assert.Len(t, stored.Media, 2)
	assert.Equal(t, 30, stored.TotalTokens())

	reloaded, err := storage.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.HasMedia)
	require.Len(t, reloaded.Messages, 1)
	require.Len(t, reloaded.Messages[0].Media, 2)
	assert.Equal(t, "a.png", reloaded.Messages[0].Media[0].FileName)
}

func TestAddMessageWithoutMediaKeepsFlag(t *testing.T) {
	storage, _ := newTestStorage(t)
	bot := seedBot(t, storage, nil)
	session := seedSession(t, storage, bot.ID)

	_, err := storage.AddMessage(context.Background(), session.ID, &models.ChatMessage{UserMessage: "hi", AgentResponse: "hello"}, nil)
	require.NoError(t, err)

	reloaded, err := storage.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.HasMedia)
}

func TestSessionMessagesRoundTripInOrder(t *testing.T) {
	storage, _ := newTestStorage(t)
	bot := seedBot(t, storage, nil)
	session := seedSession(t, storage, bot.ID)

	for i := 1; i <= 4; i++ {
		_, err := storage.AddMessage(context.Background(), session.ID, &models.ChatMessage{
			UserMessage:   fmt.Sprintf("q%d", i),
			AgentResponse: fmt.Sprintf("a%d", i),
		}, nil)
		require.NoError(t, err)
	}

	reloaded, err := storage.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Messages, 4)
	for i, m := range reloaded.Messages {
		assert.Equal(t, fmt.Sprintf("q%d", i+1), m.UserMessage)
	}
}

func TestUpdateSessionVersionConflict(t *testing.T) {
	storage, _ := newTestStorage(t)
	bot := seedBot(t, storage, nil)
	session := seedSession(t, storage, bot.ID)

	fresh, err := storage.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	stale, err := storage.GetSession(context.Background(), session.ID)
	require.NoError(t, err)

	fresh.Title = "Current"
	require.NoError(t, storage.UpdateSession(context.Background(), fresh))

	stale.Title = "Out of date"
	err = storage.UpdateSession(context.Background(), stale)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestUpdateSessionTitle(t *testing.T) {
	storage, _ := newTestStorage(t)
	bot := seedBot(t, storage, nil)
	session := seedSession(t, storage, bot.ID)

	require.NoError(t, storage.UpdateSessionTitle(context.Background(), session.ID, "Lighthouse Chat"))

	reloaded, err := storage.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lighthouse Chat", reloaded.Title)
	assert.Equal(t, 2, reloaded.Version)
}

func TestDeleteSessionCascades(t *testing.T) {
	storage, db := newTestStorage(t)
	bot := seedBot(t, storage, nil)
	session := seedSession(t, storage, bot.ID)

	_, err := storage.AddMessage(context.Background(), session.ID, &models.ChatMessage{UserMessage: "q", AgentResponse: "a"},
		[]*models.MessageMedia{{FileName: "a.png"}})
	require.NoError(t, err)

	require.NoError(t, storage.DeleteSession(context.Background(), session.ID))

	_, err = storage.GetSession(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	var messageCount, mediaCount int64
	require.NoError(t, db.Model(&models.ChatMessage{}).Count(&messageCount).Error)
	require.NoError(t, db.Model(&models.MessageMedia{}).Count(&mediaCount).Error)
	assert.Zero(t, messageCount)
	assert.Zero(t, mediaCount)
}

func TestListSessionsFilterOrderLimit(t *testing.T) {
	storage, _ := newTestStorage(t)
	bot := seedBot(t, storage, nil)

	titles := []string{"Alpha report", "Beta report", "Gamma notes"}
	var sessions []*models.ChatSession
	for _, title := range titles {
		session := &models.ChatSession{BotID: bot.ID, Title: title}
		require.NoError(t, storage.CreateSession(context.Background(), session))
		sessions = append(sessions, session)
	}
	_, err := storage.AddMessage(context.Background(), sessions[2].ID,
		&models.ChatMessage{UserMessage: "q", AgentResponse: "a"},
		[]*models.MessageMedia{{FileName: "pic.png"}})
	require.NoError(t, err)

	byTitle, err := storage.ListSessions(context.Background(), bot.ID,
		repositories.SessionFilter{TitleContains: "report"}, "title", true, 0)
	require.NoError(t, err)
	require.Len(t, byTitle, 2)
	assert.Equal(t, "Alpha report", byTitle[0].Title)
	assert.Equal(t, "Beta report", byTitle[1].Title)

	withMedia, err := storage.ListSessions(context.Background(), bot.ID,
		repositories.SessionFilter{HasMedia: utils.ToBoolPtr(true)}, "id", true, 0)
	require.NoError(t, err)
	require.Len(t, withMedia, 1)
	assert.Equal(t, "Gamma notes", withMedia[0].Title)

	limited, err := storage.ListSessions(context.Background(), bot.ID,
		repositories.SessionFilter{}, "id", true, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = storage.ListSessions(context.Background(), 0, repositories.SessionFilter{}, "id", true, 0)
	assert.ErrorIs(t, err, ErrInvalidBotID)
}

func TestBotCRUD(t *testing.T) {
	storage, _ := newTestStorage(t)
	bot := seedBot(t, storage, utils.ToStringPtr("Answer briefly."))

	found, err := storage.GetBot(context.Background(), bot.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Bot", found.Name)
	require.NotNil(t, found.SystemPrompt)
	assert.Equal(t, "Answer briefly.", *found.SystemPrompt)

	byName, err := storage.GetBotByName(context.Background(), 1, "Test Bot")
	require.NoError(t, err)
	assert.Equal(t, bot.ID, byName.ID)

	found.Name = "Renamed Bot"
	require.NoError(t, storage.UpdateBot(context.Background(), found))
	assert.Equal(t, 2, found.Version)

	require.NoError(t, storage.DeleteBot(context.Background(), bot.ID))
	_, err = storage.GetBot(context.Background(), bot.ID)
	assert.ErrorIs(t, err, ErrBotNotFound)
}
