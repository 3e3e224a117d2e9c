package services

import (
	"context"
	"fmt"
	"genbot-ai/internal/models"
	"genbot-ai/internal/repositories"
	"genbot-ai/pkg/llm"
	"genbot-ai/pkg/media"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Bot{},
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.MessageMedia{},
	))
	return db
}

type fixedUserResolver string

func (r fixedUserResolver) GetUserEmail(context.Context) string { return string(r) }

func newTestStorage(t *testing.T) (ChatStorageService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	storage := NewChatStorageService(
		db,
		repositories.NewBotRepository(db),
		repositories.NewSessionRepository(db),
		fixedUserResolver("tester@example.com"),
	)
	return storage, db
}

func seedBot(t *testing.T, storage ChatStorageService, prompt *string) *models.Bot {
	t.Helper()
	bot := &models.Bot{
		AccountID:    1,
		Name:         "Test Bot",
		SystemPrompt: prompt,
	}
	require.NoError(t, storage.CreateBot(context.Background(), bot))
	return bot
}

func seedSession(t *testing.T, storage ChatStorageService, botID uint64) *models.ChatSession {
	t.Helper()
	session := &models.ChatSession{BotID: botID}
	require.NoError(t, storage.CreateSession(context.Background(), session))
	return session
}

// fakeClient is a scripted completion client.
type fakeClient struct {
	chunks        []llm.StreamChunk
	completion    *llm.Completion
	completeErr   error
	streamErr     error
	streamCalls   int
	completeCalls int
	lastHistory   *llm.ChatHistory
}

func (c *fakeClient) StreamCompletion(ctx context.Context, history *llm.ChatHistory, _ llm.Settings) (<-chan llm.StreamChunk, error) {
	c.streamCalls++
	c.lastHistory = history
	if c.streamErr != nil {
		return nil, c.streamErr
	}
	out := make(chan llm.StreamChunk, len(c.chunks)+1)
	for _, chunk := range c.chunks {
		out <- chunk
	}
	close(out)
	return out, nil
}

func (c *fakeClient) Complete(_ context.Context, history *llm.ChatHistory, _ llm.Settings) (*llm.Completion, error) {
	c.completeCalls++
	c.lastHistory = history
	if c.completeErr != nil {
		return nil, c.completeErr
	}
	return c.completion, nil
}

func (c *fakeClient) GetModelInfo() llm.ModelInfo {
	return llm.ModelInfo{Name: "fake-model", Provider: "openai", MaxCompletionTokens: 4096}
}

// fakeUploader records uploads and can be scripted to fail on a file name.
type fakeUploader struct {
	uploaded []string
	failOn   string
}

func (u *fakeUploader) Upload(_ context.Context, _ io.Reader, fileName string) (*media.FileInfo, error) {
	if fileName == u.failOn {
		return nil, fmt.Errorf("upload rejected")
	}
	u.uploaded = append(u.uploaded, fileName)
	return &media.FileInfo{
		FileName:         fileName,
		ProviderFileName: "files/" + fileName,
		ProviderName:     "gemini",
		ContentType:      "image/png",
		ContentHash:      "abc123",
		URI:              "uri://" + fileName,
		PublicURI:        "https://media.test/" + fileName,
	}, nil
}

func (u *fakeUploader) PublicURL(_ context.Context, providerFileName string) (string, error) {
	return "https://media.test/" + providerFileName, nil
}
