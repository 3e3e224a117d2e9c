package repositories

import (
	"context"
	"genbot-ai/internal/constants"
	"genbot-ai/internal/models"
	"log"
	"time"

	"gorm.io/gorm"
)

// InitializeStore runs the schema migration and, when seedDefaultBot is set,
// makes sure the default bot exists so a fresh deployment can serve chats
// immediately.
func InitializeStore(db *gorm.DB, seedDefaultBot bool) error {
	if err := db.AutoMigrate(
		&models.Bot{},
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.MessageMedia{},
	); err != nil {
		return err
	}
	if !seedDefaultBot {
		return nil
	}

	botRepo := NewBotRepository(db)
	ctx := context.Background()

	existing, err := botRepo.FindByName(ctx, constants.DefaultAccountID, constants.DefaultBotName)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	bot := &models.Bot{
		AccountID: constants.DefaultAccountID,
		Name:      constants.DefaultBotName,
	}
	bot.StampNew("system", time.Now().UTC())
	if err := botRepo.Create(ctx, bot); err != nil {
		return err
	}
	log.Printf("✨ Seeded default bot %q (id=%d)", bot.Name, bot.ID)
	return nil
}
