package bot

import (
	"context"

	"github.com/mkarpenko/interio_bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) withUserCheck(handler func(context.Context, tgbotapi.Update, *models.User)) func(tgbotapi.Update) {
	return func(update tgbotapi.Update) {
		ctx := context.Background()
		userID := update.Message.From.ID
		username := update.Message.From.UserName

		user, err := b.service.GetOrCreateUser(ctx, userID, username)
		if err != nil {
			b.logger.Errorf("Failed to get or create user: %v", err)
			b.sendMessage(update.Message.Chat.ID, "Произошла ошибка. Попробуйте позже.", nil)
			return
		}

		handler(ctx, update, user)
	}
}
