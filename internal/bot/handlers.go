package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkarpenko/interio_bot/internal/models"
	"github.com/mkarpenko/interio_bot/internal/service"
	"github.com/mkarpenko/interio_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	b.withUserCheck(func(ctx context.Context, update tgbotapi.Update, user *models.User) {
		text := update.Message.Text
		chatID := update.Message.Chat.ID
		userID := user.TelegramID

		b.logger.Infof("Processing message from user %d: %s", userID, text)

		userState := b.getUserState(userID)

		switch userState {
		case stateAwaitingExchangeAmount:
			b.handleExchangeAmountInput(ctx, chatID, user, text)
			return
		case stateAwaitingPayoutAmount:
			b.handlePayoutAmountInput(ctx, chatID, user, text)
			return
		case stateAwaitingCardNumber, stateAwaitingPhone, stateAwaitingOtherDetails:
			b.handlePayoutDetailsInput(ctx, chatID, user, userState, text)
			return
		}

		switch {
		case strings.HasPrefix(text, "/start"):
			b.handleStart(ctx, chatID, user, update.Message.CommandArguments())
		case text == "/cancel":
			b.setState(userID, stateDefault)
			b.sendMessage(chatID, "❌ Отменено", GetMainMenu())
		case text == "🎨 Создать дизайн":
			b.handleCreateDesign(ctx, chatID, user)
		case text == "👤 Профиль":
			b.handleProfile(ctx, chatID, user)
		case text == "💰 Купить генерации":
			b.handleBuyMenu(ctx, chatID)
		case text == "🤝 Партнёрская программа":
			b.handleReferralMenu(ctx, chatID, user)
		case text == "/payouts" && b.isAdmin(userID):
			b.handlePendingPayouts(ctx, chatID)
		case text == "/stats" && b.isAdmin(userID):
			b.handleAdminStats(ctx, chatID)
		case strings.HasPrefix(text, "/set") && b.isAdmin(userID):
			b.handleSetSetting(ctx, chatID, update.Message.CommandArguments())
		default:
			b.sendMessage(chatID, "Неизвестная команда. Используйте меню.", GetMainMenu())
		}
	})(update)
}

// handleStart greets the user and links the referral deep-link payload when
// there is one. Referral failures are logged, not shown: a stale or own
// link should not break onboarding.
func (b *Bot) handleStart(ctx context.Context, chatID int64, user *models.User, payload string) {
	payload = strings.TrimSpace(payload)
	if payload != "" && user.ReferredBy == nil {
		if err := b.service.AssignReferrer(ctx, user.TelegramID, payload); err != nil {
			if errors.Is(err, service.ErrReferralIneligible) {
				b.logger.Infof("Referral link ignored for user %d: %v", user.TelegramID, err)
			} else {
				b.logger.Errorf("Failed to assign referrer for user %d: %v", user.TelegramID, err)
			}
		} else {
			b.sendMessage(chatID, "🎁 Бонус за приглашение зачислен!", nil)
		}
	}

	welcomeText := "Добро пожаловать! Я создаю дизайн интерьера по фото.\n" +
		"Используйте меню для работы с ботом."
	b.sendMessage(chatID, welcomeText, GetMainMenu())
}

func (b *Bot) handleProfile(ctx context.Context, chatID int64, user *models.User) {
	balance, err := b.service.GetBalance(ctx, user.TelegramID)
	if err != nil {
		b.logger.Errorf("Failed to get balance: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", GetMainMenu())
		return
	}

	msgText := fmt.Sprintf(
		"👤 *Профиль*\n\n"+
			"ID: `%d`\n"+
			"🎨 Генераций: *%d*\n"+
			"💰 Реферальный баланс: *%s руб.*\n"+
			"📅 Дата регистрации: %s",
		user.TelegramID,
		balance,
		utils.FormatAmount(user.ReferralBalance),
		user.RegisteredAt.Format("02.01.2006"),
	)
	b.sendMessage(chatID, msgText, GetMainMenu())
}

// handleCreateDesign charges one credit and hands off to the generator. A
// failed debit blocks the generation and routes the user to the buy menu.
func (b *Bot) handleCreateDesign(ctx context.Context, chatID int64, user *models.User) {
	if err := b.service.SpendGeneration(ctx, user.TelegramID); err != nil {
		if errors.Is(err, service.ErrInsufficientBalance) {
			b.sendMessage(chatID, "⚠️ Недостаточно генераций. Купите пакет или обменяйте реферальный баланс.", nil)
			b.handleBuyMenu(ctx, chatID)
			return
		}
		b.logger.Errorf("Failed to debit generation for user %d: %v", user.TelegramID, err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", GetMainMenu())
		return
	}

	b.sendMessage(chatID, "🎨 Генерация запущена, это займёт около минуты...", nil)

	// The update loop is single-threaded; a stuck prediction must not
	// block it forever.
	genCtx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	imageURL, err := b.generator.Generate(genCtx, "modern interior redesign")
	if err != nil {
		b.logger.Errorf("Generation failed for user %d: %v", user.TelegramID, err)
		b.sendMessage(chatID, "Не удалось создать дизайн. Попробуйте позже.", GetMainMenu())
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(imageURL))
	if _, err := b.API.Send(photo); err != nil {
		b.logger.Errorf("Failed to send generated photo: %v", err)
	}
}
