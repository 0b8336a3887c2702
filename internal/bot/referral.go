package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mkarpenko/interio_bot/internal/models"
	"github.com/mkarpenko/interio_bot/internal/service"
	"github.com/mkarpenko/interio_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleReferralMenu(ctx context.Context, chatID int64, user *models.User) {
	stats, err := b.service.GetReferralStats(ctx, user.TelegramID)
	if err != nil {
		b.logger.Errorf("Failed to get referral stats: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", GetMainMenu())
		return
	}

	link := fmt.Sprintf("https://t.me/%s?start=%s", b.API.Self.UserName, stats.Code)
	msgText := fmt.Sprintf(
		"🤝 *Партнёрская программа*\n\n"+
			"Ваша ссылка:\n`%s`\n\n"+
			"👥 Приглашено: *%d*\n"+
			"💰 Баланс: *%s руб.*\n"+
			"📈 Всего заработано: *%s руб.*",
		link,
		stats.Count,
		utils.FormatAmount(stats.Balance),
		utils.FormatAmount(stats.TotalEarned),
	)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💎 Обменять на генерации", "ref_exchange"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💸 Запросить выплату", "ref_payout"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Реквизиты для выплат", "ref_setup"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, msgText)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to send referral menu: %v", err)
	}
}

// ===== Обмен реферального баланса на генерации =====

func (b *Bot) handleExchangeStart(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID

	user, err := b.service.GetUser(ctx, userID)
	if err != nil || user == nil {
		b.answerCallback(callback.ID, "Произошла ошибка. Попробуйте позже.")
		return
	}

	rate, err := b.service.ExchangeRate(ctx)
	if err != nil || rate <= 0 {
		b.logger.Errorf("Unusable exchange rate %d: %v", rate, err)
		b.answerCallback(callback.ID, "Произошла ошибка. Попробуйте позже.")
		return
	}

	maxCredits := user.ReferralBalance / rate
	if maxCredits < 1 {
		b.answerCallback(callback.ID, fmt.Sprintf("⚠️ Недостаточно средств. Минимум: %d руб. = 1 генерация", rate))
		return
	}

	b.setState(userID, stateAwaitingExchangeAmount)
	msgText := fmt.Sprintf(
		"💎 *Обмен на генерации*\n\n"+
			"💰 Реферальный баланс: *%s руб.*\n"+
			"🎨 Курс: 1 генерация = %d руб.\n\n"+
			"Доступно до *%d генераций*\n\n"+
			"Введите количество (или /all для обмена всей суммы):",
		utils.FormatAmount(user.ReferralBalance), rate, maxCredits,
	)
	b.sendMessage(callback.Message.Chat.ID, msgText, nil)
	b.answerCallback(callback.ID, "")
}

func (b *Bot) handleExchangeAmountInput(ctx context.Context, chatID int64, user *models.User, text string) {
	userID := user.TelegramID

	rate, err := b.service.ExchangeRate(ctx)
	if err != nil || rate <= 0 {
		b.logger.Errorf("Unusable exchange rate %d: %v", rate, err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", GetMainMenu())
		b.setState(userID, stateDefault)
		return
	}

	var credits int64
	if text == "/all" {
		credits = user.ReferralBalance / rate
	} else {
		credits, err = strconv.ParseInt(text, 10, 64)
		if err != nil {
			b.sendMessage(chatID, "⚠️ Введите число или /all", nil)
			return
		}
	}

	if credits < 1 {
		b.sendMessage(chatID, "⚠️ Минимум 1 генерация", nil)
		return
	}

	exchange, err := b.service.Exchange(ctx, userID, credits)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientFunds) {
			b.sendMessage(chatID, fmt.Sprintf("⚠️ Недостаточно средств. Максимум: %d генераций", user.ReferralBalance/rate), nil)
			return
		}
		b.logger.Errorf("Exchange failed for user %d: %v", userID, err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", GetMainMenu())
		b.setState(userID, stateDefault)
		return
	}

	b.setState(userID, stateDefault)
	balance, _ := b.service.GetBalance(ctx, userID)
	msgText := fmt.Sprintf(
		"✅ *Обмен завершён!*\n\n"+
			"+%d генераций (−%s руб.)\n"+
			"Баланс генераций: *%d*",
		exchange.CreditsGiven, utils.FormatAmount(exchange.AmountSpent), balance,
	)
	b.sendMessage(chatID, msgText, GetMainMenu())
}

// ===== Запрос выплаты =====

func (b *Bot) handlePayoutStart(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID

	user, err := b.service.GetUser(ctx, userID)
	if err != nil || user == nil {
		b.answerCallback(callback.ID, "Произошла ошибка. Попробуйте позже.")
		return
	}

	minPayout, err := b.service.MinPayout(ctx)
	if err != nil {
		b.logger.Errorf("Failed to get min payout: %v", err)
		b.answerCallback(callback.ID, "Произошла ошибка. Попробуйте позже.")
		return
	}

	if user.ReferralBalance < minPayout {
		b.answerCallback(callback.ID, fmt.Sprintf("⚠️ Минимальная сумма вывода: %s руб.", utils.FormatAmount(minPayout)))
		return
	}
	if user.PayoutMethod == "" || user.PayoutDetails == "" {
		b.answerCallback(callback.ID, "⚠️ Сначала укажите реквизиты для выплаты")
		return
	}

	b.setState(userID, stateAwaitingPayoutAmount)
	msgText := fmt.Sprintf(
		"💸 *Запрос выплаты*\n\n"+
			"💰 Доступно: *%s руб.*\n"+
			"⚠️ Минимум: %s руб.\n\n"+
			"Введите сумму (или /all для вывода всей суммы):",
		utils.FormatAmount(user.ReferralBalance), utils.FormatAmount(minPayout),
	)
	b.sendMessage(callback.Message.Chat.ID, msgText, nil)
	b.answerCallback(callback.ID, "")
}

func (b *Bot) handlePayoutAmountInput(ctx context.Context, chatID int64, user *models.User, text string) {
	userID := user.TelegramID

	var amount int64
	var err error
	if text == "/all" {
		amount = user.ReferralBalance
	} else {
		amount, err = strconv.ParseInt(text, 10, 64)
		if err != nil {
			b.sendMessage(chatID, "⚠️ Введите число или /all", nil)
			return
		}
	}

	payout, err := b.service.RequestPayout(ctx, userID, amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			minPayout, _ := b.service.MinPayout(ctx)
			b.sendMessage(chatID, fmt.Sprintf("⚠️ Минимальная сумма вывода: %s руб.", utils.FormatAmount(minPayout)), nil)
		case errors.Is(err, service.ErrInsufficientFunds):
			b.sendMessage(chatID, fmt.Sprintf("⚠️ Недостаточно средств. Доступно: %s руб.", utils.FormatAmount(user.ReferralBalance)), nil)
		case errors.Is(err, service.ErrPayoutNotConfigured):
			b.setState(userID, stateDefault)
			b.sendMessage(chatID, "⚠️ Сначала укажите реквизиты для выплаты", GetMainMenu())
		default:
			b.logger.Errorf("Payout request failed for user %d: %v", userID, err)
			b.setState(userID, stateDefault)
			b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", GetMainMenu())
		}
		return
	}

	b.setState(userID, stateDefault)
	msgText := fmt.Sprintf(
		"✅ *Заявка отправлена!*\n\n"+
			"№ заявки: #%d\n"+
			"Сумма: *%s руб.*\n\n"+
			"⏳ Выплата произойдёт в течение 1-3 рабочих дней.",
		payout.ID, utils.FormatAmount(payout.Amount),
	)
	b.sendMessage(chatID, msgText, GetMainMenu())
	b.notifyAdminPayout(payout)
}

// ===== Настройка реквизитов =====

func (b *Bot) handlePayoutSetup(callback *tgbotapi.CallbackQuery) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Банковская карта", "ref_method:card"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📱 СБП (по номеру телефона)", "ref_method:sbp"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Другой способ", "ref_method:other"),
		),
	)

	msg := tgbotapi.NewMessage(callback.Message.Chat.ID, "⚙️ *Реквизиты для выплат*\n\nВыберите способ получения:")
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to send payout setup menu: %v", err)
	}
	b.answerCallback(callback.ID, "")
}

func (b *Bot) handlePayoutMethodChosen(callback *tgbotapi.CallbackQuery, method string) {
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID

	switch method {
	case "card":
		b.setState(userID, stateAwaitingCardNumber)
		b.sendMessage(chatID, "💳 Введите номер банковской карты:\n\nФормат: 1234 5678 9012 3456\n\n/cancel для отмены", nil)
	case "sbp":
		b.setState(userID, stateAwaitingPhone)
		b.sendMessage(chatID, "📱 Введите номер телефона для СБП:\n\nФормат: +79991234567\n\n/cancel для отмены", nil)
	case "other":
		b.setState(userID, stateAwaitingOtherDetails)
		b.sendMessage(chatID, "💰 Опишите способ получения выплаты (Qiwi, PayPal и т.д.):\n\n/cancel для отмены", nil)
	default:
		b.answerCallback(callback.ID, "Ошибка: неверные данные кнопки.")
		return
	}
	b.answerCallback(callback.ID, "")
}

func (b *Bot) handlePayoutDetailsInput(ctx context.Context, chatID int64, user *models.User, state, text string) {
	userID := user.TelegramID

	var method, details string
	switch state {
	case stateAwaitingCardNumber:
		method = "card"
		details = utils.NormalizeCardNumber(text)
		if details == "" {
			b.sendMessage(chatID, "⚠️ Неверный формат номера карты.\nИспользуйте формат: 1234 5678 9012 3456", nil)
			return
		}
	case stateAwaitingPhone:
		method = "sbp"
		details = utils.NormalizePhone(text)
		if details == "" {
			b.sendMessage(chatID, "⚠️ Неверный формат номера.\nИспользуйте формат: +79991234567", nil)
			return
		}
	case stateAwaitingOtherDetails:
		method = "other"
		details = text
		if len(details) < 5 {
			b.sendMessage(chatID, "⚠️ Слишком короткое описание. Укажите детали.", nil)
			return
		}
	}

	if err := b.service.SetPayoutDetails(ctx, userID, method, details); err != nil {
		b.logger.Errorf("Failed to save payout details for user %d: %v", userID, err)
		b.sendMessage(chatID, "Ошибка сохранения реквизитов. Попробуйте позже.", GetMainMenu())
		b.setState(userID, stateDefault)
		return
	}

	b.setState(userID, stateDefault)
	msgText := fmt.Sprintf(
		"✅ *Реквизиты сохранены!*\n\n"+
			"Реквизиты: `%s`\n\n"+
			"Теперь вы можете запрашивать выплаты.",
		utils.MaskDetails(method, details),
	)
	b.sendMessage(chatID, msgText, GetMainMenu())
}
