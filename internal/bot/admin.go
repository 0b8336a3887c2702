package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mkarpenko/interio_bot/internal/models"
	"github.com/mkarpenko/interio_bot/internal/service"
	"github.com/mkarpenko/interio_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// notifyAdminPayout mirrors a new payout request into the admin chat with
// resolution buttons attached.
func (b *Bot) notifyAdminPayout(payout *models.Payout) {
	if b.config.AdminChatID == 0 {
		return
	}

	msgText := fmt.Sprintf(
		"💸 *Новая заявка на выплату #%d*\n\n"+
			"Пользователь: `%d`\n"+
			"Сумма: *%s руб.*\n"+
			"Реквизиты: `%s`",
		payout.ID, payout.UserID,
		utils.FormatAmount(payout.Amount),
		utils.MaskDetails(payout.Method, payout.Details),
	)

	msg := tgbotapi.NewMessage(b.config.AdminChatID, msgText)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = payoutResolutionKeyboard(payout.ID)
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to notify admin about payout #%d: %v", payout.ID, err)
	}
}

func payoutResolutionKeyboard(payoutID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Выплачено", fmt.Sprintf("payout_ok:%d", payoutID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("payout_no:%d", payoutID)),
		),
	)
}

func (b *Bot) handlePendingPayouts(ctx context.Context, chatID int64) {
	payouts, err := b.service.GetPendingPayouts(ctx)
	if err != nil {
		b.logger.Errorf("Failed to list pending payouts: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}

	if len(payouts) == 0 {
		b.sendMessage(chatID, "✅ Нет заявок на выплату.", nil)
		return
	}

	for _, payout := range payouts {
		msgText := fmt.Sprintf(
			"💸 *Заявка #%d*\n\n"+
				"Пользователь: `%d`\n"+
				"Сумма: *%s руб.*\n"+
				"Способ: %s\n"+
				"Реквизиты: `%s`\n"+
				"Создана: %s",
			payout.ID, payout.UserID,
			utils.FormatAmount(payout.Amount),
			payout.Method,
			payout.Details,
			payout.RequestedAt.Format("02.01.2006 15:04"),
		)
		msg := tgbotapi.NewMessage(chatID, msgText)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyMarkup = payoutResolutionKeyboard(payout.ID)
		if _, err := b.API.Send(msg); err != nil {
			b.logger.Errorf("Failed to send payout #%d to admin: %v", payout.ID, err)
		}
	}
}

// handlePayoutResolution settles a payout from an admin button press and
// tells the requester the outcome. Pressing the same button twice reports
// the payout as already processed instead of settling it again.
func (b *Bot) handlePayoutResolution(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	adminID := callback.From.ID
	if !b.isAdmin(adminID) {
		b.answerCallback(callback.ID, "⛔ Недостаточно прав.")
		return
	}

	data := callback.Data
	status := models.PayoutStatusCompleted
	idRaw := strings.TrimPrefix(data, "payout_ok:")
	if strings.HasPrefix(data, "payout_no:") {
		status = models.PayoutStatusRejected
		idRaw = strings.TrimPrefix(data, "payout_no:")
	}

	payoutID, err := strconv.ParseUint(idRaw, 10, 32)
	if err != nil {
		b.answerCallback(callback.ID, "Ошибка: неверные данные кнопки.")
		return
	}

	payout, err := b.service.ResolvePayout(ctx, uint(payoutID), status, adminID, "")
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyProcessed):
			b.answerCallback(callback.ID, "Заявка уже обработана.")
		case errors.Is(err, service.ErrNotFound):
			b.answerCallback(callback.ID, "Заявка не найдена.")
		default:
			b.logger.Errorf("Failed to resolve payout #%d: %v", payoutID, err)
			b.answerCallback(callback.ID, "Произошла ошибка. Попробуйте позже.")
		}
		return
	}

	if status == models.PayoutStatusCompleted {
		b.answerCallback(callback.ID, "✅ Заявка отмечена как выплаченная.")
		b.sendMessage(payout.UserID, fmt.Sprintf(
			"✅ *Выплата #%d выполнена!*\n\nСумма: *%s руб.*",
			payout.ID, utils.FormatAmount(payout.Amount)), nil)
	} else {
		b.answerCallback(callback.ID, "❌ Заявка отклонена.")
		userText := fmt.Sprintf("❌ *Выплата #%d отклонена.*", payout.ID)
		if b.config.RefundRejectedPayouts {
			userText += fmt.Sprintf("\n\nСумма *%s руб.* возвращена на реферальный баланс.", utils.FormatAmount(payout.Amount))
		}
		userText += "\n\nПо вопросам обратитесь в поддержку."
		b.sendMessage(payout.UserID, userText, nil)
	}

	// Убираем кнопки, чтобы заявку нельзя было обработать повторно из чата.
	edit := tgbotapi.NewEditMessageReplyMarkup(
		callback.Message.Chat.ID,
		callback.Message.MessageID,
		tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(statusLabel(status), "noop"),
		)),
	)
	if _, err := b.API.Request(edit); err != nil {
		b.logger.Errorf("Failed to edit payout message: %v", err)
	}
}

func statusLabel(status string) string {
	if status == models.PayoutStatusCompleted {
		return "✅ Выплачено"
	}
	return "❌ Отклонено"
}

func (b *Bot) handleAdminStats(ctx context.Context, chatID int64) {
	stats, err := b.service.GetAdminStats(ctx)
	if err != nil {
		b.logger.Errorf("Failed to get admin stats: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}

	msgText := fmt.Sprintf(
		"📊 *Статистика*\n\n"+
			"👥 *Пользователи*\n"+
			"Всего: %d\n"+
			"Сегодня: +%d | Неделя: +%d | Месяц: +%d\n\n"+
			"💰 *Выручка*\n"+
			"Всего: %s руб.\n"+
			"Сегодня: %s | Неделя: %s | Месяц: %s\n\n"+
			"🤝 *Партнёрская программа*\n"+
			"Начислений: %d на %s руб.\n"+
			"Выдано бонусных генераций: %d\n"+
			"В заявках на выплату: %s руб.",
		stats.TotalUsers,
		stats.NewUsersToday, stats.NewUsersWeek, stats.NewUsersMonth,
		utils.FormatAmount(stats.RevenueTotal),
		utils.FormatAmount(stats.RevenueToday),
		utils.FormatAmount(stats.RevenueWeek),
		utils.FormatAmount(stats.RevenueMonth),
		stats.ReferralEarningRows,
		utils.FormatAmount(stats.ReferralEarningsTotal),
		stats.ReferralCreditsGiven,
		utils.FormatAmount(stats.PendingPayoutsSum),
	)
	b.sendMessage(chatID, msgText, nil)
}

// handleSetSetting handles "/set <key> <value>".
func (b *Bot) handleSetSetting(ctx context.Context, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		settings, err := b.service.GetAllSettings(ctx)
		if err != nil {
			b.logger.Errorf("Failed to get settings: %v", err)
			b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
			return
		}
		var sb strings.Builder
		sb.WriteString("⚙️ *Настройки*\n\nИспользование: `/set <ключ> <значение>`\n\n")
		for key, value := range settings {
			sb.WriteString(fmt.Sprintf("`%s` = %s\n", key, value))
		}
		b.sendMessage(chatID, sb.String(), nil)
		return
	}

	key, value := fields[0], fields[1]
	if err := b.service.SetSetting(ctx, key, value); err != nil {
		if errors.Is(err, service.ErrValidation) {
			b.sendMessage(chatID, fmt.Sprintf("⚠️ %v", err), nil)
			return
		}
		b.logger.Errorf("Failed to set setting %s: %v", key, err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}

	b.sendMessage(chatID, fmt.Sprintf("✅ `%s` = %s", key, value), nil)
}
