package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mkarpenko/interio_bot/internal/gateway"
	"github.com/mkarpenko/interio_bot/internal/models"
	"github.com/mkarpenko/interio_bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleBuyMenu(ctx context.Context, chatID int64) {
	packages, err := b.service.GetActivePackages(ctx)
	if err != nil {
		b.logger.Errorf("Failed to get packages: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", GetMainMenu())
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(packages))
	for _, pkg := range packages {
		label := fmt.Sprintf("%s — %d руб.", pkg.Name, pkg.Price)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("buy_pkg:%d", pkg.ID)),
		))
	}

	msg := tgbotapi.NewMessage(chatID, "💰 *Выберите пакет генераций:*\n\nПосле оплаты баланс автоматически пополнится.")
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to send buy menu: %v", err)
	}
}

// handleBuyPackage opens a charge at the gateway and records the pending
// payment in the ledger under the gateway's external id.
func (b *Bot) handleBuyPackage(ctx context.Context, callback *tgbotapi.CallbackQuery, packageIDRaw string) {
	chatID := callback.Message.Chat.ID
	userID := callback.From.ID

	packageID, err := strconv.ParseUint(packageIDRaw, 10, 32)
	if err != nil {
		b.answerCallback(callback.ID, "Ошибка: неверные данные кнопки.")
		return
	}

	pkg, err := b.service.GetPackageByID(ctx, uint(packageID))
	if err != nil || pkg == nil || !pkg.IsActive {
		b.answerCallback(callback.ID, "Пакет недоступен.")
		return
	}

	charge, err := b.gateway.Charge(ctx, pkg.Price, pkg.Name, gateway.Metadata{
		UserID:  userID,
		Credits: pkg.Credits,
	})
	if err != nil {
		b.logger.Errorf("Failed to open charge for user %d: %v", userID, err)
		b.answerCallback(callback.ID, "Ошибка создания платежа.")
		return
	}

	if _, err := b.service.CreatePendingPayment(ctx, userID, charge.ExternalID, pkg.Price, pkg.Credits); err != nil {
		b.logger.Errorf("Failed to record pending payment %s: %v", charge.ExternalID, err)
		b.answerCallback(callback.ID, "Ошибка создания платежа.")
		return
	}

	msgText := fmt.Sprintf(
		"💳 *Оплата пакета «%s»*\n\n"+
			"Сумма: *%d руб.*\n\n"+
			"Перейдите по ссылке для оплаты, затем нажмите «Проверить оплату».",
		pkg.Name, pkg.Price,
	)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💳 Оплатить", charge.CheckoutURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Проверить оплату", "check_payment:"+charge.ExternalID),
		),
	)

	msg := tgbotapi.NewMessage(chatID, msgText)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to send payment message: %v", err)
	}
	b.answerCallback(callback.ID, "")
}

// handleCheckPayment polls the gateway and hands the result to the ledger.
// The ledger decides whether anything is credited; a duplicate check after
// a webhook already settled the payment is reported as a plain success.
func (b *Bot) handleCheckPayment(ctx context.Context, callback *tgbotapi.CallbackQuery, externalID string) {
	chatID := callback.Message.Chat.ID
	userID := callback.From.ID

	status, err := b.gateway.QueryStatus(ctx, externalID)
	if err != nil {
		b.logger.Errorf("Failed to query payment %s: %v", externalID, err)
		b.answerCallback(callback.ID, "Не удалось проверить платёж. Попробуйте позже.")
		return
	}

	payment, _, err := b.service.ConfirmPayment(ctx, externalID, status)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			b.answerCallback(callback.ID, "Платёж не найден.")
			return
		}
		b.logger.Errorf("Failed to confirm payment %s: %v", externalID, err)
		b.answerCallback(callback.ID, "Произошла ошибка. Попробуйте позже.")
		return
	}

	if payment.Status != models.PaymentStatusSucceeded {
		b.answerCallback(callback.ID, "⏳ Оплата ещё не поступила. Попробуйте через минуту.")
		return
	}

	balance, err := b.service.GetBalance(ctx, userID)
	if err != nil {
		b.logger.Errorf("Failed to get balance after payment: %v", err)
	}

	b.answerCallback(callback.ID, "✅ Оплата получена!")
	b.sendMessage(chatID, fmt.Sprintf("✅ *Оплата прошла успешно!*\n\n+%d генераций.\nВаш баланс: *%d*", payment.CreditsRequested, balance), GetMainMenu())
}

func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	data := callback.Data

	switch {
	case strings.HasPrefix(data, "buy_pkg:"):
		b.handleBuyPackage(ctx, callback, strings.TrimPrefix(data, "buy_pkg:"))
	case strings.HasPrefix(data, "check_payment:"):
		b.handleCheckPayment(ctx, callback, strings.TrimPrefix(data, "check_payment:"))
	case data == "ref_exchange":
		b.handleExchangeStart(ctx, callback)
	case data == "ref_payout":
		b.handlePayoutStart(ctx, callback)
	case data == "ref_setup":
		b.handlePayoutSetup(callback)
	case strings.HasPrefix(data, "ref_method:"):
		b.handlePayoutMethodChosen(callback, strings.TrimPrefix(data, "ref_method:"))
	case strings.HasPrefix(data, "payout_ok:"), strings.HasPrefix(data, "payout_no:"):
		b.handlePayoutResolution(ctx, callback)
	default:
		b.answerCallback(callback.ID, "")
	}
}
