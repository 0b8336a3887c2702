package bot

import (
	"context"
	"sync"

	"github.com/mkarpenko/interio_bot/config"
	"github.com/mkarpenko/interio_bot/internal/gateway"
	"github.com/mkarpenko/interio_bot/internal/service"
	"github.com/mkarpenko/interio_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Generator produces the design image once the ledger has charged a credit.
// Generation runs outside the ledger; only its result comes back here.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Bot struct {
	API        *tgbotapi.BotAPI
	service    *service.Service
	gateway    gateway.Gateway
	generator  Generator
	logger     *utils.Logger
	config     *config.Config
	userStates map[int64]string
	stateMutex *sync.Mutex
}

func NewBot(
	api *tgbotapi.BotAPI,
	svc *service.Service,
	gw gateway.Gateway,
	generator Generator,
	logger *utils.Logger,
	cfg *config.Config,
) *Bot {
	return &Bot{
		API:        api,
		service:    svc,
		gateway:    gw,
		generator:  generator,
		logger:     logger,
		config:     cfg,
		userStates: make(map[int64]string),
		stateMutex: &sync.Mutex{},
	}
}

func (b *Bot) Start() {
	b.logger.Info("Starting bot...")
	updates := b.API.GetUpdatesChan(tgbotapi.NewUpdate(0))
	for update := range updates {
		if update.CallbackQuery != nil {
			b.handleCallbackQuery(update.CallbackQuery)
			continue
		}
		if update.Message != nil {
			b.HandleUpdate(update)
		}
	}
}

func GetMainMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton("🎨 Создать дизайн"),
			tgbotapi.NewKeyboardButton("👤 Профиль"),
		},
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton("💰 Купить генерации"),
			tgbotapi.NewKeyboardButton("🤝 Партнёрская программа"),
		},
	)
}
