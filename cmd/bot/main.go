package main

import (
	"github.com/mkarpenko/interio_bot/config"
	"github.com/mkarpenko/interio_bot/db"
	"github.com/mkarpenko/interio_bot/internal/bot"
	"github.com/mkarpenko/interio_bot/internal/gateway"
	"github.com/mkarpenko/interio_bot/internal/generation"
	"github.com/mkarpenko/interio_bot/internal/repository"
	"github.com/mkarpenko/interio_bot/internal/service"
	"github.com/mkarpenko/interio_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	logger := utils.InitLogger()
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		logger.Fatal("Failed to load config: ", err)
	}

	database, err := db.ConnectDb(cfg.DB_URL, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if err := db.Migrate(database, true, logger); err != nil {
		logger.Fatal(err)
	}

	repo := repository.NewRepository(database, logger)
	svc := service.NewService(repo, &cfg, logger)

	gw := gateway.NewYooKassa(cfg.GatewayShopID, cfg.GatewaySecretKey, cfg.GatewayReturnURL, logger)
	generator := generation.NewClient(cfg.ReplicateAPIToken, cfg.ReplicateModelVersion, logger)

	telegramBot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal("Failed to create bot API: ", err)
	}

	bot.NewBot(telegramBot, svc, gw, generator, logger, &cfg).Start()
}
