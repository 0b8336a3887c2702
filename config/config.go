package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	AdminChatID      int64  `mapstructure:"ADMIN_CHAT_ID"`
	DB_URL           string `mapstructure:"DB_URL"`

	GatewayShopID    string `mapstructure:"GATEWAY_SHOP_ID"`
	GatewaySecretKey string `mapstructure:"GATEWAY_SECRET_KEY"`
	GatewayReturnURL string `mapstructure:"GATEWAY_RETURN_URL"`

	ReplicateAPIToken     string `mapstructure:"REPLICATE_API_TOKEN"`
	ReplicateModelVersion string `mapstructure:"REPLICATE_MODEL_VERSION"`

	// Whether rejecting a payout returns the reserved amount to the
	// user's referral balance. Off means rejected funds are forfeited.
	RefundRejectedPayouts bool `mapstructure:"REFUND_REJECTED_PAYOUTS"`
}

func LoadConfig(path string) (config Config, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config, fmt.Errorf("ошибка получения абсолютного пути: %w", err)
	}

	viper.AddConfigPath(filepath.Dir(absPath))
	viper.SetConfigName(filepath.Base(absPath))
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return config, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("ошибка преобразования конфига: %w", err)
	}

	return config, nil
}
