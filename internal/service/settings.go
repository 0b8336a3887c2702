package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mkarpenko/interio_bot/internal/models"
)

func (s *Service) GetSetting(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

func (s *Service) GetAllSettings(ctx context.Context) (map[string]string, error) {
	return s.repo.GetAllSettings(ctx)
}

// SetSetting writes a tunable parameter. Numeric keys are validated so a
// typo in an admin command cannot poison later reads.
func (s *Service) SetSetting(ctx context.Context, key, value string) error {
	if _, known := models.DefaultSettings[key]; !known {
		return fmt.Errorf("%w: unknown setting %q", ErrValidation, key)
	}

	if key != models.SettingReferralEnabled {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: setting %s requires a non-negative integer", ErrValidation, key)
		}
		// The exchange rate is a divisor and a multiplier; zero would
		// hand out credits for free and break the exchange math.
		if key == models.SettingExchangeRate && n == 0 {
			return fmt.Errorf("%w: setting %s requires a positive integer", ErrValidation, key)
		}
	}

	return s.repo.SetSetting(ctx, key, value)
}

func (s *Service) MinPayout(ctx context.Context) (int64, error) {
	return s.settingInt(ctx, models.SettingMinPayout)
}
