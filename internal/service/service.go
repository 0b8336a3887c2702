package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/mkarpenko/interio_bot/config"
	"github.com/mkarpenko/interio_bot/internal/models"
	"github.com/mkarpenko/interio_bot/utils"
	"gorm.io/gorm"
)

type Service struct {
	repo   Repository
	config *config.Config
	logger *utils.Logger
}

type Repository interface {
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User, tx *gorm.DB) error
	SetPayoutDetails(ctx context.Context, userID int64, method, details string) error

	CreditBalance(ctx context.Context, tx *gorm.DB, userID int64, amount int64) (int64, error)
	DebitBalance(ctx context.Context, tx *gorm.DB, userID int64, amount int64) (int64, error)
	CreditReferralBalance(ctx context.Context, tx *gorm.DB, userID int64, amount int64) (int64, error)
	RefundReferralBalance(ctx context.Context, tx *gorm.DB, userID int64, amount int64) (int64, error)
	DebitReferralBalance(ctx context.Context, tx *gorm.DB, userID int64, amount int64) (int64, error)
	SetReferrer(ctx context.Context, tx *gorm.DB, userID, referrerID int64) (int64, error)
	IncrementReferralsCount(ctx context.Context, tx *gorm.DB, userID int64) error
	IncrementPurchaseStats(ctx context.Context, tx *gorm.DB, userID int64, amount int64) error
	IncrementGenerations(ctx context.Context, tx *gorm.DB, userID int64) error

	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByExternalID(ctx context.Context, externalID string) (*models.Payment, error)
	GetLastPendingPayment(ctx context.Context, userID int64) (*models.Payment, error)
	MarkPaymentSucceeded(ctx context.Context, tx *gorm.DB, externalID string) (int64, error)

	CreateReferralEarning(ctx context.Context, tx *gorm.DB, earning *models.ReferralEarning) error
	GetEarningByPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*models.ReferralEarning, error)
	ListEarningsByReferrer(ctx context.Context, referrerID int64, limit int) ([]models.ReferralEarning, error)

	CreateReferralExchange(ctx context.Context, tx *gorm.DB, exchange *models.ReferralExchange) error
	ListExchangesByUser(ctx context.Context, userID int64, limit int) ([]models.ReferralExchange, error)

	CreatePayout(ctx context.Context, tx *gorm.DB, payout *models.Payout) error
	GetPayoutByID(ctx context.Context, id uint) (*models.Payout, error)
	GetPendingPayouts(ctx context.Context) ([]*models.Payout, error)
	ListPayoutsByUser(ctx context.Context, userID int64, limit int) ([]models.Payout, error)
	MarkPayoutProcessed(ctx context.Context, tx *gorm.DB, id uint, status string, adminID int64, note string) (int64, error)

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetAllSettings(ctx context.Context) (map[string]string, error)

	GetActivePackages(ctx context.Context) ([]models.Package, error)
	GetPackageByID(ctx context.Context, id uint) (*models.Package, error)
	TogglePackage(ctx context.Context, id uint) error

	CountUsers(ctx context.Context) (int64, error)
	CountUsersSince(ctx context.Context, since time.Time) (int64, error)
	SumRevenue(ctx context.Context, since time.Time) (int64, error)
	ReferralProgramTotals(ctx context.Context) (count, earnings, credits int64, err error)
	SumPendingPayouts(ctx context.Context) (int64, error)

	BeginTransaction(ctx context.Context) (*gorm.DB, error)
	Commit(tx *gorm.DB) error
	Rollback(tx *gorm.DB)
}

func NewService(repo Repository, cfg *config.Config, logger *utils.Logger) *Service {
	return &Service{
		repo:   repo,
		config: cfg,
		logger: logger,
	}
}

func (s *Service) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.repo.GetUser(ctx, telegramID)
}

// GetOrCreateUser registers the user on first contact with the configured
// welcome bonus and a freshly generated referral code.
func (s *Service) GetOrCreateUser(ctx context.Context, telegramID int64, username string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	welcomeBonus, err := s.settingInt(ctx, models.SettingWelcomeBonus)
	if err != nil {
		return nil, err
	}

	code, err := s.generateReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	user = &models.User{
		TelegramID:    telegramID,
		Username:      username,
		CreditBalance: welcomeBonus,
		ReferralCode:  code,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Infof("Registered user %d with welcome bonus %d", telegramID, welcomeBonus)
	return user, nil
}

// generateReferralCode draws a random 8-character code and retries on the
// rare collision with an existing user.
func (s *Service) generateReferralCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		b := make([]byte, 6)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		code := base64.URLEncoding.EncodeToString(b)[:8]

		existing, err := s.repo.GetUserByReferralCode(ctx, code)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique referral code")
}

// settingInt reads a numeric setting, falling back to the compiled-in
// default on a malformed stored value.
func (s *Service) settingInt(ctx context.Context, key string) (int64, error) {
	value, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		s.logger.Warnf("Setting %s has non-numeric value %q, using default", key, value)
		n, err = strconv.ParseInt(models.DefaultSettings[key], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("no usable value for setting %s", key)
		}
	}
	return n, nil
}

func (s *Service) referralEnabled(ctx context.Context) (bool, error) {
	value, err := s.repo.GetSetting(ctx, models.SettingReferralEnabled)
	if err != nil {
		return false, err
	}
	return value == "1" || value == "true", nil
}
