package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkarpenko/interio_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "referral_code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by referral code: %w", err)
	}
	return &user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *Repository) UpdateUser(ctx context.Context, user *models.User, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).Save(user).Error
}

// CreditBalance adds amount to credit_balance as a single atomic update.
// Returns the number of affected rows (0 means unknown user).
func (r *Repository) CreditBalance(ctx context.Context, tx *gorm.DB, userID int64, amount int64) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ?", userID).
		Update("credit_balance", gorm.Expr("credit_balance + ?", amount))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to credit balance: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DebitBalance subtracts amount from credit_balance only when the current
// balance covers it. Zero affected rows means insufficient balance (or an
// unknown user, which the service layer rules out first).
func (r *Repository) DebitBalance(ctx context.Context, tx *gorm.DB, userID int64, amount int64) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ? AND credit_balance >= ?", userID, amount).
		Update("credit_balance", gorm.Expr("credit_balance - ?", amount))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to debit balance: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CreditReferralBalance adds earnings to both referral_balance and the
// monotone referral_total_earned counter in one update.
func (r *Repository) CreditReferralBalance(ctx context.Context, tx *gorm.DB, userID int64, amount int64) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ?", userID).
		Updates(map[string]interface{}{
			"referral_balance":      gorm.Expr("referral_balance + ?", amount),
			"referral_total_earned": gorm.Expr("referral_total_earned + ?", amount),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to credit referral balance: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RefundReferralBalance returns previously reserved funds to
// referral_balance. Unlike CreditReferralBalance it leaves the monotone
// referral_total_earned counter alone.
func (r *Repository) RefundReferralBalance(ctx context.Context, tx *gorm.DB, userID int64, amount int64) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ?", userID).
		Update("referral_balance", gorm.Expr("referral_balance + ?", amount))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to refund referral balance: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DebitReferralBalance subtracts amount from referral_balance only when the
// current balance covers it.
func (r *Repository) DebitReferralBalance(ctx context.Context, tx *gorm.DB, userID int64, amount int64) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ? AND referral_balance >= ?", userID, amount).
		Update("referral_balance", gorm.Expr("referral_balance - ?", amount))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to debit referral balance: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// SetReferrer links a user to a referrer. The referred_by IS NULL guard
// makes the link one-time even under concurrent calls.
func (r *Repository) SetReferrer(ctx context.Context, tx *gorm.DB, userID, referrerID int64) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ? AND referred_by IS NULL", userID).
		Update("referred_by", referrerID)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to set referrer: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *Repository) IncrementReferralsCount(ctx context.Context, tx *gorm.DB, userID int64) error {
	err := r.conn(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ?", userID).
		Update("referrals_count", gorm.Expr("referrals_count + 1")).
		Error
	if err != nil {
		return fmt.Errorf("failed to increment referrals count: %w", err)
	}
	return nil
}

// IncrementPurchaseStats bumps the buyer's purchase counters on a confirmed
// payment.
func (r *Repository) IncrementPurchaseStats(ctx context.Context, tx *gorm.DB, userID int64, amount int64) error {
	err := r.conn(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ?", userID).
		Updates(map[string]interface{}{
			"successful_payments": gorm.Expr("successful_payments + 1"),
			"total_spent":         gorm.Expr("total_spent + ?", amount),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to increment purchase stats: %w", err)
	}
	return nil
}

func (r *Repository) IncrementGenerations(ctx context.Context, tx *gorm.DB, userID int64) error {
	err := r.conn(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ?", userID).
		Update("total_generations", gorm.Expr("total_generations + 1")).
		Error
	if err != nil {
		return fmt.Errorf("failed to increment generations: %w", err)
	}
	return nil
}

func (r *Repository) SetPayoutDetails(ctx context.Context, userID int64, method, details string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ?", userID).
		Updates(map[string]interface{}{
			"payout_method":  method,
			"payout_details": details,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to set payout details: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d not found", userID)
	}
	return nil
}
