package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkarpenko/interio_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateReferralEarning(ctx context.Context, tx *gorm.DB, earning *models.ReferralEarning) error {
	if err := r.conn(tx).WithContext(ctx).Create(earning).Error; err != nil {
		return fmt.Errorf("failed to create referral earning: %w", err)
	}
	return nil
}

func (r *Repository) GetEarningByPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*models.ReferralEarning, error) {
	var earning models.ReferralEarning
	err := r.conn(tx).WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&earning).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get referral earning: %w", err)
	}

	return &earning, nil
}

func (r *Repository) ListEarningsByReferrer(ctx context.Context, referrerID int64, limit int) ([]models.ReferralEarning, error) {
	var earnings []models.ReferralEarning
	err := r.db.WithContext(ctx).
		Where("referrer_id = ?", referrerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&earnings).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list referral earnings: %w", err)
	}
	return earnings, nil
}
