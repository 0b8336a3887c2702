package repository

import (
	"context"
	"fmt"

	"github.com/mkarpenko/interio_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateReferralExchange(ctx context.Context, tx *gorm.DB, exchange *models.ReferralExchange) error {
	if err := r.conn(tx).WithContext(ctx).Create(exchange).Error; err != nil {
		return fmt.Errorf("failed to create referral exchange: %w", err)
	}
	return nil
}

func (r *Repository) ListExchangesByUser(ctx context.Context, userID int64, limit int) ([]models.ReferralExchange, error) {
	var exchanges []models.ReferralExchange
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&exchanges).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list referral exchanges: %w", err)
	}
	return exchanges, nil
}
