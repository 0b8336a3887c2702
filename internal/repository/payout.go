package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkarpenko/interio_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreatePayout(ctx context.Context, tx *gorm.DB, payout *models.Payout) error {
	if err := r.conn(tx).WithContext(ctx).Create(payout).Error; err != nil {
		return fmt.Errorf("failed to create payout: %w", err)
	}
	return nil
}

func (r *Repository) GetPayoutByID(ctx context.Context, id uint) (*models.Payout, error) {
	var payout models.Payout
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&payout).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payout by id %d: %w", id, err)
	}
	return &payout, nil
}

func (r *Repository) GetPendingPayouts(ctx context.Context) ([]*models.Payout, error) {
	var payouts []*models.Payout
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PayoutStatusPending).
		Order("requested_at ASC").
		Find(&payouts).
		Error

	if err != nil {
		return nil, fmt.Errorf("failed to get pending payouts: %w", err)
	}
	return payouts, nil
}

func (r *Repository) ListPayoutsByUser(ctx context.Context, userID int64, limit int) ([]models.Payout, error) {
	var payouts []models.Payout
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("requested_at DESC").
		Limit(limit).
		Find(&payouts).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	return payouts, nil
}

// MarkPayoutProcessed moves a payout out of pending. The status guard keeps
// the transition one-shot: a payout already resolved is left untouched and
// zero rows are reported.
func (r *Repository) MarkPayoutProcessed(ctx context.Context, tx *gorm.DB, id uint, status string, adminID int64, note string) (int64, error) {
	now := time.Now()
	res := r.conn(tx).WithContext(ctx).
		Model(&models.Payout{}).
		Where("id = ? AND status = ?", id, models.PayoutStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"note":         note,
			"processed_at": &now,
			"processed_by": &adminID,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark payout processed: %w", res.Error)
	}
	return res.RowsAffected, nil
}
