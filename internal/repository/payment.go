package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkarpenko/interio_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *Repository) GetPaymentByExternalID(ctx context.Context, externalID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&payment).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

func (r *Repository) GetLastPendingPayment(ctx context.Context, userID int64) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.PaymentStatusPending).
		Order("created_at DESC").
		First(&payment).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending payment: %w", err)
	}

	return &payment, nil
}

// MarkPaymentSucceeded flips a payment from pending to succeeded. The
// status guard in the WHERE clause makes the flip the single linearization
// point for duplicate confirmations: exactly one caller sees one affected
// row, every other caller sees zero.
func (r *Repository) MarkPaymentSucceeded(ctx context.Context, tx *gorm.DB, externalID string) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.Payment{}).
		Where("external_id = ? AND status = ?", externalID, models.PaymentStatusPending).
		Update("status", models.PaymentStatusSucceeded)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark payment succeeded: %w", res.Error)
	}
	return res.RowsAffected, nil
}
