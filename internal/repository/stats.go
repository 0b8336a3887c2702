package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mkarpenko/interio_bot/internal/models"
)

// Read-only aggregates for the admin screens. No invariants here.

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *Repository) CountUsersSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("registered_at >= ?", since).
		Count(&count).
		Error
	return count, err
}

func (r *Repository) SumRevenue(ctx context.Context, since time.Time) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("status = ? AND created_at >= ?", models.PaymentStatusSucceeded, since).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return sum, nil
}

// ReferralProgramTotals sums the whole referral ledger: rows, earnings and
// credits handed out as commission bonuses.
func (r *Repository) ReferralProgramTotals(ctx context.Context) (count, earnings, credits int64, err error) {
	row := struct {
		Count    int64
		Earnings int64
		Credits  int64
	}{}
	err = r.db.WithContext(ctx).
		Model(&models.ReferralEarning{}).
		Select("COUNT(*) AS count, COALESCE(SUM(earnings), 0) AS earnings, COALESCE(SUM(credits_given), 0) AS credits").
		Scan(&row).
		Error
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to sum referral earnings: %w", err)
	}
	return row.Count, row.Earnings, row.Credits, nil
}

func (r *Repository) SumPendingPayouts(ctx context.Context) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("status = ?", models.PayoutStatusPending).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum pending payouts: %w", err)
	}
	return sum, nil
}
