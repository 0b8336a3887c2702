package service

import (
	"context"
	"time"

	"github.com/mkarpenko/interio_bot/internal/models"
)

// AdminStats holds the read-only aggregates shown on the admin screen.
type AdminStats struct {
	TotalUsers    int64
	NewUsersToday int64
	NewUsersWeek  int64
	NewUsersMonth int64

	RevenueTotal int64
	RevenueToday int64
	RevenueWeek  int64
	RevenueMonth int64

	ReferralEarningRows   int64
	ReferralEarningsTotal int64
	ReferralCreditsGiven  int64
	PendingPayoutsSum     int64
}

func (s *Service) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	week := now.AddDate(0, 0, -7)
	month := now.AddDate(0, 0, -30)

	stats := &AdminStats{}

	var err error
	if stats.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, err
	}
	if stats.NewUsersToday, err = s.repo.CountUsersSince(ctx, today); err != nil {
		return nil, err
	}
	if stats.NewUsersWeek, err = s.repo.CountUsersSince(ctx, week); err != nil {
		return nil, err
	}
	if stats.NewUsersMonth, err = s.repo.CountUsersSince(ctx, month); err != nil {
		return nil, err
	}

	if stats.RevenueTotal, err = s.repo.SumRevenue(ctx, time.Time{}); err != nil {
		return nil, err
	}
	if stats.RevenueToday, err = s.repo.SumRevenue(ctx, today); err != nil {
		return nil, err
	}
	if stats.RevenueWeek, err = s.repo.SumRevenue(ctx, week); err != nil {
		return nil, err
	}
	if stats.RevenueMonth, err = s.repo.SumRevenue(ctx, month); err != nil {
		return nil, err
	}

	stats.ReferralEarningRows, stats.ReferralEarningsTotal, stats.ReferralCreditsGiven, err = s.repo.ReferralProgramTotals(ctx)
	if err != nil {
		return nil, err
	}

	if stats.PendingPayoutsSum, err = s.repo.SumPendingPayouts(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *Service) GetActivePackages(ctx context.Context) ([]models.Package, error) {
	return s.repo.GetActivePackages(ctx)
}

func (s *Service) GetPackageByID(ctx context.Context, id uint) (*models.Package, error) {
	return s.repo.GetPackageByID(ctx, id)
}

func (s *Service) TogglePackage(ctx context.Context, id uint) error {
	return s.repo.TogglePackage(ctx, id)
}
