package service

import (
	"context"
	"fmt"

	"github.com/mkarpenko/interio_bot/internal/models"
)

// SetPayoutDetails stores the user's payout method and details; both are
// required before a payout can be requested.
func (s *Service) SetPayoutDetails(ctx context.Context, userID int64, method, details string) error {
	if method == "" || details == "" {
		return fmt.Errorf("%w: method and details are required", ErrValidation)
	}
	return s.repo.SetPayoutDetails(ctx, userID, method, details)
}

// RequestPayout opens a withdrawal request. The amount is reserved
// immediately: referral_balance is debited at request time, so overlapping
// requests can never exceed the true balance.
func (s *Service) RequestPayout(ctx context.Context, userID int64, amount int64) (*models.Payout, error) {
	minPayout, err := s.settingInt(ctx, models.SettingMinPayout)
	if err != nil {
		return nil, err
	}
	if amount < minPayout {
		return nil, fmt.Errorf("%w: minimum payout is %d", ErrValidation, minPayout)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if user.PayoutMethod == "" || user.PayoutDetails == "" {
		return nil, ErrPayoutNotConfigured
	}
	if amount > user.ReferralBalance {
		return nil, fmt.Errorf("%w: have %d, requested %d", ErrInsufficientFunds, user.ReferralBalance, amount)
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			s.repo.Rollback(tx)
		}
	}()

	var rows int64
	rows, err = s.repo.DebitReferralBalance(ctx, tx, userID, amount)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		err = fmt.Errorf("%w: requested %d", ErrInsufficientFunds, amount)
		return nil, err
	}

	payout := &models.Payout{
		UserID:  userID,
		Amount:  amount,
		Method:  user.PayoutMethod,
		Details: user.PayoutDetails,
		Status:  models.PayoutStatusPending,
	}
	if err = s.repo.CreatePayout(ctx, tx, payout); err != nil {
		return nil, err
	}

	if err = s.repo.Commit(tx); err != nil {
		return nil, err
	}

	s.logger.Infof("User %d requested payout #%d of %d RUB", userID, payout.ID, amount)
	return payout, nil
}

func (s *Service) GetPendingPayouts(ctx context.Context) ([]*models.Payout, error) {
	return s.repo.GetPendingPayouts(ctx)
}

func (s *Service) GetPayoutByID(ctx context.Context, id uint) (*models.Payout, error) {
	return s.repo.GetPayoutByID(ctx, id)
}

// ResolvePayout moves a pending payout to completed or rejected. Whether a
// rejection refunds the reserved amount is a deployment policy
// (REFUND_REJECTED_PAYOUTS); with the policy off rejected funds are
// forfeited.
func (s *Service) ResolvePayout(ctx context.Context, payoutID uint, status string, adminID int64, note string) (*models.Payout, error) {
	if status != models.PayoutStatusCompleted && status != models.PayoutStatusRejected {
		return nil, fmt.Errorf("%w: invalid payout status %q", ErrValidation, status)
	}

	payout, err := s.repo.GetPayoutByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, ErrNotFound
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			s.repo.Rollback(tx)
		}
	}()

	var rows int64
	rows, err = s.repo.MarkPayoutProcessed(ctx, tx, payoutID, status, adminID, note)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		err = fmt.Errorf("%w: payout #%d", ErrAlreadyProcessed, payoutID)
		return nil, err
	}

	if status == models.PayoutStatusRejected && s.config.RefundRejectedPayouts {
		if _, err = s.repo.RefundReferralBalance(ctx, tx, payout.UserID, payout.Amount); err != nil {
			return nil, err
		}
	}

	if err = s.repo.Commit(tx); err != nil {
		return nil, err
	}

	s.logger.Infof("Payout #%d resolved as %s by admin %d", payoutID, status, adminID)
	return s.repo.GetPayoutByID(ctx, payoutID)
}
