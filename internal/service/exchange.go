package service

import (
	"context"
	"fmt"
	"math"

	"github.com/mkarpenko/interio_bot/internal/models"
)

// ConvertToCredits converts referral currency into credits at the given
// rate. The division floors, but a strictly positive spend always yields at
// least one credit.
func ConvertToCredits(amount, rate int64) int64 {
	if amount <= 0 || rate <= 0 {
		return 0
	}
	credits := amount / rate
	if credits == 0 {
		credits = 1
	}
	return credits
}

func (s *Service) ExchangeRate(ctx context.Context) (int64, error) {
	return s.settingInt(ctx, models.SettingExchangeRate)
}

// Exchange converts part of the referral balance into creditsRequested
// spendable credits at the configured rate. Both balance moves and the
// ledger row land in one transaction; on any failure neither balance
// changes.
func (s *Service) Exchange(ctx context.Context, userID int64, creditsRequested int64) (*models.ReferralExchange, error) {
	if creditsRequested <= 0 {
		return nil, fmt.Errorf("%w: credits must be positive", ErrValidation)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	rate, err := s.settingInt(ctx, models.SettingExchangeRate)
	if err != nil {
		return nil, err
	}
	if rate <= 0 {
		return nil, fmt.Errorf("%w: exchange rate %d is not positive", ErrValidation, rate)
	}
	// creditsRequested is user-typed; an overflowing cost would wrap
	// negative and slip past the balance guard below.
	if creditsRequested > math.MaxInt64/rate {
		return nil, fmt.Errorf("%w: requested credits out of range", ErrValidation)
	}
	cost := creditsRequested * rate
	if cost > user.ReferralBalance {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, cost, user.ReferralBalance)
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
	rows, err = s.repo.DebitReferralBalance(ctx, tx, userID, cost)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		err = fmt.Errorf("%w: need %d", ErrInsufficientFunds, cost)
		return nil, err
	}

	if _, err = s.repo.CreditBalance(ctx, tx, userID, creditsRequested); err != nil {
		return nil, err
	}

	exchange := &models.ReferralExchange{
		UserID:       userID,
		AmountSpent:  cost,
		CreditsGiven: creditsRequested,
		RateUsed:     rate,
	}
	if err = s.repo.CreateReferralExchange(ctx, tx, exchange); err != nil {
		return nil, err
	}

	if err = s.repo.Commit(tx); err != nil {
		return nil, err
	}

	s.logger.Infof("User %d exchanged %d RUB for %d credits", userID, cost, creditsRequested)
	return exchange, nil
}
