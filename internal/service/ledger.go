package service

import (
	"context"
	"fmt"
)

// Credit increments the user's spendable credit balance.
func (s *Service) Credit(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: credit amount must be positive", ErrValidation)
	}

	rows, err := s.repo.CreditBalance(ctx, nil, userID, amount)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Debit decrements the credit balance only when the current balance covers
// the amount. The conditional update in the repository keeps the balance
// from ever going negative, also when a debit races a purchase confirmation.
func (s *Service) Debit(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: debit amount must be positive", ErrValidation)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	rows, err := s.repo.DebitBalance(ctx, nil, userID, amount)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

func (s *Service) GetBalance(ctx context.Context, userID int64) (int64, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrNotFound
	}
	return user.CreditBalance, nil
}

// SpendGeneration charges one credit for a generation and bumps the usage
// counter. A failed debit blocks the generation entirely.
func (s *Service) SpendGeneration(ctx context.Context, userID int64) error {
	if err := s.Debit(ctx, userID, 1); err != nil {
		return err
	}
	if err := s.repo.IncrementGenerations(ctx, nil, userID); err != nil {
		s.logger.Errorf("Failed to count generation for user %d: %v", userID, err)
	}
	return nil
}
