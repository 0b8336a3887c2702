package service

import (
	"context"
	"fmt"

	"github.com/mkarpenko/interio_bot/internal/models"
)

// CreatePendingPayment records a purchase that was just opened with the
// payment gateway. externalID is the gateway's id for the charge.
func (s *Service) CreatePendingPayment(ctx context.Context, userID int64, externalID string, amount, credits int64) (*models.Payment, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: empty external payment id", ErrValidation)
	}
	if amount <= 0 || credits <= 0 {
		return nil, fmt.Errorf("%w: amount and credits must be positive", ErrValidation)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	payment := &models.Payment{
		ExternalID:       externalID,
		UserID:           userID,
		Amount:           amount,
		CreditsRequested: credits,
		Status:           models.PaymentStatusPending,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Infof("Created pending payment %s for user %d: %d RUB / %d credits",
		externalID, userID, amount, credits)
	return payment, nil
}

func (s *Service) GetLastPendingPayment(ctx context.Context, userID int64) (*models.Payment, error) {
	return s.repo.GetLastPendingPayment(ctx, userID)
}

// ConfirmPayment is the idempotency boundary of the whole ledger. It is
// safe to call any number of times and from concurrent callers (webhook
// retry racing a manual "check payment" poll): the pending->succeeded flip
// inside the transaction decides a single winner, and only the winner
// credits the buyer and accrues commission. The returned bool reports
// whether this call performed the crediting.
//
// A gatewayStatus other than succeeded changes nothing; the payment stays
// pending and the caller may confirm again later.
func (s *Service) ConfirmPayment(ctx context.Context, externalID, gatewayStatus string) (*models.Payment, bool, error) {
	payment, err := s.repo.GetPaymentByExternalID(ctx, externalID)
	if err != nil {
		return nil, false, err
	}
	if payment == nil {
		return nil, false, ErrNotFound
	}
	if payment.Status == models.PaymentStatusSucceeded {
		return payment, false, nil
	}
	if gatewayStatus != models.PaymentStatusSucceeded {
		return payment, false, nil
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if err != nil {
			s.repo.Rollback(tx)
		}
	}()

	var rows int64
	rows, err = s.repo.MarkPaymentSucceeded(ctx, tx, externalID)
	if err != nil {
		return nil, false, err
	}
	if rows == 0 {
		// A concurrent confirmation won the flip; observe and no-op.
		s.repo.Rollback(tx)
		settled, getErr := s.repo.GetPaymentByExternalID(ctx, externalID)
		if getErr != nil {
			return nil, false, getErr
		}
		return settled, false, nil
	}

	rows, err = s.repo.CreditBalance(ctx, tx, payment.UserID, payment.CreditsRequested)
	if err != nil {
		return nil, false, err
	}
	if rows == 0 {
		err = fmt.Errorf("%w: payment %s references unknown user %d", ErrNotFound, externalID, payment.UserID)
		return nil, false, err
	}

	if err = s.repo.IncrementPurchaseStats(ctx, tx, payment.UserID, payment.Amount); err != nil {
		return nil, false, err
	}

	if err = s.accrueCommission(ctx, tx, payment); err != nil {
		return nil, false, err
	}

	if err = s.repo.Commit(tx); err != nil {
		return nil, false, err
	}

	payment.Status = models.PaymentStatusSucceeded
	s.logger.Infof("Payment %s confirmed: +%d credits for user %d", externalID, payment.CreditsRequested, payment.UserID)
	return payment, true, nil
}
