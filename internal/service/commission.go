package service

import (
	"context"

	"github.com/mkarpenko/interio_bot/internal/models"
	"gorm.io/gorm"
)

// accrueCommission credits the buyer's referrer for a confirmed payment.
// It runs inside the confirmation transaction, so the earning row, the
// referral balance and the credit bonus land atomically with the status
// flip. The unique index on referral_earnings.payment_id backs up the
// status flip as a second, independent idempotency guard.
func (s *Service) accrueCommission(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	enabled, err := s.referralEnabled(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	buyer, err := s.repo.GetUser(ctx, payment.UserID)
	if err != nil {
		return err
	}
	if buyer == nil || buyer.ReferredBy == nil {
		return nil
	}
	referrerID := *buyer.ReferredBy

	percent, err := s.settingInt(ctx, models.SettingCommissionPercent)
	if err != nil {
		return err
	}
	if percent <= 0 {
		return nil
	}

	earnings := payment.Amount * percent / 100
	if earnings <= 0 {
		return nil
	}

	existing, err := s.repo.GetEarningByPaymentID(ctx, tx, payment.ExternalID)
	if err != nil {
		return err
	}
	if existing != nil {
		s.logger.Warnf("Commission for payment %s already accrued, skipping", payment.ExternalID)
		return nil
	}

	rate, err := s.settingInt(ctx, models.SettingExchangeRate)
	if err != nil {
		return err
	}
	bonusCredits := ConvertToCredits(earnings, rate)

	if _, err := s.repo.CreditReferralBalance(ctx, tx, referrerID, earnings); err != nil {
		return err
	}
	if bonusCredits > 0 {
		if _, err := s.repo.CreditBalance(ctx, tx, referrerID, bonusCredits); err != nil {
			return err
		}
	}

	earning := &models.ReferralEarning{
		ReferrerID:        referrerID,
		ReferredID:        payment.UserID,
		PaymentID:         payment.ExternalID,
		Amount:            payment.Amount,
		CommissionPercent: percent,
		Earnings:          earnings,
		CreditsGiven:      bonusCredits,
	}
	if err := s.repo.CreateReferralEarning(ctx, tx, earning); err != nil {
		return err
	}

	s.logger.Infof("Accrued %d RUB commission (+%d bonus credits) to referrer %d for payment %s",
		earnings, bonusCredits, referrerID, payment.ExternalID)
	return nil
}
