package service

import (
	"context"
	"fmt"

	"github.com/mkarpenko/interio_bot/internal/models"
)

// ReferralStats is the user-facing summary of the referral program.
type ReferralStats struct {
	Code        string
	Count       int64
	Balance     int64
	TotalEarned int64
	Earnings    []models.ReferralEarning
}

func (s *Service) LookupByReferralCode(ctx context.Context, code string) (*models.User, error) {
	return s.repo.GetUserByReferralCode(ctx, code)
}

// AssignReferrer links a user to the owner of referralCode. The link is
// one-time: a second call is an error, not a no-op, since it signals a
// logic fault upstream. When the referral program is enabled both sides
// receive the configured signup bonus.
func (s *Service) AssignReferrer(ctx context.Context, userID int64, referralCode string) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if user.ReferredBy != nil {
		return fmt.Errorf("%w: user %d already has a referrer", ErrReferralIneligible, userID)
	}

	referrer, err := s.repo.GetUserByReferralCode(ctx, referralCode)
	if err != nil {
		return err
	}
	if referrer == nil {
		return fmt.Errorf("%w: unknown referral code", ErrReferralIneligible)
	}
	if referrer.TelegramID == userID {
		return fmt.Errorf("%w: cannot use own referral code", ErrReferralIneligible)
	}

	enabled, err := s.referralEnabled(ctx)
	if err != nil {
		return err
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			s.repo.Rollback(tx)
		}
	}()

	var rows int64
	rows, err = s.repo.SetReferrer(ctx, tx, userID, referrer.TelegramID)
	if err != nil {
		return err
	}
	if rows == 0 {
		// Lost a race against another assignment for the same user.
		err = fmt.Errorf("%w: user %d already has a referrer", ErrReferralIneligible, userID)
		return err
	}

	if err = s.repo.IncrementReferralsCount(ctx, tx, referrer.TelegramID); err != nil {
		return err
	}

	if enabled {
		var invitedBonus, inviterBonus int64
		invitedBonus, err = s.settingInt(ctx, models.SettingBonusInvited)
		if err != nil {
			return err
		}
		inviterBonus, err = s.settingInt(ctx, models.SettingBonusInviter)
		if err != nil {
			return err
		}

		if invitedBonus > 0 {
			if _, err = s.repo.CreditBalance(ctx, tx, userID, invitedBonus); err != nil {
				return err
			}
		}
		if inviterBonus > 0 {
			if _, err = s.repo.CreditBalance(ctx, tx, referrer.TelegramID, inviterBonus); err != nil {
				return err
			}
		}
	}

	if err = s.repo.Commit(tx); err != nil {
		return err
	}

	s.logger.Infof("User %d linked to referrer %d via code %s", userID, referrer.TelegramID, referralCode)
	return nil
}

func (s *Service) GetReferralStats(ctx context.Context, userID int64) (*ReferralStats, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	earnings, err := s.repo.ListEarningsByReferrer(ctx, userID, 20)
	if err != nil {
		return nil, err
	}

	return &ReferralStats{
		Code:        user.ReferralCode,
		Count:       user.ReferralsCount,
		Balance:     user.ReferralBalance,
		TotalEarned: user.ReferralTotalEarned,
		Earnings:    earnings,
	}, nil
}
