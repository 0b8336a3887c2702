package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mkarpenko/interio_bot/internal/models"
)

func TestConvertToCredits(t *testing.T) {
	cases := []struct {
		amount, rate, want int64
	}{
		{0, 29, 0},
		{-10, 29, 0},
		{100, 0, 0},
		{29, 29, 1},
		{58, 29, 2},
		{87, 29, 3},
		// A positive spend below one rate unit still yields one credit.
		{1, 29, 1},
		{28, 29, 1},
		{30, 29, 1},
	}
	for _, c := range cases {
		if got := ConvertToCredits(c.amount, c.rate); got != c.want {
			t.Errorf("ConvertToCredits(%d, %d) = %d, want %d", c.amount, c.rate, got, c.want)
		}
	}
}

func TestExchange(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, &models.User{TelegramID: 1, ReferralCode: "c1", ReferralBalance: 100, ReferralTotalEarned: 100})

	exchange, err := svc.Exchange(ctx, 1, 3)
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if exchange.AmountSpent != 87 || exchange.CreditsGiven != 3 || exchange.RateUsed != 29 {
		t.Errorf("unexpected exchange record: %+v", exchange)
	}

	user := loadUser(t, db, 1)
	if user.ReferralBalance != 13 {
		t.Errorf("expected referral balance 13, got %d", user.ReferralBalance)
	}
	if user.CreditBalance != 3 {
		t.Errorf("expected credit balance 3, got %d", user.CreditBalance)
	}
	// Exchanging spends the balance but never the lifetime total.
	if user.ReferralTotalEarned != 100 {
		t.Errorf("total earned changed by exchange: %d", user.ReferralTotalEarned)
	}

	var count int64
	db.Model(&models.ReferralExchange{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 exchange row, got %d", count)
	}
}

func TestExchangeInsufficientFunds(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, &models.User{TelegramID: 1, ReferralCode: "c1", ReferralBalance: 28})

	// One credit costs 29.
	_, err := svc.Exchange(ctx, 1, 1)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	user := loadUser(t, db, 1)
	if user.ReferralBalance != 28 || user.CreditBalance != 0 {
		t.Errorf("failed exchange moved balances: referral=%d credits=%d", user.ReferralBalance, user.CreditBalance)
	}
}

// A credit request large enough to wrap cost negative must be rejected,
// not pass the balance guard and mint money.
func TestExchangeRejectsOverflowingRequest(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, &models.User{TelegramID: 1, ReferralCode: "c1", ReferralBalance: 29})

	// 319000000000000000 * 29 wraps past MaxInt64.
	_, err := svc.Exchange(ctx, 1, 319000000000000000)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	user := loadUser(t, db, 1)
	if user.ReferralBalance != 29 {
		t.Errorf("referral balance changed: %d", user.ReferralBalance)
	}
	if user.CreditBalance != 0 {
		t.Errorf("credits minted: %d", user.CreditBalance)
	}
}

// A zero rate stored behind the validation layer (old database, manual
// write) must not turn exchanges into free credits.
func TestExchangeRejectsZeroRate(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, &models.User{TelegramID: 1, ReferralCode: "c1"})

	if err := db.Create(&models.Setting{Key: models.SettingExchangeRate, Value: "0"}).Error; err != nil {
		t.Fatalf("failed to store setting: %v", err)
	}

	_, err := svc.Exchange(ctx, 1, 1000)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	user := loadUser(t, db, 1)
	if user.CreditBalance != 0 {
		t.Errorf("credits minted at zero rate: %d", user.CreditBalance)
	}
}

func TestExchangeValidation(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, &models.User{TelegramID: 1, ReferralCode: "c1", ReferralBalance: 100})

	if _, err := svc.Exchange(ctx, 1, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("zero credits: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Exchange(ctx, 1, -2); !errors.Is(err, ErrValidation) {
		t.Errorf("negative credits: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Exchange(ctx, 999, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user: expected ErrNotFound, got %v", err)
	}
}
