package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mkarpenko/interio_bot/internal/models"
)

func payoutUser(balance int64) *models.User {
	return &models.User{
		TelegramID:          1,
		ReferralCode:        "c1",
		ReferralBalance:     balance,
		ReferralTotalEarned: balance,
		PayoutMethod:        "card",
		PayoutDetails:       "4276000011112222",
	}
}

func TestRequestPayout(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, payoutUser(600))

	payout, err := svc.RequestPayout(ctx, 1, 500)
	if err != nil {
		t.Fatalf("RequestPayout failed: %v", err)
	}
	if payout.Status != models.PayoutStatusPending {
		t.Errorf("expected pending payout, got %q", payout.Status)
	}
	if payout.Amount != 500 || payout.Method != "card" {
		t.Errorf("unexpected payout: %+v", payout)
	}

	// The amount is reserved at request time.
	user := loadUser(t, db, 1)
	if user.ReferralBalance != 100 {
		t.Errorf("expected referral balance 100 after reservation, got %d", user.ReferralBalance)
	}
}

func TestRequestPayoutBelowMinimum(t *testing.T) {
	svc, db, _ := newTestService(t)
	createUser(t, db, payoutUser(600))

	_, err := svc.RequestPayout(context.Background(), 1, 499)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestRequestPayoutWithoutDetails(t *testing.T) {
	svc, db, _ := newTestService(t)
	createUser(t, db, &models.User{TelegramID: 1, ReferralCode: "c1", ReferralBalance: 600})

	_, err := svc.RequestPayout(context.Background(), 1, 500)
	if !errors.Is(err, ErrPayoutNotConfigured) {
		t.Errorf("expected ErrPayoutNotConfigured, got %v", err)
	}
}

func TestRequestPayoutInsufficientFunds(t *testing.T) {
	svc, db, _ := newTestService(t)
	createUser(t, db, payoutUser(400))

	_, err := svc.RequestPayout(context.Background(), 1, 500)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}

	user := loadUser(t, db, 1)
	if user.ReferralBalance != 400 {
		t.Errorf("failed request changed the balance: %d", user.ReferralBalance)
	}
}

// Overlapping requests cannot reserve more than the balance holds.
func TestRequestPayoutSequentialReservation(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, payoutUser(900))

	if _, err := svc.RequestPayout(ctx, 1, 500); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if _, err := svc.RequestPayout(ctx, 1, 500); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("second request: expected ErrInsufficientFunds, got %v", err)
	}

	user := loadUser(t, db, 1)
	if user.ReferralBalance != 400 {
		t.Errorf("expected referral balance 400, got %d", user.ReferralBalance)
	}
}

func TestResolvePayoutCompleted(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, payoutUser(600))

	payout, err := svc.RequestPayout(ctx, 1, 500)
	if err != nil {
		t.Fatalf("RequestPayout failed: %v", err)
	}

	resolved, err := svc.ResolvePayout(ctx, payout.ID, models.PayoutStatusCompleted, 42, "done")
	if err != nil {
		t.Fatalf("ResolvePayout failed: %v", err)
	}
	if resolved.Status != models.PayoutStatusCompleted {
		t.Errorf("expected completed, got %q", resolved.Status)
	}
	if resolved.ProcessedBy == nil || *resolved.ProcessedBy != 42 {
		t.Errorf("processed_by not recorded: %v", resolved.ProcessedBy)
	}
	if resolved.ProcessedAt == nil {
		t.Error("processed_at not recorded")
	}

	// Settling the same payout twice must fail.
	_, err = svc.ResolvePayout(ctx, payout.ID, models.PayoutStatusRejected, 42, "")
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Errorf("expected ErrAlreadyProcessed, got %v", err)
	}
	reloaded, _ := svc.GetPayoutByID(ctx, payout.ID)
	if reloaded.Status != models.PayoutStatusCompleted {
		t.Errorf("terminal status overwritten: %q", reloaded.Status)
	}
}

func TestResolvePayoutRejectedForfeits(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, payoutUser(600))

	payout, err := svc.RequestPayout(ctx, 1, 500)
	if err != nil {
		t.Fatalf("RequestPayout failed: %v", err)
	}
	if _, err := svc.ResolvePayout(ctx, payout.ID, models.PayoutStatusRejected, 42, "fraud"); err != nil {
		t.Fatalf("ResolvePayout failed: %v", err)
	}

	// Refunds are off by default: the reserved amount stays gone.
	user := loadUser(t, db, 1)
	if user.ReferralBalance != 100 {
		t.Errorf("expected forfeited balance 100, got %d", user.ReferralBalance)
	}
}

func TestResolvePayoutRejectedRefunds(t *testing.T) {
	svc, db, cfg := newTestService(t)
	cfg.RefundRejectedPayouts = true
	ctx := context.Background()
	createUser(t, db, payoutUser(600))

	payout, err := svc.RequestPayout(ctx, 1, 500)
	if err != nil {
		t.Fatalf("RequestPayout failed: %v", err)
	}
	if _, err := svc.ResolvePayout(ctx, payout.ID, models.PayoutStatusRejected, 42, ""); err != nil {
		t.Fatalf("ResolvePayout failed: %v", err)
	}

	user := loadUser(t, db, 1)
	if user.ReferralBalance != 600 {
		t.Errorf("expected refunded balance 600, got %d", user.ReferralBalance)
	}
	// A refund is not new income.
	if user.ReferralTotalEarned != 600 {
		t.Errorf("refund inflated total earned: %d", user.ReferralTotalEarned)
	}
}

func TestResolvePayoutInvalidStatus(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, payoutUser(600))

	payout, err := svc.RequestPayout(ctx, 1, 500)
	if err != nil {
		t.Fatalf("RequestPayout failed: %v", err)
	}
	if _, err := svc.ResolvePayout(ctx, payout.ID, "pending", 42, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.ResolvePayout(ctx, 999, models.PayoutStatusCompleted, 42, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown payout: expected ErrNotFound, got %v", err)
	}
}

func TestSetPayoutDetails(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, &models.User{TelegramID: 1, ReferralCode: "c1"})

	if err := svc.SetPayoutDetails(ctx, 1, "sbp", "+79991234567"); err != nil {
		t.Fatalf("SetPayoutDetails failed: %v", err)
	}
	user := loadUser(t, db, 1)
	if user.PayoutMethod != "sbp" || user.PayoutDetails != "+79991234567" {
		t.Errorf("details not stored: %q %q", user.PayoutMethod, user.PayoutDetails)
	}

	if err := svc.SetPayoutDetails(ctx, 1, "", "x"); !errors.Is(err, ErrValidation) {
		t.Errorf("empty method: expected ErrValidation, got %v", err)
	}
}
