package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mkarpenko/interio_bot/internal/models"
)

func TestConfirmPayment(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, &models.User{TelegramID: 1, ReferralCode: "c1"})

	if _, err := svc.CreatePendingPayment(ctx, 1, "pay-1", 290, 10); err != nil {
		t.Fatalf("CreatePendingPayment failed: %v", err)
	}

	payment, credited, err := svc.ConfirmPayment(ctx, "pay-1", models.PaymentStatusSucceeded)
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	if !credited {
		t.Error("first confirmation should credit")
	}
	if payment.Status != models.PaymentStatusSucceeded {
		t.Errorf("expected status succeeded, got %q", payment.Status)
	}

	user := loadUser(t, db, 1)
	if user.CreditBalance != 10 {
		t.Errorf("expected balance 10, got %d", user.CreditBalance)
	}
	if user.SuccessfulPayments != 1 || user.TotalSpent != 290 {
		t.Errorf("purchase stats not updated: payments=%d spent=%d", user.SuccessfulPayments, user.TotalSpent)
	}
}

// A webhook retry or a second "check payment" press must not credit twice.
func TestConfirmPaymentIdempotent(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, &models.User{TelegramID: 1, ReferralCode: "c1"})

	if _, err := svc.CreatePendingPayment(ctx, 1, "pay-1", 290, 10); err != nil {
		t.Fatalf("CreatePendingPayment failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		payment, credited, err := svc.ConfirmPayment(ctx, "pay-1", models.PaymentStatusSucceeded)
		if err != nil {
			t.Fatalf("confirmation %d failed: %v", i, err)
		}
		if credited != (i == 0) {
			t.Errorf("confirmation %d: credited=%v", i, credited)
		}
		if payment.Status != models.PaymentStatusSucceeded {
			t.Errorf("confirmation %d: status %q", i, payment.Status)
		}
	}

	user := loadUser(t, db, 1)
	if user.CreditBalance != 10 {
		t.Errorf("expected balance 10 after repeated confirmations, got %d", user.CreditBalance)
	}
	if user.SuccessfulPayments != 1 {
		t.Errorf("expected 1 successful payment, got %d", user.SuccessfulPayments)
	}
}

func TestConfirmPaymentNotSucceededYet(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, &models.User{TelegramID: 1, ReferralCode: "c1"})

	if _, err := svc.CreatePendingPayment(ctx, 1, "pay-1", 290, 10); err != nil {
		t.Fatalf("CreatePendingPayment failed: %v", err)
	}

	payment, credited, err := svc.ConfirmPayment(ctx, "pay-1", "waiting_for_capture")
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	if credited {
		t.Error("non-succeeded gateway status must not credit")
	}
	if payment.Status != models.PaymentStatusPending {
		t.Errorf("payment left pending state: %q", payment.Status)
	}

	// The payment stays confirmable.
	_, credited, err = svc.ConfirmPayment(ctx, "pay-1", models.PaymentStatusSucceeded)
	if err != nil {
		t.Fatalf("late confirmation failed: %v", err)
	}
	if !credited {
		t.Error("late confirmation should credit")
	}
}

func TestConfirmPaymentUnknown(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.ConfirmPayment(context.Background(), "no-such-payment", models.PaymentStatusSucceeded)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreatePendingPaymentValidation(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, &models.User{TelegramID: 1, ReferralCode: "c1"})

	if _, err := svc.CreatePendingPayment(ctx, 1, "", 290, 10); !errors.Is(err, ErrValidation) {
		t.Errorf("empty external id: expected ErrValidation, got %v", err)
	}
	if _, err := svc.CreatePendingPayment(ctx, 1, "pay-1", 0, 10); !errors.Is(err, ErrValidation) {
		t.Errorf("zero amount: expected ErrValidation, got %v", err)
	}
	if _, err := svc.CreatePendingPayment(ctx, 999, "pay-1", 290, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user: expected ErrNotFound, got %v", err)
	}
}

func TestCommissionAccrual(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	referrerID := int64(1)
	buyerID := int64(2)
	createUser(t, db, &models.User{TelegramID: referrerID, ReferralCode: "ref1"})
	createUser(t, db, &models.User{TelegramID: buyerID, ReferralCode: "ref2", ReferredBy: &referrerID})

	if _, err := svc.CreatePendingPayment(ctx, buyerID, "pay-1", 290, 10); err != nil {
		t.Fatalf("CreatePendingPayment failed: %v", err)
	}
	if _, _, err := svc.ConfirmPayment(ctx, "pay-1", models.PaymentStatusSucceeded); err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}

	// 10% of 290 = 29 RUB; at rate 29 that is 1 bonus credit.
	referrer := loadUser(t, db, referrerID)
	if referrer.ReferralBalance != 29 {
		t.Errorf("expected referral balance 29, got %d", referrer.ReferralBalance)
	}
	if referrer.ReferralTotalEarned != 29 {
		t.Errorf("expected total earned 29, got %d", referrer.ReferralTotalEarned)
	}
	if referrer.CreditBalance != 1 {
		t.Errorf("expected 1 bonus credit, got %d", referrer.CreditBalance)
	}

	var earnings []models.ReferralEarning
	if err := db.Find(&earnings).Error; err != nil {
		t.Fatalf("failed to load earnings: %v", err)
	}
	if len(earnings) != 1 {
		t.Fatalf("expected 1 earning row, got %d", len(earnings))
	}
	e := earnings[0]
	if e.ReferrerID != referrerID || e.ReferredID != buyerID || e.PaymentID != "pay-1" {
		t.Errorf("earning row misattributed: %+v", e)
	}
	if e.Earnings != 29 || e.CommissionPercent != 10 || e.CreditsGiven != 1 {
		t.Errorf("earning row amounts wrong: %+v", e)
	}

	// Re-confirming must not accrue a second commission.
	if _, _, err := svc.ConfirmPayment(ctx, "pay-1", models.PaymentStatusSucceeded); err != nil {
		t.Fatalf("repeated ConfirmPayment failed: %v", err)
	}
	var count int64
	db.Model(&models.ReferralEarning{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 earning row after repeat, got %d", count)
	}
	referrer = loadUser(t, db, referrerID)
	if referrer.ReferralBalance != 29 {
		t.Errorf("referral balance changed on repeat: %d", referrer.ReferralBalance)
	}
}

func TestCommissionSkippedWithoutReferrer(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	createUser(t, db, &models.User{TelegramID: 1, ReferralCode: "c1"})

	if _, err := svc.CreatePendingPayment(ctx, 1, "pay-1", 290, 10); err != nil {
		t.Fatalf("CreatePendingPayment failed: %v", err)
	}
	if _, _, err := svc.ConfirmPayment(ctx, "pay-1", models.PaymentStatusSucceeded); err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}

	var count int64
	db.Model(&models.ReferralEarning{}).Count(&count)
	if count != 0 {
		t.Errorf("commission accrued without a referrer: %d rows", count)
	}
}

func TestCommissionSkippedWhenDisabled(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	referrerID := int64(1)
	createUser(t, db, &models.User{TelegramID: referrerID, ReferralCode: "ref1"})
	createUser(t, db, &models.User{TelegramID: 2, ReferralCode: "ref2", ReferredBy: &referrerID})

	if err := svc.SetSetting(ctx, models.SettingReferralEnabled, "0"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	if _, err := svc.CreatePendingPayment(ctx, 2, "pay-1", 290, 10); err != nil {
		t.Fatalf("CreatePendingPayment failed: %v", err)
	}
	if _, _, err := svc.ConfirmPayment(ctx, "pay-1", models.PaymentStatusSucceeded); err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}

	var count int64
	db.Model(&models.ReferralEarning{}).Count(&count)
	if count != 0 {
		t.Errorf("commission accrued with the program disabled: %d rows", count)
	}

	// The buyer still gets the credits they paid for.
	buyer := loadUser(t, db, 2)
	if buyer.CreditBalance != 10 {
		t.Errorf("expected buyer balance 10, got %d", buyer.CreditBalance)
	}
}

func TestCommissionFloorsToZero(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	referrerID := int64(1)
	createUser(t, db, &models.User{TelegramID: referrerID, ReferralCode: "ref1"})
	createUser(t, db, &models.User{TelegramID: 2, ReferralCode: "ref2", ReferredBy: &referrerID})

	// 10% of 9 RUB floors to 0, so no earning row is written.
	if _, err := svc.CreatePendingPayment(ctx, 2, "pay-1", 9, 1); err != nil {
		t.Fatalf("CreatePendingPayment failed: %v", err)
	}
	if _, _, err := svc.ConfirmPayment(ctx, "pay-1", models.PaymentStatusSucceeded); err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}

	var count int64
	db.Model(&models.ReferralEarning{}).Count(&count)
	if count != 0 {
		t.Errorf("zero commission produced an earning row")
	}
	referrer := loadUser(t, db, referrerID)
	if referrer.ReferralBalance != 0 {
		t.Errorf("zero commission changed referral balance: %d", referrer.ReferralBalance)
	}
}
