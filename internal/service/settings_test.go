package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mkarpenko/interio_bot/internal/models"
)

func TestSettingDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// An empty settings table serves the compiled-in defaults.
	rate, err := svc.ExchangeRate(ctx)
	if err != nil {
		t.Fatalf("ExchangeRate failed: %v", err)
	}
	if rate != 29 {
		t.Errorf("expected default rate 29, got %d", rate)
	}

	minPayout, err := svc.MinPayout(ctx)
	if err != nil {
		t.Fatalf("MinPayout failed: %v", err)
	}
	if minPayout != 500 {
		t.Errorf("expected default min payout 500, got %d", minPayout)
	}
}

func TestSetSetting(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SetSetting(ctx, models.SettingExchangeRate, "50"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	rate, _ := svc.ExchangeRate(ctx)
	if rate != 50 {
		t.Errorf("expected rate 50, got %d", rate)
	}

	// Overwrite works too.
	if err := svc.SetSetting(ctx, models.SettingExchangeRate, "40"); err != nil {
		t.Fatalf("SetSetting overwrite failed: %v", err)
	}
	rate, _ = svc.ExchangeRate(ctx)
	if rate != 40 {
		t.Errorf("expected rate 40, got %d", rate)
	}
}

func TestSetSettingValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SetSetting(ctx, "no_such_key", "1"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown key: expected ErrValidation, got %v", err)
	}
	if err := svc.SetSetting(ctx, models.SettingMinPayout, "abc"); !errors.Is(err, ErrValidation) {
		t.Errorf("non-numeric value: expected ErrValidation, got %v", err)
	}
	if err := svc.SetSetting(ctx, models.SettingMinPayout, "-5"); !errors.Is(err, ErrValidation) {
		t.Errorf("negative value: expected ErrValidation, got %v", err)
	}
	if err := svc.SetSetting(ctx, models.SettingExchangeRate, "0"); !errors.Is(err, ErrValidation) {
		t.Errorf("zero exchange rate: expected ErrValidation, got %v", err)
	}
	// Zero stays legal for settings that are not divisors.
	if err := svc.SetSetting(ctx, models.SettingCommissionPercent, "0"); err != nil {
		t.Errorf("zero commission percent rejected: %v", err)
	}
}

func TestGetAllSettings(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SetSetting(ctx, models.SettingCommissionPercent, "15"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	settings, err := svc.GetAllSettings(ctx)
	if err != nil {
		t.Fatalf("GetAllSettings failed: %v", err)
	}
	if settings[models.SettingCommissionPercent] != "15" {
		t.Errorf("stored value not returned: %q", settings[models.SettingCommissionPercent])
	}
	// Untouched keys fall back to defaults.
	if settings[models.SettingWelcomeBonus] != "3" {
		t.Errorf("default not merged: %q", settings[models.SettingWelcomeBonus])
	}
}
