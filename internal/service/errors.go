package service

import "errors"

// Ledger error taxonomy. Callers branch on these with errors.Is; everything
// is surfaced synchronously and nothing is retried internally.
var (
	// ErrNotFound — unknown user, payment or payout id.
	ErrNotFound = errors.New("not found")

	// ErrValidation — non-positive amounts, amount below minimum and the like.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientBalance — a debit would push credit_balance negative.
	ErrInsufficientBalance = errors.New("insufficient credit balance")

	// ErrInsufficientFunds — an exchange or payout exceeds referral_balance.
	ErrInsufficientFunds = errors.New("insufficient referral balance")

	// ErrReferralIneligible — unknown code, self-referral or an account that
	// is already linked to a referrer.
	ErrReferralIneligible = errors.New("referral ineligible")

	// ErrPayoutNotConfigured — payout requested before details were set.
	ErrPayoutNotConfigured = errors.New("payout details not configured")

	// ErrAlreadyProcessed — the payout was resolved by someone else first.
	ErrAlreadyProcessed = errors.New("already processed")
)
