package models

import "time"

// Payment statuses. A payment only ever moves pending -> succeeded.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
)

// Payout statuses. Both completed and rejected are terminal.
const (
	PayoutStatusPending   = "pending"
	PayoutStatusCompleted = "completed"
	PayoutStatusRejected  = "rejected"
)

type User struct {
	TelegramID    int64  `gorm:"primaryKey" json:"telegram_id"`
	Username      string `json:"username"`
	CreditBalance int64  `gorm:"default:0" json:"credit_balance"`

	ReferralCode        string `gorm:"uniqueIndex" json:"referral_code"`
	ReferredBy          *int64 `gorm:"index" json:"referred_by,omitempty"`
	ReferralsCount      int64  `gorm:"default:0" json:"referrals_count"`
	ReferralBalance     int64  `gorm:"default:0" json:"referral_balance"`
	ReferralTotalEarned int64  `gorm:"default:0" json:"referral_total_earned"`

	PayoutMethod  string `json:"payout_method"`
	PayoutDetails string `json:"payout_details"`

	TotalGenerations   int64 `gorm:"default:0" json:"total_generations"`
	SuccessfulPayments int64 `gorm:"default:0" json:"successful_payments"`
	TotalSpent         int64 `gorm:"default:0" json:"total_spent"`

	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registered_at"`
}

// Package is a purchasable catalog entry, read-only to the ledger.
type Package struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Credits   int64  `json:"credits"`
	Price     int64  `json:"price"`
	Name      string `json:"name"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
}

type Payment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ExternalID       string    `gorm:"uniqueIndex;not null" json:"external_id"`
	UserID           int64     `gorm:"index" json:"user_id"`
	Amount           int64     `json:"amount"`
	CreditsRequested int64     `json:"credits_requested"`
	Status           string    `gorm:"default:pending" json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// ReferralEarning is an immutable ledger row; the unique index on PaymentID
// guarantees at most one commission per payment.
type ReferralEarning struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ReferrerID        int64     `gorm:"index" json:"referrer_id"`
	ReferredID        int64     `json:"referred_id"`
	PaymentID         string    `gorm:"uniqueIndex;not null" json:"payment_id"`
	Amount            int64     `json:"amount"`
	CommissionPercent int64     `json:"commission_percent"`
	Earnings          int64     `json:"earnings"`
	CreditsGiven      int64     `json:"credits_given"`
	CreatedAt         time.Time `json:"created_at"`
}

// ReferralExchange records a conversion of referral balance into credits.
type ReferralExchange struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"index" json:"user_id"`
	AmountSpent  int64     `json:"amount_spent"`
	CreditsGiven int64     `json:"credits_given"`
	RateUsed     int64     `json:"rate_used"`
	CreatedAt    time.Time `json:"created_at"`
}

// Payout funds are debited from referral_balance at request time, not at
// resolution time.
type Payout struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      int64      `gorm:"index" json:"user_id"`
	Amount      int64      `json:"amount"`
	Method      string     `json:"method"`
	Details     string     `json:"details"`
	Status      string     `gorm:"default:pending" json:"status"`
	Note        string     `json:"note"`
	RequestedAt time.Time  `gorm:"autoCreateTime" json:"requested_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ProcessedBy *int64     `json:"processed_by,omitempty"`
}

type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
