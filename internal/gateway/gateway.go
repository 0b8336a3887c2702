// Package gateway talks to the payment provider. The ledger never calls it:
// only the bot layer does, and only the results are handed into the ledger,
// which owns all idempotency regardless of how often the gateway reports
// success.
package gateway

import "context"

// Charge is an opened payment at the provider. ExternalID is the provider's
// id and becomes Payment.ExternalID in the ledger.
type Charge struct {
	ExternalID  string
	CheckoutURL string
	Status      string
}

// Metadata is attached to a charge so webhook deliveries can be traced back
// to the purchase.
type Metadata struct {
	UserID  int64
	Credits int64
}

type Gateway interface {
	Charge(ctx context.Context, amount int64, description string, meta Metadata) (*Charge, error)
	QueryStatus(ctx context.Context, externalID string) (string, error)
}
