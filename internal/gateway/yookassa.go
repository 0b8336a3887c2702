package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mkarpenko/interio_bot/utils"
)

const yookassaAPIURL = "https://api.yookassa.ru/v3"

// YooKassa is the production Gateway implementation over the YooKassa REST
// API. Requests carry a fresh Idempotence-Key; duplicate webhook delivery is
// still possible and is handled by the ledger, not here.
type YooKassa struct {
	shopID    string
	secretKey string
	returnURL string
	client    *http.Client
	logger    *utils.Logger
}

func NewYooKassa(shopID, secretKey, returnURL string, logger *utils.Logger) *YooKassa {
	return &YooKassa{
		shopID:    shopID,
		secretKey: secretKey,
		returnURL: returnURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

type yookassaPayment struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Confirmation struct {
		ConfirmationURL string `json:"confirmation_url"`
	} `json:"confirmation"`
}

func (y *YooKassa) Charge(ctx context.Context, amount int64, description string, meta Metadata) (*Charge, error) {
	body := map[string]interface{}{
		"amount": map[string]string{
			"value":    fmt.Sprintf("%d.00", amount),
			"currency": "RUB",
		},
		"capture": true,
		"confirmation": map[string]string{
			"type":       "redirect",
			"return_url": y.returnURL,
		},
		"description": description,
		"metadata": map[string]string{
			"user_id": strconv.FormatInt(meta.UserID, 10),
			"credits": strconv.FormatInt(meta.Credits, 10),
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, yookassaAPIURL+"/payments", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(y.shopID, y.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.NewString())

	payment, err := y.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	y.logger.Infof("Opened payment %s for user %d: %d RUB", payment.ID, meta.UserID, amount)
	return &Charge{
		ExternalID:  payment.ID,
		CheckoutURL: payment.Confirmation.ConfirmationURL,
		Status:      payment.Status,
	}, nil
}

func (y *YooKassa) QueryStatus(ctx context.Context, externalID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, yookassaAPIURL+"/payments/"+externalID, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(y.shopID, y.secretKey)

	payment, err := y.do(req)
	if err != nil {
		return "", fmt.Errorf("failed to query payment %s: %w", externalID, err)
	}
	return payment.Status, nil
}

func (y *YooKassa) do(req *http.Request) (*yookassaPayment, error) {
	resp, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	var payment yookassaPayment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("invalid gateway response: %w", err)
	}
	return &payment, nil
}
