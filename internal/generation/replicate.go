package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mkarpenko/interio_bot/utils"
)

const replicateAPIURL = "https://api.replicate.com/v1"

// Client runs image generations on Replicate. A prediction is created and
// then polled until it leaves the queue; the credit for the generation is
// charged before Generate is called, not here.
type Client struct {
	baseURL      string
	token        string
	modelVersion string
	client       *http.Client
	logger       *utils.Logger
}

func NewClient(token, modelVersion string, logger *utils.Logger) *Client {
	return &Client{
		baseURL:      replicateAPIURL,
		token:        token,
		modelVersion: modelVersion,
		client:       &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

type prediction struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Output []string `json:"output"`
	Error  string   `json:"error"`
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body := map[string]interface{}{
		"version": c.modelVersion,
		"input": map[string]string{
			"prompt": prompt,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predictions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", "application/json")

	pred, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("failed to start generation: %w", err)
	}

	c.logger.Infof("Started generation %s", pred.ID)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		pred, err = c.queryPrediction(ctx, pred.ID)
		if err != nil {
			return "", err
		}

		switch pred.Status {
		case "succeeded":
			if len(pred.Output) == 0 {
				return "", fmt.Errorf("generation %s produced no output", pred.ID)
			}
			return pred.Output[0], nil
		case "failed", "canceled":
			return "", fmt.Errorf("generation %s %s: %s", pred.ID, pred.Status, pred.Error)
		}
	}
}

func (c *Client) queryPrediction(ctx context.Context, id string) (*prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/predictions/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.token)

	pred, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation %s: %w", id, err)
	}
	return pred, nil
}

func (c *Client) do(req *http.Request) (*prediction, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("replicate returned status %d: %s", resp.StatusCode, string(body))
	}

	var pred prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, fmt.Errorf("invalid replicate response: %w", err)
	}
	return &pred, nil
}
