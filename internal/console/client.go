package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Otiahaill3/Mpesa-demo/internal/ledger"
)

// InitiationError reports a payment request the backend rejected or that
// never reached it. Detail carries the server-supplied message when present.
type InitiationError struct {
	Detail string
}

func (e *InitiationError) Error() string {
	if e.Detail == "" {
		return "Payment request failed"
	}
	return e.Detail
}

// Acknowledgement is the backend confirmation that a push request was
// accepted for processing. It is not the final payment outcome.
type Acknowledgement struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	CheckoutRequestID string `json:"checkout_request_id"`
	TransactionID     string `json:"transaction_id"`
}

// Client is a thin HTTP client for the payments API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs an API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: 30 * time.Second}}
}

// Initiate submits a validated payment request and interprets the immediate
// acknowledgement. Non-2xx responses become an InitiationError carrying the
// server's detail message.
func (c *Client) Initiate(ctx context.Context, request PaymentRequest) (Acknowledgement, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return Acknowledgement{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/request-payment", bytes.NewReader(body))
	if err != nil {
		return Acknowledgement{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Acknowledgement{}, &InitiationError{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return Acknowledgement{}, &InitiationError{Detail: failure.Detail}
	}

	var ack Acknowledgement
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return Acknowledgement{}, fmt.Errorf("decode acknowledgement: %w", err)
	}
	return ack, nil
}

// Transactions fetches the complete ledger snapshot.
func (c *Client) Transactions(ctx context.Context) ([]ledger.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/transactions", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch transactions: status %d", resp.StatusCode)
	}

	var transactions []ledger.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&transactions); err != nil {
		return nil, fmt.Errorf("fetch transactions: decode: %w", err)
	}
	return transactions, nil
}

// DownloadCSV fetches the successful-transactions export payload verbatim.
func (c *Client) DownloadCSV(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/transactions/download", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		if failure.Detail != "" {
			return nil, fmt.Errorf("download export: %s", failure.Detail)
		}
		return nil, fmt.Errorf("download export: status %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download export: %w", err)
	}
	return payload, nil
}
