package daraja

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Otiahaill3/Mpesa-demo/internal/config"
)

const (
	authPath    = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	tokenCacheKey = "daraja:v1:access_token"
	// tokenTTLMargin is shaved off the gateway-reported expiry so a cached
	// token is never handed out moments before it dies.
	tokenTTLMargin = 30 * time.Second

	transactionType = "CustomerPayBillOnline"
)

// Gateway represents a connector to the mobile-money push provider.
type Gateway interface {
	RequestPush(ctx context.Context, push PushRequest) (PushResult, error)
}

// PushRequest carries the fields needed to prompt a customer device.
type PushRequest struct {
	Phone       string
	Amount      int64
	OrderNumber string
	Description string
}

// PushResult captures the gateway acknowledgement of an accepted push.
type PushResult struct {
	CheckoutRequestID string
	MerchantRequestID string
	Description       string
}

// RejectedError reports a push the gateway declined, carrying its message.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

// Client talks to the Safaricom Daraja sandbox. Access tokens are cached in
// Redis when a cache client is provided; cache failures fall back to fetching
// a fresh token.
type Client struct {
	cfg    config.DarajaConfig
	http   *http.Client
	cache  *redis.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewClient constructs a Daraja client. cache may be nil.
func NewClient(cfg config.DarajaConfig, cache *redis.Client, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.cache != nil {
		if token, err := c.cache.Get(ctx, tokenCacheKey).Result(); err == nil && token != "" {
			return token, nil
		} else if err != nil && err != redis.Nil {
			c.logger.Warn("daraja token cache lookup failed", "error", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+authPath, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("daraja auth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("daraja auth: status %d: %s", resp.StatusCode, string(body))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("daraja auth: decode: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("daraja auth: empty access token")
	}

	if c.cache != nil {
		if ttl := tokenTTL(token.ExpiresIn); ttl > 0 {
			if err := c.cache.Set(ctx, tokenCacheKey, token.AccessToken, ttl).Err(); err != nil {
				c.logger.Warn("daraja token cache store failed", "error", err)
			}
		}
	}

	return token.AccessToken, nil
}

func tokenTTL(expiresIn string) time.Duration {
	seconds, err := strconv.Atoi(expiresIn)
	if err != nil {
		return 0
	}
	return time.Duration(seconds)*time.Second - tokenTTLMargin
}

type stkPushPayload struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	ErrorMessage        string `json:"errorMessage"`
}

// RequestPush initiates an STK push prompting the customer to authorize the charge.
func (c *Client) RequestPush(ctx context.Context, push PushRequest) (PushResult, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return PushResult{}, err
	}

	timestamp := c.now().Format("20060102150405")
	payload := stkPushPayload{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          pushPassword(c.cfg.ShortCode, c.cfg.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   transactionType,
		Amount:            push.Amount,
		PartyA:            push.Phone,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       push.Phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  push.OrderNumber,
		TransactionDesc:   push.Description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return PushResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+stkPushPath, bytes.NewReader(body))
	if err != nil {
		return PushResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return PushResult{}, fmt.Errorf("daraja stk push: %w", err)
	}
	defer resp.Body.Close()

	var decoded stkPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return PushResult{}, fmt.Errorf("daraja stk push: decode: %w", err)
	}

	if resp.StatusCode != http.StatusOK || decoded.ResponseCode != "0" {
		message := decoded.ErrorMessage
		if message == "" {
			message = decoded.ResponseDescription
		}
		if message == "" {
			message = "STK Push failed"
		}
		return PushResult{}, &RejectedError{Message: message}
	}

	return PushResult{
		CheckoutRequestID: decoded.CheckoutRequestID,
		MerchantRequestID: decoded.MerchantRequestID,
		Description:       decoded.ResponseDescription,
	}, nil
}

// pushPassword derives the STK password: base64(shortcode + passkey + timestamp).
func pushPassword(shortCode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passkey + timestamp))
}
