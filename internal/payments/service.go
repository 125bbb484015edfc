package payments

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Otiahaill3/Mpesa-demo/internal/daraja"
	"github.com/Otiahaill3/Mpesa-demo/internal/ledger"
	"github.com/Otiahaill3/Mpesa-demo/internal/notification"
)

// ErrNoSuccessfulTransactions is returned by ExportCSV when nothing has
// completed successfully yet.
var ErrNoSuccessfulTransactions = errors.New("no successful transactions found")

// Service coordinates push requests against the gateway and the transaction store.
type Service struct {
	store    ledger.Store
	gateway  daraja.Gateway
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a payments service.
func NewService(store ledger.Store, gateway daraja.Gateway, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{store: store, gateway: gateway, notifier: notifier, logger: logger, now: time.Now}
}

// RequestInput captures a validated payment request.
type RequestInput struct {
	Phone       string
	Amount      int64
	OrderNumber string
	Description string
}

// Acknowledgement confirms the gateway accepted a push request. It says
// nothing about the final payment outcome, which arrives via callback.
type Acknowledgement struct {
	TransactionID     string
	CheckoutRequestID string
	Message           string
}

// RequestPayment sends an STK push and records the pending transaction once
// the gateway accepts it. A gateway rejection is surfaced unwrapped so the
// handler can relay its message; nothing is recorded in that case.
func (s *Service) RequestPayment(ctx context.Context, in RequestInput) (Acknowledgement, error) {
	if in.Amount < 1 {
		return Acknowledgement{}, fmt.Errorf("amount must be at least 1")
	}
	if in.Phone == "" || in.OrderNumber == "" || in.Description == "" {
		return Acknowledgement{}, fmt.Errorf("phone, order_number and description are required")
	}

	res, err := s.gateway.RequestPush(ctx, daraja.PushRequest{
		Phone:       in.Phone,
		Amount:      in.Amount,
		OrderNumber: in.OrderNumber,
		Description: in.Description,
	})
	if err != nil {
		return Acknowledgement{}, err
	}

	tx := ledger.Transaction{
		ID:                uuid.NewString(),
		Phone:             in.Phone,
		Amount:            in.Amount,
		OrderNumber:       in.OrderNumber,
		Description:       in.Description,
		Status:            ledger.StatusPending,
		CheckoutRequestID: res.CheckoutRequestID,
		MerchantRequestID: res.MerchantRequestID,
		Timestamp:         s.now().UTC(),
	}
	if err := s.store.Insert(ctx, tx); err != nil {
		return Acknowledgement{}, fmt.Errorf("record pending transaction: %w", err)
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:      notification.KindPushAccepted,
			Reference: in.OrderNumber,
			Body:      fmt.Sprintf("STK push for %d accepted, checkout %s", in.Amount, res.CheckoutRequestID),
		})
	}

	return Acknowledgement{
		TransactionID:     tx.ID,
		CheckoutRequestID: res.CheckoutRequestID,
		Message:           "STK Push initiated successfully",
	}, nil
}

// HandleCallback resolves a pending transaction from a gateway callback.
// Unknown checkout identifiers are logged and ignored: the gateway retries
// callbacks and must always receive a success response for handled input.
func (s *Service) HandleCallback(ctx context.Context, cb daraja.StkCallback) error {
	if cb.CheckoutRequestID == "" {
		s.logger.Warn("callback without checkout request id ignored")
		return nil
	}

	status := ledger.StatusFailed
	if cb.Authorized() {
		status = ledger.StatusSuccess
	}

	if err := s.store.UpdateStatusByCheckoutID(ctx, cb.CheckoutRequestID, status); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			s.logger.Warn("callback for unknown transaction", "checkout_request_id", cb.CheckoutRequestID)
			return nil
		}
		return fmt.Errorf("update transaction %s: %w", cb.CheckoutRequestID, err)
	}

	s.logger.Info("transaction resolved", "checkout_request_id", cb.CheckoutRequestID, "status", status)
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:      notification.KindPaymentOutcome,
			Reference: cb.CheckoutRequestID,
			Body:      fmt.Sprintf("payment resolved to %s: %s", status, cb.ResultDesc),
		})
	}
	return nil
}

// List returns the full ledger, newest first.
func (s *Service) List(ctx context.Context) ([]ledger.Transaction, error) {
	return s.store.List(ctx)
}

// ExportCSV renders successful transactions as a CSV document.
func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	transactions, err := s.store.ListByStatus(ctx, ledger.StatusSuccess)
	if err != nil {
		return nil, fmt.Errorf("list successful transactions: %w", err)
	}
	if len(transactions) == 0 {
		return nil, ErrNoSuccessfulTransactions
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Order Number", "Phone Number", "Amount", "Description", "Status", "Timestamp"})
	for _, tx := range transactions {
		_ = w.Write([]string{
			tx.OrderNumber,
			tx.Phone,
			strconv.FormatInt(tx.Amount, 10),
			tx.Description,
			tx.Status,
			tx.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
