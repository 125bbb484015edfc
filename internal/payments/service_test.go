package payments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Otiahaill3/Mpesa-demo/internal/daraja"
	"github.com/Otiahaill3/Mpesa-demo/internal/ledger"
	"github.com/Otiahaill3/Mpesa-demo/internal/logging"
	"github.com/Otiahaill3/Mpesa-demo/internal/notification"
)

type fakeGateway struct {
	calls int
	last  daraja.PushRequest
	err   error
}

func (g *fakeGateway) RequestPush(_ context.Context, push daraja.PushRequest) (daraja.PushResult, error) {
	g.calls++
	g.last = push
	if g.err != nil {
		return daraja.PushResult{}, g.err
	}
	return daraja.PushResult{CheckoutRequestID: "ws_CO_1", MerchantRequestID: "mr_1"}, nil
}

type testNotifier struct {
	messages []notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

func newTestService(gw daraja.Gateway) (*Service, ledger.Store, *testNotifier) {
	store := ledger.NewInMemory()
	notifier := &testNotifier{}
	svc := NewService(store, gw, notifier, logging.Discard())
	return svc, store, notifier
}

func TestRequestPaymentRecordsPending(t *testing.T) {
	gw := &fakeGateway{}
	svc, store, notifier := newTestService(gw)

	ack, err := svc.RequestPayment(context.Background(), RequestInput{
		Phone: "254712345678", Amount: 100, OrderNumber: "ORD1", Description: "test",
	})
	if err != nil {
		t.Fatalf("request payment: %v", err)
	}
	if gw.calls != 1 {
		t.Fatalf("expected exactly one gateway call, got %d", gw.calls)
	}
	if gw.last.Phone != "254712345678" || gw.last.Amount != 100 || gw.last.OrderNumber != "ORD1" {
		t.Fatalf("unexpected push payload: %+v", gw.last)
	}
	if ack.CheckoutRequestID != "ws_CO_1" || ack.Message == "" {
		t.Fatalf("unexpected acknowledgement: %+v", ack)
	}

	txs, _ := store.List(context.Background())
	if len(txs) != 1 {
		t.Fatalf("expected one recorded transaction, got %d", len(txs))
	}
	if txs[0].Status != ledger.StatusPending {
		t.Fatalf("expected Pending, got %s", txs[0].Status)
	}
	if len(notifier.messages) != 1 || notifier.messages[0].Kind != notification.KindPushAccepted {
		t.Fatalf("expected push_accepted notification, got %+v", notifier.messages)
	}
}

func TestRequestPaymentGatewayRejection(t *testing.T) {
	gw := &fakeGateway{err: &daraja.RejectedError{Message: "Insufficient funds"}}
	svc, store, _ := newTestService(gw)

	_, err := svc.RequestPayment(context.Background(), RequestInput{
		Phone: "254712345678", Amount: 100, OrderNumber: "ORD1", Description: "test",
	})
	var rejected *daraja.RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RejectedError, got %v", err)
	}

	txs, _ := store.List(context.Background())
	if len(txs) != 0 {
		t.Fatalf("rejected push must not be recorded, got %d transactions", len(txs))
	}
}

func TestRequestPaymentInvalidAmount(t *testing.T) {
	gw := &fakeGateway{}
	svc, _, _ := newTestService(gw)

	if _, err := svc.RequestPayment(context.Background(), RequestInput{
		Phone: "254712345678", Amount: 0, OrderNumber: "ORD1", Description: "test",
	}); err == nil {
		t.Fatal("expected error for amount below 1")
	}
	if gw.calls != 0 {
		t.Fatalf("invalid amount must not reach the gateway, got %d calls", gw.calls)
	}
}

func TestHandleCallbackResolvesTransaction(t *testing.T) {
	svc, store, notifier := newTestService(&fakeGateway{})

	ctx := context.Background()
	if _, err := svc.RequestPayment(ctx, RequestInput{
		Phone: "254712345678", Amount: 100, OrderNumber: "ORD1", Description: "test",
	}); err != nil {
		t.Fatalf("request payment: %v", err)
	}

	if err := svc.HandleCallback(ctx, daraja.StkCallback{CheckoutRequestID: "ws_CO_1", ResultCode: 0}); err != nil {
		t.Fatalf("callback: %v", err)
	}
	txs, _ := store.List(ctx)
	if txs[0].Status != ledger.StatusSuccess {
		t.Fatalf("expected Success, got %s", txs[0].Status)
	}

	if err := svc.HandleCallback(ctx, daraja.StkCallback{CheckoutRequestID: "ws_CO_1", ResultCode: 1032}); err != nil {
		t.Fatalf("callback: %v", err)
	}
	txs, _ = store.List(ctx)
	if txs[0].Status != ledger.StatusFailed {
		t.Fatalf("expected Failed, got %s", txs[0].Status)
	}

	if len(notifier.messages) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(notifier.messages))
	}
}

func TestHandleCallbackUnknownCheckoutIgnored(t *testing.T) {
	svc, _, _ := newTestService(&fakeGateway{})

	if err := svc.HandleCallback(context.Background(), daraja.StkCallback{CheckoutRequestID: "ws_CO_missing", ResultCode: 0}); err != nil {
		t.Fatalf("unknown checkout id should not error: %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	svc, store, _ := newTestService(&fakeGateway{})
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ledger.Fixture(store, "ORD1", ledger.StatusSuccess, base)
	ledger.Fixture(store, "ORD2", ledger.StatusPending, base.Add(time.Minute))
	ledger.Fixture(store, "ORD3", ledger.StatusSuccess, base.Add(2*time.Minute))

	payload, err := svc.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Order Number,Phone Number,Amount,Description,Status,Timestamp" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "ORD3,") {
		t.Fatalf("expected newest successful transaction first, got %s", lines[1])
	}
	if strings.Contains(string(payload), "ORD2") {
		t.Fatal("pending transaction leaked into the export")
	}
	if !strings.Contains(lines[1], "2024-03-01 12:02:00") {
		t.Fatalf("expected formatted timestamp, got %s", lines[1])
	}
}

func TestExportCSVEmpty(t *testing.T) {
	svc, store, _ := newTestService(&fakeGateway{})
	ledger.Fixture(store, "ORD1", ledger.StatusPending, time.Now().UTC())

	if _, err := svc.ExportCSV(context.Background()); !errors.Is(err, ErrNoSuccessfulTransactions) {
		t.Fatalf("expected ErrNoSuccessfulTransactions, got %v", err)
	}
}
