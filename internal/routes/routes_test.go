package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/Otiahaill3/Mpesa-demo/internal/config"
	"github.com/Otiahaill3/Mpesa-demo/internal/daraja"
	"github.com/Otiahaill3/Mpesa-demo/internal/logging"
)

type rejectingGateway struct{}

func (rejectingGateway) RequestPush(_ context.Context, _ daraja.PushRequest) (daraja.PushResult, error) {
	return daraja.PushResult{}, &daraja.RejectedError{Message: "Insufficient funds"}
}

func newTestApp(t *testing.T, gw daraja.Gateway) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
		}
		return c.Status(code).JSON(fiber.Map{"detail": err.Error()})
	}})

	cfg := config.Config{AppName: "test", AppEnv: "development"}
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard(), Gateway: gw}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (int, map[string]any) {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

func TestRequestPaymentLifecycle(t *testing.T) {
	app := newTestApp(t, daraja.StaticGateway{})

	status, body := postJSON(t, app, "/api/request-payment", map[string]any{
		"phone": "254712345678", "amount": 100, "order_number": "ORD1", "description": "test",
	})
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", status, body)
	}
	if body["success"] != true || body["checkout_request_id"] == "" {
		t.Fatalf("unexpected acknowledgement: %v", body)
	}
	checkoutID := body["checkout_request_id"].(string)

	req := httptest.NewRequest(fiber.MethodGet, "/api/transactions", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var listed []map[string]any
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()
	if len(listed) != 1 || listed[0]["status"] != "Pending" {
		t.Fatalf("expected one pending transaction, got %v", listed)
	}

	status, cb := postJSON(t, app, "/api/mpesa-callback", map[string]any{
		"Body": map[string]any{"stkCallback": map[string]any{
			"CheckoutRequestID": checkoutID,
			"ResultCode":        0,
			"ResultDesc":        "The service request is processed successfully.",
		}},
	})
	if status != fiber.StatusOK || cb["ResultCode"] != float64(0) {
		t.Fatalf("unexpected callback response: %d %v", status, cb)
	}

	dlReq := httptest.NewRequest(fiber.MethodGet, "/api/transactions/download", nil)
	dlResp, err := app.Test(dlReq)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer dlResp.Body.Close()
	if dlResp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 download, got %d", dlResp.StatusCode)
	}
	if got := dlResp.Header.Get(fiber.HeaderContentDisposition); got != "attachment; filename=successful_transactions.csv" {
		t.Fatalf("unexpected disposition: %q", got)
	}
	csvBody, _ := io.ReadAll(dlResp.Body)
	if !bytes.Contains(csvBody, []byte("ORD1")) {
		t.Fatalf("expected exported order, got %s", csvBody)
	}
}

func TestRequestPaymentRejectionDetail(t *testing.T) {
	app := newTestApp(t, rejectingGateway{})

	status, body := postJSON(t, app, "/api/request-payment", map[string]any{
		"phone": "254712345678", "amount": 100, "order_number": "ORD1", "description": "test",
	})
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["detail"] != "Insufficient funds" {
		t.Fatalf("expected gateway detail, got %v", body)
	}
}

func TestDownloadWithoutSuccessfulTransactions(t *testing.T) {
	app := newTestApp(t, daraja.StaticGateway{})

	req := httptest.NewRequest(fiber.MethodGet, "/api/transactions/download", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if body["detail"] != "No successful transactions found" {
		t.Fatalf("unexpected detail: %v", body)
	}
}

func TestEmptyLedgerListsEmptyArray(t *testing.T) {
	app := newTestApp(t, daraja.StaticGateway{})

	req := httptest.NewRequest(fiber.MethodGet, "/api/transactions", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if string(bytes.TrimSpace(raw)) != "[]" {
		t.Fatalf("expected empty array, got %s", raw)
	}
}
