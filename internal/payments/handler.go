package payments

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Otiahaill3/Mpesa-demo/internal/daraja"
	"github.com/Otiahaill3/Mpesa-demo/internal/ledger"
)

const exportFilename = "successful_transactions.csv"

// Handler exposes the payment endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a payments handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type paymentRequest struct {
	Phone       string `json:"phone"`
	Amount      int64  `json:"amount"`
	OrderNumber string `json:"order_number"`
	Description string `json:"description"`
}

type transactionResponse struct {
	ID          string    `json:"id"`
	Phone       string    `json:"phone"`
	Amount      int64     `json:"amount"`
	OrderNumber string    `json:"order_number"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// RequestPayment initiates an STK push for the submitted payment request.
func (h *Handler) RequestPayment(c *fiber.Ctx) error {
	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	ack, err := h.service.RequestPayment(c.UserContext(), RequestInput{
		Phone:       req.Phone,
		Amount:      req.Amount,
		OrderNumber: req.OrderNumber,
		Description: req.Description,
	})
	if err != nil {
		var rejected *daraja.RejectedError
		if errors.As(err, &rejected) {
			return fiber.NewError(http.StatusBadRequest, rejected.Message)
		}
		return fiber.NewError(http.StatusInternalServerError, "Payment request failed: "+err.Error())
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":             true,
		"message":             ack.Message,
		"checkout_request_id": ack.CheckoutRequestID,
		"transaction_id":      ack.TransactionID,
	})
}

// Callback ingests the gateway outcome callback. The gateway expects a
// ResultCode body even on failure, so errors are reported in-band.
func (h *Handler) Callback(c *fiber.Ctx) error {
	var cb daraja.Callback
	if err := c.BodyParser(&cb); err != nil {
		return c.Status(http.StatusOK).JSON(fiber.Map{"ResultCode": 1, "ResultDesc": "Callback processing failed"})
	}

	if err := h.service.HandleCallback(c.UserContext(), cb.Body.StkCallback); err != nil {
		return c.Status(http.StatusOK).JSON(fiber.Map{"ResultCode": 1, "ResultDesc": "Callback processing failed"})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"ResultCode": 0, "ResultDesc": "Callback processed successfully"})
}

// List returns all transactions, newest first.
func (h *Handler) List(c *fiber.Ctx) error {
	transactions, err := h.service.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "Failed to fetch transactions")
	}

	out := make([]transactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, toResponse(tx))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Download streams successful transactions as a CSV attachment.
func (h *Handler) Download(c *fiber.Ctx) error {
	payload, err := h.service.ExportCSV(c.UserContext())
	if err != nil {
		if errors.Is(err, ErrNoSuccessfulTransactions) {
			return fiber.NewError(http.StatusNotFound, "No successful transactions found")
		}
		return fiber.NewError(http.StatusInternalServerError, "Failed to download transactions")
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename=`+exportFilename)
	return c.Status(http.StatusOK).Send(payload)
}

func toResponse(tx ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Phone:       tx.Phone,
		Amount:      tx.Amount,
		OrderNumber: tx.OrderNumber,
		Description: tx.Description,
		Status:      tx.Status,
		Timestamp:   tx.Timestamp,
	}
}
