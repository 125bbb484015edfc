package console

import (
	"regexp"
	"strconv"
	"strings"
)

// phonePattern accepts Kenyan numbers in international format: the 254
// country prefix followed by nine digits.
var phonePattern = regexp.MustCompile(`^254[0-9]{9}$`)

// Form holds the raw operator input, all fields as entered.
type Form struct {
	Phone       string
	Amount      string
	OrderNumber string
	Description string
}

// PaymentRequest is a validated, well-typed submission ready to send.
type PaymentRequest struct {
	Phone       string `json:"phone"`
	Amount      int64  `json:"amount"`
	OrderNumber string `json:"order_number"`
	Description string `json:"description"`
}

// ValidationError rejects a form before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// ParseForm validates raw form input and produces a PaymentRequest. Pure
// function of its input; no side effects.
func ParseForm(f Form) (PaymentRequest, error) {
	phone := strings.TrimSpace(f.Phone)
	if phone == "" {
		return PaymentRequest{}, &ValidationError{Field: "phone", Reason: "required"}
	}
	if !phonePattern.MatchString(phone) {
		return PaymentRequest{}, &ValidationError{Field: "phone", Reason: "must be 254 followed by 9 digits"}
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(f.Amount), 10, 64)
	if err != nil {
		return PaymentRequest{}, &ValidationError{Field: "amount", Reason: "must be a whole number"}
	}
	if amount < 1 {
		return PaymentRequest{}, &ValidationError{Field: "amount", Reason: "must be at least 1"}
	}

	orderNumber := strings.TrimSpace(f.OrderNumber)
	if orderNumber == "" {
		return PaymentRequest{}, &ValidationError{Field: "order_number", Reason: "required"}
	}
	description := strings.TrimSpace(f.Description)
	if description == "" {
		return PaymentRequest{}, &ValidationError{Field: "description", Reason: "required"}
	}

	return PaymentRequest{
		Phone:       phone,
		Amount:      amount,
		OrderNumber: orderNumber,
		Description: description,
	}, nil
}
