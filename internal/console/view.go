package console

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Otiahaill3/Mpesa-demo/internal/ledger"
)

// StatusClass is the display classification of a transaction status. The set
// is closed; statuses outside the canonical three map to ClassNeutral while
// the verbatim status string stays on the transaction.
type StatusClass int

const (
	ClassNeutral StatusClass = iota
	ClassPending
	ClassSuccess
	ClassFailed
)

func (c StatusClass) String() string {
	switch c {
	case ClassPending:
		return "pending"
	case ClassSuccess:
		return "success"
	case ClassFailed:
		return "failed"
	default:
		return "neutral"
	}
}

// ClassifyStatus maps a verbatim status string to its display class.
func ClassifyStatus(status string) StatusClass {
	switch status {
	case ledger.StatusPending:
		return ClassPending
	case ledger.StatusSuccess:
		return ClassSuccess
	case ledger.StatusFailed:
		return ClassFailed
	default:
		return ClassNeutral
	}
}

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount with digit grouping, e.g. 1,250,000.
func FormatAmount(amount int64) string {
	return amountPrinter.Sprintf("%d", amount)
}

// FormatTimestamp renders a ledger timestamp for display in local time.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format("Jan 2, 2006 15:04:05")
}
