package console

import "github.com/Otiahaill3/Mpesa-demo/internal/ledger"

// State is the console's complete view of the world. Values are transitioned
// by the pure reducer functions below and only ever swapped wholesale on the
// scheduler queue, never mutated in place.
type State struct {
	Form         Form
	Submitting   bool
	Notice       string
	Transactions []ledger.Transaction
	// Synced distinguishes "never fetched" from "ledger is empty".
	Synced bool
}

func reduceSubmitStart(s State, form Form) State {
	s.Form = form
	s.Submitting = true
	s.Notice = ""
	return s
}

func reduceSubmitAcknowledged(s State, message string) State {
	s.Submitting = false
	s.Notice = "✅ " + message
	s.Form = Form{}
	return s
}

// reduceSubmitRejected keeps the form so the operator can correct and retry.
func reduceSubmitRejected(s State, detail string) State {
	s.Submitting = false
	s.Notice = "❌ " + detail
	return s
}

func reduceValidationFailed(s State, form Form, reason string) State {
	s.Form = form
	s.Notice = "❌ " + reason
	return s
}

// reduceSnapshot replaces the transaction list atomically. The snapshot is
// never merged with in-flight submissions; a request only appears once the
// backend reports it.
func reduceSnapshot(s State, transactions []ledger.Transaction) State {
	s.Transactions = transactions
	s.Synced = true
	return s
}
