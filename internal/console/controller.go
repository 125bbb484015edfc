package console

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	// defaultRefreshDelay gives the backend time to record the pending
	// transaction before the ledger is re-fetched. There is no callback
	// channel to the console, so a freshly acknowledged request may stay
	// invisible for up to this long.
	defaultRefreshDelay = 2 * time.Second

	exportFilename = "successful_transactions.csv"
)

// Config tunes a Controller.
type Config struct {
	BaseURL      string
	RefreshDelay time.Duration
	ExportDir    string
}

// Controller drives the payment-request lifecycle: it gates submissions
// through the validator, relays them to the backend, keeps the ledger
// snapshot fresh and hands exports to disk. All state lives behind a single
// task queue.
type Controller struct {
	client *Client
	sched  *Scheduler
	logger *slog.Logger

	refreshDelay time.Duration
	exportDir    string

	state State
}

// NewController wires a controller against the payments API.
func NewController(cfg Config, logger *slog.Logger) *Controller {
	delay := cfg.RefreshDelay
	if delay <= 0 {
		delay = defaultRefreshDelay
	}
	dir := cfg.ExportDir
	if dir == "" {
		dir = "."
	}
	return &Controller{
		client:       NewClient(cfg.BaseURL),
		sched:        NewScheduler(),
		logger:       logger,
		refreshDelay: delay,
		exportDir:    dir,
	}
}

// State returns a snapshot of the current console state.
func (c *Controller) State() State {
	var snapshot State
	c.sched.Do(func() {
		snapshot = c.state
	})
	return snapshot
}

// Submit validates the form and initiates a payment. Exactly one request is
// in flight at a time; a second Submit while one is pending is refused
// without touching the network. Whatever the outcome, a single delayed
// ledger refresh is scheduled. The returned notice is what the operator sees.
func (c *Controller) Submit(ctx context.Context, form Form) string {
	var (
		request PaymentRequest
		notice  string
		proceed bool
	)
	c.sched.Do(func() {
		if c.state.Submitting {
			notice = "a submission is already in flight"
			return
		}
		parsed, err := ParseForm(form)
		if err != nil {
			c.state = reduceValidationFailed(c.state, form, err.Error())
			notice = c.state.Notice
			return
		}
		request = parsed
		c.state = reduceSubmitStart(c.state, form)
		proceed = true
	})
	if !proceed {
		return notice
	}

	ack, err := c.client.Initiate(ctx, request)

	c.sched.Do(func() {
		if err != nil {
			var initiation *InitiationError
			if !errors.As(err, &initiation) {
				initiation = &InitiationError{}
			}
			c.state = reduceSubmitRejected(c.state, initiation.Error())
		} else {
			message := ack.Message
			if message == "" {
				message = "Payment request sent"
			}
			c.state = reduceSubmitAcknowledged(c.state, message)
		}
		notice = c.state.Notice
	})

	// One-shot refresh regardless of outcome, so the pending transaction
	// shows up once the backend has recorded it.
	c.sched.After(c.refreshDelay, func() {
		go c.Refresh(context.Background())
	})

	return notice
}

// Refresh fetches the ledger and replaces the local snapshot wholesale. On
// failure the previous snapshot is kept and the error only logged. When
// refreshes race, whichever response is applied last wins.
func (c *Controller) Refresh(ctx context.Context) {
	transactions, err := c.client.Transactions(ctx)
	if err != nil {
		c.logger.Warn("ledger refresh failed, keeping stale view", "error", err)
		return
	}
	c.sched.Do(func() {
		c.state = reduceSnapshot(c.state, transactions)
	})
}

// Export downloads the successful-transactions CSV and saves it under the
// configured directory. Returns the written path.
func (c *Controller) Export(ctx context.Context) (string, error) {
	payload, err := c.client.DownloadCSV(ctx)
	if err != nil {
		return "", err
	}

	path := filepath.Join(c.exportDir, exportFilename)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Close tears the controller down, cancelling any pending delayed refresh.
func (c *Controller) Close() {
	c.sched.Close()
}
