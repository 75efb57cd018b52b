package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qwicbook/qwicbook-pro/pkg/logging"
)

// AccountChecker answers whether the admin account is still active.
type AccountChecker interface {
	CheckAccountActive(ctx context.Context, adminUserID int64) (bool, error)
}

// Watchdog polls the account's active flag while the app runs. The
// first check fires immediately, then one per tick. Checks never
// overlap; a tick that lands while a check is in flight is dropped.
// The first blocked answer invokes onBlocked once and stops the loop;
// errors are logged and polling continues.
type Watchdog struct {
	checker     AccountChecker
	logger      *logging.Logger
	adminUserID int64
	onBlocked   func()

	tick <-chan time.Time
	stop func()

	inFlight atomic.Bool
}

// WatchdogConfig configures a Watchdog. Tick and Stop override the
// interval ticker; tests drive the loop through them.
type WatchdogConfig struct {
	Checker     AccountChecker
	Logger      *logging.Logger
	AdminUserID int64
	Interval    time.Duration
	OnBlocked   func()

	Tick <-chan time.Time
	Stop func()
}

// NewWatchdog builds a watchdog from cfg.
func NewWatchdog(cfg WatchdogConfig) (*Watchdog, error) {
	if cfg.Checker == nil {
		return nil, errors.New("session: watchdog requires a checker")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	tick := cfg.Tick
	stop := cfg.Stop
	if tick == nil {
		interval := cfg.Interval
		if interval <= 0 {
			interval = time.Minute
		}
		ticker := time.NewTicker(interval)
		tick = ticker.C
		stop = ticker.Stop
	}

	return &Watchdog{
		checker:     cfg.Checker,
		logger:      logger,
		adminUserID: cfg.AdminUserID,
		onBlocked:   cfg.OnBlocked,
		tick:        tick,
		stop:        stop,
	}, nil
}

// Start runs the polling loop until ctx is cancelled or the account
// turns up blocked.
func (w *Watchdog) Start(ctx context.Context) {
	if w == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if w.stop != nil {
			w.stop()
		}
	}()

	blocked := make(chan struct{})
	var once sync.Once
	run := func() {
		if w.checkOnce(ctx) {
			once.Do(func() { close(blocked) })
		}
	}

	run()
	select {
	case <-blocked:
		return
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-blocked:
			return
		case <-w.tick:
			// slow checks must not stall the loop; ticks landing while
			// one is in flight are dropped by the guard
			go run()
		}
	}
}

// checkOnce reports true when polling should stop.
func (w *Watchdog) checkOnce(ctx context.Context) bool {
	if !w.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer w.inFlight.Store(false)

	active, err := w.checker.CheckAccountActive(ctx, w.adminUserID)
	if err != nil {
		w.logger.Warn("account check failed", "adminUserID", w.adminUserID, "error", err)
		return false
	}
	if active {
		return false
	}
	w.logger.Info("account deactivated, ending session", "adminUserID", w.adminUserID)
	if w.onBlocked != nil {
		w.onBlocked()
	}
	return true
}
