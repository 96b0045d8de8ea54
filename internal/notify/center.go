// ABOUTME: Center schedules the daily reminder and delivers it when due.
// ABOUTME: NextFire computes trigger times; Run sleeps until each one.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/nowfocus/internal/logger"
	"github.com/harperreed/nowfocus/internal/models"
	"github.com/harperreed/nowfocus/internal/storage"
)

// RecheckInterval bounds how long Run sleeps before reloading the reminder.
const RecheckInterval = time.Minute

// ReminderStore is the storage the center needs.
type ReminderStore interface {
	GetReminder() (*models.Reminder, error)
	SaveReminder(r *models.Reminder) error
}

// NextFire returns the first trigger strictly after now, in now's location.
// It reports false for disabled or invalid reminders.
func NextFire(r *models.Reminder, now time.Time) (time.Time, bool) {
	if r == nil || !r.Enabled {
		return time.Time{}, false
	}
	hour, minute, err := r.Clock()
	if err != nil {
		return time.Time{}, false
	}

	y, m, d := now.Date()
	for i := 0; i <= 7; i++ {
		at := time.Date(y, m, d+i, hour, minute, 0, 0, now.Location())
		if at.After(now) && r.FiresOn(at.Weekday()) {
			return at, true
		}
	}
	return time.Time{}, false
}

// Center owns reminder scheduling.
type Center struct {
	store    ReminderStore
	notifier Notifier
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
	onFire   func(models.Reminder, error)
}

// CenterOption configures a Center.
type CenterOption func(*Center)

// WithClock replaces the time source and timer. Used in tests.
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) CenterOption {
	return func(c *Center) {
		c.now = now
		c.after = after
	}
}

// OnFire registers a callback run after each delivery attempt.
func OnFire(fn func(models.Reminder, error)) CenterOption {
	return func(c *Center) { c.onFire = fn }
}

// NewCenter creates a center storing reminders in store and delivering through n.
func NewCenter(store ReminderStore, n Notifier, opts ...CenterOption) *Center {
	c := &Center{
		store:    store,
		notifier: n,
		now:      time.Now,
		after:    time.After,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notifier returns the delivery method.
func (c *Center) Notifier() Notifier {
	return c.notifier
}

// Schedule validates r, asks for permission, and saves it enabled.
// A refusal returns ErrPermissionDenied and leaves storage untouched.
func (c *Center) Schedule(ctx context.Context, r *models.Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}

	granted, err := c.notifier.RequestPermission(ctx)
	if err != nil {
		return fmt.Errorf("request permission: %w", err)
	}
	if !granted {
		return ErrPermissionDenied
	}

	if r.Title == "" {
		r.Title = models.DefaultReminderTitle
	}
	if r.Body == "" {
		r.Body = models.DefaultReminderBody
	}
	r.ID = models.ReminderID
	r.Enabled = true
	r.UpdatedAt = c.now()
	if err := c.store.SaveReminder(r); err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}
	logger.Info("reminder scheduled", "time", r.Time, "days", r.FormatWeekdays(), "notifier", c.notifier.Name())
	return nil
}

// Cancel disables the reminder. Cancelling when none exists is not an error.
func (c *Center) Cancel(_ context.Context) error {
	r, err := c.store.GetReminder()
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	r.Enabled = false
	r.UpdatedAt = c.now()
	if err := c.store.SaveReminder(r); err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}
	logger.Info("reminder cancelled")
	return nil
}

// Status returns the stored reminder and its next trigger, if any.
func (c *Center) Status() (*models.Reminder, time.Time, bool, error) {
	r, err := c.store.GetReminder()
	if errors.Is(err, storage.ErrNotFound) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, err
	}
	next, ok := NextFire(r, c.now())
	return r, next, ok, nil
}

// Run delivers the reminder each time it comes due until ctx is done.
// The reminder is reloaded at least every RecheckInterval so edits apply
// without a restart, and again just before delivery so a reminder cancelled
// or moved during the wait does not fire. Delivery errors are logged, not
// retried.
func (c *Center) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := c.store.GetReminder()
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("load reminder failed", "err", err)
		}

		now := c.now()
		next, ok := NextFire(r, now)
		wait := RecheckInterval
		due := ok && next.Sub(now) <= RecheckInterval
		if due {
			wait = next.Sub(now)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.after(wait):
		}

		if !due {
			continue
		}
		current, err := c.store.GetReminder()
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("load reminder failed", "err", err)
			continue
		}
		if again, ok := NextFire(current, now); !ok || !again.Equal(next) {
			logger.Debug("reminder changed while waiting, skipping delivery", "at", next)
			continue
		}
		r = current

		err = c.notifier.Notify(ctx, r.Title, r.Body)
		if err != nil {
			logger.Error("reminder delivery failed", "notifier", c.notifier.Name(), "err", err)
		} else {
			logger.Info("reminder delivered", "notifier", c.notifier.Name(), "at", next)
		}
		if c.onFire != nil {
			c.onFire(*r, err)
		}
	}
}
