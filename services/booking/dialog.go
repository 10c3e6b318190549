package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"concierge/models"
	"concierge/services/session"

	"go.uber.org/zap"
)

// Dialog drives the multi-turn slot collection for a booking link.
// All state lives in the session store; a turn reads the user's record,
// works on a copy and writes it back only when the turn succeeds.
type Dialog struct {
	store       session.Store
	locks       *session.KeyLock
	strictDates bool
	logger      *zap.Logger
}

type DialogOption func(*Dialog)

// WithStrictDates rejects impossible calendar dates and reversed date pairs at input time.
func WithStrictDates(strict bool) DialogOption {
	return func(d *Dialog) { d.strictDates = strict }
}

func WithLogger(l *zap.Logger) DialogOption {
	return func(d *Dialog) { d.logger = l }
}

func NewDialog(store session.Store, opts ...DialogOption) *Dialog {
	d := &Dialog{
		store:       store,
		locks:       session.NewKeyLock(),
		strictDates: true,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Advance consumes one guest message. done is true once the link was produced.
// err is non-nil only when the session store fails.
func (d *Dialog) Advance(ctx context.Context, userID, message string) (reply string, done bool, err error) {
	unlock := d.locks.Lock(userID)
	defer unlock()

	st, created, err := d.store.GetOrCreate(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("load booking state: %w", err)
	}
	if created {
		d.logger.Debug("Booking dialog started", zap.String("userID", userID))
		return Prompt(models.StepAwaitingDateIn), false, nil
	}
	return d.step(ctx, userID, st, message)
}

// Continue advances the user's dialog only if one is in progress. When
// there is none, active is false and nothing is written. The check and
// the turn run under the same per-user lock.
func (d *Dialog) Continue(ctx context.Context, userID, message string) (reply string, done, active bool, err error) {
	unlock := d.locks.Lock(userID)
	defer unlock()

	st, err := d.store.Load(ctx, userID)
	if errors.Is(err, session.ErrNotFound) {
		return "", false, false, nil
	}
	if err != nil {
		return "", false, false, fmt.Errorf("load booking state: %w", err)
	}
	reply, done, err = d.step(ctx, userID, st, message)
	return reply, done, true, err
}

// step applies one answer to the slot st is waiting for. The message is
// validated exactly as received.
func (d *Dialog) step(ctx context.Context, userID string, st *models.BookingState, msg string) (string, bool, error) {
	next := st.Clone()

	switch st.Step {
	case models.StepAwaitingDateIn:
		date, _, verr := validateSlotDate(st.Step, msg, d.strictDates)
		if verr != nil {
			return rejection(verr), false, nil
		}
		next.DateIn = &date
		next.Step = models.StepAwaitingDateOut

	case models.StepAwaitingDateOut:
		date, out, verr := validateSlotDate(st.Step, msg, d.strictDates)
		if verr == nil && d.strictDates {
			verr = checkOrder(st.DateIn, out)
		}
		if verr != nil {
			return rejection(verr), false, nil
		}
		next.DateOut = &date
		if next.Reentry {
			return d.complete(ctx, userID, next)
		}
		next.Step = models.StepAwaitingRooms

	case models.StepAwaitingRooms:
		n, verr := ValidateCount(msg, 1, 9)
		if verr != nil {
			return rejection(withSlot(verr, st.Step)), false, nil
		}
		next.Rooms = n
		next.Step = models.StepAwaitingAdults

	case models.StepAwaitingAdults:
		n, verr := ValidateCount(msg, 1, 9)
		if verr != nil {
			return rejection(withSlot(verr, st.Step)), false, nil
		}
		next.Adults = n
		next.Step = models.StepAwaitingChildAges

	case models.StepAwaitingChildAges:
		next.ChildAges = ValidateChildAges(msg)
		return d.complete(ctx, userID, next)

	default:
		// Unreadable step, most likely a record written by an older build.
		d.logger.Warn("Unknown booking step, restarting dialog",
			zap.String("userID", userID), zap.String("step", string(st.Step)))
		fresh := models.NewBookingState()
		if err := d.store.Save(ctx, userID, fresh); err != nil {
			return "", false, fmt.Errorf("reset booking state: %w", err)
		}
		return Prompt(models.StepAwaitingDateIn), false, nil
	}

	if err := d.store.Save(ctx, userID, next); err != nil {
		return "", false, fmt.Errorf("save booking state: %w", err)
	}
	return Prompt(next.Step), false, nil
}

// checkOrder requires date-out to fall after the stored date-in.
func checkOrder(dateIn *string, out *time.Time) error {
	if dateIn == nil || out == nil {
		return nil
	}
	in, err := time.Parse(isoDate, *dateIn)
	if err != nil {
		return nil
	}
	if !out.After(in) {
		return newValidationError(models.StepAwaitingDateOut, CodeDateOrder, "date-out must be after date-in")
	}
	return nil
}

// complete builds the link and ends the dialog. A link that cannot be
// built sends the guest back to the date pair, keeping the other slots.
func (d *Dialog) complete(ctx context.Context, userID string, st *models.BookingState) (string, bool, error) {
	link, err := BuildURL(URLParams{
		DateIn:    deref(st.DateIn),
		DateOut:   deref(st.DateOut),
		Adults:    st.Adults,
		ChildAges: st.ChildAges,
		Rooms:     st.Rooms,
	})
	if err != nil {
		d.logger.Info("Booking link rejected, asking for dates again",
			zap.String("userID", userID), zap.Error(err))
		st.DateIn = nil
		st.DateOut = nil
		st.Step = models.StepAwaitingDateIn
		st.Reentry = true
		if serr := d.store.Save(ctx, userID, st); serr != nil {
			return "", false, fmt.Errorf("save booking state: %w", serr)
		}
		return MsgDatesRejected, false, nil
	}

	if err := d.store.Clear(ctx, userID); err != nil {
		return "", false, fmt.Errorf("clear booking state: %w", err)
	}
	d.logger.Info("Booking link issued", zap.String("userID", userID))
	return fmt.Sprintf(MsgCompleted, link), true, nil
}

// Cancel drops the user's dialog, if any.
func (d *Dialog) Cancel(ctx context.Context, userID string) error {
	unlock := d.locks.Lock(userID)
	defer unlock()
	if err := d.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	return nil
}

// CancelActive drops the user's dialog if one is in progress and reports
// whether there was one.
func (d *Dialog) CancelActive(ctx context.Context, userID string) (bool, error) {
	unlock := d.locks.Lock(userID)
	defer unlock()
	active, err := d.store.Exists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check booking state: %w", err)
	}
	if !active {
		return false, nil
	}
	if err := d.store.Clear(ctx, userID); err != nil {
		return false, fmt.Errorf("cancel booking: %w", err)
	}
	d.logger.Debug("Booking dialog cancelled", zap.String("userID", userID))
	return true, nil
}

// Active reports whether the user has a dialog in progress.
func (d *Dialog) Active(ctx context.Context, userID string) (bool, error) {
	return d.store.Exists(ctx, userID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
