package assistant

import (
	"context"
	"errors"
	"testing"

	"concierge/models"
	"concierge/services/booking"
	"concierge/services/session"
	"concierge/services/smalltalk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePredictor struct {
	intent models.Intent
	err    error
	calls  int
}

func (f *fakePredictor) Predict(ctx context.Context, query string) (models.Intent, error) {
	f.calls++
	return f.intent, f.err
}

type fakeFAQ struct {
	question string
	err      error
}

func (f *fakeFAQ) Answer(ctx context.Context, intent models.Intent, question string) (string, error) {
	f.question = question
	if f.err != nil {
		return "", f.err
	}
	return "Havuz 08:00-20:00 arası açıktır.", nil
}

type fakeTickets struct {
	created []string
}

func (f *fakeTickets) Create(ctx context.Context, userID string, intent models.Intent, message string) (string, error) {
	f.created = append(f.created, userID+":"+message)
	return "kayıt alındı", nil
}

type panickyDesk struct{}

func (panickyDesk) Handle(models.Intent) (string, error) { panic("boom") }

type brokenDialog struct{}

func (brokenDialog) Advance(context.Context, string, string) (string, bool, error) {
	return "", false, errors.New("store down")
}
func (brokenDialog) Continue(context.Context, string, string) (string, bool, bool, error) {
	return "", false, false, errors.New("store down")
}
func (brokenDialog) CancelActive(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}

func newTestRouter(p *fakePredictor) (*Router, *fakeFAQ, *fakeTickets) {
	faq := &fakeFAQ{}
	tickets := &fakeTickets{}
	r := &Router{
		Classifier: p,
		Dialog:     booking.NewDialog(session.NewMemoryStore(0)),
		SmallTalk:  smalltalk.NewResponder(),
		Desk:       booking.NewDesk(),
		FAQ:        faq,
		Tickets:    tickets,
	}
	return r, faq, tickets
}

func TestRouteDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("small talk", func(t *testing.T) {
		r, _, _ := newTestRouter(&fakePredictor{intent: models.IntentGreeting})
		resp := r.Route(ctx, "u", "merhaba")
		assert.Equal(t, models.IntentGreeting, resp.Intent)
		assert.NotEmpty(t, resp.Response)
		assert.False(t, resp.Done)
	})

	t.Run("faq", func(t *testing.T) {
		r, faq, _ := newTestRouter(&fakePredictor{intent: models.IntentRoomInfo})
		resp := r.Route(ctx, "u", "havuz kaçta açık")
		assert.Equal(t, "Havuz 08:00-20:00 arası açıktır.", resp.Response)
		assert.Equal(t, "havuz kaçta açık", faq.question)
	})

	t.Run("desk", func(t *testing.T) {
		r, _, _ := newTestRouter(&fakePredictor{intent: models.IntentBookingModify})
		resp := r.Route(ctx, "u", "rezervasyonumu değiştirmek istiyorum")
		assert.Contains(t, resp.Response, booking.ManageURL())
	})

	t.Run("ticket", func(t *testing.T) {
		r, _, tickets := newTestRouter(&fakePredictor{intent: models.IntentComplaint})
		resp := r.Route(ctx, "u", "oda kirli")
		assert.Equal(t, "kayıt alındı", resp.Response)
		assert.Equal(t, []string{"u:oda kirli"}, tickets.created)
	})

	t.Run("unknown", func(t *testing.T) {
		r, _, _ := newTestRouter(&fakePredictor{intent: models.IntentUnknown})
		resp := r.Route(ctx, "u", "asdfgh")
		assert.Equal(t, FallbackReply, resp.Response)
	})

	t.Run("out of range intent", func(t *testing.T) {
		r, _, _ := newTestRouter(&fakePredictor{intent: models.Intent(999)})
		resp := r.Route(ctx, "u", "?")
		assert.Equal(t, FallbackReply, resp.Response)
	})
}

func TestRouteBookingDialogTakesPrecedence(t *testing.T) {
	ctx := context.Background()
	p := &fakePredictor{intent: models.IntentBookingCreate}
	r, _, _ := newTestRouter(p)

	resp := r.Route(ctx, "guest", "rezervasyon yapmak istiyorum")
	assert.Equal(t, booking.Prompt(models.StepAwaitingDateIn), resp.Response)
	assert.Equal(t, 1, p.calls)

	// Later turns never reach the classifier, even if it would say otherwise.
	p.intent = models.IntentGreeting
	steps := []string{"2025-08-01", "2025-08-10", "2", "2", "8,5"}
	for _, msg := range steps {
		resp = r.Route(ctx, "guest", msg)
		assert.Equal(t, models.IntentBookingCreate, resp.Intent)
	}
	assert.Equal(t, 1, p.calls)
	assert.True(t, resp.Done)
	assert.Contains(t, resp.Response, "https://bookings.travelclick.com/114738?")

	// Dialog finished, so classification resumes.
	r.Route(ctx, "guest", "merhaba")
	assert.Equal(t, 2, p.calls)
}

func TestRouteCancelWord(t *testing.T) {
	ctx := context.Background()
	p := &fakePredictor{intent: models.IntentBookingCreate}
	r, _, _ := newTestRouter(p)

	r.Route(ctx, "guest", "rezervasyon")
	resp := r.Route(ctx, "guest", "  Vazgeç! ")
	assert.Equal(t, models.IntentBookingCancel, resp.Intent)
	assert.Equal(t, booking.MsgCancelled, resp.Response)

	active, err := r.Dialog.(*booking.Dialog).Active(ctx, "guest")
	require.NoError(t, err)
	assert.False(t, active)

	// With no dialog in progress a cancel word is classified like any message.
	p.intent = models.IntentGreeting
	resp = r.Route(ctx, "guest", "iptal")
	assert.Equal(t, models.IntentGreeting, resp.Intent)
	assert.Equal(t, 2, p.calls)
}

func TestRouteFailuresReturnTryAgain(t *testing.T) {
	ctx := context.Background()

	t.Run("classifier", func(t *testing.T) {
		r, _, _ := newTestRouter(&fakePredictor{err: errors.New("quota")})
		resp := r.Route(ctx, "u", "merhaba")
		assert.Equal(t, TryAgainReply, resp.Response)
	})

	t.Run("handler", func(t *testing.T) {
		r, faq, _ := newTestRouter(&fakePredictor{intent: models.IntentDiningInfo})
		faq.err = errors.New("llm down")
		resp := r.Route(ctx, "u", "kahvaltı saat kaçta")
		assert.Equal(t, models.IntentDiningInfo, resp.Intent)
		assert.Equal(t, TryAgainReply, resp.Response)
	})

	t.Run("session store", func(t *testing.T) {
		r, _, _ := newTestRouter(&fakePredictor{intent: models.IntentGreeting})
		r.Dialog = brokenDialog{}
		resp := r.Route(ctx, "u", "merhaba")
		assert.Equal(t, TryAgainReply, resp.Response)
		resp = r.Route(ctx, "u", "iptal")
		assert.Equal(t, models.IntentBookingCancel, resp.Intent)
		assert.Equal(t, TryAgainReply, resp.Response)
	})

	t.Run("panic", func(t *testing.T) {
		r, _, _ := newTestRouter(&fakePredictor{intent: models.IntentBookingStatus})
		r.Desk = panickyDesk{}
		resp := r.Route(ctx, "u", "rezervasyonum ne durumda")
		assert.Equal(t, TryAgainReply, resp.Response)
	})
}

func TestIsCancel(t *testing.T) {
	assert.True(t, isCancel("iptal"))
	assert.True(t, isCancel("CANCEL."))
	assert.True(t, isCancel("vazgeçtim"))
	assert.False(t, isCancel("iptal politikası nedir"))
	assert.False(t, isCancel("2025-08-01"))
}
