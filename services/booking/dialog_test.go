package booking

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"concierge/models"
	"concierge/services/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails Save or Clear on demand.
type flakyStore struct {
	session.Store
	failSave  bool
	failClear bool
}

var errBackend = errors.New("backend down")

func (f *flakyStore) Save(ctx context.Context, userID string, st *models.BookingState) error {
	if f.failSave {
		return errBackend
	}
	return f.Store.Save(ctx, userID, st)
}

func (f *flakyStore) Clear(ctx context.Context, userID string) error {
	if f.failClear {
		return errBackend
	}
	return f.Store.Clear(ctx, userID)
}

func newTestDialog(strict bool) (*Dialog, *session.MemoryStore) {
	store := session.NewMemoryStore(time.Hour)
	return NewDialog(store, WithStrictDates(strict)), store
}

func say(t *testing.T, d *Dialog, user string, msgs ...string) (string, bool) {
	t.Helper()
	var reply string
	var done bool
	for _, m := range msgs {
		var err error
		reply, done, err = d.Advance(context.Background(), user, m)
		require.NoError(t, err)
	}
	return reply, done
}

func linkFrom(t *testing.T, reply string) url.Values {
	t.Helper()
	i := strings.Index(reply, "https://")
	require.GreaterOrEqual(t, i, 0, "reply has no link: %s", reply)
	u, err := url.Parse(reply[i:])
	require.NoError(t, err)
	return u.Query()
}

func TestDialogGreetsFirst(t *testing.T) {
	for _, first := range []string{"rezervasyon yapmak istiyorum", "2025-08-01", "", "5"} {
		d, store := newTestDialog(true)
		reply, done := say(t, d, "guest", first)
		assert.Equal(t, Prompt(models.StepAwaitingDateIn), reply)
		assert.False(t, done)

		st, err := store.Load(context.Background(), "guest")
		require.NoError(t, err)
		assert.Nil(t, st.DateIn, "first message is never consumed as a slot")
		assert.Equal(t, models.StepAwaitingDateIn, st.Step)
	}
}

func TestDialogEndToEnd(t *testing.T) {
	d, store := newTestDialog(true)
	ctx := context.Background()

	reply, done := say(t, d, "u1", "rezervasyon")
	assert.Equal(t, Prompt(models.StepAwaitingDateIn), reply)

	steps := []struct {
		msg  string
		want string
	}{
		{"2025-08-01", Prompt(models.StepAwaitingDateOut)},
		{"2025-08-10", Prompt(models.StepAwaitingRooms)},
		{"2", Prompt(models.StepAwaitingAdults)},
		{"2", Prompt(models.StepAwaitingChildAges)},
	}
	for _, s := range steps {
		reply, done = say(t, d, "u1", s.msg)
		assert.Equal(t, s.want, reply, s.msg)
		assert.False(t, done)
	}

	reply, done = say(t, d, "u1", "8,5")
	assert.True(t, done)
	assert.True(t, strings.HasPrefix(reply, "Rezervasyon bağlantınız hazır → https://bookings.travelclick.com/114738?"))

	q := linkFrom(t, reply)
	assert.Equal(t, "08/01/2025", q.Get("datein"))
	assert.Equal(t, "08/10/2025", q.Get("dateout"))
	assert.Equal(t, "2", q.Get("rooms"))
	assert.Equal(t, "2", q.Get("adults"))
	assert.Equal(t, "2", q.Get("children"))
	assert.Equal(t, "08,05", q.Get("childage"))

	ok, err := store.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok, "record is deleted on completion")

	st, created, err := store.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.NewBookingState().Step, st.Step)
	assert.Equal(t, 1, st.Rooms)
	assert.Equal(t, 2, st.Adults)
}

func TestDialogNoChildren(t *testing.T) {
	d, _ := newTestDialog(true)
	reply, done := say(t, d, "u", "hi", "2025-08-01", "2025-08-03", "1", "1", "0")
	require.True(t, done)
	q := linkFrom(t, reply)
	assert.Empty(t, q.Get("children"))
	assert.Empty(t, q.Get("childage"))
}

func TestDialogRejectionsKeepState(t *testing.T) {
	tests := []struct {
		name  string
		setup []string
		bad   string
		want  string
		step  models.BookingStep
	}{
		{"bad date-in", nil, "1 Ağustos", MsgBadDateFormat, models.StepAwaitingDateIn},
		{"bad date-out", []string{"2025-08-01"}, "2025/08/10", MsgBadDateFormat, models.StepAwaitingDateOut},
		{"rooms zero", []string{"2025-08-01", "2025-08-10"}, "0", MsgRoomsRange, models.StepAwaitingRooms},
		{"rooms ten", []string{"2025-08-01", "2025-08-10"}, "10", MsgRoomsRange, models.StepAwaitingRooms},
		{"rooms word", []string{"2025-08-01", "2025-08-10"}, "iki", MsgRoomsRange, models.StepAwaitingRooms},
		{"adults negative", []string{"2025-08-01", "2025-08-10", "1"}, "-1", MsgAdultsRange, models.StepAwaitingAdults},
		{"rooms padded", []string{"2025-08-01", "2025-08-10"}, " 3", MsgRoomsRange, models.StepAwaitingRooms},
		{"adults padded", []string{"2025-08-01", "2025-08-10", "1"}, "2 ", MsgAdultsRange, models.StepAwaitingAdults},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, store := newTestDialog(true)
			say(t, d, "u", append([]string{"start"}, tt.setup...)...)
			before, err := store.Load(context.Background(), "u")
			require.NoError(t, err)

			reply, done := say(t, d, "u", tt.bad)
			assert.Equal(t, tt.want, reply)
			assert.False(t, done)

			after, err := store.Load(context.Background(), "u")
			require.NoError(t, err)
			assert.Equal(t, tt.step, after.Step)
			assert.Equal(t, before.DateIn, after.DateIn)
			assert.Equal(t, before.DateOut, after.DateOut)
			assert.Equal(t, before.Rooms, after.Rooms)
			assert.Equal(t, before.Adults, after.Adults)
		})
	}
}

func TestDialogStrictDates(t *testing.T) {
	d, _ := newTestDialog(true)
	reply, _ := say(t, d, "u", "start", "2025-13-40")
	assert.Equal(t, MsgBadCalendar, reply)

	reply, _ = say(t, d, "u", "2025-08-10", "2025-08-01")
	assert.Equal(t, MsgDateOrder, reply)

	reply, _ = say(t, d, "u", "2025-08-10")
	assert.Equal(t, MsgDateOrder, reply, "same-day checkout is rejected")

	reply, _ = say(t, d, "u", "2025-08-12")
	assert.Equal(t, Prompt(models.StepAwaitingRooms), reply)
}

func TestDialogLenientDatesRecoverAtBuild(t *testing.T) {
	d, store := newTestDialog(false)
	ctx := context.Background()

	reply, done := say(t, d, "u", "start", "2025-13-40", "2025-08-10", "2", "3", "4")
	assert.Equal(t, MsgDatesRejected, reply)
	assert.False(t, done)

	st, err := store.Load(ctx, "u")
	require.NoError(t, err)
	assert.True(t, st.Reentry)
	assert.Equal(t, models.StepAwaitingDateIn, st.Step)
	assert.Nil(t, st.DateIn)
	assert.Nil(t, st.DateOut)
	assert.Equal(t, 2, st.Rooms)
	assert.Equal(t, 3, st.Adults)
	assert.Equal(t, []int{4}, st.ChildAges)

	reply, done = say(t, d, "u", "2025-09-01")
	assert.Equal(t, Prompt(models.StepAwaitingDateOut), reply)
	assert.False(t, done)

	reply, done = say(t, d, "u", "2025-09-05")
	require.True(t, done, "dialog completes right after the date pair is re-entered")
	q := linkFrom(t, reply)
	assert.Equal(t, "09/01/2025", q.Get("datein"))
	assert.Equal(t, "2", q.Get("rooms"))
	assert.Equal(t, "3", q.Get("adults"))
	assert.Equal(t, "04", q.Get("childage"))

	ok, err := store.Exists(ctx, "u")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDialogStoreFailureLeavesRecord(t *testing.T) {
	ctx := context.Background()
	mem := session.NewMemoryStore(time.Hour)
	flaky := &flakyStore{Store: mem}
	d := NewDialog(flaky)

	say(t, d, "u", "start", "2025-08-01")
	before, err := mem.Load(ctx, "u")
	require.NoError(t, err)

	flaky.failSave = true
	_, _, err = d.Advance(ctx, "u", "2025-08-10")
	assert.ErrorIs(t, err, errBackend)

	after, err := mem.Load(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, before.Step, after.Step)
	assert.Nil(t, after.DateOut)

	flaky.failSave = false
	say(t, d, "u", "2025-08-10", "1", "2")
	flaky.failClear = true
	_, done, err := d.Advance(ctx, "u", "0")
	assert.ErrorIs(t, err, errBackend)
	assert.False(t, done)

	after, err = mem.Load(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, models.StepAwaitingChildAges, after.Step)
	assert.Empty(t, after.ChildAges)
}

func TestDialogCancelAndActive(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDialog(true)

	active, err := d.Active(ctx, "u")
	require.NoError(t, err)
	assert.False(t, active)

	say(t, d, "u", "start", "2025-08-01")
	active, err = d.Active(ctx, "u")
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, d.Cancel(ctx, "u"))
	require.NoError(t, d.Cancel(ctx, "u"))
	active, err = d.Active(ctx, "u")
	require.NoError(t, err)
	assert.False(t, active)

	reply, _ := say(t, d, "u", "2025-08-01")
	assert.Equal(t, Prompt(models.StepAwaitingDateIn), reply, "a cancelled dialog starts over")
}

func TestDialogContinueAndCancelActive(t *testing.T) {
	ctx := context.Background()
	d, store := newTestDialog(true)

	_, _, active, err := d.Continue(ctx, "u", "2025-08-01")
	require.NoError(t, err)
	assert.False(t, active)
	exists, err := store.Exists(ctx, "u")
	require.NoError(t, err)
	assert.False(t, exists, "no dialog is started")

	cancelled, err := d.CancelActive(ctx, "u")
	require.NoError(t, err)
	assert.False(t, cancelled)

	say(t, d, "u", "start")
	reply, done, active, err := d.Continue(ctx, "u", "2025-08-01")
	require.NoError(t, err)
	assert.True(t, active)
	assert.False(t, done)
	assert.Equal(t, Prompt(models.StepAwaitingDateOut), reply)

	cancelled, err = d.CancelActive(ctx, "u")
	require.NoError(t, err)
	assert.True(t, cancelled)
	exists, err = store.Exists(ctx, "u")
	require.NoError(t, err)
	assert.False(t, exists)
}

// gatedStore blocks Clear until released.
type gatedStore struct {
	session.Store
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Clear(ctx context.Context, userID string) error {
	close(g.entered)
	<-g.release
	return g.Store.Clear(ctx, userID)
}

func TestDialogContinueWaitsForCompletingTurn(t *testing.T) {
	ctx := context.Background()
	mem := session.NewMemoryStore(time.Hour)
	gate := &gatedStore{Store: mem, entered: make(chan struct{}), release: make(chan struct{})}
	d := NewDialog(gate)
	say(t, d, "u", "start", "2025-08-01", "2025-08-10", "1", "2")

	finished := make(chan bool)
	go func() {
		_, done, err := d.Advance(ctx, "u", "0")
		assert.NoError(t, err)
		finished <- done
	}()
	<-gate.entered

	type turn struct {
		reply  string
		active bool
	}
	follow := make(chan turn)
	go func() {
		reply, _, active, err := d.Continue(ctx, "u", "merhaba")
		assert.NoError(t, err)
		follow <- turn{reply, active}
	}()

	// The follow-up must not see the record the completing turn is clearing.
	time.Sleep(20 * time.Millisecond)
	close(gate.release)
	assert.True(t, <-finished)

	got := <-follow
	assert.False(t, got.active)
	assert.Empty(t, got.reply)
	exists, err := mem.Exists(ctx, "u")
	require.NoError(t, err)
	assert.False(t, exists, "no new dialog is started")
}

func TestDialogUnknownStepRestarts(t *testing.T) {
	ctx := context.Background()
	d, store := newTestDialog(true)
	st := models.NewBookingState()
	st.Step = "payment"
	require.NoError(t, store.Save(ctx, "u", st))

	reply, done := say(t, d, "u", "anything")
	assert.Equal(t, Prompt(models.StepAwaitingDateIn), reply)
	assert.False(t, done)
	got, err := store.Load(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, models.StepAwaitingDateIn, got.Step)
}

func TestDialogUsersAreIsolated(t *testing.T) {
	d, _ := newTestDialog(true)
	const users = 20

	var wg sync.WaitGroup
	links := make([]url.Values, users)
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("guest-%d", i)
			day := fmt.Sprintf("2025-08-%02d", i+1)
			out := fmt.Sprintf("2025-09-%02d", i+1)
			rooms := fmt.Sprintf("%d", i%9+1)
			var reply string
			for _, m := range []string{"start", day, out, rooms, "2", "0"} {
				r, _, err := d.Advance(context.Background(), user, m)
				if err != nil {
					t.Error(err)
					return
				}
				reply = r
			}
			u, err := url.Parse(reply[strings.Index(reply, "https://"):])
			if err != nil {
				t.Error(err)
				return
			}
			links[i] = u.Query()
		}(i)
	}
	wg.Wait()

	for i, q := range links {
		require.NotNil(t, q, "guest-%d", i)
		assert.Equal(t, fmt.Sprintf("08/%02d/2025", i+1), q.Get("datein"))
		assert.Equal(t, fmt.Sprintf("%d", i%9+1), q.Get("rooms"))
	}
}

func TestDialogSameUserConcurrentTurns(t *testing.T) {
	d, store := newTestDialog(true)
	say(t, d, "u", "start", "2025-08-01", "2025-08-10")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := d.Advance(context.Background(), "u", "3")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Turns are serialised: one answered rooms, the other answered adults.
	st, err := store.Load(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, models.StepAwaitingChildAges, st.Step)
	assert.Equal(t, 3, st.Rooms)
	assert.Equal(t, 3, st.Adults)
}

func TestDesk(t *testing.T) {
	desk := NewDesk()
	for _, intent := range []models.Intent{models.IntentBookingModify, models.IntentBookingCancel, models.IntentBookingStatus} {
		reply, err := desk.Handle(intent)
		require.NoError(t, err)
		assert.Contains(t, reply, "https://bookings.travelclick.com/114738")
	}
	_, err := desk.Handle(models.IntentGreeting)
	assert.Error(t, err)
}
