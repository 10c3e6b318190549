package models

import "time"

// BookingStep is the slot a booking dialog is waiting for.
type BookingStep string

const (
	StepAwaitingDateIn    BookingStep = "date_in"
	StepAwaitingDateOut   BookingStep = "date_out"
	StepAwaitingRooms     BookingStep = "rooms"
	StepAwaitingAdults    BookingStep = "adults"
	StepAwaitingChildAges BookingStep = "child"
)

// BookingSteps lists the slots in collection order.
var BookingSteps = []BookingStep{
	StepAwaitingDateIn,
	StepAwaitingDateOut,
	StepAwaitingRooms,
	StepAwaitingAdults,
	StepAwaitingChildAges,
}

// Next returns the step after s. The last step returns itself.
func (s BookingStep) Next() BookingStep {
	for i, step := range BookingSteps {
		if step == s && i+1 < len(BookingSteps) {
			return BookingSteps[i+1]
		}
	}
	return s
}

const (
	DefaultRooms  = 1
	DefaultAdults = 2
)

// BookingState is one user's booking dialog in progress.
type BookingState struct {
	Step      BookingStep `json:"step"`
	DateIn    *string     `json:"dateIn,omitempty"`
	DateOut   *string     `json:"dateOut,omitempty"`
	Rooms     int         `json:"rooms"`
	Adults    int         `json:"adults"`
	ChildAges []int       `json:"childAges"`

	// Reentry is set after a failed link build while the guest re-enters dates.
	Reentry bool `json:"reentry,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewBookingState returns a record with default slot values.
func NewBookingState() *BookingState {
	now := time.Now()
	return &BookingState{
		Step:      StepAwaitingDateIn,
		Rooms:     DefaultRooms,
		Adults:    DefaultAdults,
		ChildAges: []int{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers can mutate without touching the stored record.
func (b *BookingState) Clone() *BookingState {
	if b == nil {
		return nil
	}
	c := *b
	if b.DateIn != nil {
		v := *b.DateIn
		c.DateIn = &v
	}
	if b.DateOut != nil {
		v := *b.DateOut
		c.DateOut = &v
	}
	c.ChildAges = append([]int{}, b.ChildAges...)
	return &c
}
