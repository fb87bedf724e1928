package types

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{BOOKING_PENDING, BOOKING_CONFIRMED, true},
		{BOOKING_PENDING, BOOKING_REJECTED, true},
		{BOOKING_PENDING, BOOKING_CANCELLED, true},
		{BOOKING_PENDING, BOOKING_PENDING, false},
		{BOOKING_CONFIRMED, BOOKING_CANCELLED, false},
		{BOOKING_CONFIRMED, BOOKING_PENDING, false},
		{BOOKING_CONFIRMED, BOOKING_REJECTED, false},
		{BOOKING_REJECTED, BOOKING_CONFIRMED, false},
		{BOOKING_REJECTED, BOOKING_PENDING, false},
		{BOOKING_CANCELLED, BOOKING_CONFIRMED, false},
		{BOOKING_CANCELLED, BOOKING_PENDING, false},
	}
	for _, c := range cases {
		got := c.from.CanTransitionTo(c.to)
		assert.Equalf(t, c.allowed, got, "%s -> %s", c.from, c.to)
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.False(t, BOOKING_PENDING.IsTerminal())
	assert.True(t, BOOKING_CONFIRMED.IsTerminal())
	assert.True(t, BOOKING_REJECTED.IsTerminal())
	assert.True(t, BOOKING_CANCELLED.IsTerminal())
}

func TestBookingStatusReleasesSlot(t *testing.T) {
	assert.False(t, BOOKING_CONFIRMED.ReleasesSlot())
	assert.True(t, BOOKING_REJECTED.ReleasesSlot())
	assert.True(t, BOOKING_CANCELLED.ReleasesSlot())
	assert.False(t, BOOKING_PENDING.ReleasesSlot())
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrOutOfHours, http.StatusBadRequest},
		{ErrDuplicate, http.StatusBadRequest},
		{ErrInvalidRange, http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{ErrForbidden, http.StatusForbidden},
		{ErrSlotConflict, http.StatusConflict},
		{ErrInternal, http.StatusInternalServerError},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equalf(t, c.status, ErrorStatus(c.err), "%v", c.err)
	}
}

func TestErrorMessageHidesInternalDetail(t *testing.T) {
	assert.Equal(t, ErrInternal.Error(), ErrorMessage(errors.New("pq: relation does not exist")))
	assert.Equal(t, ErrSlotConflict.Error(), ErrorMessage(ErrSlotConflict))
}

func TestValidSlotDuration(t *testing.T) {
	for _, d := range SlotDurations {
		assert.True(t, ValidSlotDuration(d))
	}
	assert.False(t, ValidSlotDuration(0))
	assert.False(t, ValidSlotDuration(45))
	assert.False(t, ValidSlotDuration(150))
}

func TestStringListRoundTrip(t *testing.T) {
	photos := StringList{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b,c.jpg"}

	value, err := photos.Value()
	assert.Nil(t, err)

	var decoded StringList
	err = decoded.Scan([]byte(value.(string)))
	assert.Nil(t, err)
	assert.Equal(t, photos, decoded)

	err = decoded.Scan("not bytes")
	assert.NotNil(t, err)
}
