package common

import (
	"log"
	"regexp"
	"testing"

	"rbs/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockdb, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: mockdb,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return gormDB, mock
}

func TestClaimSlotWinsFreeSlot(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "slots"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := gdb.Transaction(func(tx *gorm.DB) error {
		return ClaimSlot(tx, 42)
	})
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestClaimSlotConflictWhenAlreadyBooked(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "slots"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := gdb.Transaction(func(tx *gorm.DB) error {
		return ClaimSlot(tx, 42)
	})
	assert.ErrorIs(t, err, types.ErrSlotConflict)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReleaseSlotIdempotent(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "slots"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Zero rows affected means the slot was already free. Not an error.
	err := gdb.Transaction(func(tx *gorm.DB) error {
		return ReleaseSlot(tx, 42)
	})
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestTransitionBookingRejectedReleasesSlotFirst(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "restaurant_id", "slot_id", "status"}).
			AddRow(5, 9, 3, 42, "pending"))
	mock.ExpectQuery(`SELECT (.+) FROM "restaurants"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id"}).AddRow(3, 7))
	// Expectations are ordered: the slot release has to land before the
	// status write, inside the same transaction.
	mock.ExpectExec(`UPDATE "slots"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	owner := types.Principal{ID: 7, Role: types.ROLE_OWNER}
	booking, err := TransitionBooking(gdb, owner, 5, types.BOOKING_REJECTED)
	assert.Nil(t, err)
	assert.Equal(t, types.BOOKING_REJECTED, booking.Status)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestTransitionBookingConfirmedKeepsSlot(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "restaurant_id", "slot_id", "status"}).
			AddRow(5, 9, 3, 42, "pending"))
	mock.ExpectQuery(`SELECT (.+) FROM "restaurants"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id"}).AddRow(3, 7))
	// Confirming keeps the slot claimed: the next statement is the status
	// write, not a slots update.
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	owner := types.Principal{ID: 7, Role: types.ROLE_OWNER}
	booking, err := TransitionBooking(gdb, owner, 5, types.BOOKING_CONFIRMED)
	assert.Nil(t, err)
	assert.Equal(t, types.BOOKING_CONFIRMED, booking.Status)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestTransitionBookingTerminalStateRejected(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "restaurant_id", "slot_id", "status"}).
			AddRow(5, 9, 3, 42, "cancelled"))
	mock.ExpectQuery(`SELECT (.+) FROM "restaurants"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id"}).AddRow(3, 7))
	mock.ExpectRollback()

	owner := types.Principal{ID: 7, Role: types.ROLE_OWNER}
	booking, err := TransitionBooking(gdb, owner, 5, types.BOOKING_CONFIRMED)
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Nil(t, booking)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCancelBookingReleasesSlot(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "restaurant_id", "slot_id", "status"}).
			AddRow(5, 9, 3, 42, "pending"))
	mock.ExpectExec(`UPDATE "slots"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	customer := types.Principal{ID: 9, Role: types.ROLE_CUSTOMER}
	booking, err := CancelBooking(gdb, customer, 5)
	assert.Nil(t, err)
	assert.Equal(t, types.BOOKING_CANCELLED, booking.Status)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCancelBookingForbiddenForOtherCustomer(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "restaurant_id", "slot_id", "status"}).
			AddRow(5, 9, 3, 42, "pending"))
	mock.ExpectRollback()

	stranger := types.Principal{ID: 8, Role: types.ROLE_CUSTOMER}
	booking, err := CancelBooking(gdb, stranger, 5)
	assert.ErrorIs(t, err, types.ErrForbidden)
	assert.Nil(t, booking)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestNewBookingReference(t *testing.T) {
	seen := map[string]bool{}
	pattern := regexp.MustCompile(`^[0-9A-F]{12}$`)
	for i := 0; i < 50; i++ {
		ref := NewBookingReference()
		assert.Regexp(t, pattern, ref)
		assert.False(t, seen[ref])
		seen[ref] = true
	}
}
