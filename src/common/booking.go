package common

import (
	"errors"
	"strings"

	"rbs/src/models"
	"rbs/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClaimSlot atomically flips a free slot to booked. The WHERE clause
// carries the is_booked guard so two concurrent claims resolve in the
// storage layer: exactly one update affects a row, the other gets
// ErrSlotConflict. Never split this into a read followed by a write.
func ClaimSlot(tx *gorm.DB, slotID uint) error {
	res := tx.
		Model(&models.Slot{}).
		Where("id = ? AND is_booked = ?", slotID, false).
		Update("is_booked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.ErrSlotConflict
	}
	return nil
}

// ReleaseSlot frees a slot. Releasing an already-free slot is a no-op.
func ReleaseSlot(tx *gorm.DB, slotID uint) error {
	return tx.
		Model(&models.Slot{}).
		Where("id = ?", slotID).
		Update("is_booked", false).
		Error
}

// CreateBooking claims the slot and inserts the pending booking in one
// transaction. The slot's time is re-validated against the restaurant's
// current hours, not the hours at slot-creation time.
func CreateBooking(gdb *gorm.DB, p types.Principal, params *types.CreateBookingRequestBody) (*models.Booking, error) {
	var booking models.Booking
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.
			Where(&models.Restaurant{ID: params.RestaurantID}).
			First(&restaurant).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		var slot models.Slot
		if err := tx.
			Where(&models.Slot{ID: params.SlotID}).
			First(&slot).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		if slot.RestaurantID != restaurant.ID {
			return types.ErrNotFound
		}
		if !WithinHours(slot.Time, restaurant.OpeningHours, restaurant.ClosingHours) {
			return types.ErrOutOfHours
		}
		if err := ClaimSlot(tx, slot.ID); err != nil {
			return err
		}
		booking = models.Booking{
			UserID:       p.ID,
			RestaurantID: restaurant.ID,
			SlotID:       slot.ID,
			PartySize:    params.PartySize,
			Status:       types.BOOKING_PENDING,
			Reference:    NewBookingReference(),
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// TransitionBooking moves a booking to next on behalf of the restaurant's
// owner or an admin. Entering cancelled or rejected releases the slot in
// the same transaction, before the status write lands.
func TransitionBooking(gdb *gorm.DB, p types.Principal, bookingID uint, next types.BookingStatus) (*models.Booking, error) {
	var booking models.Booking
	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(&models.Booking{ID: bookingID}).
			Preload("Restaurant").
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		if !CanAct(p, booking.Restaurant.OwnerID, types.ROLE_OWNER) {
			return types.ErrForbidden
		}
		if !booking.Status.CanTransitionTo(next) {
			return types.ErrValidation
		}
		if next.ReleasesSlot() {
			if err := ReleaseSlot(tx, booking.SlotID); err != nil {
				return err
			}
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Update("status", next).
			Error; err != nil {
			return err
		}
		booking.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CancelBooking is the customer-initiated cancellation: permitted for the
// booking's own customer or an admin, same slot release as a transition
// to cancelled.
func CancelBooking(gdb *gorm.DB, p types.Principal, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(&models.Booking{ID: bookingID}).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		if !CanAct(p, booking.UserID, types.ROLE_CUSTOMER) {
			return types.ErrForbidden
		}
		if !booking.Status.CanTransitionTo(types.BOOKING_CANCELLED) {
			return types.ErrValidation
		}
		if err := ReleaseSlot(tx, booking.SlotID); err != nil {
			return err
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Update("status", types.BOOKING_CANCELLED).
			Error; err != nil {
			return err
		}
		booking.Status = types.BOOKING_CANCELLED
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// NewBookingReference issues the short code printed on confirmations and
// encoded in the door-side QR.
func NewBookingReference() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
