package common

import (
	"time"

	"rbs/src/config"
	"rbs/src/models"
	"rbs/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TimeGrid derives the ordered bookable start-times for one restaurant-day:
// every step minutes from opening up to but excluding closing. Returns
// ErrInvalidRange when the window is empty or inverted.
func TimeGrid(opening string, closing string, step uint) ([]string, error) {
	start, err := time.Parse(config.TIME_PARSE_FORMAT, opening)
	if err != nil {
		return nil, types.ErrValidation
	}
	end, err := time.Parse(config.TIME_PARSE_FORMAT, closing)
	if err != nil {
		return nil, types.ErrValidation
	}
	if !end.After(start) {
		return nil, types.ErrInvalidRange
	}
	var grid []string
	for current := start; current.Before(end); current = current.Add(time.Duration(step) * time.Minute) {
		grid = append(grid, current.Format(config.TIME_PARSE_FORMAT))
	}
	return grid, nil
}

// WithinHours reports whether a slot start-time falls inside the half-open
// window [opening, closing). Bookings re-check this against the current
// hours, so slots generated before an hours change stop being bookable.
func WithinHours(slotTime string, opening string, closing string) bool {
	t, err := time.Parse(config.TIME_PARSE_FORMAT, slotTime)
	if err != nil {
		return false
	}
	start, err := time.Parse(config.TIME_PARSE_FORMAT, opening)
	if err != nil {
		return false
	}
	end, err := time.Parse(config.TIME_PARSE_FORMAT, closing)
	if err != nil {
		return false
	}
	return !t.Before(start) && t.Before(end)
}

// EnsureSlots materializes the grid for (restaurant, date), skipping rows
// that already exist. Re-running for the same day creates nothing and
// reports the full grid as skipped. The OnConflict clause keeps a
// concurrent generation for the same day from failing the whole batch.
func EnsureSlots(tx *gorm.DB, restaurant *models.Restaurant, date time.Time) (created []models.Slot, skipped int, err error) {
	grid, err := TimeGrid(restaurant.OpeningHours, restaurant.ClosingHours, restaurant.SlotDuration)
	if err != nil {
		return nil, 0, err
	}
	var existing []string
	if err := tx.
		Model(&models.Slot{}).
		Where(&models.Slot{RestaurantID: restaurant.ID, Date: date}).
		Pluck("time", &existing).
		Error; err != nil {
		return nil, 0, err
	}
	taken := make(map[string]bool, len(existing))
	for _, t := range existing {
		taken[t] = true
	}
	rows := make([]models.Slot, 0, len(grid))
	for _, t := range grid {
		if taken[t] {
			skipped++
			continue
		}
		rows = append(rows, models.Slot{
			RestaurantID: restaurant.ID,
			Date:         date,
			Time:         t,
		})
	}
	if len(rows) == 0 {
		return []models.Slot{}, skipped, nil
	}
	res := tx.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		return nil, 0, res.Error
	}
	// A concurrent generation for the same day may have won some rows; the
	// conflicted ones come back without an id and count as skipped.
	created = make([]models.Slot, 0, len(rows))
	for _, row := range rows {
		if row.ID != 0 {
			created = append(created, row)
		}
	}
	skipped += len(rows) - len(created)
	return created, skipped, nil
}

// ListSlots returns the slots for a restaurant ordered by (date, time),
// optionally narrowed to one day.
func ListSlots(tx *gorm.DB, restaurantID uint, date *time.Time) ([]models.Slot, error) {
	var slots []models.Slot
	q := tx.
		Model(&models.Slot{}).
		Where(&models.Slot{RestaurantID: restaurantID})
	if date != nil {
		q = q.Where("date = ?", *date)
	}
	if err := q.
		Order("date asc, time asc").
		Find(&slots).
		Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// DeleteUnbookedSlots removes free slots for a restaurant, optionally for
// one day only. Booked rows are never touched so an active booking's slot
// reference cannot be orphaned. Rows are deleted for real: a soft-deleted
// slot would keep its (restaurant, date, time) key under the unique index
// and block the day from ever being regenerated.
func DeleteUnbookedSlots(tx *gorm.DB, restaurantID uint, date *time.Time) (int64, error) {
	q := tx.
		Where("restaurant_id = ?", restaurantID).
		Where("is_booked = ?", false)
	if date != nil {
		q = q.Where("date = ?", *date)
	}
	res := q.Unscoped().Delete(&models.Slot{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// PurgeStaleSlots drops unbooked slots dated before cutoff across all
// restaurants. Run nightly from boot.
func PurgeStaleSlots(tx *gorm.DB, cutoff time.Time) (int64, error) {
	res := tx.
		Where("is_booked = ?", false).
		Where("date < ?", cutoff).
		Unscoped().
		Delete(&models.Slot{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ParseDate reads a calendar date in the wire format.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(config.DATE_PARSE_FORMAT, value)
	if err != nil {
		return time.Time{}, types.ErrValidation
	}
	return d, nil
}
