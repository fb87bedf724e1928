package models

import (
	"rbs/src/types"
	"time"
)

// Slot is one bookable (restaurant, date, time) unit of capacity. The
// composite unique index is the concurrency safety net: bulk generation
// no-ops per row on conflict, and the claim path flips is_booked with a
// conditional update rather than a read-then-write.
type Slot struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	RestaurantID uint      `gorm:"uniqueIndex:idx_slot_grid" json:"restaurant_id,omitempty"`
	Date         time.Time `gorm:"type:date;uniqueIndex:idx_slot_grid" json:"date,omitempty"`
	Time         string    `gorm:"uniqueIndex:idx_slot_grid" json:"time,omitempty"`
	IsBooked     bool      `gorm:"default:false" json:"is_booked"`

	Restaurant *Restaurant `gorm:"foreignKey:restaurant_id" json:"-"`

	types.Timestamps
}
