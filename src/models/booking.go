package models

import "rbs/src/types"

type Booking struct {
	ID           uint                `gorm:"primarykey" json:"id"`
	UserID       uint                `json:"user_id,omitempty"`
	RestaurantID uint                `json:"restaurant_id,omitempty"`
	SlotID       uint                `json:"slot_id,omitempty"`
	PartySize    uint                `json:"party_size,omitempty"`
	Status       types.BookingStatus `gorm:"default:'pending'" json:"status,omitempty"`
	Reference    string              `gorm:"index" json:"reference,omitempty"`

	User       *User       `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Restaurant *Restaurant `gorm:"foreignKey:restaurant_id" json:"restaurant,omitempty"`
	Slot       *Slot       `gorm:"foreignKey:slot_id" json:"slot,omitempty"`

	types.Timestamps
}
