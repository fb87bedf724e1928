package models

import "rbs/src/types"

type Restaurant struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Name         string `json:"name,omitempty"`
	Slug         string `gorm:"index" json:"slug,omitempty"`
	Address      string `json:"address,omitempty"`
	Cuisine      string `json:"cuisine,omitempty"`
	OwnerID      uint   `json:"owner_id,omitempty"`
	OpeningHours string `json:"opening_hours,omitempty"`
	ClosingHours string `json:"closing_hours,omitempty"`
	SlotDuration uint   `gorm:"default:60" json:"slot_duration,omitempty"`

	Owner *User      `gorm:"foreignKey:owner_id" json:"owner,omitempty"`
	Menu  []MenuItem `gorm:"foreignKey:restaurant_id" json:"menu,omitempty"`
	Slots []Slot     `gorm:"foreignKey:restaurant_id" json:"slots,omitempty"`

	types.Timestamps
}

type MenuItem struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	RestaurantID uint    `json:"restaurant_id,omitempty"`
	Name         string  `json:"name,omitempty"`
	Description  string  `json:"description,omitempty"`
	Price        float32 `json:"price,omitempty"`
	Category     string  `json:"category,omitempty"`

	Restaurant *Restaurant `gorm:"foreignKey:restaurant_id" json:"-"`

	types.Timestamps
}
