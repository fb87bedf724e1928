package models

import (
	"rbs/src/types"
	"time"
)

type User struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	Email      string     `gorm:"uniqueIndex" json:"email,omitempty"`
	Password   string     `json:"-"`
	Name       string     `json:"name,omitempty"`
	Role       types.Role `json:"role,omitempty"`
	IsApproved bool       `json:"is_approved"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	Restaurants []Restaurant `gorm:"foreignKey:owner_id" json:"restaurants,omitempty"`
	Bookings    []Booking    `gorm:"foreignKey:user_id" json:"bookings,omitempty"`

	types.Timestamps
}
