package models

import "rbs/src/types"

type Review struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	UserID       uint   `json:"user_id,omitempty"`
	RestaurantID uint   `json:"restaurant_id,omitempty"`
	Rating       uint             `json:"rating,omitempty"`
	Comment      string           `json:"comment,omitempty"`
	Photos       types.StringList `gorm:"type:jsonb" json:"photos,omitempty"`

	User       *User       `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Restaurant *Restaurant `gorm:"foreignKey:restaurant_id" json:"restaurant,omitempty"`

	types.Timestamps
}
