package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type StringList []string

func (a StringList) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *StringList) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Role string

const (
	ROLE_CUSTOMER Role = "customer"
	ROLE_OWNER    Role = "owner"
	ROLE_ADMIN    Role = "admin"
)

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_REJECTED  BookingStatus = "rejected"
	BOOKING_CANCELLED BookingStatus = "cancelled"
)

// IsValid reports whether s is one of the modeled booking states.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BOOKING_PENDING, BOOKING_CONFIRMED, BOOKING_REJECTED, BOOKING_CANCELLED:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is permitted out of s.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BOOKING_CONFIRMED, BOOKING_REJECTED, BOOKING_CANCELLED:
		return true
	}
	return false
}

// CanTransitionTo reports whether s -> next is a legal lifecycle move.
// Only pending has outgoing edges; terminal states stay terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if !next.IsValid() || s.IsTerminal() {
		return false
	}
	return s == BOOKING_PENDING && next != BOOKING_PENDING
}

// ReleasesSlot reports whether entering s must free the booked slot.
func (s BookingStatus) ReleasesSlot() bool {
	return s == BOOKING_CANCELLED || s == BOOKING_REJECTED
}

// SlotDurations are the only supported grid strides, in minutes.
var SlotDurations = []uint{30, 60, 90, 120}

func ValidSlotDuration(d uint) bool {
	for _, v := range SlotDurations {
		if v == d {
			return true
		}
	}
	return false
}

type RegisterRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Role     Role   `json:"role" binding:"required,oneof=customer owner"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyOtpRequestBody struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type ResetPasswordRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type CreateAdminRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type CreateRestaurantRequestBody struct {
	Name         string `json:"name" binding:"required"`
	Address      string `json:"address" binding:"required"`
	Cuisine      string `json:"cuisine,omitempty"`
	OpeningHours string `json:"opening_hours" binding:"required,timehhmm"`
	ClosingHours string `json:"closing_hours" binding:"required,timehhmm,afterfield=OpeningHours"`
	SlotDuration uint   `json:"slot_duration" binding:"required,oneof=30 60 90 120"`
}

type UpdateRestaurantRequestBody struct {
	Name         *string `json:"name,omitempty"`
	Address      *string `json:"address,omitempty"`
	Cuisine      *string `json:"cuisine,omitempty"`
	OpeningHours *string `json:"opening_hours,omitempty" binding:"omitempty,timehhmm"`
	ClosingHours *string `json:"closing_hours,omitempty" binding:"omitempty,timehhmm"`
	SlotDuration *uint   `json:"slot_duration,omitempty" binding:"omitempty,oneof=30 60 90 120"`
}

type MenuItemRequestBody struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description,omitempty"`
	Price       float32 `json:"price" binding:"required,gt=0"`
	Category    string  `json:"category,omitempty"`
}

type UpdateMenuItemRequestBody struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float32 `json:"price,omitempty" binding:"omitempty,gt=0"`
	Category    *string  `json:"category,omitempty"`
}

type CreateSlotsRequestBody struct {
	Date string `json:"date" binding:"required,datevalid"`
}

type SlotsQueryParams struct {
	Date string `form:"date" binding:"omitempty,datevalid"`
}

type CreateBookingRequestBody struct {
	RestaurantID uint `json:"restaurant" binding:"required"`
	SlotID       uint `json:"slot" binding:"required"`
	PartySize    uint `json:"party_size" binding:"required,min=1"`
}

type UpdateBookingRequestBody struct {
	Status BookingStatus `json:"status" binding:"required,oneof=pending confirmed rejected cancelled"`
}

type BookingsQueryParams struct {
	Status string `form:"status" binding:"omitempty,oneof=pending confirmed rejected cancelled"`
}

type CreateReviewRequestBody struct {
	RestaurantID uint     `json:"restaurant" binding:"required"`
	Rating       uint     `json:"rating" binding:"required,min=1,max=5"`
	Comment      string   `json:"comment,omitempty"`
	Photos       []string `json:"photos,omitempty" binding:"omitempty,dive,url"`
}

type UpdateReviewRequestBody struct {
	Rating  *uint     `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
	Comment *string   `json:"comment,omitempty"`
	Photos  *[]string `json:"photos,omitempty" binding:"omitempty,dive,url"`
}

type PaginationQueryParams struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type RestaurantURIParams struct {
	RestaurantID uint `uri:"id" binding:"required"`
}

type MenuItemURIParams struct {
	RestaurantID uint `uri:"id" binding:"required"`
	ItemID       uint `uri:"itemId" binding:"required"`
}
