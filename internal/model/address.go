package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCountry is used when an address is saved without a country.
const DefaultCountry = "India"

// Address is an entry in a user's address book. At most one address per user
// has IsDefault set.
type Address struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID `json:"userId" gorm:"type:char(36);not null;index"`
	FullName     string    `json:"fullName" gorm:"size:255;not null"`
	Phone        string    `json:"phone" gorm:"size:32;not null"`
	AddressLine1 string    `json:"addressLine1" gorm:"size:255;not null"`
	AddressLine2 string    `json:"addressLine2,omitempty" gorm:"size:255"`
	City         string    `json:"city" gorm:"size:128;not null"`
	State        string    `json:"state" gorm:"size:128;not null"`
	Pincode      string    `json:"pincode" gorm:"size:16;not null"`
	Country      string    `json:"country" gorm:"size:128;not null"`
	IsDefault    bool      `json:"isDefault" gorm:"not null;default:false;index"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Snapshot copies the postal fields for embedding in an order.
func (a *Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		Pincode:      a.Pincode,
		Country:      a.Country,
	}
}

// AddressSnapshot is the copy of a shipping address stored with an order.
type AddressSnapshot struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Country      string `json:"country"`
}
