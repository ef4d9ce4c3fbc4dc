package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderStatus represents the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "Pending"
	OrderStatusConfirmed      OrderStatus = "Confirmed"
	OrderStatusShipped        OrderStatus = "Shipped"
	OrderStatusOutForDelivery OrderStatus = "Out for Delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
	OrderStatusCancelled      OrderStatus = "Cancelled"
)

// orderTransitions lists the statuses reachable from each non-terminal status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:        {OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusOutForDelivery: {OrderStatusDelivered, OrderStatusCancelled},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether next directly follows s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a placed checkout. Items and ShippingAddress are copies taken at
// checkout time and are never re-read from the catalog or address book.
type Order struct {
	ID              uuid.UUID                           `json:"id" gorm:"type:char(36);primaryKey"`
	UserID          uuid.UUID                           `json:"userId" gorm:"type:char(36);not null;index"`
	OrderNumber     string                              `json:"orderNumber" gorm:"size:32;not null;uniqueIndex"`
	Items           []OrderItem                         `json:"items" gorm:"foreignKey:OrderID"`
	ShippingAddress datatypes.JSONType[AddressSnapshot] `json:"shippingAddress" gorm:"not null"`
	PaymentMethod   string                              `json:"paymentMethod" gorm:"size:64;not null"`
	TotalAmount     decimal.Decimal                     `json:"totalAmount" gorm:"type:decimal(20,2);not null"`
	Status          OrderStatus                         `json:"status" gorm:"type:varchar(32);not null;default:'Pending';index"`
	CreatedAt       time.Time                           `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time                           `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is one line of an order. Position keeps the checkout order of the
// lines. Product is loaded for display only and is
// nil once the product has been deleted.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	OrderID   uuid.UUID       `json:"-" gorm:"type:char(36);not null;index"`
	ProductID uuid.UUID       `json:"productId" gorm:"type:char(36);not null;index"`
	Name      string          `json:"name" gorm:"size:255;not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Image     string          `json:"imageUrl" gorm:"size:1024"`
	Position  int             `json:"-" gorm:"not null;default:0"`

	// Relations
	Product *Product `json:"product" gorm:"foreignKey:ProductID"`
}

// BeforeCreate sets UUID before creating the record.
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
