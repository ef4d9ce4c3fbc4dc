package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusShipped, true},
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusOutForDelivery, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusOutForDelivery, OrderStatusDelivered, true},
		{OrderStatusOutForDelivery, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, OrderStatusDelivered.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusPending.Terminal())
	assert.False(t, OrderStatusOutForDelivery.Terminal())
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, OrderStatus("Out for Delivery").Valid())
	assert.False(t, OrderStatus("out for delivery").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestAddress_Snapshot(t *testing.T) {
	a := Address{
		FullName:     "Alice",
		Phone:        "555",
		AddressLine1: "1 Main St",
		City:         "Pune",
		State:        "MH",
		Pincode:      "411001",
		Country:      DefaultCountry,
		IsDefault:    true,
	}
	snap := a.Snapshot()
	assert.Equal(t, "Alice", snap.FullName)
	assert.Equal(t, "411001", snap.Pincode)
	assert.Equal(t, "India", snap.Country)
}
