package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderPending, OrderPlaced, OrderFailed, OrderCancelled, OrderShipped,
		OrderDelivered, OrderReturnRequested, OrderReturned, OrderRefunded,
		OrderExchangeRequested, OrderExchanged,
	} {
		assert.True(t, s.Valid(), "expected %s to be a valid status", s)
	}
	assert.False(t, OrderStatus("misplaced").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderPending, OrderPlaced, true},
		{OrderPending, OrderFailed, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderPlaced, OrderShipped, true},
		{OrderPlaced, OrderCancelled, true},
		{OrderPlaced, OrderDelivered, false},
		{OrderFailed, OrderPlaced, true},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderReturnRequested, true},
		{OrderDelivered, OrderExchangeRequested, true},
		{OrderReturnRequested, OrderReturned, true},
		{OrderReturnRequested, OrderDelivered, true},
		{OrderReturned, OrderRefunded, true},
		{OrderExchangeRequested, OrderExchanged, true},
		{OrderCancelled, OrderPlaced, false},
		{OrderRefunded, OrderPlaced, false},
		{OrderExchanged, OrderDelivered, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, s := range []OrderStatus{OrderCancelled, OrderRefunded, OrderExchanged} {
		assert.True(t, s.Terminal(), "expected %s to be terminal", s)
	}
	for _, s := range []OrderStatus{OrderPending, OrderPlaced, OrderShipped, OrderDelivered} {
		assert.False(t, s.Terminal(), "expected %s not to be terminal", s)
	}
	assert.False(t, OrderStatus("bogus").Terminal())
}

func TestOrderStatusCancellable(t *testing.T) {
	assert.True(t, OrderPending.Cancellable())
	assert.True(t, OrderPlaced.Cancellable())
	assert.False(t, OrderShipped.Cancellable())
	assert.False(t, OrderDelivered.Cancellable())
	assert.False(t, OrderCancelled.Cancellable())
}
