package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_PublishSubscribe(t *testing.T) {
	svc := NewService()

	var got []any
	sub := svc.Subscribe("spindle", func(v any) { got = append(got, v) }, false)
	assert.Equal(t, 1, svc.Subscribers("spindle"))

	svc.Publish("spindle", 1200)
	svc.Publish("feed", 50)
	svc.Publish("spindle", 0)
	assert.Equal(t, []any{1200, 0}, got)

	sub.Unsubscribe()
	sub.Unsubscribe()
	svc.Publish("spindle", 3000)
	assert.Equal(t, []any{1200, 0}, got)
	assert.Equal(t, 0, svc.Subscribers("spindle"))

	v, ok := svc.Value("spindle")
	require.True(t, ok)
	assert.Equal(t, 3000, v)
}

func TestService_SubscribeImmediate(t *testing.T) {
	svc := NewService()
	svc.Publish(KeyAxisPositions, AxisPositions{Rel: [9]float64{1, 2, 3}})

	var got AxisPositions
	svc.Subscribe(KeyAxisPositions, func(v any) { got = v.(AxisPositions) }, true)
	assert.Equal(t, 2.0, got.Rel[1])
}

func TestService_DeliveryOrder(t *testing.T) {
	svc := NewService()
	var order []int
	for i := 0; i < 5; i++ {
		svc.Subscribe("k", func(any) { order = append(order, i) }, false)
	}
	svc.Publish("k", nil)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestService_HandlerMayUnsubscribe(t *testing.T) {
	svc := NewService()
	var sub *Subscription
	calls := 0
	sub = svc.Subscribe("k", func(any) {
		calls++
		sub.Unsubscribe()
	}, false)

	svc.Publish("k", 1)
	svc.Publish("k", 2)
	assert.Equal(t, 1, calls)
}
