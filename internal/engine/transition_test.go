package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seguido/seguido/internal/order"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func twoItemOrder() order.Order {
	return order.Order{
		ID:     "o-1",
		Status: order.StatusOrdered,
		Items: []order.Item{
			{Name: "Bufanda", Status: order.StatusOrdered},
			{Name: "Guantes", Status: order.StatusOrdered},
		},
	}
}

func TestEligible(t *testing.T) {
	assert.True(t, Eligible(order.StatusOrdered, order.StatusShipped))
	assert.False(t, Eligible(order.StatusShipped, order.StatusShipped))
	assert.False(t, Eligible(order.StatusReceived, order.StatusShipped))

	assert.True(t, Eligible(order.StatusOrdered, order.StatusReceived))
	assert.True(t, Eligible(order.StatusShipped, order.StatusReceived))
	assert.True(t, Eligible(order.StatusPartiallyShipped, order.StatusReceived))
	assert.False(t, Eligible(order.StatusReceived, order.StatusReceived))
	assert.False(t, Eligible(order.StatusReturned, order.StatusReceived))

	// No other target is applied item by item.
	assert.False(t, Eligible(order.StatusOrdered, order.StatusReturned))
	assert.False(t, Eligible(order.StatusOrdered, order.StatusClaimed))
}

func TestApplyPartialTransition_ShipOne(t *testing.T) {
	o := twoItemOrder()

	updated, err := ApplyPartialTransition(o, order.StatusShipped, []int{0}, testNow)
	require.NoError(t, err)

	assert.Equal(t, order.StatusShipped, updated.Items[0].Status)
	assert.Equal(t, order.StatusOrdered, updated.Items[1].Status, "non-selected item untouched")
	assert.Equal(t, order.StatusPartiallyShipped, updated.Status)
	assert.Empty(t, updated.ReceivedDate, "shipping never stamps the receipt date")

	// Input order is not mutated.
	assert.Equal(t, order.StatusOrdered, o.Items[0].Status)
	assert.Equal(t, order.StatusOrdered, o.Status)
}

func TestApplyPartialTransition_ReceiveAllStampsDate(t *testing.T) {
	o := twoItemOrder()

	updated, err := ApplyPartialTransition(o, order.StatusReceived, []int{0, 1}, testNow)
	require.NoError(t, err)

	assert.Equal(t, order.StatusReceived, updated.Status)
	assert.Equal(t, "2025-06-15", updated.ReceivedDate)
}

func TestApplyPartialTransition_KeepsExistingReceivedDate(t *testing.T) {
	o := twoItemOrder()
	o.ReceivedDate = "2025-01-01"

	updated, err := ApplyPartialTransition(o, order.StatusReceived, []int{0}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", updated.ReceivedDate)
}

func TestApplyPartialTransition_EmptySelection(t *testing.T) {
	o := twoItemOrder()

	_, err := ApplyPartialTransition(o, order.StatusShipped, nil, testNow)
	require.Error(t, err)
	assert.True(t, IsEmptySelectionError(err))
}

func TestApplyPartialTransition_IneligibleItem(t *testing.T) {
	o := twoItemOrder()
	o.Items[1].Status = order.StatusReceived

	_, err := ApplyPartialTransition(o, order.StatusShipped, []int{1}, testNow)
	require.Error(t, err)
	assert.True(t, IsIneligibleError(err))
}

func TestApplyPartialTransition_BadTargetAndIndex(t *testing.T) {
	o := twoItemOrder()

	_, err := ApplyPartialTransition(o, order.StatusReturned, []int{0}, testNow)
	require.Error(t, err)

	_, err = ApplyPartialTransition(o, order.StatusShipped, []int{5}, testNow)
	require.Error(t, err)
}

func TestApplyPartialTransition_MixedSelectionRejectedAtomically(t *testing.T) {
	o := twoItemOrder()
	o.Items[1].Status = order.StatusReceived

	_, err := ApplyPartialTransition(o, order.StatusShipped, []int{0, 1}, testNow)
	require.Error(t, err, "one ineligible item rejects the whole selection")
	assert.Equal(t, order.StatusOrdered, o.Items[0].Status, "nothing applied on rejection")
}

func TestEligibleIndices(t *testing.T) {
	o := twoItemOrder()
	o.Items[0].Status = order.StatusShipped

	assert.Equal(t, []int{1}, EligibleIndices(&o, order.StatusShipped))
	assert.Equal(t, []int{0, 1}, EligibleIndices(&o, order.StatusReceived))
}

func TestApplyReturn(t *testing.T) {
	o := twoItemOrder()
	o.Items[0].Status = order.StatusReceived

	updated := ApplyReturn(o)

	for _, it := range updated.Items {
		assert.Equal(t, order.StatusReturned, it.Status)
	}
	// Deliberate: a fully returned order aggregates as Received.
	assert.Equal(t, order.StatusReceived, updated.Status)
}

func TestApplyClaim(t *testing.T) {
	o := twoItemOrder()
	o.Items[0].Status = order.StatusShipped

	updated := ApplyClaim(o)

	assert.Equal(t, order.StatusClaimed, updated.Status)
	assert.Equal(t, order.StatusShipped, updated.Items[0].Status, "claim never touches items")

	// The flag survives derivation only while items show no progress
	// beyond Ordered; here the shipped item recaptures the status.
	assert.Equal(t, order.StatusPartiallyShipped, DeriveGlobalStatus(updated.Items, updated.Status))
}
