package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderRecalculate(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Quantity: 2, UnitPrice: 19.99},
		{Quantity: 1, UnitPrice: 5.10},
	}}
	o.Recalculate()
	assert.Equal(t, 45.08, o.Total)
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderPending.CanTransitionTo(OrderProcessing))
	assert.True(t, OrderShipped.CanTransitionTo(OrderDelivered))
	assert.True(t, OrderPartial.CanTransitionTo(OrderPending))
	assert.True(t, OrderDelivered.CanTransitionTo(OrderDelivered))
	assert.False(t, OrderDelivered.CanTransitionTo(OrderPending))
	assert.False(t, OrderCancelled.CanTransitionTo(OrderProcessing))
	assert.False(t, OrderPartial.Valid())
	assert.True(t, OrderShipped.Valid())
}

func TestCloneDoesNotShare(t *testing.T) {
	p := Product{Tags: []string{"a"}}
	c := p.Clone()
	c.Tags[0] = "b"
	assert.Equal(t, "a", p.Tags[0])

	o := Order{Items: []OrderItem{{Quantity: 1}}}
	oc := o.Clone()
	oc.Items[0].Quantity = 9
	assert.Equal(t, 1, o.Items[0].Quantity)
}

func TestAdminCan(t *testing.T) {
	a := AdminUser{Role: RoleManager, Permissions: []string{"orders:read"}, IsActive: true}
	assert.True(t, a.Can("orders:read"))
	assert.False(t, a.Can("products:write"))

	root := AdminUser{Role: RoleSuperAdmin, IsActive: true}
	assert.True(t, root.Can("anything"))

	root.IsActive = false
	assert.False(t, root.Can("anything"))
}
