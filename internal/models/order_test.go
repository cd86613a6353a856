package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/vinora/internal/models"
)

func TestIsValidOrderStatus(t *testing.T) {
	for _, s := range models.AllOrderStatuses {
		assert.True(t, models.IsValidOrderStatus(string(s)), "status %s", s)
	}

	for _, s := range []string{"", "pending", "Pending", "SHIPPED", "DONE", "CANCELLED", " PENDING"} {
		assert.False(t, models.IsValidOrderStatus(s), "status %q", s)
	}
}

func TestOrderStatusTerminality(t *testing.T) {
	assert.True(t, models.OrderStatusCompleted.IsTerminal())
	assert.True(t, models.OrderStatusCanceled.IsTerminal())

	for _, s := range []models.OrderStatus{models.OrderStatusPending, models.OrderStatusApproved, models.OrderStatusShipping} {
		assert.False(t, s.IsTerminal(), "status %s", s)
		assert.True(t, s.Editable(), "status %s", s)
	}

	assert.False(t, models.OrderStatusCompleted.Editable())
	assert.False(t, models.OrderStatusCanceled.Editable())
}
