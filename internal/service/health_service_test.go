package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHealthService_Check(t *testing.T) {
	t.Run("store only", func(t *testing.T) {
		status := NewHealthService(newTestStore(t), nil).Check(context.Background())
		assert.True(t, status.Healthy)
		assert.Equal(t, "ok", status.Checks["store"])
		assert.Equal(t, "disabled", status.Checks["redis"])
	})

	t.Run("redis degraded", func(t *testing.T) {
		mr, cache := newTestCache(t)
		mr.SetError("ERR injected failure")
		defer mr.SetError("")

		status := NewHealthService(newTestStore(t), cache).Check(context.Background())
		assert.True(t, status.Healthy)
		assert.Equal(t, "degraded", status.Checks["redis"])
	})

	t.Run("store down", func(t *testing.T) {
		store := &mockStore{}
		store.On("Health", mock.Anything).Return(errors.New("no route to host"))

		status := NewHealthService(store, nil).Check(context.Background())
		assert.False(t, status.Healthy)
		assert.Contains(t, status.Checks["store"], "no route to host")
	})
}
