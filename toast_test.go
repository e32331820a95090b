package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastShowAndExpire(t *testing.T) {
	var tm toastManager
	cmd := tm.Show("saved", time.Millisecond)
	require.NotNil(t, cmd)
	assert.Equal(t, "saved", tm.Message())

	tm.Expire(toastExpiredMsg{id: tm.id})
	assert.Empty(t, tm.Message())
}

func TestToastStaleExpiryIgnored(t *testing.T) {
	var tm toastManager
	_ = tm.Show("first", time.Millisecond)
	firstID := tm.id
	_ = tm.Show("second", time.Millisecond)

	tm.Expire(toastExpiredMsg{id: firstID})
	assert.Equal(t, "second", tm.Message(), "an old toast's expiry must not clear a newer one")
}
