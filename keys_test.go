package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeysSelection(t *testing.T) {
	v := newKeysView()
	v.SetKeys([]sshKey{
		{Name: "deploy", PublicKey: "ssh-ed25519 AAAA deploy"},
		{Name: "staging", PublicKey: "ssh-ed25519 BBBB staging"},
	}, nil)

	selected, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, "deploy", selected.Name)

	v.cursor = 1
	selected, _ = v.Selected()
	assert.Equal(t, "staging", selected.Name)
}

func TestKeysCursorClampedOnReload(t *testing.T) {
	v := newKeysView()
	v.SetKeys([]sshKey{{Name: "a"}, {Name: "b"}, {Name: "c"}}, nil)
	v.cursor = 2

	v.SetKeys([]sshKey{{Name: "a"}}, nil)
	selected, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, "a", selected.Name)
}

func TestKeysEmptySelection(t *testing.T) {
	v := newKeysView()
	v.SetKeys(nil, nil)
	_, ok := v.Selected()
	assert.False(t, ok)
}

func TestKeyCreatedLabel(t *testing.T) {
	assert.Empty(t, keyCreatedLabel(0), "a missing birth time renders nothing")
	assert.NotEmpty(t, keyCreatedLabel(1700000000))
}
