package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	t.Run("Ten Digits Get Country Code", func(t *testing.T) {
		phone, err := NormalizePhone("9876543210")
		require.NoError(t, err)
		assert.Equal(t, "+919876543210", phone)
	})

	t.Run("Formatting Is Stripped", func(t *testing.T) {
		for _, raw := range []string{"98765-43210", "(987) 654-3210", "98765 43210", "+91 98765 43210"} {
			phone, err := NormalizePhone(raw)
			require.NoError(t, err, "raw %q", raw)
			assert.Equal(t, "+919876543210", phone, "raw %q", raw)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		phone, err := NormalizePhone("9876543210")
		require.NoError(t, err)

		again, err := NormalizePhone(phone)
		require.NoError(t, err)
		assert.Equal(t, phone, again)
	})

	t.Run("Existing Country Code Kept", func(t *testing.T) {
		phone, err := NormalizePhone("919876543210")
		require.NoError(t, err)
		assert.Equal(t, "+919876543210", phone)
	})

	t.Run("Too Short Rejected", func(t *testing.T) {
		for _, raw := range []string{"", "12345", "987654321", "abc"} {
			_, err := NormalizePhone(raw)
			assert.ErrorIs(t, err, ErrInvalidPhone, "raw %q", raw)
		}
	})

	t.Run("Eleven Digits Without Prefix", func(t *testing.T) {
		phone, err := NormalizePhone("19876543210")
		require.NoError(t, err)
		assert.Equal(t, "+9119876543210", phone)
	})
}

func TestNormalizeStatus(t *testing.T) {
	for _, s := range LeadStatuses {
		got, ok := NormalizeStatus(s)
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}

	got, ok := NormalizeStatus("  Closed ")
	assert.True(t, ok)
	assert.Equal(t, LeadStatusClosed, got)

	for _, s := range []string{"", "open", "won", "in progress"} {
		_, ok := NormalizeStatus(s)
		assert.False(t, ok, "status %q should be invalid", s)
	}
}

func TestNormalizeBehaviour(t *testing.T) {
	got, ok := NormalizeBehaviour("HOT")
	assert.True(t, ok)
	assert.Equal(t, BehaviourHot, got)

	for _, s := range []string{"", "lukewarm", "interested"} {
		_, ok := NormalizeBehaviour(s)
		assert.False(t, ok, "behaviour %q should be invalid", s)
	}
}

func TestNormalizeProject(t *testing.T) {
	assert.Equal(t, "Golden City", NormalizeProject("golden city"))
	assert.Equal(t, "Green Valley", NormalizeProject("  GREEN VALLEY "))
	assert.Equal(t, "Other", NormalizeProject("Some Unknown Tower"))
	assert.Equal(t, "", NormalizeProject("   "))
}
