package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeCovers(t *testing.T) {
	t.Run("Unrestricted Covers Everyone", func(t *testing.T) {
		sc := Scope{Unrestricted: true}
		assert.True(t, sc.Covers(1))
		assert.True(t, sc.Covers(9999))
	})

	t.Run("Team Scope", func(t *testing.T) {
		sc := Scope{TelecallerIDs: []int64{4, 7, 9}}
		assert.True(t, sc.Covers(7))
		assert.False(t, sc.Covers(5))
	})

	t.Run("Empty Scope Covers Nobody", func(t *testing.T) {
		sc := Scope{Empty: true}
		assert.False(t, sc.Covers(1))
	})
}

func TestScopeFilters(t *testing.T) {
	t.Run("Empty Scope Fails Closed", func(t *testing.T) {
		sc := Scope{Empty: true}

		lf := sc.LeadFilter()
		assert.True(t, lf.ScopeEmpty)
		assert.Empty(t, lf.AssignedTo)

		cf := sc.CallFilter()
		assert.True(t, cf.ScopeEmpty)
		assert.Empty(t, cf.TelecallerIDs)
	})

	t.Run("Unrestricted Scope Has No Conditions", func(t *testing.T) {
		sc := Scope{Unrestricted: true}

		lf := sc.LeadFilter()
		assert.False(t, lf.ScopeEmpty)
		assert.Empty(t, lf.AssignedTo)
	})

	t.Run("Team Scope Carries IDs", func(t *testing.T) {
		sc := Scope{TelecallerIDs: []int64{4, 7}}

		assert.Equal(t, []int64{4, 7}, sc.LeadFilter().AssignedTo)
		assert.Equal(t, []int64{4, 7}, sc.CallFilter().TelecallerIDs)
	})
}
