package repositories

import (
	"testing"
	"time"

	"telecrm-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadWhere(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)

	t.Run("Base Filter Only Matches Active", func(t *testing.T) {
		where, args := leadWhere(models.LeadFilter{})
		assert.Equal(t, "ld.active", where)
		assert.Empty(t, args)
	})

	t.Run("Empty Scope Matches Nothing", func(t *testing.T) {
		where, _ := leadWhere(models.LeadFilter{ScopeEmpty: true})
		assert.Contains(t, where, "FALSE")
	})

	t.Run("Leader Id Restriction", func(t *testing.T) {
		leaderID := int64(3)
		where, args := leadWhere(models.LeadFilter{LeaderID: &leaderID})
		assert.Contains(t, where, "ld.leader_id = $1")
		require.Len(t, args, 1)
		assert.Equal(t, leaderID, args[0])
	})

	t.Run("Window Defaults To Created At", func(t *testing.T) {
		where, args := leadWhere(models.LeadFilter{WindowGTE: &start, WindowLTE: &end})
		assert.Contains(t, where, "ld.created_at >= $1")
		assert.Contains(t, where, "ld.created_at <= $2")
		assert.Len(t, args, 2)
	})

	t.Run("Window Binds To Selected Column", func(t *testing.T) {
		for field, column := range models.LeadDateFields {
			where, _ := leadWhere(models.LeadFilter{DateField: field, WindowGTE: &start, WindowLTE: &end})
			assert.Contains(t, where, "ld."+column+" >= $1", field)
			assert.Contains(t, where, "ld."+column+" <= $2", field)
		}
	})

	t.Run("Unknown Date Field Falls Back", func(t *testing.T) {
		where, _ := leadWhere(models.LeadFilter{DateField: "deletedAt", WindowGTE: &start})
		assert.Contains(t, where, "ld.created_at >= $1")
	})
}
