package services

import (
	"testing"

	"telecrm-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildLeadStats(t *testing.T) {
	stats := buildLeadStats(
		map[string]int{"new": 3, "closed": 2},
		map[string]int{"in_progress": 1},
		5, 4, 2)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 5, stats.CreatedInWindow)
	assert.Equal(t, 4, stats.UpdatedInWindow)
	assert.Equal(t, 2, stats.StartedInWindow)

	// every canonical status appears, absent ones as zero
	assert.Len(t, stats.StatusBreakdown, len(models.LeadStatuses))
	assert.Equal(t, 3, stats.StatusBreakdown["new"])
	assert.Equal(t, 0, stats.StatusBreakdown["callback"])
	assert.Equal(t, 1, stats.UpdatedBreakdown["in_progress"])
	assert.Equal(t, 0, stats.UpdatedBreakdown["dead"])
}

func TestBuildLeadStatsIgnoresUnknownStatuses(t *testing.T) {
	stats := buildLeadStats(map[string]int{"new": 1, "garbage": 10}, nil, 0, 0, 0)

	assert.Equal(t, 1, stats.Total)
	_, present := stats.StatusBreakdown["garbage"]
	assert.False(t, present)
}

func TestBuildCallStats(t *testing.T) {
	stats := buildCallStats(map[string]int{"answered": 6, "missed": 2})

	assert.Equal(t, 8, stats.Total)
	assert.Len(t, stats.ResultBreakdown, len(models.CallResults))
	assert.Equal(t, 6, stats.ResultBreakdown["answered"])
	assert.Equal(t, 0, stats.ResultBreakdown["converted"])
}

func TestStatusForResult(t *testing.T) {
	assert.Equal(t, models.LeadStatusCallback, statusForResult(models.CallResultCallback))
	assert.Equal(t, models.LeadStatusInProgress, statusForResult(models.CallResultAnswered))
	assert.Equal(t, models.LeadStatusInProgress, statusForResult(models.CallResultMissed))
	assert.Equal(t, models.LeadStatusInProgress, statusForResult(models.CallResultConverted))
}
