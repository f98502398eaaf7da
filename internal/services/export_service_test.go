package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"telecrm-backend/internal/auth"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 8, 31, 14, 5, 9, 0, timeutil.IST)

	t.Run("Plain", func(t *testing.T) {
		name := ExportFilename("leads", nil, "", "", now, "csv")
		assert.Equal(t, "leads_20260831_140509.csv", name)
	})

	t.Run("With Statuses", func(t *testing.T) {
		name := ExportFilename("leads", []string{"new", "callback"}, "", "", now, "xlsx")
		assert.Equal(t, "leads_status-new+callback_20260831_140509.xlsx", name)
	})

	t.Run("With Date Range", func(t *testing.T) {
		name := ExportFilename("leads", nil, "2026-08-01", "2026-08-15", now, "csv")
		assert.Equal(t, "leads_20260801-20260815_20260831_140509.csv", name)
	})

	t.Run("With Everything", func(t *testing.T) {
		name := ExportFilename("leads", []string{"closed"}, "2026-08-01", "2026-08-15", now, "xlsx")
		assert.Equal(t, "leads_status-closed_20260801-20260815_20260831_140509.xlsx", name)
	})

	t.Run("Half Open Range Omitted", func(t *testing.T) {
		name := ExportFilename("leads", nil, "2026-08-01", "", now, "csv")
		assert.Equal(t, "leads_20260831_140509.csv", name)
	})
}

func TestExportRow(t *testing.T) {
	assigned := int64(7)
	leader := int64(3)
	creator := int64(1)
	lastCall := time.Date(2026, 8, 30, 5, 0, 0, 0, time.UTC)

	lead := &models.Lead{
		Name:       "Asha Verma",
		Phone:      "+919876543210",
		Status:     models.LeadStatusInProgress,
		Behaviour:  models.BehaviourHot,
		Notes:      "asked for brochure",
		Source:     "facebook",
		Project:    "Golden City",
		AssignedTo: &assigned,
		LeaderID:   &leader,
		CreatedBy:  &creator,
		CallCount:  4,
		LastCallAt: &lastCall,
		CreatedAt:  time.Date(2026, 8, 1, 6, 30, 0, 0, time.UTC),
	}
	names := map[int64]string{7: "Ravi Kumar", 3: "Priya Singh", 1: "System Admin"}

	row := exportRow(lead, names, timeutil.IST)

	assert.Len(t, row, len(exportHeader))
	assert.Equal(t, []string{
		"Asha Verma", "+919876543210", "in_progress", "hot", "asked for brochure",
		"facebook", "Golden City", "Ravi Kumar", "Priya Singh", "System Admin",
		"4", "2026-08-30 10:30", "2026-08-01 12:00",
	}, row)
}

func TestExportRowMissingRefs(t *testing.T) {
	lead := &models.Lead{
		Name:      "Unassigned Lead",
		Phone:     "+919876543211",
		Status:    models.LeadStatusNew,
		Behaviour: models.BehaviourWarm,
		CreatedAt: time.Date(2026, 8, 1, 6, 30, 0, 0, time.UTC),
	}

	row := exportRow(lead, map[int64]string{}, timeutil.IST)

	assert.Equal(t, "", row[7], "assigned to")
	assert.Equal(t, "", row[8], "leader")
	assert.Equal(t, "", row[9], "created by")
	assert.Equal(t, "0", row[10], "call count")
	assert.Equal(t, "", row[11], "last call at")
}

func TestExportFilter(t *testing.T) {
	t.Run("Admin Unrestricted", func(t *testing.T) {
		f := exportFilter(Scope{Unrestricted: true}, &auth.Claims{UserID: 1, Role: models.RoleAdmin})
		assert.Empty(t, f.AssignedTo)
		assert.Nil(t, f.LeaderID)
		assert.False(t, f.ScopeEmpty)
	})

	t.Run("Leader Exports By Lead Ownership", func(t *testing.T) {
		// The lead book is keyed by leader_id, not by the current team
		// roster, so a shrunken team does not shrink the export.
		f := exportFilter(Scope{TelecallerIDs: []int64{4, 7}}, &auth.Claims{UserID: 3, Role: models.RoleLeader})
		require.NotNil(t, f.LeaderID)
		assert.Equal(t, int64(3), *f.LeaderID)
		assert.Empty(t, f.AssignedTo)
		assert.False(t, f.ScopeEmpty)
	})

	t.Run("Leader With Empty Team Still Exports Own Book", func(t *testing.T) {
		f := exportFilter(Scope{Empty: true}, &auth.Claims{UserID: 3, Role: models.RoleLeader})
		require.NotNil(t, f.LeaderID)
		assert.Equal(t, int64(3), *f.LeaderID)
		assert.False(t, f.ScopeEmpty)
	})

	t.Run("Telecaller Sees Self", func(t *testing.T) {
		f := exportFilter(Scope{TelecallerIDs: []int64{7}}, &auth.Claims{UserID: 7, Role: models.RoleTelecaller})
		assert.Equal(t, []int64{7}, f.AssignedTo)
		assert.Nil(t, f.LeaderID)
	})
}

func TestPrepareDateField(t *testing.T) {
	svc := NewExportService(nil, nil, nil, NewScopeService(nil))
	admin := &auth.Claims{UserID: 1, Role: models.RoleAdmin}
	ctx := context.Background()

	t.Run("Defaults To Created At", func(t *testing.T) {
		job, err := svc.Prepare(ctx, admin, ExportOptions{Format: "csv"})
		require.NoError(t, err)
		assert.Equal(t, "", job.filter.DateField)
	})

	t.Run("Selectable Columns", func(t *testing.T) {
		for _, field := range []string{"createdAt", "updatedAt", "lastCallAt", "nextCallDate"} {
			job, err := svc.Prepare(ctx, admin, ExportOptions{Format: "csv", DateField: field})
			require.NoError(t, err)
			assert.Equal(t, field, job.filter.DateField)
		}
	})

	t.Run("Unknown Column Rejected", func(t *testing.T) {
		_, err := svc.Prepare(ctx, admin, ExportOptions{Format: "csv", DateField: "deletedAt"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestStreamLeads(t *testing.T) {
	makeLeads := func(n int) []*models.Lead {
		leads := make([]*models.Lead, n)
		for i := range leads {
			leads[i] = &models.Lead{ID: int64(i + 1)}
		}
		return leads
	}
	fetchFrom := func(leads []*models.Lead, calls *[]int64) func(int64, int) ([]*models.Lead, error) {
		return func(afterID int64, limit int) ([]*models.Lead, error) {
			*calls = append(*calls, afterID)
			var batch []*models.Lead
			for _, ld := range leads {
				if ld.ID > afterID && len(batch) < limit {
					batch = append(batch, ld)
				}
			}
			return batch, nil
		}
	}

	t.Run("Row Count Survives Batch Boundaries", func(t *testing.T) {
		leads := makeLeads(2500)
		var calls []int64
		var written []int64

		count, err := streamLeads(context.Background(), fetchFrom(leads, &calls), 1000,
			func(ld *models.Lead) error {
				written = append(written, ld.ID)
				return nil
			})

		require.NoError(t, err)
		assert.Equal(t, 2500, count)
		assert.Len(t, written, 2500)
		assert.Equal(t, []int64{0, 1000, 2000}, calls)
		for i, id := range written {
			require.Equal(t, int64(i+1), id)
		}
	})

	t.Run("Exact Batch Multiple", func(t *testing.T) {
		leads := makeLeads(2000)
		var calls []int64

		count, err := streamLeads(context.Background(), fetchFrom(leads, &calls), 1000,
			func(*models.Lead) error { return nil })

		require.NoError(t, err)
		assert.Equal(t, 2000, count)
		// One trailing fetch confirms the cursor is drained
		assert.Equal(t, []int64{0, 1000, 2000}, calls)
	})

	t.Run("Write Error Aborts", func(t *testing.T) {
		leads := makeLeads(10)
		var calls []int64
		boom := errors.New("disk full")

		count, err := streamLeads(context.Background(), fetchFrom(leads, &calls), 4,
			func(ld *models.Lead) error {
				if ld.ID == 3 {
					return boom
				}
				return nil
			})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 2, count)
	})

	t.Run("Cancelled Context Stops Quietly", func(t *testing.T) {
		leads := makeLeads(2000)
		var calls []int64
		ctx, cancel := context.WithCancel(context.Background())

		count, err := streamLeads(ctx, func(afterID int64, limit int) ([]*models.Lead, error) {
			cancel() // client disconnects during the first batch
			return fetchFrom(leads, &calls)(afterID, limit)
		}, 1000, func(*models.Lead) error { return nil })

		require.NoError(t, err)
		assert.Equal(t, 1000, count)
		assert.Equal(t, []int64{0}, calls)
	})
}
