package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"telecrm-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Phone Number":     "phone_number",
		"  Lead Name  ":    "lead_name",
		"EXECUTIVE-EMAIL":  "executive_email",
		"phone__number":    "phone_number",
		"Phone (Primary)":  "phone_primary",
		"##":               "",
		"name":             "name",
		"Created At (IST)": "created_at_ist",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHeader(in), "header %q", in)
	}
}

func TestFieldAt(t *testing.T) {
	row := []string{"1", "Asha", "9876543210", "facebook", "ravi@crm.in"}

	t.Run("Named Column Wins", func(t *testing.T) {
		headers := map[string]int{"phone": 2, "name": 1}
		assert.Equal(t, "9876543210", fieldAt(row, headers, []string{"phone", "mobile"}, 0))
	})

	t.Run("Alias Resolution", func(t *testing.T) {
		headers := map[string]int{"mobile": 2}
		assert.Equal(t, "9876543210", fieldAt(row, headers, []string{"phone", "mobile"}, 0))
	})

	t.Run("Positional Fallback", func(t *testing.T) {
		headers := map[string]int{}
		assert.Equal(t, "Asha", fieldAt(row, headers, []string{"name"}, posName))
		assert.Equal(t, "9876543210", fieldAt(row, headers, []string{"phone"}, posPhone))
	})

	t.Run("Fallback Disabled", func(t *testing.T) {
		assert.Equal(t, "", fieldAt(row, map[string]int{}, []string{"email"}, -1))
	})

	t.Run("Named Column Beyond Short Row", func(t *testing.T) {
		headers := map[string]int{"email": 9}
		assert.Equal(t, "", fieldAt(row, headers, []string{"email"}, 0))
	})
}

func TestNormalizeHeaders(t *testing.T) {
	headers := normalizeHeaders([]string{"S.No", "Name", "Phone Number", "Name"})

	assert.Equal(t, 1, headers["name"], "first occurrence wins")
	assert.Equal(t, 2, headers["phone_number"])
	assert.Equal(t, 0, headers["s_no"])
}

func TestParseUploadCSV(t *testing.T) {
	csvData := "name,phone\nAsha,9876543210\nRavi,9876543211,extra\n"

	rows, err := parseUpload("leads.csv", strings.NewReader(csvData))
	require.NoError(t, err)

	// ragged rows are tolerated
	assert.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "phone"}, rows[0])
	assert.Equal(t, []string{"Ravi", "9876543211", "extra"}, rows[2])
}

func TestParseUploadUnsupported(t *testing.T) {
	_, err := parseUpload("leads.pdf", strings.NewReader("whatever"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBuildRow(t *testing.T) {
	svc := &ImportService{}
	headers := map[string]int{"name": 0, "phone": 1, "email": 2, "executive_email": 3, "project": 4}

	leaderID := int64(3)
	executives := map[string]*models.User{
		"ravi@crm.in": {ID: 7, Role: models.RoleTelecaller, LeaderID: &leaderID, Active: true},
		"priya@crm.in": {ID: 3, Role: models.RoleLeader, Active: true},
	}

	t.Run("Full Row", func(t *testing.T) {
		lead, reason := svc.buildRow(
			[]string{"Asha", "98765 43210", "asha@mail.com", "ravi@crm.in", "golden city"},
			headers, map[string]bool{}, map[string]bool{}, executives)

		require.Empty(t, reason)
		assert.Equal(t, "Asha", lead.Name)
		assert.Equal(t, "+919876543210", lead.Phone)
		assert.Equal(t, models.LeadStatusNew, lead.Status)
		assert.Equal(t, models.BehaviourWarm, lead.Behaviour)
		assert.Equal(t, "asha@mail.com", lead.Email)
		assert.Equal(t, "Golden City", lead.Project)
		assert.True(t, lead.Active)
		require.NotNil(t, lead.AssignedTo)
		assert.Equal(t, int64(7), *lead.AssignedTo)
		require.NotNil(t, lead.LeaderID)
		assert.Equal(t, int64(3), *lead.LeaderID, "leader derived from the assignee")
	})

	t.Run("Leader As Executive", func(t *testing.T) {
		lead, reason := svc.buildRow(
			[]string{"Asha", "9876543210", "", "priya@crm.in", ""},
			headers, map[string]bool{}, map[string]bool{}, executives)

		require.Empty(t, reason)
		require.NotNil(t, lead.LeaderID)
		assert.Equal(t, int64(3), *lead.LeaderID, "a leader assignee is their own leader")
	})

	t.Run("Missing Name", func(t *testing.T) {
		_, reason := svc.buildRow([]string{"  ", "9876543210", "", "", ""},
			headers, map[string]bool{}, map[string]bool{}, executives)
		assert.Equal(t, "missing name", reason)
	})

	t.Run("Invalid Phone", func(t *testing.T) {
		_, reason := svc.buildRow([]string{"Asha", "12345", "", "", ""},
			headers, map[string]bool{}, map[string]bool{}, executives)
		assert.Equal(t, "invalid phone", reason)
	})

	t.Run("Existing Phone", func(t *testing.T) {
		_, reason := svc.buildRow([]string{"Asha", "9876543210", "", "", ""},
			headers, map[string]bool{"+919876543210": true}, map[string]bool{}, executives)
		assert.Equal(t, "phone already exists", reason)
	})

	t.Run("Duplicate In File", func(t *testing.T) {
		_, reason := svc.buildRow([]string{"Asha", "9876543210", "", "", ""},
			headers, map[string]bool{}, map[string]bool{"+919876543210": true}, executives)
		assert.Equal(t, "duplicate phone in file", reason)
	})

	t.Run("Bad Email", func(t *testing.T) {
		_, reason := svc.buildRow([]string{"Asha", "9876543210", "not-an-email", "", ""},
			headers, map[string]bool{}, map[string]bool{}, executives)
		assert.Equal(t, "invalid email", reason)
	})

	t.Run("Unknown Executive", func(t *testing.T) {
		_, reason := svc.buildRow([]string{"Asha", "9876543210", "", "ghost@crm.in", ""},
			headers, map[string]bool{}, map[string]bool{}, executives)
		assert.Equal(t, "executive email does not match any user", reason)
	})
}

func TestResolveExecutives(t *testing.T) {
	users := map[string]*models.User{
		"ravi@crm.test": {ID: 7, Email: "ravi@crm.test", Role: models.RoleTelecaller, Active: true},
		"gone@crm.test": {ID: 8, Email: "gone@crm.test", Role: models.RoleTelecaller, Active: false},
	}
	lookup := func(_ context.Context, email string) (*models.User, error) {
		if u, ok := users[email]; ok {
			return u, nil
		}
		return nil, pgx.ErrNoRows
	}
	ctx := context.Background()

	t.Run("Resolves Active Users", func(t *testing.T) {
		got, err := resolveExecutives(ctx, map[string]bool{"ravi@crm.test": true}, lookup)
		require.NoError(t, err)
		require.Contains(t, got, "ravi@crm.test")
		assert.Equal(t, int64(7), got["ravi@crm.test"].ID)
	})

	t.Run("Unknown Email Is Not An Error", func(t *testing.T) {
		got, err := resolveExecutives(ctx, map[string]bool{"nobody@crm.test": true}, lookup)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Inactive User Excluded", func(t *testing.T) {
		got, err := resolveExecutives(ctx, map[string]bool{"gone@crm.test": true}, lookup)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Lookup Failure Aborts", func(t *testing.T) {
		boom := errors.New("connection reset")
		_, err := resolveExecutives(ctx, map[string]bool{"ravi@crm.test": true},
			func(context.Context, string) (*models.User, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
	})
}
