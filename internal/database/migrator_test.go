package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The repositories and the initial schema must agree column for column,
// otherwise every query fails at runtime with "column does not exist".
func TestInitSchemaCoversRepositoryColumns(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	require.NoError(t, err)
	schema := string(raw)

	tables := map[string][]string{
		"users": {
			"first_name", "last_name", "email", "phone", "password_hash",
			"role", "leader_id", "active", "last_login_at", "created_at", "updated_at",
		},
		"leads": {
			"name", "phone", "email", "notes", "status", "behaviour",
			"assigned_to", "leader_id", "created_by", "call_count",
			"last_call_at", "next_call_date", "source", "project", "active",
			"created_at", "updated_at",
		},
		"call_logs": {
			"lead_id", "telecaller_id", "result", "remarks", "duration_secs", "created_at",
		},
		"goals": {
			"user_id", "type", "period", "target", "achieved",
			"start_date", "end_date", "created_at", "updated_at",
		},
		"activity_logs": {
			"actor_id", "action", "target_id", "metadata", "created_at",
		},
		"website_enquiries": {
			"name", "phone", "email", "message", "status", "created_at", "updated_at",
		},
		"notifications": {
			"user_id", "title", "message", "read", "created_at",
		},
	}

	for table, columns := range tables {
		t.Run(table, func(t *testing.T) {
			body := tableBody(t, schema, table)
			for _, col := range columns {
				assert.Truef(t, hasColumn(body, col), "table %s is missing column %s", table, col)
			}
		})
	}
}

// tableBody extracts the column list of one CREATE TABLE statement
func tableBody(t *testing.T, schema, table string) string {
	t.Helper()
	marker := "CREATE TABLE IF NOT EXISTS " + table + " ("
	start := strings.Index(schema, marker)
	require.GreaterOrEqualf(t, start, 0, "no CREATE TABLE for %s", table)
	rest := schema[start+len(marker):]
	end := strings.Index(rest, "\n);")
	require.GreaterOrEqualf(t, end, 0, "unterminated CREATE TABLE for %s", table)
	return rest[:end]
}

// hasColumn checks for a column definition at the start of a line
func hasColumn(body, column string) bool {
	for _, line := range strings.Split(body, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == column {
			return true
		}
	}
	return false
}
