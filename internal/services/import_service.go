package services

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log"
	"net/mail"
	"strings"

	"telecrm-backend/internal/auth"
	"telecrm-backend/internal/metrics"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
)

type ImportService struct {
	Leads    *repositories.LeadRepository
	Users    *repositories.UserRepository
	Activity *repositories.ActivityLogRepository
}

func NewImportService(leads *repositories.LeadRepository, users *repositories.UserRepository,
	activity *repositories.ActivityLogRepository) *ImportService {
	return &ImportService{Leads: leads, Users: users, Activity: activity}
}

// Positional fallback when headers are unusable: 2nd=name, 3rd=phone,
// 4th=source, 5th=executive email. Zero-based below.
const (
	posName   = 1
	posPhone  = 2
	posSource = 3
	posEmail  = 4
)

// Import parses an uploaded CSV or XLSX file and inserts the valid
// rows as one batch. Each bad row is recorded with its reason and
// skipped; no row failure aborts the batch.
func (s *ImportService) Import(ctx context.Context, actor *auth.Claims, filename string, file io.Reader) (*models.ImportResult, error) {
	if actor.Role == models.RoleTelecaller {
		return nil, forbiddenf("telecallers cannot import leads")
	}

	rows, err := parseUpload(filename, file)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, validationf("file has no data rows")
	}

	headers := normalizeHeaders(rows[0])
	dataRows := rows[1:]

	// Pre-resolve duplicates and executives in bulk
	phones := make([]string, 0, len(dataRows))
	emails := make(map[string]bool)
	for _, row := range dataRows {
		if phone, err := models.NormalizePhone(fieldAt(row, headers, []string{"phone", "phone_number", "mobile", "contact"}, posPhone)); err == nil {
			phones = append(phones, phone)
		}
		if email := strings.ToLower(strings.TrimSpace(fieldAt(row, headers, executiveHeaders, posEmail))); email != "" {
			emails[email] = true
		}
	}
	existingPhones, err := s.Leads.ActivePhones(ctx, phones)
	if err != nil {
		return nil, err
	}
	executives, err := resolveExecutives(ctx, emails, s.Users.GetByEmail)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{Errors: []models.ImportRowError{}}
	seenInFile := make(map[string]bool)
	var toInsert []*models.Lead

	actorID := actor.UserID
	for i, row := range dataRows {
		lead, reason := s.buildRow(row, headers, existingPhones, seenInFile, executives)
		if reason != "" {
			result.Errors = append(result.Errors, models.ImportRowError{
				Row:    i + 1,
				Reason: reason,
				Fields: row,
			})
			continue
		}
		lead.CreatedBy = &actorID
		seenInFile[lead.Phone] = true
		toInsert = append(toInsert, lead)
	}

	inserted, err := s.Leads.InsertBatch(ctx, toInsert)
	result.Inserted = inserted
	result.Failed = len(dataRows) - inserted
	if err != nil {
		// Batch broke partway, surface what landed
		log.Printf("[Import] batch insert stopped after %d rows: %v", inserted, err)
		return result, err
	}

	metrics.ImportedRowsTotal.WithLabelValues("inserted").Add(float64(result.Inserted))
	metrics.ImportedRowsTotal.WithLabelValues("failed").Add(float64(result.Failed))
	if err := s.Activity.Record(ctx, actorID, models.ActionLeadImported, nil,
		map[string]interface{}{"inserted": result.Inserted, "failed": result.Failed}); err != nil {
		log.Printf("[Audit] %s write failed: %v", models.ActionLeadImported, err)
	}
	return result, nil
}

var executiveHeaders = []string{"executive_email", "executive", "assigned_to", "telecaller_email"}

// buildRow validates one data row. Returns a reason string on failure.
func (s *ImportService) buildRow(row []string, headers map[string]int,
	existingPhones, seenInFile map[string]bool, executives map[string]*models.User) (*models.Lead, string) {

	name := strings.TrimSpace(fieldAt(row, headers, []string{"name", "lead_name", "customer_name"}, posName))
	if name == "" {
		return nil, "missing name"
	}

	rawPhone := fieldAt(row, headers, []string{"phone", "phone_number", "mobile", "contact"}, posPhone)
	phone, err := models.NormalizePhone(rawPhone)
	if err != nil {
		return nil, "invalid phone"
	}
	if existingPhones[phone] {
		return nil, "phone already exists"
	}
	if seenInFile[phone] {
		return nil, "duplicate phone in file"
	}

	lead := &models.Lead{
		Name:      name,
		Phone:     phone,
		Status:    models.LeadStatusNew,
		Behaviour: models.BehaviourWarm,
		Source:    strings.TrimSpace(fieldAt(row, headers, []string{"source", "lead_source"}, posSource)),
		Project:   models.NormalizeProject(fieldAt(row, headers, []string{"project"}, -1)),
		Active:    true,
	}

	if email := strings.TrimSpace(fieldAt(row, headers, []string{"email", "lead_email"}, -1)); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, "invalid email"
		}
		lead.Email = email
	}

	if execEmail := strings.ToLower(strings.TrimSpace(fieldAt(row, headers, executiveHeaders, posEmail))); execEmail != "" {
		exec, ok := executives[execEmail]
		if !ok {
			return nil, "executive email does not match any user"
		}
		id := exec.ID
		lead.AssignedTo = &id
		switch exec.Role {
		case models.RoleLeader:
			lead.LeaderID = &id
		default:
			lead.LeaderID = exec.LeaderID
		}
	}

	return lead, ""
}

// resolveExecutives looks up every executive email referenced by the
// file in one pass. A missing user is not an error here, the rows that
// reference it get their own row-level error later. Anything else is a
// real failure and aborts the import before any insert.
func resolveExecutives(ctx context.Context, emails map[string]bool,
	lookup func(context.Context, string) (*models.User, error)) (map[string]*models.User, error) {

	executives := make(map[string]*models.User, len(emails))
	for email := range emails {
		user, err := lookup(ctx, email)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if user.Active {
			executives[email] = user
		}
	}
	return executives, nil
}

// parseUpload reads the whole file into rows, dispatching on extension
func parseUpload(filename string, file io.Reader) ([][]string, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1 // tolerate ragged rows
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, validationf("unreadable csv: %v", err)
		}
		return rows, nil
	case strings.HasSuffix(lower, ".xlsx"):
		f, err := excelize.OpenReader(file)
		if err != nil {
			return nil, validationf("unreadable xlsx: %v", err)
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, validationf("xlsx has no sheets")
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, validationf("unreadable xlsx: %v", err)
		}
		return rows, nil
	default:
		return nil, validationf("unsupported file format, use .csv or .xlsx")
	}
}

// normalizeHeaders maps cleaned header names to column indexes.
// Cleaning: lowercase, every non-alphanumeric run becomes one underscore.
func normalizeHeaders(header []string) map[string]int {
	out := make(map[string]int, len(header))
	for i, h := range header {
		key := NormalizeHeader(h)
		if key == "" {
			continue
		}
		if _, dup := out[key]; !dup {
			out[key] = i
		}
	}
	return out
}

// NormalizeHeader cleans one spreadsheet column header
func NormalizeHeader(h string) string {
	var b strings.Builder
	lastUnderscore := true // suppress leading underscores
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// fieldAt reads a value by any of the given header names, falling back
// to a fixed position when no named column exists. pos -1 disables the
// positional fallback.
func fieldAt(row []string, headers map[string]int, names []string, pos int) string {
	for _, name := range names {
		if idx, ok := headers[name]; ok {
			if idx < len(row) {
				return row[idx]
			}
			return ""
		}
	}
	if pos >= 0 && pos < len(row) {
		return row[pos]
	}
	return ""
}
