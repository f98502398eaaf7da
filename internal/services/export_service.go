package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"telecrm-backend/internal/auth"
	"telecrm-backend/internal/metrics"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/repositories"
	"telecrm-backend/internal/timeutil"

	"github.com/xuri/excelize/v2"
)

const exportBatchSize = 1000

// utf8BOM makes Excel open CSV exports with the right encoding
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var exportHeader = []string{
	"Name", "Phone", "Status", "Behaviour", "Notes", "Source", "Project",
	"Assigned To", "Leader", "Created By", "Call Count", "Last Call At", "Created At",
}

type ExportOptions struct {
	Format    string // "csv" or "xlsx"
	Statuses  []string
	DateField string // timestamp column the window binds to, default createdAt
	StartDate string // YYYY-MM-DD, optional
	EndDate   string
	TZ        string
}

// ExportJob is a prepared export: filename and content type are fixed
// before any byte is written, so HTTP headers can go out first.
type ExportJob struct {
	Filename    string
	ContentType string

	svc    *ExportService
	filter models.LeadFilter
	loc    *time.Location
	xlsx   bool
}

type ExportService struct {
	Leads    *repositories.LeadRepository
	Users    *repositories.UserRepository
	Activity *repositories.ActivityLogRepository
	Scopes   *ScopeService
}

func NewExportService(leads *repositories.LeadRepository, users *repositories.UserRepository,
	activity *repositories.ActivityLogRepository, scopes *ScopeService) *ExportService {
	return &ExportService{Leads: leads, Users: users, Activity: activity, Scopes: scopes}
}

// Prepare validates the request and fixes the output format. An xlsx
// request downgrades to csv if the workbook writer cannot be set up;
// the extension and content type follow the downgrade.
func (s *ExportService) Prepare(ctx context.Context, actor *auth.Claims, opts ExportOptions) (*ExportJob, error) {
	scope, err := s.Scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}

	filter := exportFilter(scope, actor)
	for _, raw := range opts.Statuses {
		status, ok := models.NormalizeStatus(raw)
		if !ok {
			return nil, validationf("unknown status %q", raw)
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	if opts.DateField != "" {
		if _, ok := models.LeadDateFields[opts.DateField]; !ok {
			return nil, validationf("unknown date field %q", opts.DateField)
		}
		filter.DateField = opts.DateField
	}

	loc := timeutil.Location(opts.TZ)
	if opts.StartDate != "" || opts.EndDate != "" {
		window, err := timeutil.ResolveWindow("custom", opts.TZ, opts.StartDate, opts.EndDate)
		if err != nil {
			return nil, validationf("%v", err)
		}
		filter.WindowGTE = &window.Start
		filter.WindowLTE = &window.End
	}

	xlsx := opts.Format == "xlsx"
	if xlsx && !xlsxAvailable() {
		log.Printf("[Export] xlsx writer unavailable, falling back to csv")
		xlsx = false
	}

	ext := "csv"
	contentType := "text/csv; charset=utf-8"
	if xlsx {
		ext = "xlsx"
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	return &ExportJob{
		Filename:    ExportFilename("leads", filter.Statuses, opts.StartDate, opts.EndDate, timeutil.Now(), ext),
		ContentType: contentType,
		svc:         s,
		filter:      filter,
		loc:         loc,
		xlsx:        xlsx,
	}, nil
}

// exportFilter builds the export visibility filter. A leader exports by
// lead ownership (leader_id) rather than by the current team roster, so
// leads assigned to deactivated telecallers still appear in their book.
func exportFilter(scope Scope, actor *auth.Claims) models.LeadFilter {
	if actor.Role == models.RoleLeader {
		id := actor.UserID
		return models.LeadFilter{LeaderID: &id}
	}
	return scope.LeadFilter()
}

// xlsxAvailable probes the streaming workbook writer
func xlsxAvailable() bool {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewStreamWriter("Sheet1")
	return err == nil
}

// ExportFilename builds the download name:
// <prefix>[_status-<s1>+<s2>][_<start>-<end>]_<stamp>.<ext>
func ExportFilename(prefix string, statuses []string, startDate, endDate string, now time.Time, ext string) string {
	var b strings.Builder
	b.WriteString(prefix)
	if len(statuses) > 0 {
		b.WriteString("_status-")
		b.WriteString(strings.Join(statuses, "+"))
	}
	if startDate != "" && endDate != "" {
		start, err1 := time.Parse(timeutil.DateLayout, startDate)
		end, err2 := time.Parse(timeutil.DateLayout, endDate)
		if err1 == nil && err2 == nil {
			fmt.Fprintf(&b, "_%s-%s", start.Format(timeutil.CompactLayout), end.Format(timeutil.CompactLayout))
		}
	}
	fmt.Fprintf(&b, "_%s.%s", now.Format(timeutil.StampLayout), ext)
	return b.String()
}

// Run streams the export into w. Leads page through a keyset cursor in
// fixed batches, so memory stays bounded regardless of result size. A
// client disconnect cancels ctx and terminates the loop cleanly.
func (j *ExportJob) Run(ctx context.Context, actor *auth.Claims, w io.Writer) error {
	userIDs, err := j.svc.Leads.DistinctUserIDs(ctx, j.filter)
	if err != nil {
		return err
	}
	names, err := j.svc.Users.NamesByIDs(ctx, userIDs)
	if err != nil {
		return err
	}

	var write func(row []string) error
	var flush func() error

	if j.xlsx {
		write, flush, err = xlsxRowWriter(w)
		if err != nil {
			return err
		}
	} else {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
		cw := csv.NewWriter(w)
		write = cw.Write
		flush = func() error {
			cw.Flush()
			return cw.Error()
		}
	}

	if err := write(exportHeader); err != nil {
		return err
	}

	format := "csv"
	if j.xlsx {
		format = "xlsx"
	}
	rowCount, err := streamLeads(ctx,
		func(afterID int64, limit int) ([]*models.Lead, error) {
			return j.svc.Leads.ExportBatch(ctx, j.filter, afterID, limit)
		},
		exportBatchSize,
		func(lead *models.Lead) error {
			return write(exportRow(lead, names, j.loc))
		})
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		// Client gone, stop quietly
		return nil
	}

	if err := flush(); err != nil {
		return err
	}

	metrics.ExportedRowsTotal.WithLabelValues(format).Add(float64(rowCount))
	actorID := actor.UserID
	if err := j.svc.Activity.Record(ctx, actorID, models.ActionLeadExported, nil,
		map[string]interface{}{"rows": rowCount, "format": format}); err != nil {
		log.Printf("[Audit] %s write failed: %v", models.ActionLeadExported, err)
	}
	return nil
}

// streamLeads drains a keyset cursor through write in fixed batches.
// The cursor resumes after the last id written, so every matching row
// is emitted exactly once regardless of how many batches it spans. A
// done ctx stops the loop quietly mid-stream.
func streamLeads(ctx context.Context, fetch func(afterID int64, limit int) ([]*models.Lead, error),
	batchSize int, write func(*models.Lead) error) (int, error) {

	rowCount := 0
	afterID := int64(0)
	for {
		if ctx.Err() != nil {
			// Client gone
			return rowCount, nil
		}
		batch, err := fetch(afterID, batchSize)
		if err != nil {
			return rowCount, err
		}
		for _, lead := range batch {
			if err := write(lead); err != nil {
				return rowCount, err
			}
			afterID = lead.ID
			rowCount++
		}
		if len(batch) < batchSize {
			return rowCount, nil
		}
	}
}

// xlsxRowWriter adapts the excelize stream writer to the row/flush
// shape the export loop expects. The workbook body is written to w on
// flush; excelize buffers rows on disk, not in memory.
func xlsxRowWriter(w io.Writer) (func([]string) error, func() error, error) {
	f := excelize.NewFile()
	sw, err := f.NewStreamWriter("Sheet1")
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	rowNum := 0
	write := func(row []string) error {
		rowNum++
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v
		}
		return sw.SetRow(cell, values)
	}
	flush := func() error {
		defer f.Close()
		if err := sw.Flush(); err != nil {
			return err
		}
		return f.Write(w)
	}
	return write, flush, nil
}

func exportRow(lead *models.Lead, names map[int64]string, loc *time.Location) []string {
	lastCall := ""
	if lead.LastCallAt != nil {
		lastCall = lead.LastCallAt.In(loc).Format(timeutil.ExportLayout)
	}
	return []string{
		lead.Name,
		lead.Phone,
		lead.Status,
		lead.Behaviour,
		lead.Notes,
		lead.Source,
		lead.Project,
		lookupName(names, lead.AssignedTo),
		lookupName(names, lead.LeaderID),
		lookupName(names, lead.CreatedBy),
		strconv.Itoa(lead.CallCount),
		lastCall,
		lead.CreatedAt.In(loc).Format(timeutil.ExportLayout),
	}
}

func lookupName(names map[int64]string, id *int64) string {
	if id == nil {
		return ""
	}
	return names[*id]
}
