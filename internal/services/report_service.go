package services

import (
	"bytes"
	"context"
	"fmt"

	"telecrm-backend/internal/auth"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/repositories"
	"telecrm-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// TeamReportData holds everything rendered into a team performance PDF
type TeamReportData struct {
	Period      models.Period
	Leaderboard []models.LeaderboardRow
	Goals       []*models.Goal
	LeadTotals  map[string]int
	CallTotal   int
}

type ReportService struct {
	Leads  *repositories.LeadRepository
	Calls  *repositories.CallLogRepository
	Goals  *repositories.GoalRepository
	Scopes *ScopeService
}

func NewReportService(leads *repositories.LeadRepository, calls *repositories.CallLogRepository,
	goals *repositories.GoalRepository, scopes *ScopeService) *ReportService {
	return &ReportService{Leads: leads, Calls: calls, Goals: goals, Scopes: scopes}
}

// TeamReport gathers the data for a leader's or admin's team
// performance PDF over one window.
func (s *ReportService) TeamReport(ctx context.Context, actor *auth.Claims, rangeName, tz, startDate, endDate string) (*TeamReportData, error) {
	if actor.Role == models.RoleTelecaller {
		return nil, forbiddenf("telecallers cannot generate team reports")
	}

	window, err := timeutil.ResolveWindow(rangeName, tz, startDate, endDate)
	if err != nil {
		return nil, validationf("%v", err)
	}
	scope, err := s.Scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}

	callFilter := scope.CallFilter()
	callFilter.CreatedGTE = &window.Start
	callFilter.CreatedLTE = &window.End

	leaderboard, err := s.Calls.Leaderboard(ctx, callFilter, 50)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.Leads.StatusBreakdown(ctx, scope.LeadFilter())
	if err != nil {
		return nil, err
	}

	var goals []*models.Goal
	if scope.Unrestricted {
		goals, err = s.Goals.ListAll(ctx)
	} else if !scope.Empty {
		goals, err = s.Goals.ListForUsers(ctx, scope.TelecallerIDs)
	}
	if err != nil {
		return nil, err
	}

	callTotal := 0
	for _, row := range leaderboard {
		callTotal += row.TotalCalls
	}

	return &TeamReportData{
		Period: models.Period{
			Range: window.Range,
			Start: window.Start.Format(timeutil.DateLayout),
			End:   window.End.Format(timeutil.DateLayout),
		},
		Leaderboard: leaderboard,
		Goals:       goals,
		LeadTotals:  statusCounts,
		CallTotal:   callTotal,
	}, nil
}

// GenerateTeamPDF renders the team performance report
func (s *ReportService) GenerateTeamPDF(data *TeamReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Team Performance Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Period: %s to %s (%s)", data.Period.Start, data.Period.End, data.Period.Range), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Lead status summary
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Lead Pipeline", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, status := range models.LeadStatuses {
		pdf.CellFormat(38, 7, fmt.Sprintf("%s: %d", status, data.LeadTotals[status]), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(12)

	// Leaderboard table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, fmt.Sprintf("Call Leaderboard (%d calls total)", data.CallTotal), "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(60, 7, "Telecaller", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Calls", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Answered", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Missed", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Callback", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Converted", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, row := range data.Leaderboard {
		name := row.Name
		if len(name) > 28 {
			name = name[:25] + "..."
		}
		pdf.CellFormat(60, 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", row.TotalCalls), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", row.ByResult[models.CallResultAnswered]), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", row.ByResult[models.CallResultMissed]), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", row.ByResult[models.CallResultCallback]), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", row.ByResult[models.CallResultConverted]), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(5)

	// Goal progress
	if len(data.Goals) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Weekly Goals", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(60, 7, "User", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 7, "Target", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 7, "Achieved", "1", 0, "C", true, 0, "")
		pdf.CellFormat(60, 7, "Window", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, g := range data.Goals {
			if g.Achieved >= g.Target {
				pdf.SetFillColor(200, 255, 200) // Met
			} else {
				pdf.SetFillColor(255, 255, 255)
			}
			pdf.CellFormat(60, 6, g.UserName, "1", 0, "L", true, 0, "")
			pdf.CellFormat(35, 6, fmt.Sprintf("%d", g.Target), "1", 0, "C", true, 0, "")
			pdf.CellFormat(35, 6, fmt.Sprintf("%d", g.Achieved), "1", 0, "C", true, 0, "")
			pdf.CellFormat(60, 6, fmt.Sprintf("%s to %s",
				g.StartDate.Format(timeutil.DateLayout), g.EndDate.Format(timeutil.DateLayout)), "1", 1, "C", true, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
