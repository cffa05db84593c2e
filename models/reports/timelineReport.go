package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ExcelExporter interface {
	GetCellValues() []interface{}
}

type TimelineEntry struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	SourceType  string `json:"source_type"`
	SourceId    int    `json:"source_id"`
}

func (e TimelineEntry) GetCellValues() []interface{} {
	return []interface{}{e.Date, e.Category, e.Title, e.Description, e.Status, e.SourceType, e.SourceId}
}

type TimelineMonth struct {
	Month    string          `json:"month"`
	Business int             `json:"business"`
	Finance  int             `json:"finance"`
	Team     int             `json:"team"`
	Entries  []TimelineEntry `json:"entries"`
}

type TimelineReport struct {
	CompanyId string           `json:"company_id"`
	Total     int              `json:"total"`
	Months    []*TimelineMonth `json:"months"`
}

var timelineHeadings = []string{"Date", "Category", "Title", "Description", "Status", "Source", "Source ID"}

// GetTimelineReport groups a venture's milestones by calendar month.
func GetTimelineReport(ctx context.Context, db *gorm.DB, companyId string, filter models.MilestoneFilter) (*TimelineReport, error) {
	milestones, err := models.ListMilestones(ctx, db, companyId, filter)
	if err != nil {
		return nil, err
	}
	report := &TimelineReport{CompanyId: companyId, Months: []*TimelineMonth{}}
	var current *TimelineMonth
	for _, m := range milestones {
		month := m.MilestoneDate.Format("2006-01")
		if current == nil || current.Month != month {
			current = &TimelineMonth{Month: month}
			report.Months = append(report.Months, current)
		}
		switch m.Category {
		case models.MilestoneCategoryBusiness:
			current.Business++
		case models.MilestoneCategoryFinance:
			current.Finance++
		case models.MilestoneCategoryTeam:
			current.Team++
		}
		date := m.MilestoneDate
		current.Entries = append(current.Entries, TimelineEntry{
			Date:        utils.FormatDate(&date),
			Title:       m.Title,
			Description: m.Description,
			Category:    string(m.Category),
			Status:      string(m.Status),
			SourceType:  m.SourceType,
			SourceId:    m.SourceId,
		})
		report.Total++
	}
	return report, nil
}

// Entries flattens the report back into date order.
func (r *TimelineReport) Entries() []ExcelExporter {
	var rows []ExcelExporter
	for _, m := range r.Months {
		for _, e := range m.Entries {
			rows = append(rows, e)
		}
	}
	return rows
}

func ExportTimelineExcel(w io.Writer, report *TimelineReport) error {
	f, err := buildWorkbook("Timeline", report.Entries(), timelineHeadings...)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func SaveTimelineExcel(filename string, report *TimelineReport) error {
	f, err := buildWorkbook("Timeline", report.Entries(), timelineHeadings...)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(filename)
}

func buildWorkbook(sheetName string, data []ExcelExporter, headings ...string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	// headers
	col := 'A'
	for _, h := range headings {
		if err := f.SetCellValue(sheetName, string(col)+"1", h); err != nil {
			return nil, err
		}
		col++
	}

	rowNo := 2
	for _, d := range data {
		col := 'A'
		for _, value := range d.GetCellValues() {
			if err := f.SetCellValue(sheetName, string(col)+fmt.Sprint(rowNo), value); err != nil {
				return nil, err
			}
			col++
		}
		rowNo++
	}
	return f, nil
}

// ExportFileName is the attachment name for a venture's timeline workbook.
func ExportFileName(companyId string, now time.Time) string {
	return fmt.Sprintf("timeline-%s-%s.xlsx", companyId, now.Format("20060102"))
}
