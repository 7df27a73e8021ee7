package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"syndicateiq/internal/models"
)

const (
	sheetSummary = "Summary"
	sheetMetrics = "Metrics"
	sheetAudit   = "Audit Trail"
	sheetESG     = "ESG"
)

// XLSX returns the report as an XLSX workbook.
func XLSX(data models.ReportData) ([]byte, error) {
	data = WithDefaults(data)

	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1"; rename it so the summary is first.
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	summary := [][]any{
		{"Title", data.Title},
		{"Approval status", string(data.ApprovalStatus)},
		{"Risk score", data.RiskScore},
		{"Borrower", data.Borrower.Name},
		{"Industry", data.Borrower.Industry},
		{"Jurisdiction", data.Borrower.Jurisdiction},
		{"Facility type", data.Borrower.FacilityType},
		{"Facility value", data.Borrower.FacilityValue},
		{"Credit rating", data.Borrower.CreditRating},
	}
	if err := writeRows(f, sheetSummary, nil, summary); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(sheetSummary, "A", "A", 18)
	_ = f.SetColWidth(sheetSummary, "B", "B", 40)

	metrics := make([][]any, 0, len(data.Metrics))
	for _, m := range data.Metrics {
		metrics = append(metrics, []any{m.Label, m.Value, m.Unit})
	}
	if err := addSheet(f, sheetMetrics, []string{"Metric", "Value", "Unit"}, metrics); err != nil {
		return nil, err
	}

	audit := make([][]any, 0, len(data.AuditTrail))
	for _, a := range data.AuditTrail {
		audit = append(audit, []any{fmtTime(a.Timestamp), a.Actor, a.Action, a.Detail})
	}
	if err := addSheet(f, sheetAudit, []string{"Time", "Actor", "Action", "Detail"}, audit); err != nil {
		return nil, err
	}

	if e := data.ESG; e != nil {
		rows := [][]any{
			{string(models.CategoryEnvironmental), e.Environmental},
			{string(models.CategorySocial), e.Social},
			{string(models.CategoryGovernance), e.Governance},
			{"total", e.TotalScore},
			{"risk level", string(e.RiskLevel)},
		}
		if err := addSheet(f, sheetESG, []string{"Category", "Score"}, rows); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func addSheet(f *excelize.File, name string, headers []string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return writeRows(f, name, headers, rows)
}

func writeRows(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	row := 1
	if len(headers) > 0 {
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return fmt.Errorf("write %s header: %w", sheet, err)
			}
		}
		row++
	}
	for _, values := range rows {
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet, row, err)
			}
		}
		row++
	}
	return nil
}
