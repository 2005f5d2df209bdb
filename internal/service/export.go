package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/procare-io/srportal/internal/auth"
	"github.com/procare-io/srportal/internal/models"
)

const exportSheet = "Requests"

var exportHeader = []interface{}{
	"Request Code", "Type", "Status", "Urgency", "Customer Number", "Customer Name",
	"Territory", "Country", "Serial Number", "Item Number", "Item Description",
	"Main Reason", "Sub Reason", "Submitted By", "Submitted", "Last Modified",
}

// ExportXLSX writes the requests visible to claims, filtered like List, as
// an Excel workbook and returns the number of rows written.
func (s *RequestService) ExportXLSX(ctx context.Context, claims *auth.Claims, filter models.RequestFilter, w io.Writer) (int, error) {
	if claims == nil || !s.rbac.HasPermission(claims.Role, auth.PermissionRequestExport) {
		return 0, Forbidden("Insufficient permissions")
	}
	requests, err := s.List(ctx, claims, filter)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return 0, fmt.Errorf("export header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("export style: %w", err)
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return 0, fmt.Errorf("export style: %w", err)
	}

	for i := range requests {
		r := &requests[i]
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		row := []interface{}{
			r.RequestCode, string(r.RequestType), string(r.Status), string(r.UrgencyLevel),
			r.CustomerNumber, r.CustomerName, r.Territory, r.CountryCode,
			r.SerialNumber, r.ItemNumber, r.ItemDescription, r.MainReason, r.SubReason,
			r.SubmittedByEmail,
			r.SubmittedDate.UTC().Format("2006-01-02 15:04:05"),
			r.LastModifiedDate.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return 0, fmt.Errorf("export row %d: %w", i+1, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(exportHeader))
	if err != nil {
		return 0, err
	}
	if err := f.SetColWidth(exportSheet, "A", last, 18); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return len(requests), nil
}
