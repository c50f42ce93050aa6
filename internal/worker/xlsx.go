package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"washpoint/internal/models"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Bookings"

var reportHeader = []string{
	"ID", "Name", "Email", "Phone", "Vehicle", "Service",
	"Date", "Time", "Status", "Price", "Progress %", "Created At",
}

// XLSXWriter renders the current booking collection into a spreadsheet
// report on local disk. It replaces the previous export target wholesale on
// every write: the report is a snapshot, not a journal.
type XLSXWriter struct {
	path string
}

func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// WriteSnapshot writes all bookings to the configured path, newest first
// ordering is the caller's responsibility.
func (w *XLSXWriter) WriteSnapshot(ctx context.Context, bookings []models.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for col, title := range reportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(reportSheet, cell, title); err != nil {
			return err
		}
	}

	for row, b := range bookings {
		values := []interface{}{
			b.ID,
			b.Name,
			b.Email,
			b.Phone,
			b.VehicleType,
			b.ServiceType,
			b.Date.Format("2006-01-02"),
			b.Time,
			b.Status,
			b.Price.StringFixed(2),
			b.CleaningStages.Progress(),
			b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(reportSheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
