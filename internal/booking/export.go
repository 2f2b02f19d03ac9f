package booking

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

var exportHeaders = []string{"ID", "Type", "Listing", "Guest", "Vendor", "Check-in", "Check-out", "People", "Unit price", "Total", "Status", "Created"}

// WriteXLSX renders bookings as a single-sheet workbook. to is exclusive; the
// title shows the last day included.
func WriteXLSX(w io.Writer, from, to time.Time, bookings []Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := f.SetCellValue(exportSheet, "A1", fmt.Sprintf("Bookings %s - %s", from.Format("2006-01-02"), to.AddDate(0, 0, -1).Format("2006-01-02"))); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	for i, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return err
		}
		_ = f.SetCellStyle(exportSheet, cell, cell, header)
	}

	var total float64
	for r, b := range bookings {
		values := []any{
			b.ID, string(b.ListingType), b.ListingName, b.UserID, b.VendorID,
			b.CheckIn.Format("2006-01-02"), b.CheckOut.Format("2006-01-02"),
			b.PeopleCount, b.UnitPrice, b.TotalPrice, string(b.Status), b.CreatedAt.Format(time.RFC3339),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+3)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return err
			}
		}
		if b.Status != StatusRejected && b.Status != StatusCancelled {
			total += b.TotalPrice
		}
	}

	last := len(bookings) + 3
	label, _ := excelize.CoordinatesToCellName(9, last)
	sum, _ := excelize.CoordinatesToCellName(10, last)
	_ = f.SetCellValue(exportSheet, label, "Revenue")
	_ = f.SetCellValue(exportSheet, sum, total)

	_, err = f.WriteTo(w)
	return err
}
