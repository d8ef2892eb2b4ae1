// Package export writes the local order history to an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"fieldbook/internal/history"
)

var orderColumns = []string{"Order ID", "Sub-Court", "Slots", "Amount", "Status", "Created At"}

// WriteOrders writes the orders to w as an xlsx workbook with an Orders sheet
// and a Summary sheet of totals per status.
func WriteOrders(w io.Writer, orders []history.OrderRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	f.SetSheetName("Sheet1", sheet)

	if err := writeHeader(f, sheet, orderColumns); err != nil {
		return err
	}
	for i, o := range orders {
		row := []interface{}{
			o.OrderID,
			o.SubCourtID,
			strings.Join(o.SlotKeys, ", "),
			o.Amount,
			o.Status,
			o.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeSummary(f, orders); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, orders []history.OrderRecord) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	if err := writeHeader(f, sheet, []string{"Status", "Orders", "Amount"}); err != nil {
		return err
	}

	counts := map[string]int{}
	amounts := map[string]float64{}
	var statuses []string
	for _, o := range orders {
		if _, seen := counts[o.Status]; !seen {
			statuses = append(statuses, o.Status)
		}
		counts[o.Status]++
		amounts[o.Status] += o.Amount
	}

	for i, status := range statuses {
		if err := writeRow(f, sheet, i+2, []interface{}{status, counts[status], amounts[status]}); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, columns []string) error {
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = f.SetCellStyle(sheet, startCell, endCell, style)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, row []interface{}) error {
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}
