package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const kardexSheet = "Kardex"

var kardexHeadings = []string{"Date", "Account", "Nature", "Concept", "Amount", "Signed Amount", "Running Balance"}

func (e KardexEntry) GetCellValues() []interface{} {
	amount, _ := e.Amount.Float64()
	signed, _ := e.SignedAmount.Float64()
	running, _ := e.RunningBalance.Float64()
	return []interface{}{
		e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		e.AccountName,
		string(e.Nature),
		e.Concept,
		amount,
		signed,
		running,
	}
}

// NewKardexWorkbook lays the kardex out on a single "Kardex" sheet.
func NewKardexWorkbook(entries []*KardexEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", kardexSheet); err != nil {
		return nil, err
	}

	// Add headers
	for i, h := range kardexHeadings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(kardexSheet, cell, h); err != nil {
			return nil, err
		}
	}

	// Add data
	for rowNo, e := range entries {
		cell := fmt.Sprintf("A%d", rowNo+2)
		values := e.GetCellValues()
		if err := f.SetSheetRow(kardexSheet, cell, &values); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func WriteKardexExcel(w io.Writer, entries []*KardexEntry) error {
	f, err := NewKardexWorkbook(entries)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func SaveKardexExcel(filename string, entries []*KardexEntry) error {
	f, err := NewKardexWorkbook(entries)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(filename)
}
