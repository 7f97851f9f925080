package curves

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TheCacophonyProject/battery-runtime/battery"
	"github.com/xuri/excelize/v2"
)

// Workbook layout of the battery parameters spreadsheet.
const (
	SheetLithium     = "Li Temperature Factor"
	SheetAlkaline    = "Alkaline Temperature Factor"
	SheetLithiumOnly = "Temperature Factor"

	headerCurrentLimit = "Constant Current Discharge / mA"
	headerTemperature  = "Operating Temperature / °C"
	headerFactor       = "Temperature Factor"

	// The lithium-only sheet uses a shorter temperature header.
	headerTemperatureShort = "Operating Temperature"
)

var xlsxSheets = []struct {
	name      string
	chemistry battery.Chemistry
}{
	{SheetLithium, battery.LithiumMetal},
	{SheetAlkaline, battery.Alkaline},
	{SheetLithiumOnly, battery.LithiumMetal},
}

// ReadXLSX reads the reference curves from a battery parameters workbook. Sheets other than
// the known curve sheets are ignored. Rows with an empty temperature are skipped.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	present := map[string]bool{}
	for _, name := range f.GetSheetList() {
		present[name] = true
	}

	var rows []Row
	found := false
	for _, sheet := range xlsxSheets {
		if !present[sheet.name] {
			continue
		}
		found = true
		sheetRows, err := f.GetRows(sheet.name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet.name, err)
		}
		parsed, err := parseSheet(sheet.name, sheet.chemistry, sheetRows)
		if err != nil {
			return nil, err
		}
		rows = append(rows, parsed...)
	}
	if !found {
		return nil, fmt.Errorf("workbook has none of the sheets %q, %q, %q", SheetLithium, SheetAlkaline, SheetLithiumOnly)
	}
	return rows, nil
}

func parseSheet(name string, chemistry battery.Chemistry, sheetRows [][]string) ([]Row, error) {
	if len(sheetRows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", name)
	}
	limitCol, tempCol, factorCol := -1, -1, -1
	for i, h := range sheetRows[0] {
		switch strings.TrimSpace(h) {
		case headerCurrentLimit:
			limitCol = i
		case headerTemperature, headerTemperatureShort:
			tempCol = i
		case headerFactor:
			factorCol = i
		}
	}
	if tempCol < 0 || factorCol < 0 {
		return nil, fmt.Errorf("sheet %q needs %q and %q columns", name, headerTemperature, headerFactor)
	}
	if name != SheetLithiumOnly && limitCol < 0 {
		return nil, fmt.Errorf("sheet %q needs a %q column", name, headerCurrentLimit)
	}

	cell := func(row []string, col int) string {
		if col < 0 || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	var rows []Row
	for i, row := range sheetRows[1:] {
		tempStr := cell(row, tempCol)
		if tempStr == "" {
			continue
		}
		line := i + 2
		temp, err := strconv.ParseFloat(tempStr, 64)
		if err != nil {
			return nil, fmt.Errorf("sheet %q row %d: bad temperature %q", name, line, tempStr)
		}
		factor, err := strconv.ParseFloat(cell(row, factorCol), 64)
		if err != nil {
			return nil, fmt.Errorf("sheet %q row %d: bad temperature factor %q", name, line, cell(row, factorCol))
		}
		limit := battery.ContinuousCurveLimitMA
		if s := cell(row, limitCol); s != "" {
			if limit, err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("sheet %q row %d: bad current limit %q", name, line, s)
			}
		}
		rows = append(rows, Row{chemistry, limit, temp, factor})
	}
	return rows, nil
}

// WriteXLSX writes the table as a battery parameters workbook readable by ReadXLSX.
func WriteXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	bySheet := map[string][]Row{}
	for _, r := range t.Rows() {
		switch {
		case r.CurrentLimitMA == battery.ContinuousCurveLimitMA:
			if r.Chemistry != battery.LithiumMetal {
				return fmt.Errorf("continuous load curves are only supported for %s", battery.LithiumMetal)
			}
			bySheet[SheetLithiumOnly] = append(bySheet[SheetLithiumOnly], r)
		case r.Chemistry == battery.Alkaline:
			bySheet[SheetAlkaline] = append(bySheet[SheetAlkaline], r)
		default:
			bySheet[SheetLithium] = append(bySheet[SheetLithium], r)
		}
	}

	first := true
	for _, sheet := range xlsxSheets {
		rows, ok := bySheet[sheet.name]
		if !ok {
			continue
		}
		if first {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				return err
			}
			first = false
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return err
		}

		header := []interface{}{headerCurrentLimit, headerTemperature, headerFactor}
		if sheet.name == SheetLithiumOnly {
			header = []interface{}{headerTemperatureShort, headerFactor}
		}
		if err := f.SetSheetRow(sheet.name, "A1", &header); err != nil {
			return err
		}
		for i, r := range rows {
			values := []interface{}{r.CurrentLimitMA, r.TempC, r.Factor}
			if sheet.name == SheetLithiumOnly {
				values = []interface{}{r.TempC, r.Factor}
			}
			cellName, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet.name, cellName, &values); err != nil {
				return err
			}
		}
	}
	_, err := f.WriteTo(w)
	return err
}
