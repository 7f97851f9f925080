package curves

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TheCacophonyProject/battery-runtime/battery"
)

const (
	colChemistry    = "chemistry"
	colCurrentLimit = "current_limit_ma"
	colTemperature  = "temperature_c"
	colFactor       = "temperature_factor"
)

var csvHeader = []string{colChemistry, colCurrentLimit, colTemperature, colFactor}

// ReadCSV reads rows with the header chemistry,current_limit_ma,temperature_c,temperature_factor.
// Columns may be in any order. An empty current limit is the continuous load curve.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range csvHeader {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", name)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}
		row, err := parseRecord(record, cols)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(record []string, cols map[string]int) (Row, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	chemistry, err := battery.ParseChemistry(field(colChemistry))
	if err != nil {
		return Row{}, err
	}
	limit := battery.ContinuousCurveLimitMA
	if s := field(colCurrentLimit); s != "" {
		if limit, err = strconv.ParseFloat(s, 64); err != nil {
			return Row{}, fmt.Errorf("bad current limit %q: %w", s, err)
		}
	}
	temp, err := strconv.ParseFloat(field(colTemperature), 64)
	if err != nil {
		return Row{}, fmt.Errorf("bad temperature %q: %w", field(colTemperature), err)
	}
	factor, err := strconv.ParseFloat(field(colFactor), 64)
	if err != nil {
		return Row{}, fmt.Errorf("bad temperature factor %q: %w", field(colFactor), err)
	}
	return Row{chemistry, limit, temp, factor}, nil
}

// WriteCSV writes the table in the format read by ReadCSV.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range t.Rows() {
		limit := ""
		if r.CurrentLimitMA != battery.ContinuousCurveLimitMA {
			limit = strconv.FormatFloat(r.CurrentLimitMA, 'g', -1, 64)
		}
		err := writer.Write([]string{
			string(r.Chemistry),
			limit,
			strconv.FormatFloat(r.TempC, 'g', -1, 64),
			strconv.FormatFloat(r.Factor, 'g', -1, 64),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
