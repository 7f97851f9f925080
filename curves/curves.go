/*
battery-runtime - Primary battery runtime estimation.
Copyright (C) 2025, The Cacophony Project

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package curves provides the temperature factor reference curves used by the battery model.
// A curve is keyed by chemistry and constant current discharge limit and holds
// (temperature, factor) points sorted by descending temperature.
package curves

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/TheCacophonyProject/battery-runtime/battery"
	"github.com/sigurn/crc8"
)

// Row is one sample point of a reference curve as stored in a data file.
type Row struct {
	Chemistry      battery.Chemistry
	CurrentLimitMA float64
	TempC          float64
	Factor         float64
}

// Key identifies a reference curve.
type Key struct {
	Chemistry      battery.Chemistry `json:"chemistry"`
	CurrentLimitMA float64           `json:"current_limit_ma"`
}

func (k Key) String() string {
	if k.CurrentLimitMA == battery.ContinuousCurveLimitMA {
		return fmt.Sprintf("%s/continuous", k.Chemistry)
	}
	return fmt.Sprintf("%s/%gmA", k.Chemistry, k.CurrentLimitMA)
}

// MissingCurveError is returned when the table has no curve for a key.
type MissingCurveError struct {
	Key Key
}

func (e *MissingCurveError) Error() string {
	return fmt.Sprintf("no reference curve for %s", e.Key)
}

// Table is an immutable set of reference curves.
type Table struct {
	curves map[Key][]battery.CurvePoint
	keys   []Key
}

// NewTable validates rows and groups them into curves sorted by descending temperature.
func NewTable(rows []Row) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no reference curve rows")
	}
	t := &Table{curves: map[Key][]battery.CurvePoint{}}
	seen := map[Key]map[float64]bool{}
	for i, r := range rows {
		if !r.Chemistry.Valid() {
			return nil, fmt.Errorf("row %d: unknown chemistry %q", i+1, string(r.Chemistry))
		}
		for name, v := range map[string]float64{"current limit": r.CurrentLimitMA, "temperature": r.TempC, "factor": r.Factor} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("row %d: %s is not a finite number", i+1, name)
			}
		}
		if r.CurrentLimitMA < 0 {
			return nil, fmt.Errorf("row %d: negative current limit %g", i+1, r.CurrentLimitMA)
		}
		if r.Factor < 0 || r.Factor > 1 {
			return nil, fmt.Errorf("row %d: temperature factor %g outside [0, 1]", i+1, r.Factor)
		}
		k := Key{r.Chemistry, r.CurrentLimitMA}
		if seen[k] == nil {
			seen[k] = map[float64]bool{}
			t.keys = append(t.keys, k)
		}
		if seen[k][r.TempC] {
			return nil, fmt.Errorf("row %d: duplicate %g°C point for %s", i+1, r.TempC, k)
		}
		seen[k][r.TempC] = true
		t.curves[k] = append(t.curves[k], battery.CurvePoint{TempC: r.TempC, Factor: r.Factor})
	}

	for _, curve := range t.curves {
		sort.Slice(curve, func(i, j int) bool { return curve[i].TempC > curve[j].TempC })
	}
	sort.Slice(t.keys, func(i, j int) bool {
		if t.keys[i].Chemistry != t.keys[j].Chemistry {
			return t.keys[i].Chemistry < t.keys[j].Chemistry
		}
		return t.keys[i].CurrentLimitMA < t.keys[j].CurrentLimitMA
	})
	return t, nil
}

// Curve returns a copy of the curve for the chemistry and current limit.
func (t *Table) Curve(chemistry battery.Chemistry, currentLimitMA float64) ([]battery.CurvePoint, error) {
	curve, ok := t.curves[Key{chemistry, currentLimitMA}]
	if !ok {
		return nil, &MissingCurveError{Key{chemistry, currentLimitMA}}
	}
	return append([]battery.CurvePoint(nil), curve...), nil
}

// Keys returns the keys of every curve, ordered by chemistry then current limit.
func (t *Table) Keys() []Key {
	return append([]Key(nil), t.keys...)
}

// Rows returns every point in key order, each curve by descending temperature.
func (t *Table) Rows() []Row {
	var rows []Row
	for _, k := range t.keys {
		for _, p := range t.curves[k] {
			rows = append(rows, Row{k.Chemistry, k.CurrentLimitMA, p.TempC, p.Factor})
		}
	}
	return rows
}

// Len returns the number of points in the table.
func (t *Table) Len() int {
	n := 0
	for _, c := range t.curves {
		n += len(c)
	}
	return n
}

var crcTable = crc8.MakeTable(crc8.Params{
	Poly:   0x31,
	Init:   0xFF,
	RefIn:  false,
	RefOut: false,
	XorOut: 0x00,
	Name:   "CRC-8/NRSC-5",
})

// Checksum is a CRC-8 over the canonical encoding of the rows. It identifies the table an
// estimate was computed from, independent of the file format and row order it was loaded from.
func (t *Table) Checksum() uint8 {
	var b strings.Builder
	for _, r := range t.Rows() {
		b.WriteString(string(r.Chemistry))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(r.CurrentLimitMA, 'g', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(r.TempC, 'g', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(r.Factor, 'g', -1, 64))
		b.WriteByte('\n')
	}
	return crc8.Checksum([]byte(b.String()), crcTable)
}

// ChecksumString formats the checksum for display.
func (t *Table) ChecksumString() string {
	return fmt.Sprintf("0x%02X", t.Checksum())
}
