package curves

import (
	"errors"
	"math"
	"testing"

	"github.com/TheCacophonyProject/battery-runtime/battery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleRows = []Row{
	{battery.Alkaline, 25, -18, 0.30},
	{battery.Alkaline, 25, 55, 1.00},
	{battery.Alkaline, 25, 0, 0.75},
	{battery.LithiumMetal, 250, 60, 1.00},
	{battery.LithiumMetal, 250, -40, 0.62},
	{battery.LithiumMetal, 0, -10, 1.00},
	{battery.LithiumMetal, 0, -40, 0.514},
}

func TestNewTableSortsByDescendingTemperature(t *testing.T) {
	table, err := NewTable(sampleRows)
	require.NoError(t, err)

	curve, err := table.Curve(battery.Alkaline, 25)
	require.NoError(t, err)
	assert.Equal(t, []battery.CurvePoint{{TempC: 55, Factor: 1.0}, {TempC: 0, Factor: 0.75}, {TempC: -18, Factor: 0.30}}, curve)

	assert.Equal(t, []Key{
		{battery.Alkaline, 25},
		{battery.LithiumMetal, 0},
		{battery.LithiumMetal, 250},
	}, table.Keys())
	assert.Equal(t, len(sampleRows), table.Len())
	assert.Len(t, table.Rows(), len(sampleRows))
}

func TestCurveReturnsCopy(t *testing.T) {
	table, err := NewTable(sampleRows)
	require.NoError(t, err)

	curve, err := table.Curve(battery.LithiumMetal, 250)
	require.NoError(t, err)
	curve[0].Factor = 0

	again, err := table.Curve(battery.LithiumMetal, 250)
	require.NoError(t, err)
	assert.Equal(t, 1.0, again[0].Factor)
}

func TestMissingCurve(t *testing.T) {
	table, err := NewTable(sampleRows)
	require.NoError(t, err)

	_, err = table.Curve(battery.Alkaline, 1000)
	var missing *MissingCurveError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, Key{battery.Alkaline, 1000}, missing.Key)
	assert.Contains(t, err.Error(), "alkaline/1000mA")
}

func TestNewTableRejectsBadRows(t *testing.T) {
	tests := map[string][]Row{
		"empty":             nil,
		"unknown chemistry": {{"nimh", 25, 20, 1}},
		"factor above one":  {{battery.Alkaline, 25, 20, 1.01}},
		"negative factor":   {{battery.Alkaline, 25, 20, -0.1}},
		"NaN temperature":   {{battery.Alkaline, 25, math.NaN(), 1}},
		"infinite factor":   {{battery.Alkaline, 25, 20, math.Inf(1)}},
		"negative limit":    {{battery.Alkaline, -25, 20, 1}},
		"duplicate":         {{battery.Alkaline, 25, 20, 1}, {battery.Alkaline, 25, 20, 0.9}},
	}
	for name, rows := range tests {
		_, err := NewTable(rows)
		assert.Error(t, err, name)
	}
}

func TestChecksumIgnoresRowOrder(t *testing.T) {
	a, err := NewTable(sampleRows)
	require.NoError(t, err)

	reversed := make([]Row, len(sampleRows))
	for i, r := range sampleRows {
		reversed[len(sampleRows)-1-i] = r
	}
	b, err := NewTable(reversed)
	require.NoError(t, err)
	assert.Equal(t, a.Checksum(), b.Checksum())
	assert.Regexp(t, `^0x[0-9A-F]{2}$`, a.ChecksumString())

	changed := append([]Row(nil), sampleRows...)
	changed[0].Factor = 0.31
	c, err := NewTable(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a.Rows(), c.Rows())
}

func TestTableIsACurveProvider(t *testing.T) {
	var _ battery.CurveProvider = &Table{}
	var _ battery.CurveProvider = &Store{}

	_, err := Default().Curve("nimh", 25)
	assert.True(t, errors.As(err, new(*MissingCurveError)))
}
