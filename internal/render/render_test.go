package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/TheCacophonyProject/battery-runtime/battery"
	"github.com/TheCacophonyProject/battery-runtime/curves"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenario = battery.Params{
	Chemistry:             battery.LithiumMetal,
	RatedCapacityMAh:      16000,
	OperatingTempC:        -35,
	LoadCurrentMA:         1500,
	LoadDurationPerDaySec: 2000,
	SleepCurrentMA:        0.06,
}

func report(t *testing.T, p battery.Params, opts ...battery.Option) Report {
	t.Helper()
	m, err := battery.New(p, curves.Default(), opts...)
	require.NoError(t, err)
	_, err = m.Recompute()
	require.NoError(t, err)
	r, err := NewReport(m, "01HZX", curves.Default().ChecksumString())
	require.NoError(t, err)
	return r
}

func TestNewReportNeedsEstimate(t *testing.T) {
	m, err := battery.New(scenario, curves.Default())
	require.NoError(t, err)
	_, err = NewReport(m, "", "")
	assert.Error(t, err)
}

func TestPlainText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, report(t, scenario), false))
	out := buf.String()

	assert.Contains(t, out, "Estimated Battery Runtime: 0 year(s) 13 day(s)\n")
	assert.Contains(t, out, "- Self-discharge Rate: 1.00% per year\n")
	assert.Contains(t, out, "mAh at -35.0°C")
	assert.Contains(t, out, "- Sleep Consumption: 1.41 mAh per day\n")
	assert.Contains(t, out, "- Discharge Mode: Medium (34.781 mA average, 250 mA curve)\n")
	assert.Contains(t, out, "- Temperature Factor: 0.700\n")
	assert.Contains(t, out, Caveat)
	assert.NotContains(t, out, "capped")
}

func TestStyledText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, report(t, scenario), true))
	assert.Contains(t, buf.String(), "Estimated Battery Runtime: 0 year(s) 13 day(s)")
	assert.Contains(t, buf.String(), "╭")
	assert.False(t, IsTerminal(&buf))
}

func TestLimitNotes(t *testing.T) {
	shelf := scenario
	shelf.OperatingTempC = 20
	shelf.LoadCurrentMA = 0.001
	shelf.SleepCurrentMA = 0
	r := report(t, shelf)
	assert.Equal(t, battery.ShelfLifeLimited, r.Estimate.Limit)
	assert.Equal(t, "Runtime is capped at the 25 year shelf life of lithium metal batteries.", r.LimitNote())
	assert.Equal(t, "Estimated Battery Runtime: 25 year(s) 0 day(s)", r.Headline())

	cold := scenario
	cold.OperatingTempC = -45
	r = report(t, cold)
	assert.Contains(t, r.LimitNote(), "outside the -40°C to 60°C operating range")

	empty := scenario
	empty.RatedCapacityMAh = 0
	r = report(t, empty)
	assert.Equal(t, "The battery has no usable capacity.", r.LimitNote())
}

func TestLithiumOnlyHasNoDischargeMode(t *testing.T) {
	r := report(t, scenario, battery.WithVariant(battery.LithiumOnly))
	for _, l := range r.Lines() {
		assert.NotEqual(t, "Discharge Mode", l.Label)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, report(t, scenario)))

	var got struct {
		ID            string         `json:"id"`
		CurveChecksum string         `json:"curve_checksum"`
		RuntimeYears  int            `json:"runtime_years"`
		RuntimeDays   int            `json:"runtime_days"`
		Limit         string         `json:"limit"`
		Details       map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "01HZX", got.ID)
	assert.Equal(t, curves.Default().ChecksumString(), got.CurveChecksum)
	assert.Equal(t, 0, got.RuntimeYears)
	assert.Equal(t, 13, got.RuntimeDays)
	assert.Equal(t, "consumption", got.Limit)
	assert.Equal(t, 13.41, got.Details["runtime_days"])
	assert.Equal(t, "Medium", got.Details["discharge_mode"])
	assert.Equal(t, "Lithium Metal", got.Details["battery_type"])
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, report(t, scenario)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", ErrorMessage(nil))

	_, err := battery.New(battery.Params{Chemistry: battery.Alkaline, RatedCapacityMAh: -1}, curves.Default())
	assert.Equal(t, "Invalid Battery Capacity / mAh -1: must be a non-negative integer.", ErrorMessage(err))

	assert.Equal(t, "Load and sleep current are both zero so the runtime cannot be estimated.",
		ErrorMessage(fmt.Errorf("%w: lithium-metal", battery.ErrZeroConsumption)))

	gap := &battery.InterpolationGapError{Chemistry: battery.Alkaline, CurveLimitMA: 25, TempC: -5}
	assert.Equal(t, "The alkaline/25mA reference curve has no data around -5°C.", ErrorMessage(gap))

	missing := fmt.Errorf("lookup: %w", &curves.MissingCurveError{Key: curves.Key{Chemistry: battery.Alkaline, CurrentLimitMA: 1000}})
	assert.Equal(t, "No alkaline/1000mA reference curve is loaded.", ErrorMessage(missing))

	assert.Equal(t, "boom", ErrorMessage(fmt.Errorf("boom")))
}
