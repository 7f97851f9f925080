package estimate

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/TheCacophonyProject/battery-runtime/battery"
	"github.com/TheCacophonyProject/battery-runtime/curves"
	"github.com/TheCacophonyProject/battery-runtime/internal/config"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioArgs(t *testing.T, extra ...string) Args {
	t.Helper()
	input := append([]string{
		"--capacity", "16000",
		"--temp", "-35",
		"--load-current", "1500",
		"--load-duration", "2000",
		"--sleep-current", "0.06",
	}, extra...)
	args, err := procArgs(input)
	require.NoError(t, err)
	return args
}

func TestProcArgs(t *testing.T) {
	args := scenarioArgs(t, "--chemistry", "alkaline", "-o", "json", "--lithium-only", "-l", "debug")
	assert.Equal(t, "alkaline", args.Chemistry)
	assert.Equal(t, 16000, args.Capacity)
	assert.Equal(t, -35.0, args.Temp)
	assert.Equal(t, 2000.0, args.LoadDuration)
	assert.Equal(t, "json", args.Output)
	assert.True(t, args.LithiumOnly)
	assert.Equal(t, "debug", args.LogLevel)
	assert.Equal(t, config.DefaultConfigDir, args.ConfigDir)
	assert.Nil(t, args.SelfDischargeRate)

	args, err := procArgs([]string{"--capacity", "100", "--temp", "20", "--load-current", "1"})
	require.NoError(t, err)
	assert.Equal(t, 86400.0, args.LoadDuration)
	assert.Equal(t, "text", args.Output)

	_, err = procArgs([]string{"--temp", "20", "--load-current", "1"})
	assert.Error(t, err)
}

func TestRunJSON(t *testing.T) {
	conf := config.Default()
	var out bytes.Buffer
	require.NoError(t, run(scenarioArgs(t, "-o", "json"), &conf, &out))

	var got struct {
		ID      string         `json:"id"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	_, err := ulid.Parse(got.ID)
	assert.NoError(t, err)
	assert.Equal(t, 13.41, got.Details["runtime_days"])
	assert.Equal(t, "Medium", got.Details["discharge_mode"])
}

func TestRunPlainWithPDF(t *testing.T) {
	conf := config.Default()
	pdfPath := filepath.Join(t.TempDir(), "estimate.pdf")
	var out bytes.Buffer
	require.NoError(t, run(scenarioArgs(t, "-o", "plain", "--pdf", pdfPath), &conf, &out))
	assert.Contains(t, out.String(), "Estimated Battery Runtime: 0 year(s) 13 day(s)")

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRunUsesConfigCurves(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "curves.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"chemistry,current_limit_ma,temperature_c,temperature_factor\n"+
			"lithium-metal,250,60,0.5\n"+
			"lithium-metal,250,-40,0.5\n"), 0644))

	conf := config.Default()
	conf.CurvesFile = path
	var out bytes.Buffer
	require.NoError(t, run(scenarioArgs(t, "-o", "json"), &conf, &out))
	assert.Contains(t, out.String(), `"temperature_factor": 0.5`)

	conf.CurvesFile = filepath.Join(dir, "missing.csv")
	assert.Error(t, run(scenarioArgs(t), &conf, &out))
}

func TestRunErrors(t *testing.T) {
	conf := config.Default()
	var out bytes.Buffer

	err := run(scenarioArgs(t, "--chemistry", "nimh"), &conf, &out)
	var invalid *battery.InvalidParameterError
	assert.ErrorAs(t, err, &invalid)

	err = run(scenarioArgs(t, "--chemistry", "alkaline", "--lithium-only"), &conf, &out)
	assert.ErrorAs(t, err, &invalid)

	assert.Error(t, run(scenarioArgs(t, "-o", "xml"), &conf, &out))
}

func TestComputeDefaults(t *testing.T) {
	conf := config.Default()
	conf.DefaultChemistry = "alkaline"
	conf.SelfDischargeRate = 0

	req := Request{RatedCapacityMAh: 2000, OperatingTempC: 20}.WithDefaults(&conf)
	assert.Equal(t, "alkaline", req.Chemistry)

	// No load, no sleep current and no self-discharge.
	_, err := Compute(req, curves.Default(), log)
	assert.ErrorIs(t, err, battery.ErrZeroConsumption)

	req.LoadCurrentMA = 10
	r, err := Compute(req, curves.Default(), log)
	require.NoError(t, err)
	assert.Equal(t, battery.SecondsPerDay, r.Params.LoadDurationPerDaySec)
	assert.Equal(t, battery.ModeLow, r.Estimate.DischargeMode)
	assert.Equal(t, 0.0, r.Estimate.SelfDischargeRatePerYear)
}

func TestComputeLithiumOnly(t *testing.T) {
	duration := 240.0
	r, err := Compute(Request{
		Chemistry:             "lithium-metal",
		RatedCapacityMAh:      16000,
		OperatingTempC:        -35,
		LoadCurrentMA:         90,
		LoadDurationPerDaySec: &duration,
		SleepCurrentMA:        0.060167,
		LithiumOnly:           true,
	}, curves.Default(), log)
	require.NoError(t, err)
	assert.Equal(t, battery.LithiumOnly, r.Estimate.Variant)
	assert.InDelta(t, 1260, r.Estimate.RuntimeDays, 1)
}

func TestEvent(t *testing.T) {
	conf := config.Default()
	r, err := Compute(scenarioArgs(t).request().WithDefaults(&conf), curves.Default(), log)
	require.NoError(t, err)

	e := Event(r)
	assert.Equal(t, EventType, e.Type)
	assert.Equal(t, r.ID, e.Details["id"])
	assert.Equal(t, 13.41, e.Details["runtimeDays"])
	assert.Equal(t, "consumption", e.Details["limit"])
	assert.False(t, e.Timestamp.IsZero())
}
