package curves

import (
	"testing"

	"github.com/TheCacophonyProject/battery-runtime/battery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHasEveryCurve(t *testing.T) {
	want := []Key{{battery.LithiumMetal, battery.ContinuousCurveLimitMA}}
	for _, c := range battery.Chemistries {
		for _, limit := range battery.CurrentLimits {
			want = append(want, Key{c, limit})
		}
	}
	assert.ElementsMatch(t, want, Default().Keys())
}

func TestDefaultCurvesSpanOperatingRange(t *testing.T) {
	for _, k := range Default().Keys() {
		profile, err := k.Chemistry.Profile()
		require.NoError(t, err)
		curve, err := Default().Curve(k.Chemistry, k.CurrentLimitMA)
		require.NoError(t, err)
		require.NotEmpty(t, curve, k.String())
		assert.Equal(t, profile.MaxOperatingTempC, curve[0].TempC, k.String())
		assert.Equal(t, profile.MinOperatingTempC, curve[len(curve)-1].TempC, k.String())
	}
}

func TestDefaultScenarios(t *testing.T) {
	m, err := battery.New(battery.Params{
		Chemistry:             battery.LithiumMetal,
		RatedCapacityMAh:      16000,
		OperatingTempC:        -35,
		LoadCurrentMA:         1500,
		LoadDurationPerDaySec: 2000,
		SleepCurrentMA:        0.06,
	}, Default())
	require.NoError(t, err)
	e, err := m.Recompute()
	require.NoError(t, err)
	assert.Equal(t, 34.781, e.AverageCurrentDrawMA)
	assert.Equal(t, battery.ModeMedium, e.DischargeMode)
	assert.Equal(t, 0.70, e.TemperatureFactor)
	assert.Equal(t, 13.41, e.RuntimeDays)

	m, err = battery.New(battery.Params{
		Chemistry:             battery.LithiumMetal,
		RatedCapacityMAh:      16000,
		OperatingTempC:        -35,
		LoadCurrentMA:         90,
		LoadDurationPerDaySec: 240,
		SleepCurrentMA:        0.060167,
	}, Default(), battery.WithVariant(battery.LithiumOnly))
	require.NoError(t, err)
	e, err = m.Recompute()
	require.NoError(t, err)
	assert.InDelta(t, 0.607, e.TemperatureFactor, 1e-9)
	assert.InDelta(t, 1260, e.RuntimeDays, 1)
}

// Every temperature inside a chemistry's operating range resolves to a factor for every
// discharge mode, and the factor never rises as the temperature falls.
func TestDefaultCurvesHaveNoGaps(t *testing.T) {
	loads := map[battery.DischargeMode]float64{
		battery.ModeLow:    10,
		battery.ModeMedium: 100,
		battery.ModeHigh:   900,
	}
	for _, c := range battery.Chemistries {
		profile, err := c.Profile()
		require.NoError(t, err)
		for mode, load := range loads {
			m, err := battery.New(battery.Params{
				Chemistry:             c,
				RatedCapacityMAh:      3000,
				OperatingTempC:        profile.MaxOperatingTempC,
				LoadCurrentMA:         load,
				LoadDurationPerDaySec: battery.SecondsPerDay,
			}, Default())
			require.NoError(t, err)

			previous := 2.0
			for temp := profile.MaxOperatingTempC; temp >= profile.MinOperatingTempC; temp -= 0.5 {
				require.NoError(t, m.SetOperatingTemp(temp))
				e, err := m.Recompute()
				require.NoError(t, err, "%s %s %g°C", c, mode, temp)
				assert.Equal(t, mode, e.DischargeMode)
				assert.GreaterOrEqual(t, e.TemperatureFactor, 0.0)
				assert.LessOrEqual(t, e.TemperatureFactor, previous, "%s %s %g°C", c, mode, temp)
				assert.LessOrEqual(t, e.RuntimeDays, profile.MaxShelfLifeYears*365)
				previous = e.TemperatureFactor
			}
		}
	}
}
