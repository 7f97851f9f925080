package service

import (
	"encoding/json"
	"testing"

	"github.com/TheCacophonyProject/battery-runtime/curves"
	"github.com/TheCacophonyProject/battery-runtime/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *service {
	conf := config.Default()
	return &service{store: curves.NewStore(curves.Default()), conf: &conf}
}

func TestEstimate(t *testing.T) {
	out, dbusErr := newService().Estimate("", 16000, -35, 1500, 2000, 0.06)
	require.Nil(t, dbusErr)

	var got struct {
		ID      string         `json:"id"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Lithium Metal", got.Details["battery_type"])
	assert.Equal(t, 13.41, got.Details["runtime_days"])
}

func TestEstimateLithiumOnly(t *testing.T) {
	out, dbusErr := newService().EstimateLithiumOnly(16000, -35, 90, 240, 0.060167)
	require.Nil(t, dbusErr)

	var got struct {
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "lithium-only", got.Details["variant"])
	assert.InDelta(t, 1260, got.Details["runtime_days"], 1)
}

func TestEstimateError(t *testing.T) {
	_, dbusErr := newService().Estimate("alkaline", -1, 20, 1, 86400, 0)
	require.NotNil(t, dbusErr)
	assert.Equal(t, "org.cacophony.BatteryRuntime.Estimate", dbusErr.Name)
	assert.Equal(t, []interface{}{"Invalid Battery Capacity / mAh -1: must be a non-negative integer."}, dbusErr.Body)
}

func TestCurves(t *testing.T) {
	out, dbusErr := newService().Curves()
	require.Nil(t, dbusErr)

	var got curvesReply
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, curves.Default().ChecksumString(), got.Checksum)
	assert.Equal(t, curves.Default().Len(), got.Points)
	assert.Contains(t, got.Keys, "lithium-metal/continuous")
}

func TestIntrospectionListsMethods(t *testing.T) {
	xml := string(genIntrospectable(newService()))
	for _, name := range []string{"Estimate", "EstimateLithiumOnly", "Curves"} {
		assert.Contains(t, xml, `<method name="`+name+`">`)
	}
}
