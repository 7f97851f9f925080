package curves

import (
	"bytes"
	"strings"
	"testing"

	"github.com/TheCacophonyProject/battery-runtime/battery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := `# comment lines are skipped
temperature_c, chemistry, temperature_factor, current_limit_ma
55, Alkaline, 0.95, 250
-18, alkaline, 0.15, 250
-40, Lithium Metal, 0.514,
`
	rows, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []Row{
		{battery.Alkaline, 250, 55, 0.95},
		{battery.Alkaline, 250, -18, 0.15},
		{battery.LithiumMetal, battery.ContinuousCurveLimitMA, -40, 0.514},
	}, rows)
}

func TestReadCSVErrors(t *testing.T) {
	tests := map[string]string{
		"missing column":    "chemistry,temperature_c,temperature_factor\nalkaline,20,1\n",
		"bad temperature":   "chemistry,current_limit_ma,temperature_c,temperature_factor\nalkaline,25,warm,1\n",
		"bad factor":        "chemistry,current_limit_ma,temperature_c,temperature_factor\nalkaline,25,20,x\n",
		"bad current limit": "chemistry,current_limit_ma,temperature_c,temperature_factor\nalkaline,lots,20,1\n",
		"bad chemistry":     "chemistry,current_limit_ma,temperature_c,temperature_factor\nnimh,25,20,1\n",
		"empty":             "",
	}
	for name, in := range tests {
		_, err := ReadCSV(strings.NewReader(in))
		assert.Error(t, err, name)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Default()))

	table, err := Read(&buf, FormatCSV)
	require.NoError(t, err)
	if diff := cmp.Diff(Default().Rows(), table.Rows()); diff != "" {
		t.Errorf("rows changed in csv round trip (-want +got):\n%s", diff)
	}
	assert.Equal(t, Default().Checksum(), table.Checksum())
}
