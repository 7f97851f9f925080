package render

import (
	"errors"
	"fmt"

	"github.com/TheCacophonyProject/battery-runtime/battery"
	"github.com/TheCacophonyProject/battery-runtime/curves"
)

// fieldLabels are the input names shown to users for each parameter.
var fieldLabels = map[string]string{
	"chemistry":               "Battery Type",
	"rated_capacity_mah":      "Battery Capacity / mAh",
	"operating_temp_c":        "Operating Temperature / °C",
	"load_current_ma":         "Load Current / mA",
	"load_duration_per_day_s": "Load Duration Per Day / s",
	"sleep_current_ma":        "Sleep Current / mA",
	"self_discharge_rate":     "Self-discharge Rate",
}

// ErrorMessage turns an estimation error into a message for the user.
func ErrorMessage(err error) string {
	var invalid *battery.InvalidParameterError
	var gap *battery.InterpolationGapError
	var missing *curves.MissingCurveError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &invalid):
		label, ok := fieldLabels[invalid.Field]
		if !ok {
			label = invalid.Field
		}
		return fmt.Sprintf("Invalid %s %v: %s.", label, invalid.Value, invalid.Constraint)
	case errors.Is(err, battery.ErrZeroConsumption):
		return "Load and sleep current are both zero so the runtime cannot be estimated."
	case errors.As(err, &gap):
		return fmt.Sprintf("The %s reference curve has no data around %g°C.", curves.Key{
			Chemistry:      gap.Chemistry,
			CurrentLimitMA: gap.CurveLimitMA,
		}, gap.TempC)
	case errors.As(err, &missing):
		return fmt.Sprintf("No %s reference curve is loaded.", missing.Key)
	case errors.Is(err, battery.ErrTemperatureOutOfCurveRange):
		return "The operating temperature is outside the operating range of the battery."
	}
	return err.Error()
}
