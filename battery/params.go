package battery

import "math"

// SecondsPerDay is the length of the daily duty cycle.
const SecondsPerDay = 86400.0

// Params are the user supplied inputs of a runtime estimate.
// Units:
//   - RatedCapacityMAh: mAh at the reference temperature
//   - OperatingTempC: °C, not range checked; out of range temperatures give a zero runtime
//   - LoadCurrentMA/SleepCurrentMA: mA
//   - LoadDurationPerDaySec: seconds per day the load is active [0..86400]
type Params struct {
	Chemistry             Chemistry `json:"chemistry"`
	RatedCapacityMAh      int       `json:"rated_capacity_mah"`
	OperatingTempC        float64   `json:"operating_temp_c"`
	LoadCurrentMA         float64   `json:"load_current_ma"`
	LoadDurationPerDaySec float64   `json:"load_duration_per_day_s"`
	SleepCurrentMA        float64   `json:"sleep_current_ma"`
}

// DefaultParams returns a lithium metal battery with an always-on load and no sleep current.
func DefaultParams() Params {
	return Params{
		Chemistry:             LithiumMetal,
		LoadDurationPerDaySec: SecondsPerDay,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks every parameter against its constraint for the given variant.
// The first violation is returned.
func (p Params) Validate(v Variant) error {
	if !p.Chemistry.Valid() {
		return &InvalidParameterError{"chemistry", p.Chemistry, "must be one of lithium-metal, alkaline"}
	}
	if v == LithiumOnly && p.Chemistry != LithiumMetal {
		return &InvalidParameterError{"chemistry", p.Chemistry, "lithium-only model requires lithium-metal"}
	}
	if v == LithiumOnly {
		if p.RatedCapacityMAh <= 0 {
			return &InvalidParameterError{"rated_capacity_mah", p.RatedCapacityMAh, "must be a positive integer"}
		}
	} else if p.RatedCapacityMAh < 0 {
		return &InvalidParameterError{"rated_capacity_mah", p.RatedCapacityMAh, "must be a non-negative integer"}
	}
	if !finite(p.OperatingTempC) {
		return &InvalidParameterError{"operating_temp_c", p.OperatingTempC, "must be a finite number"}
	}
	if !finite(p.LoadCurrentMA) || p.LoadCurrentMA < 0 {
		return &InvalidParameterError{"load_current_ma", p.LoadCurrentMA, "must be a non-negative number"}
	}
	if !finite(p.LoadDurationPerDaySec) || p.LoadDurationPerDaySec < 0 || p.LoadDurationPerDaySec > SecondsPerDay {
		return &InvalidParameterError{"load_duration_per_day_s", p.LoadDurationPerDaySec, "must be between 0 and 86400"}
	}
	if !finite(p.SleepCurrentMA) || p.SleepCurrentMA < 0 {
		return &InvalidParameterError{"sleep_current_ma", p.SleepCurrentMA, "must be a non-negative number"}
	}
	return nil
}
