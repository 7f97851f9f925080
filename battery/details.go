package battery

// Property is one labelled value of the battery details.
type Property struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Details is the flat, ordered list of inputs and derived values, ready for display.
type Details []Property

// Map returns the details keyed by label.
func (d Details) Map() map[string]any {
	out := make(map[string]any, len(d))
	for _, p := range d {
		out[p.Label] = p.Value
	}
	return out
}

// Values returns the details keyed by their machine readable key.
func (d Details) Values() map[string]any {
	out := make(map[string]any, len(d))
	for _, p := range d {
		out[p.Key] = p.Value
	}
	return out
}

// Get returns the value stored under key.
func (d Details) Get(key string) (any, bool) {
	for _, p := range d {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Details returns every input and derived value. Derived values are nil until the model has
// been successfully recomputed.
func (m *Model) Details() Details {
	p := m.params
	profile, _ := p.Chemistry.Profile()
	d := Details{
		{"variant", "Model Variant", m.variant.String()},
		{"battery_type", "Battery Type", p.Chemistry.DisplayName()},
		{"battery_capacity_mah", "Battery Capacity (mAh)", p.RatedCapacityMAh},
		{"operating_temp_c", "Current Operating Temperature (°C)", p.OperatingTempC},
		{"load_current_ma", "Load Current (mA)", p.LoadCurrentMA},
		{"load_duration_per_day_s", "Load Duration Per Day (s)", p.LoadDurationPerDaySec},
		{"sleep_current_ma", "Sleep Current (mA)", p.SleepCurrentMA},
		{"self_discharge_rate", "Annual Self-discharge Rate", m.selfDischargeRate},
		{"max_shelf_life_years", "Max Shelf Life (Years)", profile.MaxShelfLifeYears},
		{"min_operating_temp_c", "Min Operating Temperature (°C)", profile.MinOperatingTempC},
		{"max_operating_temp_c", "Max Operating Temperature (°C)", profile.MaxOperatingTempC},
		{"low_current_discharge_ma", "Low Constant Current Discharge Limit (mA)", LowCurrentDischargeMA},
		{"medium_current_discharge_ma", "Medium Constant Current Discharge Limit (mA)", MediumCurrentDischargeMA},
		{"high_current_discharge_ma", "High Constant Current Discharge Limit (mA)", HighCurrentDischargeMA},
	}

	e := m.estimate
	derived := func(key, label string, value func() any) {
		var v any
		if e != nil {
			v = value()
		}
		d = append(d, Property{key, label, v})
	}
	derived("sleep_duration_per_day_s", "Sleep Duration Per Day (s)", func() any { return e.SleepDurationPerDaySec })
	derived("average_current_draw_ma", "Average Current Draw (mA)", func() any { return e.AverageCurrentDrawMA })
	derived("discharge_mode", "Current Discharge Mode", func() any { return e.DischargeMode.String() })
	derived("temperature_factor", "Temperature Factor", func() any { return e.TemperatureFactor })
	derived("effective_capacity_mah", "Effective Battery Capacity (mAh)", func() any { return e.EffectiveCapacityMAh })
	derived("daily_load_mah", "Load Consumption Per Day (mAh)", func() any { return e.DailyLoadMAh })
	derived("daily_sleep_mah", "Sleep Consumption Per Day (mAh)", func() any { return e.DailySleepMAh })
	derived("daily_self_discharge_mah", "Self-discharge Per Day (mAh)", func() any { return e.DailySelfDischargeMAh })
	derived("runtime_days", "Battery Runtime (Days)", func() any { return e.RuntimeDays })
	derived("runtime_limit", "Runtime Limited By", func() any { return string(e.Limit) })
	return d
}
