package estimate

import (
	"time"

	"github.com/TheCacophonyProject/battery-runtime/battery"
	"github.com/TheCacophonyProject/battery-runtime/curves"
	"github.com/TheCacophonyProject/battery-runtime/internal/config"
	"github.com/TheCacophonyProject/battery-runtime/internal/render"
	"github.com/TheCacophonyProject/event-reporter/v3/eventclient"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// EventType is the event reported for each estimate when event reporting is enabled.
const EventType = "batteryRuntimeEstimate"

// Request holds the inputs of one estimate as received from the CLI, HTTP or D-Bus.
type Request struct {
	Chemistry             string   `json:"chemistry"`
	RatedCapacityMAh      int      `json:"rated_capacity_mah"`
	OperatingTempC        float64  `json:"operating_temp_c"`
	LoadCurrentMA         float64  `json:"load_current_ma"`
	LoadDurationPerDaySec *float64 `json:"load_duration_per_day_s,omitempty"`
	SleepCurrentMA        float64  `json:"sleep_current_ma"`
	LithiumOnly           bool     `json:"lithium_only"`
	SelfDischargeRate     *float64 `json:"self_discharge_rate,omitempty"`
}

// WithDefaults fills in the chemistry and self-discharge rate from the config when they are not set.
func (r Request) WithDefaults(c *config.Config) Request {
	if r.Chemistry == "" {
		r.Chemistry = c.DefaultChemistry
	}
	if r.SelfDischargeRate == nil {
		rate := c.SelfDischargeRate
		r.SelfDischargeRate = &rate
	}
	return r
}

// Params converts the request into model parameters.
// A missing load duration means the load runs all day.
func (r Request) Params() (battery.Params, error) {
	chemistry, err := battery.ParseChemistry(r.Chemistry)
	if err != nil {
		return battery.Params{}, err
	}
	p := battery.Params{
		Chemistry:             chemistry,
		RatedCapacityMAh:      r.RatedCapacityMAh,
		OperatingTempC:        r.OperatingTempC,
		LoadCurrentMA:         r.LoadCurrentMA,
		LoadDurationPerDaySec: battery.SecondsPerDay,
		SleepCurrentMA:        r.SleepCurrentMA,
	}
	if r.LoadDurationPerDaySec != nil {
		p.LoadDurationPerDaySec = *r.LoadDurationPerDaySec
	}
	return p, nil
}

// Compute runs one estimate against table and returns the report, tagged with a new ULID.
func Compute(r Request, table *curves.Table, log logrus.FieldLogger) (render.Report, error) {
	p, err := r.Params()
	if err != nil {
		return render.Report{}, err
	}
	opts := []battery.Option{battery.WithLogger(log)}
	if r.LithiumOnly {
		opts = append(opts, battery.WithVariant(battery.LithiumOnly))
	}
	if r.SelfDischargeRate != nil {
		opts = append(opts, battery.WithSelfDischargeRate(*r.SelfDischargeRate))
	}
	m, err := battery.New(p, table, opts...)
	if err != nil {
		return render.Report{}, err
	}
	if _, err := m.Recompute(); err != nil {
		return render.Report{}, err
	}
	return render.NewReport(m, ulid.Make().String(), table.ChecksumString())
}

// Event builds the event reported for an estimate.
func Event(r render.Report) eventclient.Event {
	e := r.Estimate
	return eventclient.Event{
		Timestamp: time.Now(),
		Type:      EventType,
		Details: map[string]interface{}{
			"id":                r.ID,
			"chemistry":         string(e.Chemistry),
			"capacityMAh":       r.Params.RatedCapacityMAh,
			"temperature":       r.Params.OperatingTempC,
			"averageCurrentMA":  e.AverageCurrentDrawMA,
			"temperatureFactor": e.TemperatureFactor,
			"runtimeDays":       e.RuntimeDays,
			"limit":             string(e.Limit),
			"curveChecksum":     r.CurveChecksum,
		},
	}
}

// ReportEvent queues the estimate event with the event reporter.
func ReportEvent(r render.Report) error {
	return eventclient.AddEvent(Event(r))
}
