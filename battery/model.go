/*
battery-runtime - Primary battery runtime estimation.
Copyright (C) 2025, The Cacophony Project

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package battery

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Variant selects between the chemistry generalized model and the original lithium-only model.
type Variant int

const (
	// Generalized supports both chemistries and picks a reference curve by discharge mode.
	Generalized Variant = iota
	// LithiumOnly has a flat temperature response above -10°C, a single continuous load curve
	// and does not round the runtime.
	LithiumOnly
)

func (v Variant) String() string {
	if v == LithiumOnly {
		return "lithium-only"
	}
	return "generalized"
}

// lithiumOnlyFlatAboveC is the temperature at and above which the lithium-only variant
// uses a temperature factor of 1.
const lithiumOnlyFlatAboveC = -10.0

// CurvePoint is one (temperature, temperature factor) sample of a reference curve.
type CurvePoint struct {
	TempC  float64 `json:"temperature_c" yaml:"temperature_c"`
	Factor float64 `json:"factor" yaml:"factor"`
}

// CurveProvider supplies reference curves sorted by descending temperature.
// currentLimitMA is one of CurrentLimits, or ContinuousCurveLimitMA for the lithium-only curve.
type CurveProvider interface {
	Curve(chemistry Chemistry, currentLimitMA float64) ([]CurvePoint, error)
}

// RuntimeLimit records what bounded the runtime estimate.
type RuntimeLimit string

const (
	ConsumptionLimited RuntimeLimit = "consumption"
	ShelfLifeLimited   RuntimeLimit = "shelf-life"
	TemperatureLimited RuntimeLimit = "temperature"
	NoCapacity         RuntimeLimit = "no-capacity"
)

// Estimate holds every derived quantity of one Recompute call.
type Estimate struct {
	Variant                  Variant          `json:"-"`
	Chemistry                Chemistry        `json:"chemistry"`
	Profile                  ChemistryProfile `json:"profile"`
	SelfDischargeRatePerYear float64          `json:"self_discharge_rate_per_year"`
	SleepDurationPerDaySec   float64          `json:"sleep_duration_per_day_s"`
	AverageCurrentDrawMA     float64          `json:"average_current_draw_ma"`
	DischargeMode            DischargeMode    `json:"discharge_mode"`
	CurveLimitMA             float64          `json:"curve_limit_ma"`
	TemperatureFactor        float64          `json:"temperature_factor"`
	EffectiveCapacityMAh     float64          `json:"effective_capacity_mah"`
	DailyLoadMAh             float64          `json:"daily_load_mah"`
	DailySleepMAh            float64          `json:"daily_sleep_mah"`
	DailySelfDischargeMAh    float64          `json:"daily_self_discharge_mah"`
	TotalDailyConsumptionMAh float64          `json:"total_daily_consumption_mah"`
	RuntimeDays              float64          `json:"runtime_days"`
	Limit                    RuntimeLimit     `json:"limit"`
}

// RuntimeYearsDays splits the runtime into whole years and the remaining (rounded) days.
func (e Estimate) RuntimeYearsDays() (int, int) {
	years := int(math.Floor(e.RuntimeDays / 365))
	days := int(math.Round(e.RuntimeDays - float64(years)*365))
	if days == 365 {
		years++
		days = 0
	}
	return years, days
}

// Model estimates the runtime of a primary battery. A Model has a single owner and is not safe
// for concurrent use.
type Model struct {
	variant           Variant
	selfDischargeRate float64
	params            Params
	curves            CurveProvider
	log               logrus.FieldLogger

	estimate *Estimate
}

// Option configures a Model.
type Option func(*Model) error

// WithVariant selects the model variant. Generalized is the default.
func WithVariant(v Variant) Option {
	return func(m *Model) error {
		if v != Generalized && v != LithiumOnly {
			return &InvalidParameterError{"variant", v, "must be generalized or lithium-only"}
		}
		m.variant = v
		return nil
	}
}

// WithSelfDischargeRate overrides the yearly self-discharge fraction.
func WithSelfDischargeRate(rate float64) Option {
	return func(m *Model) error {
		if !finite(rate) || rate < 0 || rate > 1 {
			return &InvalidParameterError{"self_discharge_rate", rate, "must be between 0 and 1"}
		}
		m.selfDischargeRate = rate
		return nil
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Model) error {
		if l != nil {
			m.log = l
		}
		return nil
	}
}

// New validates p and returns a model. No model is returned if any parameter is invalid.
func New(p Params, curves CurveProvider, opts ...Option) (*Model, error) {
	if curves == nil {
		return nil, ErrNoCurveProvider
	}
	m := &Model{
		variant:           Generalized,
		selfDischargeRate: DefaultSelfDischargeRate,
		curves:            curves,
		log:               logrus.StandardLogger(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if err := p.Validate(m.variant); err != nil {
		return nil, err
	}
	m.params = p
	return m, nil
}

// Variant returns the variant the model was created with.
func (m *Model) Variant() Variant {
	return m.variant
}

// Params returns a copy of the current inputs.
func (m *Model) Params() Params {
	return m.params
}

// Update replaces all inputs. Nothing is changed if p is invalid.
// Derived values are only updated by the next Recompute.
func (m *Model) Update(p Params) error {
	if err := p.Validate(m.variant); err != nil {
		return err
	}
	m.params = p
	return nil
}

func (m *Model) set(change func(p *Params)) error {
	p := m.params
	change(&p)
	return m.Update(p)
}

func (m *Model) SetChemistry(c Chemistry) error {
	return m.set(func(p *Params) { p.Chemistry = c })
}

func (m *Model) SetRatedCapacity(mAh int) error {
	return m.set(func(p *Params) { p.RatedCapacityMAh = mAh })
}

func (m *Model) SetOperatingTemp(c float64) error {
	return m.set(func(p *Params) { p.OperatingTempC = c })
}

func (m *Model) SetLoadCurrent(mA float64) error {
	return m.set(func(p *Params) { p.LoadCurrentMA = mA })
}

func (m *Model) SetLoadDuration(seconds float64) error {
	return m.set(func(p *Params) { p.LoadDurationPerDaySec = seconds })
}

func (m *Model) SetSleepCurrent(mA float64) error {
	return m.set(func(p *Params) { p.SleepCurrentMA = mA })
}

// Estimate returns the result of the last successful Recompute. The bool is false if the model
// has never been computed or the last Recompute failed.
func (m *Model) Estimate() (Estimate, bool) {
	if m.estimate == nil {
		return Estimate{}, false
	}
	return *m.estimate, true
}

// Recompute derives every quantity from the current inputs, in order: chemistry constants,
// sleep duration, average current and discharge mode, temperature factor, effective capacity
// and runtime. On error the previous estimate is discarded.
func (m *Model) Recompute() (Estimate, error) {
	m.estimate = nil

	p := m.params
	profile, err := p.Chemistry.Profile()
	if err != nil {
		return Estimate{}, err
	}

	e := Estimate{
		Variant:                  m.variant,
		Chemistry:                p.Chemistry,
		Profile:                  profile,
		SelfDischargeRatePerYear: m.selfDischargeRate,
	}

	e.SleepDurationPerDaySec = SecondsPerDay - p.LoadDurationPerDaySec
	e.AverageCurrentDrawMA = roundTo(
		p.LoadCurrentMA*p.LoadDurationPerDaySec/SecondsPerDay+p.SleepCurrentMA*e.SleepDurationPerDaySec/SecondsPerDay, 3)
	if m.variant == Generalized {
		e.DischargeMode = ModeForCurrent(e.AverageCurrentDrawMA)
	}
	e.CurveLimitMA = e.DischargeMode.CurrentLimit()

	factor, err := m.temperatureFactor(profile, e.CurveLimitMA)
	switch {
	case errors.Is(err, ErrTemperatureOutOfCurveRange):
		m.log.WithFields(logrus.Fields{
			"chemistry": p.Chemistry,
			"temp":      p.OperatingTempC,
			"min":       profile.MinOperatingTempC,
			"max":       profile.MaxOperatingTempC,
		}).Warn("Operating temperature out of range, battery assumed non-functional")
		factor = 0
		e.Limit = TemperatureLimited
	case err != nil:
		return Estimate{}, err
	}
	e.TemperatureFactor = factor
	e.EffectiveCapacityMAh = factor * float64(p.RatedCapacityMAh)

	if err := m.runtime(&e); err != nil {
		return Estimate{}, err
	}

	m.log.WithFields(logrus.Fields{
		"mode":    e.DischargeMode.String(),
		"factor":  e.TemperatureFactor,
		"runtime": e.RuntimeDays,
		"limit":   e.Limit,
	}).Debug("Recomputed battery runtime")

	m.estimate = &e
	return e, nil
}

// runtime fills in the daily consumption, the runtime in days and what limited it.
func (m *Model) runtime(e *Estimate) error {
	p := m.params
	if e.EffectiveCapacityMAh == 0 {
		e.RuntimeDays = 0
		if e.Limit == "" {
			e.Limit = NoCapacity
			if e.TemperatureFactor == 0 {
				e.Limit = TemperatureLimited
			}
		}
		return nil
	}

	e.DailyLoadMAh = p.LoadCurrentMA * p.LoadDurationPerDaySec / 3600
	e.DailySleepMAh = p.SleepCurrentMA * e.SleepDurationPerDaySec / 3600
	e.DailySelfDischargeMAh = e.SelfDischargeRatePerYear * e.EffectiveCapacityMAh / 365
	e.TotalDailyConsumptionMAh = e.DailyLoadMAh + e.DailySleepMAh + e.DailySelfDischargeMAh
	if e.TotalDailyConsumptionMAh == 0 {
		return fmt.Errorf("%w: %s battery with %.0fmAh effective capacity", ErrZeroConsumption, p.Chemistry, e.EffectiveCapacityMAh)
	}

	days := e.EffectiveCapacityMAh / e.TotalDailyConsumptionMAh
	e.Limit = ConsumptionLimited
	if days/365 >= e.Profile.MaxShelfLifeYears {
		days = e.Profile.MaxShelfLifeYears * 365
		e.Limit = ShelfLifeLimited
	}
	if m.variant == Generalized {
		days = roundTo(days, 2)
	}
	e.RuntimeDays = days
	return nil
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
