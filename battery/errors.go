package battery

import (
	"errors"
	"fmt"
)

// ErrTemperatureOutOfCurveRange is returned by the temperature factor lookup when the operating
// temperature is outside the chemistry's operating range. The model treats the battery as
// non-functional (factor 0) rather than failing.
var ErrTemperatureOutOfCurveRange = errors.New("operating temperature outside chemistry operating range")

// ErrZeroConsumption is returned when the total daily consumption is zero, so no runtime can be derived.
var ErrZeroConsumption = errors.New("total daily consumption is zero")

// ErrNoCurveProvider is returned when a model is created without a reference curve provider.
var ErrNoCurveProvider = errors.New("no reference curve provider")

// InvalidParameterError is returned when a parameter violates its domain constraint.
type InvalidParameterError struct {
	Field      string
	Value      any
	Constraint string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Constraint)
}

// InterpolationGapError is returned when no pair of curve points brackets a temperature that is
// inside the operating range. It points to a defect in the reference table.
type InterpolationGapError struct {
	Chemistry    Chemistry
	CurveLimitMA float64
	TempC        float64
}

func (e *InterpolationGapError) Error() string {
	return fmt.Sprintf("no %s reference curve points (%gmA) bracket %g°C", e.Chemistry, e.CurveLimitMA, e.TempC)
}
