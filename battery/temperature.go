package battery

import "fmt"

// temperatureFactor returns the capacity derating factor for the current operating temperature.
// Reference datasheets only give discrete (temperature, factor) points so the factor is linearly
// interpolated between the two points either side of the operating temperature.
func (m *Model) temperatureFactor(profile ChemistryProfile, curveLimitMA float64) (float64, error) {
	temp := m.params.OperatingTempC
	if temp < profile.MinOperatingTempC || temp > profile.MaxOperatingTempC {
		return 0, ErrTemperatureOutOfCurveRange
	}
	if m.variant == LithiumOnly && temp >= lithiumOnlyFlatAboveC {
		return 1, nil
	}

	curve, err := m.curves.Curve(m.params.Chemistry, curveLimitMA)
	if err != nil {
		return 0, fmt.Errorf("failed to get %s reference curve for %gmA: %w", m.params.Chemistry, curveLimitMA, err)
	}
	return interpolate(curve, temp, profile.MaxOperatingTempC, &InterpolationGapError{
		Chemistry:    m.params.Chemistry,
		CurveLimitMA: curveLimitMA,
		TempC:        temp,
	})
}

// interpolate looks up temp in a curve sorted by descending temperature. At maxTemp the first
// point is used as is. gapErr is returned if no pair of points brackets temp.
func interpolate(curve []CurvePoint, temp, maxTemp float64, gapErr error) (float64, error) {
	if len(curve) == 0 {
		return 0, gapErr
	}
	if temp == maxTemp {
		return curve[0].Factor, nil
	}
	for i := 0; i < len(curve)-1; i++ {
		upper, lower := curve[i], curve[i+1]
		if temp < upper.TempC && temp >= lower.TempC {
			slope := (upper.Factor - lower.Factor) / (upper.TempC - lower.TempC)
			return lower.Factor + slope*(temp-lower.TempC), nil
		}
	}
	return 0, gapErr
}
