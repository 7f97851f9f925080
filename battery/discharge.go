package battery

// DischargeMode classifies the average current draw. It selects which reference curve applies.
type DischargeMode string

const (
	// ModeNone is used by the lithium-only variant, which always uses the continuous load curve.
	ModeNone   DischargeMode = ""
	ModeLow    DischargeMode = "Low"
	ModeMedium DischargeMode = "Medium"
	ModeHigh   DischargeMode = "High"
)

// Constant current discharge limits in mA. These are the lookup keys of the reference curves.
const (
	LowCurrentDischargeMA    = 25.0
	MediumCurrentDischargeMA = 250.0
	HighCurrentDischargeMA   = 1000.0

	// ContinuousCurveLimitMA keys the single curve used by the lithium-only variant.
	ContinuousCurveLimitMA = 0.0
)

// CurrentLimits are the curve keys of the generalized model, lowest first.
var CurrentLimits = []float64{LowCurrentDischargeMA, MediumCurrentDischargeMA, HighCurrentDischargeMA}

// ModeForCurrent classifies an average current draw in mA.
func ModeForCurrent(averageMA float64) DischargeMode {
	switch {
	case averageMA <= LowCurrentDischargeMA:
		return ModeLow
	case averageMA <= MediumCurrentDischargeMA:
		return ModeMedium
	default:
		return ModeHigh
	}
}

// CurrentLimit returns the curve lookup key for the mode.
func (m DischargeMode) CurrentLimit() float64 {
	switch m {
	case ModeLow:
		return LowCurrentDischargeMA
	case ModeMedium:
		return MediumCurrentDischargeMA
	case ModeHigh:
		return HighCurrentDischargeMA
	default:
		return ContinuousCurveLimitMA
	}
}

func (m DischargeMode) String() string {
	if m == ModeNone {
		return "n/a"
	}
	return string(m)
}
