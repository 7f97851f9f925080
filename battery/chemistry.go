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
	"fmt"
	"strings"
)

// Chemistry is the cell chemistry of a non-rechargeable primary battery.
type Chemistry string

const (
	LithiumMetal Chemistry = "lithium-metal"
	Alkaline     Chemistry = "alkaline"
)

// Chemistries lists the supported chemistries in display order.
var Chemistries = []Chemistry{LithiumMetal, Alkaline}

// ChemistryProfile holds the constants that depend only on the chemistry.
type ChemistryProfile struct {
	MinOperatingTempC float64 `json:"min_operating_temp_c"`
	MaxOperatingTempC float64 `json:"max_operating_temp_c"`
	MaxShelfLifeYears float64 `json:"max_shelf_life_years"`
}

// Profiles are based on the Energizer L91 (lithium metal) and LR6 (alkaline) AA cells.
var Profiles = map[Chemistry]ChemistryProfile{
	LithiumMetal: {
		MinOperatingTempC: -40,
		MaxOperatingTempC: 60,
		MaxShelfLifeYears: 25,
	},
	Alkaline: {
		MinOperatingTempC: -18,
		MaxOperatingTempC: 55,
		MaxShelfLifeYears: 10,
	},
}

// DefaultSelfDischargeRate is the fraction of capacity lost per year, for both chemistries.
const DefaultSelfDischargeRate = 0.01

// Valid returns true if c is a supported chemistry.
func (c Chemistry) Valid() bool {
	_, ok := Profiles[c]
	return ok
}

// Profile returns the constants for the chemistry.
func (c Chemistry) Profile() (ChemistryProfile, error) {
	p, ok := Profiles[c]
	if !ok {
		return ChemistryProfile{}, fmt.Errorf("unknown battery chemistry: %q", string(c))
	}
	return p, nil
}

// DisplayName is the name shown to users.
func (c Chemistry) DisplayName() string {
	switch c {
	case LithiumMetal:
		return "Lithium Metal"
	case Alkaline:
		return "Alkaline"
	default:
		return string(c)
	}
}

func (c Chemistry) String() string {
	return string(c)
}

// ParseChemistry accepts the canonical names as well as the display names, ignoring case.
func ParseChemistry(s string) (Chemistry, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lithium-metal", "lithium metal", "lithium", "li":
		return LithiumMetal, nil
	case "alkaline":
		return Alkaline, nil
	}
	return "", &InvalidParameterError{
		Field:      "chemistry",
		Value:      s,
		Constraint: "must be one of lithium-metal, alkaline",
	}
}
