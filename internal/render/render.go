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

// Package render formats runtime estimates for terminals, JSON clients and PDF reports.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/TheCacophonyProject/battery-runtime/battery"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	boxWidth = 64

	Caveat = "Note: These calculations are theoretical estimates. The actual battery runtime " +
		"may vary depending on additional factors such as real-world conditions and system efficiency."
)

// Report is a computed estimate with the inputs and curve table it came from.
type Report struct {
	ID            string
	CurveChecksum string
	Params        battery.Params
	Estimate      battery.Estimate
	Details       battery.Details
}

// NewReport captures the current estimate of m. m must have been recomputed successfully.
func NewReport(m *battery.Model, id, curveChecksum string) (Report, error) {
	e, ok := m.Estimate()
	if !ok {
		return Report{}, errors.New("battery runtime has not been computed")
	}
	return Report{
		ID:            id,
		CurveChecksum: curveChecksum,
		Params:        m.Params(),
		Estimate:      e,
		Details:       m.Details(),
	}, nil
}

// Line is one bullet of the text summary.
type Line struct {
	Label string
	Value string
}

// Headline is the runtime in whole years and days.
func (r Report) Headline() string {
	years, days := r.Estimate.RuntimeYearsDays()
	return fmt.Sprintf("Estimated Battery Runtime: %d year(s) %d day(s)", years, days)
}

// Lines returns the summary bullets shown under the headline.
func (r Report) Lines() []Line {
	p := message.NewPrinter(language.English)
	e := r.Estimate
	lines := []Line{
		{"Effective Battery Capacity", p.Sprintf("%.0f mAh at %.1f°C", e.EffectiveCapacityMAh, r.Params.OperatingTempC)},
		{"Self-discharge Rate", p.Sprintf("%.2f%% per year", e.SelfDischargeRatePerYear*100)},
		{"Load Consumption", p.Sprintf("%.2f mAh per day", r.Params.LoadCurrentMA*r.Params.LoadDurationPerDaySec/3600)},
		{"Sleep Consumption", p.Sprintf("%.2f mAh per day", r.Params.SleepCurrentMA*e.SleepDurationPerDaySec/3600)},
	}
	if e.Variant == battery.Generalized {
		lines = append(lines, Line{"Discharge Mode",
			p.Sprintf("%s (%.3f mA average, %g mA curve)", e.DischargeMode, e.AverageCurrentDrawMA, e.CurveLimitMA)})
	}
	lines = append(lines, Line{"Temperature Factor", p.Sprintf("%.3f", e.TemperatureFactor)})
	return lines
}

// LimitNote explains a runtime that was not limited by consumption. It is empty otherwise.
func (r Report) LimitNote() string {
	e := r.Estimate
	switch e.Limit {
	case battery.ShelfLifeLimited:
		return fmt.Sprintf("Runtime is capped at the %g year shelf life of %s batteries.",
			e.Profile.MaxShelfLifeYears, strings.ToLower(e.Chemistry.DisplayName()))
	case battery.TemperatureLimited:
		return fmt.Sprintf("%.1f°C is outside the %g°C to %g°C operating range of %s batteries, the battery is assumed non-functional.",
			r.Params.OperatingTempC, e.Profile.MinOperatingTempC, e.Profile.MaxOperatingTempC, strings.ToLower(e.Chemistry.DisplayName()))
	case battery.NoCapacity:
		return "The battery has no usable capacity."
	}
	return ""
}

// IsTerminal reports whether w is a terminal, in which case styled output is used.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Text writes the summary. Styled output draws a box around it.
func Text(w io.Writer, r Report, styled bool) error {
	if !styled {
		return plain(w, r)
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	labelStyle := lipgloss.NewStyle().Bold(true)
	noteStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	caveatStyle := lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("246"))
	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(boxWidth)

	var content strings.Builder
	content.WriteString(titleStyle.Render(r.Headline()))
	content.WriteString("\n\n")
	for _, l := range r.Lines() {
		content.WriteString("• ")
		content.WriteString(labelStyle.Render(l.Label + ":"))
		content.WriteString(" " + l.Value + "\n")
	}
	if note := r.LimitNote(); note != "" {
		content.WriteString("\n")
		content.WriteString(noteStyle.Render(note))
		content.WriteString("\n")
	}
	content.WriteString("\n")
	content.WriteString(caveatStyle.Render(Caveat))

	_, err := fmt.Fprintln(w, boxStyle.Render(content.String()))
	return err
}

func plain(w io.Writer, r Report) error {
	var b strings.Builder
	b.WriteString(r.Headline() + "\n")
	for _, l := range r.Lines() {
		fmt.Fprintf(&b, "- %s: %s\n", l.Label, l.Value)
	}
	if note := r.LimitNote(); note != "" {
		b.WriteString(note + "\n")
	}
	b.WriteString(Caveat + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// jsonReport is the JSON form of a report. Details are keyed by property key.
type jsonReport struct {
	ID            string         `json:"id,omitempty"`
	CurveChecksum string         `json:"curve_checksum,omitempty"`
	RuntimeYears  int            `json:"runtime_years"`
	RuntimeDays   int            `json:"runtime_days"`
	Limit         string         `json:"limit"`
	Summary       string         `json:"summary"`
	Note          string         `json:"note,omitempty"`
	Details       map[string]any `json:"details"`
}

// JSON writes the report as a single JSON object.
func JSON(w io.Writer, r Report) error {
	years, days := r.Estimate.RuntimeYearsDays()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		ID:            r.ID,
		CurveChecksum: r.CurveChecksum,
		RuntimeYears:  years,
		RuntimeDays:   days,
		Limit:         string(r.Estimate.Limit),
		Summary:       r.Headline(),
		Note:          r.LimitNote(),
		Details:       r.Details.Values(),
	})
}
