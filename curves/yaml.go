package curves

import (
	"fmt"
	"io"

	"github.com/TheCacophonyProject/battery-runtime/battery"
	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Curves []yamlCurve `yaml:"curves"`
}

type yamlCurve struct {
	Chemistry      string               `yaml:"chemistry"`
	CurrentLimitMA float64              `yaml:"current_limit_ma,omitempty"`
	Points         []battery.CurvePoint `yaml:"points"`
}

// ReadYAML reads curves in the form
//
//	curves:
//	  - chemistry: alkaline
//	    current_limit_ma: 25
//	    points:
//	      - {temperature_c: 55, factor: 1.0}
//
// A missing current_limit_ma is the continuous load curve.
func ReadYAML(r io.Reader) ([]Row, error) {
	var f yamlFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode yaml curves: %w", err)
	}
	var rows []Row
	for i, c := range f.Curves {
		chemistry, err := battery.ParseChemistry(c.Chemistry)
		if err != nil {
			return nil, fmt.Errorf("curve %d: %w", i+1, err)
		}
		for _, p := range c.Points {
			rows = append(rows, Row{chemistry, c.CurrentLimitMA, p.TempC, p.Factor})
		}
	}
	return rows, nil
}

// WriteYAML writes the table in the format read by ReadYAML.
func WriteYAML(w io.Writer, t *Table) error {
	var f yamlFile
	for _, k := range t.Keys() {
		points, err := t.Curve(k.Chemistry, k.CurrentLimitMA)
		if err != nil {
			return err
		}
		f.Curves = append(f.Curves, yamlCurve{string(k.Chemistry), k.CurrentLimitMA, points})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return err
	}
	return enc.Close()
}
