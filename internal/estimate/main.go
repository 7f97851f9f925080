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

package estimate

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/TheCacophonyProject/battery-runtime/curves"
	"github.com/TheCacophonyProject/battery-runtime/internal/config"
	"github.com/TheCacophonyProject/battery-runtime/internal/logging"
	"github.com/TheCacophonyProject/battery-runtime/internal/render"
	arg "github.com/alexflint/go-arg"
)

type Args struct {
	Chemistry         string   `arg:"--chemistry" help:"Battery chemistry (lithium-metal, alkaline). Defaults to default-chemistry from the config"`
	Capacity          int      `arg:"--capacity,required" help:"Rated battery capacity in mAh"`
	Temp              float64  `arg:"--temp,required" help:"Operating temperature in °C"`
	LoadCurrent       float64  `arg:"--load-current,required" help:"Load current in mA"`
	LoadDuration      float64  `arg:"--load-duration" help:"Seconds per day the load is active"`
	SleepCurrent      float64  `arg:"--sleep-current" help:"Sleep current in mA"`
	SelfDischargeRate *float64 `arg:"--self-discharge-rate" help:"Yearly self-discharge fraction. Defaults to self-discharge-rate from the config"`
	LithiumOnly       bool     `arg:"--lithium-only" help:"Use the lithium-only model with a single continuous load curve"`
	Curves            string   `arg:"--curves" help:"Reference curve file (.csv, .xlsx, .yaml). Defaults to curves-file from the config, then the built in curves"`
	Output            string   `arg:"-o, --output" help:"Output format: text, plain or json"`
	PDF               string   `arg:"--pdf" help:"Also write a PDF report to this file"`
	ReportEvent       bool     `arg:"--report-event" help:"Report the estimate as an event"`
	logging.LogArgs
	config.ConfigArgs
}

var defaultArgs = Args{
	LoadDuration: 86400,
	Output:       "text",
}

var (
	log     = logging.NewLogger("info")
	version = "<not set>"
)

func (Args) Version() string {
	return version
}

func procArgs(input []string) (Args, error) {
	args := defaultArgs

	parser, err := arg.NewParser(arg.Config{}, &args)
	if err != nil {
		return Args{}, err
	}
	err = parser.Parse(input)
	if errors.Is(err, arg.ErrHelp) {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if errors.Is(err, arg.ErrVersion) {
		fmt.Println(version)
		os.Exit(0)
	}
	return args, err
}

func (a Args) request() Request {
	loadDuration := a.LoadDuration
	return Request{
		Chemistry:             a.Chemistry,
		RatedCapacityMAh:      a.Capacity,
		OperatingTempC:        a.Temp,
		LoadCurrentMA:         a.LoadCurrent,
		LoadDurationPerDaySec: &loadDuration,
		SleepCurrentMA:        a.SleepCurrent,
		LithiumOnly:           a.LithiumOnly,
		SelfDischargeRate:     a.SelfDischargeRate,
	}
}

func Run(inputArgs []string, ver string) error {
	version = ver
	args, err := procArgs(inputArgs)
	if err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	log = logging.NewLogger(args.LogLevel)
	log.Debugf("Running version: %s", version)

	conf, err := config.Load(args.ConfigDir)
	if err != nil {
		return err
	}
	return run(args, conf, os.Stdout)
}

func run(args Args, conf *config.Config, out io.Writer) error {
	curvesPath := args.Curves
	if curvesPath == "" {
		curvesPath = conf.CurvesFile
	}
	table, err := curves.Load(curvesPath)
	if err != nil {
		return err
	}
	log.Debugf("Using reference curves %s", table.ChecksumString())

	report, err := Compute(args.request().WithDefaults(conf), table, log)
	if err != nil {
		log.Error(render.ErrorMessage(err))
		return err
	}

	switch args.Output {
	case "text":
		err = render.Text(out, report, render.IsTerminal(out))
	case "plain":
		err = render.Text(out, report, false)
	case "json":
		err = render.JSON(out, report)
	default:
		err = fmt.Errorf("unknown output format '%s'", args.Output)
	}
	if err != nil {
		return err
	}

	if args.PDF != "" {
		if err := writePDF(args.PDF, report); err != nil {
			return err
		}
		log.Infof("Wrote PDF report to %s", args.PDF)
	}

	if args.ReportEvent || conf.ReportEvents {
		log.Info("Reporting ", EventType)
		if err := ReportEvent(report); err != nil {
			return fmt.Errorf("failed to report event: %w", err)
		}
	}
	return nil
}

func writePDF(path string, report render.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.PDF(file, report); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
