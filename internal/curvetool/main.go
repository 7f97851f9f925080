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

package curvetool

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/TheCacophonyProject/battery-runtime/curves"
	"github.com/TheCacophonyProject/battery-runtime/internal/config"
	"github.com/TheCacophonyProject/battery-runtime/internal/logging"
	arg "github.com/alexflint/go-arg"
)

type Args struct {
	Curves string `arg:"positional" help:"Reference curve file (.csv, .xlsx, .yaml). Defaults to curves-file from the config, then the built in curves"`
	Dump   bool   `arg:"--dump" help:"Print every point as CSV"`
	Export string `arg:"--export" help:"Write the curves to this file, format from its extension"`
	logging.LogArgs
	config.ConfigArgs
}

var (
	log     = logging.NewLogger("info")
	version = "<not set>"
)

func (Args) Version() string {
	return version
}

func procArgs(input []string) (Args, error) {
	args := Args{}

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

func Run(inputArgs []string, ver string) error {
	version = ver
	args, err := procArgs(inputArgs)
	if err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}
	log = logging.NewLogger(args.LogLevel)

	path := args.Curves
	if path == "" {
		conf, err := config.Load(args.ConfigDir)
		if err != nil {
			return err
		}
		path = conf.CurvesFile
	}
	return run(args, path, os.Stdout)
}

func run(args Args, path string, out io.Writer) error {
	table, err := curves.Load(path)
	if err != nil {
		return err
	}

	if args.Dump {
		return curves.WriteCSV(out, table)
	}
	if err := summary(out, path, table); err != nil {
		return err
	}

	if args.Export != "" {
		format, err := curves.FormatFromPath(args.Export)
		if err != nil {
			return err
		}
		file, err := os.Create(args.Export)
		if err != nil {
			return err
		}
		if err := curves.Write(file, table, format); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return err
		}
		log.Infof("Exported reference curves to %s", args.Export)
	}
	return nil
}

func summary(out io.Writer, path string, table *curves.Table) error {
	source := path
	if source == "" {
		source = "built in"
	}
	if _, err := fmt.Fprintf(out, "Reference curves: %s\nChecksum: %s\nPoints: %d\n", source, table.ChecksumString(), table.Len()); err != nil {
		return err
	}
	for _, k := range table.Keys() {
		curve, err := table.Curve(k.Chemistry, k.CurrentLimitMA)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "  %-26s %2d points, %g°C to %g°C\n",
			k.String(), len(curve), curve[0].TempC, curve[len(curve)-1].TempC)
		if err != nil {
			return err
		}
	}
	return nil
}
