package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/TheCacophonyProject/battery-runtime/curves"
	"github.com/TheCacophonyProject/battery-runtime/internal/config"
	"github.com/TheCacophonyProject/battery-runtime/internal/logging"
	arg "github.com/alexflint/go-arg"
)

type Args struct {
	Curves string `arg:"--curves" help:"Reference curve file. Defaults to curves-file from the config, then the built in curves"`
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
	log.Infof("Running version: %s", version)

	conf, err := config.Load(args.ConfigDir)
	if err != nil {
		return err
	}
	if args.Curves != "" {
		conf.CurvesFile = args.Curves
	}
	table, err := curves.Load(conf.CurvesFile)
	if err != nil {
		return err
	}
	store := curves.NewStore(table)
	log.Infof("Loaded reference curves %s", table.ChecksumString())

	if err := startService(store, conf); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if conf.CurvesFile != "" && conf.WatchCurves {
		log.Infof("Watching %s for changes", conf.CurvesFile)
		return store.Watch(ctx, conf.CurvesFile, log)
	}
	<-ctx.Done()
	return nil
}
