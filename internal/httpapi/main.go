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

package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/TheCacophonyProject/battery-runtime/curves"
	"github.com/TheCacophonyProject/battery-runtime/internal/config"
	"github.com/TheCacophonyProject/battery-runtime/internal/logging"
	arg "github.com/alexflint/go-arg"
)

const shutdownTimeout = 5 * time.Second

type Args struct {
	ListenAddress string `arg:"--listen" help:"Address to listen on. Defaults to listen-address from the config"`
	Curves        string `arg:"--curves" help:"Reference curve file. Defaults to curves-file from the config, then the built in curves"`
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
	if args.ListenAddress != "" {
		conf.ListenAddress = args.ListenAddress
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

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	if conf.CurvesFile != "" && conf.WatchCurves {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Infof("Watching %s for changes", conf.CurvesFile)
			if err := store.Watch(ctx, conf.CurvesFile, log); err != nil {
				log.Error("error watching reference curves: ", err)
			}
		}()
	}

	server := &http.Server{
		Addr:              conf.ListenAddress,
		Handler:           NewServer(store, conf, log, version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", conf.ListenAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		cancel()
		wg.Wait()
		return err
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, closing connections")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	wg.Wait()
	log.Info("Server stopped")
	return nil
}
