package main

import (
	"fmt"
	"os"

	"github.com/TheCacophonyProject/battery-runtime/internal/curvetool"
	"github.com/TheCacophonyProject/battery-runtime/internal/estimate"
	"github.com/TheCacophonyProject/battery-runtime/internal/httpapi"
	"github.com/TheCacophonyProject/battery-runtime/internal/logging"
	"github.com/TheCacophonyProject/battery-runtime/internal/service"
	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

var version = "<not set>"

func runMain() error {
	log = logging.NewLogger("info")
	if len(os.Args) < 2 {
		log.Info("Usage: battery-runtime <estimate|curves|serve|dbus-service> [args]")
		return fmt.Errorf("no subcommand given")
	}

	subcommand := os.Args[1]
	args := os.Args[2:]

	var err error
	switch subcommand {
	case "estimate":
		err = estimate.Run(args, version)
	case "curves":
		err = curvetool.Run(args, version)
	case "serve":
		err = httpapi.Run(args, version)
	case "dbus-service":
		err = service.Run(args, version)
	case "version", "--version":
		fmt.Println(version)
	default:
		err = fmt.Errorf("unknown subcommand: %s", subcommand)
	}

	return err
}
