package main

import (
	"os"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("fracmesh")

var logFormat = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

// setupLogging routes the module logger to stderr so output files and
// progress bars never interleave with log lines on stdout.
func setupLogging(verbose bool) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, logFormat)
	leveled := logging.AddModuleLevel(formatted)
	if verbose {
		leveled.SetLevel(logging.DEBUG, "")
	} else {
		leveled.SetLevel(logging.INFO, "")
	}
	logging.SetBackend(leveled)
}
