package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/atomicstack/popup-select/internal/app"
	"github.com/atomicstack/popup-select/internal/config"
	"github.com/atomicstack/popup-select/internal/logging"
	"github.com/atomicstack/popup-select/internal/logging/events"
	"golang.org/x/term"
)

// Exit statuses. exitCancelled matches what shells report for an
// interrupted command.
const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitCancelled = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Environ(), os.Stdout, os.Stderr, app.Run))
}

// run loads configuration and hands it to start, mapping the outcome to an
// exit status.
func run(args, environ []string, stdout, stderr io.Writer, start func(app.Config) error) int {
	cfg, err := config.LoadArgs(args, environ)
	if err != nil {
		var usage *config.UsageError
		if errors.As(err, &usage) {
			if errors.Is(err, flag.ErrHelp) {
				fmt.Fprintf(stdout, "Usage: popup-select [flags]\n\n%s", usage.Usage)
				return exitOK
			}
			fmt.Fprintf(stderr, "popup-select: %v\n\n%s", err, usage.Usage)
			return exitUsage
		}
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return exitUsage
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return exitUsage
	}
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)
	events.App.Start(startupTracePayload(cfg))

	if err := start(cfg.App); err != nil {
		if errors.Is(err, app.ErrCancelled) {
			return exitCancelled
		}
		logging.Error(err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	return exitOK
}

// startupTracePayload records how the process was invoked.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags)+2)
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	payload := map[string]interface{}{
		"argv":     cfg.Args,
		"flags":    flags,
		"config":   cfg,
		"terminal": probeTerminal(),
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	return payload
}

// terminal reports which standard descriptors are attached to a terminal.
// PipedInput means options arrive on stdin and keys are read from /dev/tty.
type terminal struct {
	Stdin      bool   `json:"stdin"`
	Stdout     bool   `json:"stdout"`
	Stderr     bool   `json:"stderr"`
	PipedInput bool   `json:"piped_input"`
	SizeFrom   string `json:"size_from,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
}

func probeTerminal() terminal {
	var t terminal
	descriptors := []struct {
		name string
		file *os.File
		flag *bool
	}{
		{"stderr", os.Stderr, &t.Stderr},
		{"stdout", os.Stdout, &t.Stdout},
		{"stdin", os.Stdin, &t.Stdin},
	}
	for _, d := range descriptors {
		fd := int(d.file.Fd())
		if !term.IsTerminal(fd) {
			continue
		}
		*d.flag = true
		if t.SizeFrom != "" {
			continue
		}
		if w, h, err := term.GetSize(fd); err == nil {
			t.SizeFrom, t.Width, t.Height = d.name, w, h
		}
	}
	t.PipedInput = !t.Stdin
	return t
}
