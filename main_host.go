//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"ember/app"
	"ember/hal"
)

func main() {
	var cfg app.Config
	var script string
	flag.IntVar(&cfg.HeapSize, "heap", app.DefaultHeapSize, "OS heap size in bytes.")
	flag.IntVar(&cfg.AppHeapSize, "app-heap", app.DefaultAppHeapSize, "Application heap size in bytes (0 = none).")
	flag.StringVar(&script, "exec", "", "Run ';'-separated console commands, then halt.")
	flag.Parse()

	for _, line := range strings.Split(script, ";") {
		if line = strings.TrimSpace(line); line != "" {
			cfg.Exec = append(cfg.Exec, line)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := app.New(hal.New(), cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := s.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
