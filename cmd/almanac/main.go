// Package main runs the almanac campaign engine CLI.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	almanaccmd "github.com/louisbranch/almanac/internal/cmd/almanac"
)

func main() {
	cfg, err := almanaccmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[ALMANAC] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := almanaccmd.Run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("almanac: %v", err)
	}
}
