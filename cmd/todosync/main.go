// Package main is the entry point for the todosync CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"todosync/internal/backend/firebase"
	"todosync/internal/cli"
	"todosync/internal/commands"
	"todosync/internal/config"
	"todosync/internal/docstore"
	"todosync/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	metrics := docstore.NewMetrics(prometheus.DefaultRegisterer)

	factory := func(ctx context.Context, cfg *config.Config, log *logrus.Entry) (service.Service, error) {
		syncer, err := firebase.New(ctx, cfg, log, metrics)
		if err != nil {
			return nil, err
		}
		return syncer, nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory,
		cli.WithGatherer(prometheus.DefaultGatherer),
	)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
