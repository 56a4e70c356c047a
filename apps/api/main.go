package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/Abraham77967/Taskmate-Web/apps/api/echo"
	"github.com/Abraham77967/Taskmate-Web/apps/shared"
	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/tracker"
	logsvc "github.com/Abraham77967/Taskmate-Web/services/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	app, err := shared.Setup(context.Background(), conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up app: %v", err), err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close remote store", err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	unsub := app.Tracker.Subscribe(func(ev tracker.Event, err error) {
		if err != nil {
			logger.Warn(fmt.Sprintf("tracker: %s", ev), err)
			return
		}
		logger.Debug(fmt.Sprintf("tracker: %s", ev))
	})
	defer unsub()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(&echoapi.Options{
		Address:  conf.Server.Address(),
		AppName:  conf.AppName,
		Debug:    conf.Debug,
		TestMode: conf.TestMode,
		Tracker:  app.Tracker,
		Auth:     app.Identity,
		Logger:   logger,
	})
	go server.Start()

	// =========================================================================
	// Shutdown

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}
