package main

import (
	"context"
	"log"
	"os"

	"github.com/Abraham77967/Taskmate-Web/apps/shared"
	"github.com/Abraham77967/Taskmate-Web/core"
	logsvc "github.com/Abraham77967/Taskmate-Web/services/logger"
)

func main() {
	std := log.New(os.Stderr, "CLI : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	if err != nil {
		std.Fatalf("loading config: %v", err)
	}
	logger := logsvc.NewRollbarLogger(std, conf)
	defer logger.Close()

	app, err := shared.Setup(context.Background(), conf, logger)
	if err != nil {
		logger.Fatal("setting up app", err)
	}

	cli := commandLine{app: app, out: os.Stdout}
	err = cli.run(os.Args)
	if cerr := app.Close(); cerr != nil {
		logger.Error("failed to close remote store", cerr)
	}
	if err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
