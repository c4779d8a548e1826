package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/dumpfiles/internal/cli"
	"github.com/temirov/dumpfiles/internal/utils"
)

func main() {
	startupLogger, startupLoggerError := utils.NewApplicationLogger()
	if startupLoggerError != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, startupLoggerError))
		os.Exit(1)
	}
	defer func() {
		_ = startupLogger.Sync()
	}()

	if executionError := cli.Execute(); executionError != nil {
		startupLogger.Fatal(utils.ApplicationExecutionFailedMessage, zap.Error(executionError))
	}
}
