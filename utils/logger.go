package utils

import (
	"fmt"
	"log"
	"os"
	"path"
)

// SetupLogger sends the standard logger to the configured log file. Console
// output goes through ConsoleAndLogPrintf.
func SetupLogger(logFilePath string) error {
	logFile, err := os.OpenFile(path.Clean(logFilePath), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)

	if err != nil {
		return err
	}

	log.SetOutput(logFile)
	return nil
}

func ConsoleAndLogPrintf(format string, v ...any) {
	fmt.Printf(format+"\n", v...)
	log.Printf(format, v...)
}
