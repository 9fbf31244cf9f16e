// Command podboostd runs the podboost daemon in the foreground. It exists
// for service supervisors; interactive use goes through `podboost start`,
// which launches the same runtime as a detached child.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"podboost/internal/config"
	"podboost/internal/daemonrun"
)

func main() {
	cfg, _, _, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "podboostd: load config: %v\n", err)
		os.Exit(1)
	}

	err = daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		LogLevel: cfg.Logging.Level,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "podboostd: %v\n", err)
		os.Exit(1)
	}
}
