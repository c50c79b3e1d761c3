package main

import (
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/lexio-app/lexio/internal/logging"
)

// setupLog sends logs to the log file. The TUI owns the terminal, so
// nothing is logged to stderr.
func setupLog() (func() error, error) {
	path, err := homedir.Expand(viper.GetString("log_file"))
	if err != nil {
		return nil, fmt.Errorf("unable to expand log path: %w", err)
	}
	return logging.Setup(path, viper.GetBool("debug"))
}
