// Package main is the entry point for the gitcred CLI.
package main

import (
	"os"

	"github.com/gitcred/gitcred/cmd/gitcred/app"
	"github.com/gitcred/gitcred/pkg/logger"
)

func main() {
	// Initialize the logger
	logger.Initialize()

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
