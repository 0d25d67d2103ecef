package main

import (
	"os"

	"github.com/itchan-dev/threads/shared/logger"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn("failed to load .env", "error", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
