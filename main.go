package main

import (
	"os"

	"booking-router/core/logger"
	"booking-router/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
		os.Exit(1)
	}
}
