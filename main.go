package main

import (
	"os"

	"slotshare/core/logger"
	"slotshare/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("Server:Run:Error", "error", err)
		os.Exit(1)
	}
}
